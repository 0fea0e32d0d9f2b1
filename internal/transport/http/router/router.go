package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-library-api/internal/service"
	"go-library-api/internal/transport/http/handler"
	mdw "go-library-api/internal/transport/http/middleware"
)

// Handlers collects everything the engine mounts. Wiring is explicit;
// there is no global registration.
type Handlers struct {
	Session   *handler.SessionHandler
	User      *handler.UserHandler
	Book      *handler.BookHandler
	Borrowing *handler.BorrowingHandler
	Dashboard *handler.DashboardHandler
}

// NewEngine assembles the middleware chain and the route table. Routes
// are mounted at the root: the external interface is fixed by the
// upstream clients.
func NewEngine(l *zap.Logger, auth *service.AuthService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(
		// last-resort recovery; the inner Recovery renders JSON bodies
		ginzap.RecoveryWithZap(l, true),
		mdw.RequestID(),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("")

	// every other route authenticates before any handler logic runs
	authed := r.Group("")
	authed.Use(mdw.AuthToken(auth))

	h.Session.Mount(public, authed)
	h.User.Mount(public, authed)
	h.Book.Mount(authed)
	h.Borrowing.Mount(authed)
	h.Dashboard.Mount(authed)

	return r
}
