package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	coreauth "go-library-api/internal/core/auth"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/pkg/utils"
)

// fixture bundles a fresh in-memory database with every service wired
// the way cmd/api wires them.
type fixture struct {
	db      *gorm.DB
	users   repo.UserRepository
	books   repo.BookRepository
	borrows repo.BorrowingRepository

	auth    *AuthService
	userSvc *UserService
	catalog *CatalogService
	loans   *LoanService
	dash    *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Borrowing{}))

	log := zap.NewNop()
	users := repo.NewUserRepo(db)
	books := repo.NewBookRepo(db)
	borrows := repo.NewBorrowingRepo(db)

	return &fixture{
		db:      db,
		users:   users,
		books:   books,
		borrows: borrows,
		auth:    NewAuthService(db, users, coreauth.NewTokenSource(32), 4, log),
		userSvc: NewUserService(db, users, log),
		catalog: NewCatalogService(db, books, borrows, log),
		loans:   NewLoanService(db, books, borrows, log),
		dash:    NewDashboardService(db, books, borrows, log),
	}
}

func (f *fixture) seedUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword("password", 4)
	require.NoError(t, err)
	u := domain.NewUser(utils.NewID(), name, email, hash, role)
	require.NoError(t, f.users.Create(nil, u))
	return u
}

func (f *fixture) seedBook(t *testing.T, title, author string, copies int) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:          utils.NewID(),
		Title:       title,
		Author:      author,
		TotalCopies: copies,
	}
	require.NoError(t, f.books.Create(nil, b))
	return b
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
