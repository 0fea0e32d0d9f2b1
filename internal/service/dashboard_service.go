package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-api/internal/apperr"
	"go-library-api/internal/core/cache"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
)

const librarianDashboardKey = "dashboard:librarian"

type MemberRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OverdueLoan struct {
	BorrowingID string    `json:"borrowing_id"`
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	DueDate     time.Time `json:"due_date"`
}

type OverdueMember struct {
	Member  MemberRef     `json:"member"`
	Overdue []OverdueLoan `json:"overdue"`
}

type LibrarianDashboard struct {
	TotalBooks         int64           `json:"total_books"`
	TotalBorrowedBooks int64           `json:"total_borrowed_books"`
	BooksDueToday      int64           `json:"books_due_today"`
	OverdueMembers     []OverdueMember `json:"overdue_members"`
}

type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type MemberLoan struct {
	ID         string     `json:"id"`
	Book       BookRef    `json:"book"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at"`
}

type MemberDashboard struct {
	Active  []MemberLoan `json:"active"`
	Overdue []MemberLoan `json:"overdue"`
}

// DashboardService builds read-only projections over the ledger.
// Consistency is read-committed at request time; when a redis cache is
// attached the librarian view may additionally lag by the cache TTL.
type DashboardService struct {
	db      *gorm.DB
	books   repo.BookRepository
	borrows repo.BorrowingRepository
	cache   *cache.Cache
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewDashboardService(db *gorm.DB, books repo.BookRepository, borrows repo.BorrowingRepository, log *zap.Logger) *DashboardService {
	return &DashboardService{db: db, books: books, borrows: borrows, now: time.Now, log: log}
}

// WithCache enables the short-TTL cache in front of the librarian view.
func (s *DashboardService) WithCache(c *cache.Cache, ttl time.Duration) *DashboardService {
	s.cache = c
	s.ttl = ttl
	return s
}

// WithClock overrides the time source; tests only.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Librarian(ctx context.Context) (*LibrarianDashboard, error) {
	if s.cache == nil {
		return s.buildLibrarian(ctx)
	}
	out, err := cache.GetOrLoadJSON[LibrarianDashboard](s.cache, ctx, librarianDashboardKey, s.ttl, s.buildLibrarian)
	if err != nil {
		// cache trouble must not take the dashboard down
		s.log.Warn("dashboard cache bypassed", zap.Error(err))
		return s.buildLibrarian(ctx)
	}
	return out, nil
}

// InvalidateLibrarian drops the cached aggregate after a ledger write.
func (s *DashboardService) InvalidateLibrarian(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, librarianDashboardKey)
	}
}

func (s *DashboardService) buildLibrarian(ctx context.Context) (*LibrarianDashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	totalBooks, err := s.books.Count(db)
	if err != nil {
		return nil, apperr.Internal("count books", err)
	}
	totalActive, err := s.borrows.CountActive(db)
	if err != nil {
		return nil, apperr.Internal("count active loans", err)
	}
	dueToday, err := s.borrows.CountDueToday(db, now)
	if err != nil {
		return nil, apperr.Internal("count due today", err)
	}
	overdue, err := s.borrows.ListOverdue(db, now)
	if err != nil {
		return nil, apperr.Internal("list overdue", err)
	}

	// group by borrower, preserving due-date order of first appearance
	byUser := map[string]int{}
	members := []OverdueMember{}
	for _, b := range overdue {
		idx, ok := byUser[b.UserID]
		if !ok {
			m := MemberRef{ID: b.UserID}
			if b.User != nil {
				m.Name = b.User.Name
				m.Email = b.User.Email
			}
			members = append(members, OverdueMember{Member: m})
			idx = len(members) - 1
			byUser[b.UserID] = idx
		}
		loan := OverdueLoan{BorrowingID: b.ID, BookID: b.BookID, DueDate: b.DueDate}
		if b.Book != nil {
			loan.Title = b.Book.Title
		}
		members[idx].Overdue = append(members[idx].Overdue, loan)
	}

	return &LibrarianDashboard{
		TotalBooks:         totalBooks,
		TotalBorrowedBooks: totalActive,
		BooksDueToday:      dueToday,
		OverdueMembers:     members,
	}, nil
}

func (s *DashboardService) Member(ctx context.Context, userID string) (*MemberDashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	active, err := s.borrows.ListActiveByUser(db, userID)
	if err != nil {
		return nil, apperr.Internal("list active loans", err)
	}
	overdue, err := s.borrows.ListOverdueByUser(db, userID, now)
	if err != nil {
		return nil, apperr.Internal("list overdue loans", err)
	}

	out := &MemberDashboard{
		Active:  make([]MemberLoan, 0, len(active)),
		Overdue: make([]MemberLoan, 0, len(overdue)),
	}
	for _, b := range active {
		out.Active = append(out.Active, memberLoan(b))
	}
	for _, b := range overdue {
		out.Overdue = append(out.Overdue, memberLoan(b))
	}
	return out, nil
}

func memberLoan(b domain.Borrowing) MemberLoan {
	ml := MemberLoan{
		ID:         b.ID,
		Book:       BookRef{ID: b.BookID},
		BorrowedAt: b.BorrowedAt,
		DueDate:    b.DueDate,
		ReturnedAt: b.ReturnedAt,
	}
	if b.Book != nil {
		ml.Book.Title = b.Book.Title
		ml.Book.Author = b.Book.Author
	}
	return ml
}
