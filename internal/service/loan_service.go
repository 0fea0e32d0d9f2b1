package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/pkg/utils"
)

// LoanService is the loan ledger. Counter maintenance on books is an
// explicit part of the Create/Delete transactions, not a callback.
type LoanService struct {
	db      *gorm.DB
	books   repo.BookRepository
	borrows repo.BorrowingRepository
	now     func() time.Time
	log     *zap.Logger
}

func NewLoanService(db *gorm.DB, books repo.BookRepository, borrows repo.BorrowingRepository, log *zap.Logger) *LoanService {
	return &LoanService{db: db, books: books, borrows: borrows, now: time.Now, log: log}
}

// WithClock overrides the time source; tests only.
func (s *LoanService) WithClock(now func() time.Time) *LoanService {
	s.now = now
	return s
}

// Create opens one transaction and locks the book row, so two borrows
// racing for the last copy serialize: the second sees the first's
// insert and fails the availability check. Availability and the
// duplicate-loan rule are both judged against transaction-time state.
func (s *LoanService) Create(ctx context.Context, userID, bookID string) (*domain.Borrowing, error) {
	var out *domain.Borrowing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.books.FindByIDForUpdate(tx, bookID)
		if err != nil {
			return apperr.Internal("lock book", err)
		}
		if book == nil {
			return apperr.NotFound("Book not found")
		}
		active, err := s.borrows.CountActiveByBook(tx, bookID)
		if err != nil {
			return apperr.Internal("count active loans", err)
		}
		if book.AvailableCopies(active) == 0 {
			return apperr.Validation("No available copies for this book")
		}
		dup, err := s.borrows.ActiveExists(tx, userID, bookID)
		if err != nil {
			return apperr.Internal("check duplicate loan", err)
		}
		if dup {
			return apperr.Validation("User has already borrowed this book")
		}

		now := s.now()
		b := &domain.Borrowing{
			ID:         utils.NewID(),
			UserID:     userID,
			BookID:     bookID,
			BorrowedAt: now,
			DueDate:    now.AddDate(0, 0, domain.LoanPeriodDays),
		}
		if err := s.borrows.Create(tx, b); err != nil {
			return apperr.Internal("create borrowing", err)
		}
		if err := s.books.IncrementBorrowings(tx, bookID, 1); err != nil {
			return apperr.Internal("increment borrowings_count", err)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("loan created",
		zap.String("borrowing_id", out.ID),
		zap.String("user_id", userID),
		zap.String("book_id", bookID),
	)
	return out, nil
}

// Return is idempotent at the API level: a second call reports
// alreadyReturned=true and mutates nothing. The UPDATE is guarded by
// `returned_at IS NULL`, so even two concurrent returns set the
// timestamp exactly once.
func (s *LoanService) Return(ctx context.Context, id string) (b *domain.Borrowing, alreadyReturned bool, err error) {
	db := s.db.WithContext(ctx)
	b, err = s.borrows.FindByID(db, id)
	if err != nil {
		return nil, false, apperr.Internal("find borrowing", err)
	}
	if b == nil {
		return nil, false, apperr.NotFound("Borrowing not found")
	}
	if b.ReturnedAt != nil {
		return b, true, nil
	}
	rows, err := s.borrows.MarkReturned(db, id, s.now())
	if err != nil {
		return nil, false, apperr.Internal("mark returned", err)
	}
	b, err = s.borrows.FindByID(db, id)
	if err != nil || b == nil {
		return nil, false, apperr.Internal("reload borrowing", err)
	}
	if rows == 0 {
		// lost a race with another return; theirs counted
		return b, true, nil
	}
	s.log.Info("loan returned", zap.String("borrowing_id", id))
	return b, false, nil
}

// UpdateDueDate has no direction constraint: the due date may move
// earlier or later, including into the past.
func (s *LoanService) UpdateDueDate(ctx context.Context, id string, due time.Time) (*domain.Borrowing, error) {
	db := s.db.WithContext(ctx)
	b, err := s.borrows.FindByID(db, id)
	if err != nil {
		return nil, apperr.Internal("find borrowing", err)
	}
	if b == nil {
		return nil, apperr.NotFound("Borrowing not found")
	}
	b.DueDate = due
	if err := s.borrows.Update(db, b); err != nil {
		return nil, apperr.Internal("update borrowing", err)
	}
	return b, nil
}

// Delete hard-deletes the ledger row and decrements the book's loan
// counter in the same transaction.
func (s *LoanService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.borrows.FindByID(tx, id)
		if err != nil {
			return apperr.Internal("find borrowing", err)
		}
		if b == nil {
			return apperr.NotFound("Borrowing not found")
		}
		rows, err := s.borrows.Delete(tx, id)
		if err != nil {
			return apperr.Internal("delete borrowing", err)
		}
		if rows == 0 {
			// lost a race with another delete; that one decremented
			return apperr.NotFound("Borrowing not found")
		}
		if err := s.books.IncrementBorrowings(tx, b.BookID, -1); err != nil {
			return apperr.Internal("decrement borrowings_count", err)
		}
		return nil
	})
}

func (s *LoanService) Get(ctx context.Context, id string) (*domain.Borrowing, error) {
	b, err := s.borrows.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, apperr.Internal("find borrowing", err)
	}
	if b == nil {
		return nil, apperr.NotFound("Borrowing not found")
	}
	return b, nil
}

// List scopes by role: librarians see the whole ledger, members only
// their own rows.
func (s *LoanService) List(ctx context.Context, actor *domain.User) ([]domain.Borrowing, error) {
	db := s.db.WithContext(ctx)
	var (
		bs  []domain.Borrowing
		err error
	)
	if actor.IsLibrarian() {
		bs, err = s.borrows.ListAll(db)
	} else {
		bs, err = s.borrows.ListByUser(db, actor.ID)
	}
	if err != nil {
		return nil, apperr.Internal("list borrowings", err)
	}
	return bs, nil
}
