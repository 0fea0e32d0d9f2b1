package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/pkg/utils"
)

type CatalogService struct {
	db      *gorm.DB
	books   repo.BookRepository
	borrows repo.BorrowingRepository
	log     *zap.Logger
}

func NewCatalogService(db *gorm.DB, books repo.BookRepository, borrows repo.BorrowingRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, books: books, borrows: borrows, log: log}
}

type CreateBookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"total_copies"`
}

// UpdateBookInput carries PATCH semantics: nil means "leave as is".
type UpdateBookInput struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	ISBN        *string `json:"isbn"`
	TotalCopies *int    `json:"total_copies"`
}

func (s *CatalogService) Search(ctx context.Context, f domain.BookFilters) ([]domain.Book, error) {
	books, err := s.books.Search(s.db.WithContext(ctx), f)
	if err != nil {
		return nil, apperr.Internal("search books", err)
	}
	return books, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.books.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, apperr.Internal("find book", err)
	}
	if b == nil {
		return nil, apperr.NotFound("Book not found")
	}
	return b, nil
}

func (s *CatalogService) Create(ctx context.Context, in CreateBookInput) (*domain.Book, error) {
	if msgs := validateBook(in.Title, in.Author, in.TotalCopies); len(msgs) > 0 {
		return nil, apperr.Validation(msgs...)
	}
	b := &domain.Book{
		ID:          utils.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Genre:       strings.TrimSpace(in.Genre),
		ISBN:        strings.TrimSpace(in.ISBN),
		TotalCopies: in.TotalCopies,
	}
	if err := s.books.Create(s.db.WithContext(ctx), b); err != nil {
		return nil, apperr.Internal("create book", err)
	}
	s.log.Info("book created", zap.String("book_id", b.ID), zap.String("title", b.Title))
	return b, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in UpdateBookInput) (*domain.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.Genre != nil {
		b.Genre = strings.TrimSpace(*in.Genre)
	}
	if in.ISBN != nil {
		b.ISBN = strings.TrimSpace(*in.ISBN)
	}
	if in.TotalCopies != nil {
		b.TotalCopies = *in.TotalCopies
	}
	if msgs := validateBook(b.Title, b.Author, b.TotalCopies); len(msgs) > 0 {
		return nil, apperr.Validation(msgs...)
	}
	if err := s.books.Update(s.db.WithContext(ctx), b); err != nil {
		return nil, apperr.Internal("update book", err)
	}
	return b, nil
}

// Delete refuses to remove a book that any borrowing row still
// references, active or returned. The ledger is the system of record;
// cascading would silently destroy loan history.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	b, err := s.books.FindByID(db, id)
	if err != nil {
		return apperr.Internal("find book", err)
	}
	if b == nil {
		return apperr.NotFound("Book not found")
	}
	n, err := s.borrows.CountByBook(db, id)
	if err != nil {
		return apperr.Internal("count borrowings", err)
	}
	if n > 0 {
		return apperr.Validation("Book has borrowing history and cannot be deleted")
	}
	if _, err := s.books.Delete(db, id); err != nil {
		return apperr.Internal("delete book", err)
	}
	s.log.Info("book deleted", zap.String("book_id", id))
	return nil
}

func validateBook(title, author string, totalCopies int) []string {
	var msgs []string
	if strings.TrimSpace(title) == "" {
		msgs = append(msgs, "Title can't be blank")
	}
	if strings.TrimSpace(author) == "" {
		msgs = append(msgs, "Author can't be blank")
	}
	if totalCopies < 0 {
		msgs = append(msgs, "Total copies must be greater than or equal to 0")
	}
	return msgs
}
