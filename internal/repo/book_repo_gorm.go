package repo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-library-api/internal/domain"
)

type BookRepository interface {
	Create(db *gorm.DB, b *domain.Book) error
	FindByID(db *gorm.DB, id string) (*domain.Book, error)
	// FindByIDForUpdate locks the book row for the duration of the
	// enclosing transaction; competing borrows of the same book
	// serialize on this lock.
	FindByIDForUpdate(db *gorm.DB, id string) (*domain.Book, error)
	Search(db *gorm.DB, f domain.BookFilters) ([]domain.Book, error)
	Update(db *gorm.DB, b *domain.Book) error
	Delete(db *gorm.DB, id string) (int64, error)
	Count(db *gorm.DB) (int64, error)
	IncrementBorrowings(db *gorm.DB, id string, delta int) error
}

type bookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) BookRepository { return &bookRepo{db: db} }

func (r *bookRepo) h(db *gorm.DB) *gorm.DB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *bookRepo) Create(db *gorm.DB, b *domain.Book) error {
	return r.h(db).Create(b).Error
}

func (r *bookRepo) FindByID(db *gorm.DB, id string) (*domain.Book, error) {
	var b domain.Book
	err := r.h(db).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepo) FindByIDForUpdate(db *gorm.DB, id string) (*domain.Book, error) {
	q := r.h(db)
	// sqlite is single-writer and has no FOR UPDATE syntax; the lock
	// clause only exists on server databases
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var b domain.Book
	err := q.First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Search AND-combines the provided filters as case-insensitive
// substring matches. LOWER(...) LIKE keeps postgres, mysql and sqlite
// behaving identically.
func (r *bookRepo) Search(db *gorm.DB, f domain.BookFilters) ([]domain.Book, error) {
	q := r.h(db).Model(&domain.Book{})
	if f.Title != "" {
		q = q.Where("LOWER(title) LIKE LOWER(?)", "%"+f.Title+"%")
	}
	if f.Author != "" {
		q = q.Where("LOWER(author) LIKE LOWER(?)", "%"+f.Author+"%")
	}
	if f.Genre != "" {
		q = q.Where("LOWER(genre) LIKE LOWER(?)", "%"+f.Genre+"%")
	}
	if f.ISBN != "" {
		q = q.Where("LOWER(isbn) LIKE LOWER(?)", "%"+f.ISBN+"%")
	}
	var books []domain.Book
	err := q.Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *bookRepo) Update(db *gorm.DB, b *domain.Book) error {
	return r.h(db).Save(b).Error
}

func (r *bookRepo) Delete(db *gorm.DB, id string) (int64, error) {
	res := r.h(db).Where("id = ?", id).Delete(&domain.Book{})
	return res.RowsAffected, res.Error
}

func (r *bookRepo) Count(db *gorm.DB) (int64, error) {
	var n int64
	err := r.h(db).Model(&domain.Book{}).Count(&n).Error
	return n, err
}

func (r *bookRepo) IncrementBorrowings(db *gorm.DB, id string, delta int) error {
	return r.h(db).Model(&domain.Book{}).Where("id = ?", id).
		Update("borrowings_count", gorm.Expr("borrowings_count + ?", delta)).Error
}
