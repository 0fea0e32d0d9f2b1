package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"go-library-api/internal/domain"
)

type BorrowingRepository interface {
	Create(db *gorm.DB, b *domain.Borrowing) error
	FindByID(db *gorm.DB, id string) (*domain.Borrowing, error)
	Update(db *gorm.DB, b *domain.Borrowing) error
	Delete(db *gorm.DB, id string) (int64, error)

	CountActiveByBook(db *gorm.DB, bookID string) (int64, error)
	CountByBook(db *gorm.DB, bookID string) (int64, error)
	ActiveExists(db *gorm.DB, userID, bookID string) (bool, error)
	// MarkReturned sets returned_at only when it is still null; the
	// returned row count tells the caller whether this call was the
	// one that performed the mutation.
	MarkReturned(db *gorm.DB, id string, at time.Time) (int64, error)

	ListAll(db *gorm.DB) ([]domain.Borrowing, error)
	ListByUser(db *gorm.DB, userID string) ([]domain.Borrowing, error)
	CountActive(db *gorm.DB) (int64, error)
	CountDueToday(db *gorm.DB, now time.Time) (int64, error)
	ListOverdue(db *gorm.DB, now time.Time) ([]domain.Borrowing, error)
	ListActiveByUser(db *gorm.DB, userID string) ([]domain.Borrowing, error)
	ListOverdueByUser(db *gorm.DB, userID string, now time.Time) ([]domain.Borrowing, error)
}

type borrowingRepo struct{ db *gorm.DB }

func NewBorrowingRepo(db *gorm.DB) BorrowingRepository { return &borrowingRepo{db: db} }

func (r *borrowingRepo) h(db *gorm.DB) *gorm.DB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *borrowingRepo) Create(db *gorm.DB, b *domain.Borrowing) error {
	return r.h(db).Create(b).Error
}

func (r *borrowingRepo) FindByID(db *gorm.DB, id string) (*domain.Borrowing, error) {
	var b domain.Borrowing
	err := r.h(db).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *borrowingRepo) Update(db *gorm.DB, b *domain.Borrowing) error {
	return r.h(db).Save(b).Error
}

func (r *borrowingRepo) Delete(db *gorm.DB, id string) (int64, error) {
	res := r.h(db).Where("id = ?", id).Delete(&domain.Borrowing{})
	return res.RowsAffected, res.Error
}

func (r *borrowingRepo) CountActiveByBook(db *gorm.DB, bookID string) (int64, error) {
	var n int64
	err := r.h(db).Model(&domain.Borrowing{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).Count(&n).Error
	return n, err
}

func (r *borrowingRepo) CountByBook(db *gorm.DB, bookID string) (int64, error) {
	var n int64
	err := r.h(db).Model(&domain.Borrowing{}).
		Where("book_id = ?", bookID).Count(&n).Error
	return n, err
}

func (r *borrowingRepo) ActiveExists(db *gorm.DB, userID, bookID string) (bool, error) {
	var n int64
	err := r.h(db).Model(&domain.Borrowing{}).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		Count(&n).Error
	return n > 0, err
}

func (r *borrowingRepo) MarkReturned(db *gorm.DB, id string, at time.Time) (int64, error) {
	res := r.h(db).Model(&domain.Borrowing{}).
		Where("id = ? AND returned_at IS NULL", id).
		Update("returned_at", at)
	return res.RowsAffected, res.Error
}

func (r *borrowingRepo) ListAll(db *gorm.DB) ([]domain.Borrowing, error) {
	var bs []domain.Borrowing
	err := r.h(db).Order("borrowed_at DESC").Find(&bs).Error
	return bs, err
}

func (r *borrowingRepo) ListByUser(db *gorm.DB, userID string) ([]domain.Borrowing, error) {
	var bs []domain.Borrowing
	err := r.h(db).Where("user_id = ?", userID).Order("borrowed_at DESC").Find(&bs).Error
	return bs, err
}

func (r *borrowingRepo) CountActive(db *gorm.DB) (int64, error) {
	var n int64
	err := r.h(db).Model(&domain.Borrowing{}).
		Where("returned_at IS NULL").Count(&n).Error
	return n, err
}

func (r *borrowingRepo) CountDueToday(db *gorm.DB, now time.Time) (int64, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)
	var n int64
	err := r.h(db).Model(&domain.Borrowing{}).
		Where("returned_at IS NULL AND due_date >= ? AND due_date < ?", start, end).
		Count(&n).Error
	return n, err
}

func (r *borrowingRepo) ListOverdue(db *gorm.DB, now time.Time) ([]domain.Borrowing, error) {
	var bs []domain.Borrowing
	err := r.h(db).Preload("User").Preload("Book").
		Where("returned_at IS NULL AND due_date < ?", now).
		Order("due_date ASC").Find(&bs).Error
	return bs, err
}

func (r *borrowingRepo) ListActiveByUser(db *gorm.DB, userID string) ([]domain.Borrowing, error) {
	var bs []domain.Borrowing
	err := r.h(db).Preload("Book").
		Where("user_id = ? AND returned_at IS NULL", userID).
		Order("due_date ASC").Find(&bs).Error
	return bs, err
}

func (r *borrowingRepo) ListOverdueByUser(db *gorm.DB, userID string, now time.Time) ([]domain.Borrowing, error) {
	var bs []domain.Borrowing
	err := r.h(db).Preload("Book").
		Where("user_id = ? AND returned_at IS NULL AND due_date < ?", userID, now).
		Order("due_date ASC").Find(&bs).Error
	return bs, err
}
