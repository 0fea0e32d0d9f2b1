package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-library-api/internal/domain"
)

// Repositories accept an optional *gorm.DB so the same method works
// inside and outside a transaction; nil falls back to the root handle.

type UserRepository interface {
	Create(db *gorm.DB, u *domain.User) error
	FindByID(db *gorm.DB, id string) (*domain.User, error)
	FindByEmail(db *gorm.DB, email string) (*domain.User, error)
	FindByToken(db *gorm.DB, token string) (*domain.User, error)
	TokenExists(db *gorm.DB, token string) (bool, error)
	SetToken(db *gorm.DB, userID string, token *string) error
	Update(db *gorm.DB, u *domain.User) error
	Delete(db *gorm.DB, id string) (int64, error)
	List(db *gorm.DB) ([]domain.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) h(db *gorm.DB) *gorm.DB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *userRepo) Create(db *gorm.DB, u *domain.User) error {
	return r.h(db).Create(u).Error
}

func (r *userRepo) FindByID(db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := r.h(db).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := r.h(db).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByToken(db *gorm.DB, token string) (*domain.User, error) {
	var u domain.User
	err := r.h(db).First(&u, "auth_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) TokenExists(db *gorm.DB, token string) (bool, error) {
	var n int64
	err := r.h(db).Model(&domain.User{}).Where("auth_token = ?", token).Count(&n).Error
	return n > 0, err
}

// SetToken writes only the token column; nil revokes.
func (r *userRepo) SetToken(db *gorm.DB, userID string, token *string) error {
	return r.h(db).Model(&domain.User{}).Where("id = ?", userID).
		Update("auth_token", token).Error
}

func (r *userRepo) Update(db *gorm.DB, u *domain.User) error {
	return r.h(db).Save(u).Error
}

func (r *userRepo) Delete(db *gorm.DB, id string) (int64, error) {
	res := r.h(db).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}

func (r *userRepo) List(db *gorm.DB) ([]domain.User, error) {
	var users []domain.User
	err := r.h(db).Order("created_at DESC").Find(&users).Error
	return users, err
}
