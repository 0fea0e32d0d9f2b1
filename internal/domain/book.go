package domain

import "time"

type Book struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Author      string `gorm:"size:255;not null" json:"author"`
	Genre       string `gorm:"size:100" json:"genre"`
	ISBN        string `gorm:"size:32;column:isbn" json:"isbn"`
	TotalCopies int    `gorm:"not null;default:0" json:"total_copies"`

	// BorrowingsCount counts every loan ever created for the book:
	// incremented when a borrowing row is inserted, decremented when one
	// is hard-deleted, untouched by returns. Availability is never
	// derived from it (see AvailableCopies).
	BorrowingsCount int `gorm:"not null;default:0" json:"borrowings_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Book) TableName() string { return "books" }

// AvailableCopies clamps at zero so an over-issued book (total_copies
// lowered after loans were made) never reports a negative count.
func (b *Book) AvailableCopies(activeLoans int64) int {
	n := b.TotalCopies - int(activeLoans)
	if n < 0 {
		return 0
	}
	return n
}

// BookFilters are AND-combined; an empty field imposes no constraint.
type BookFilters struct {
	Title  string
	Author string
	Genre  string
	ISBN   string
}

func (f BookFilters) Empty() bool {
	return f.Title == "" && f.Author == "" && f.Genre == "" && f.ISBN == ""
}
