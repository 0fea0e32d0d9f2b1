package domain

import "time"

// LoanPeriodDays is the default loan period applied when a borrowing is
// created without an explicit due date.
const LoanPeriodDays = 14

type Borrowing struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"size:36;not null;index" json:"user_id"`
	BookID     string     `gorm:"size:36;not null;index" json:"book_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueDate    time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at"`

	// Referenced, not owned: deleting a borrowing never touches these.
	User *User `gorm:"foreignKey:UserID" json:"-"`
	Book *Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Borrowing) TableName() string { return "borrowings" }

func (b *Borrowing) Active() bool { return b.ReturnedAt == nil }

// Overdue means still out and strictly past due.
func (b *Borrowing) Overdue(now time.Time) bool {
	return b.Active() && b.DueDate.Before(now)
}
