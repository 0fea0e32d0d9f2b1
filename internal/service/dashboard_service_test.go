package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-library-api/internal/domain"
)

func TestLibrarianDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	f.dash.WithClock(fixedClock(now))

	alice := f.seedUser(t, "Alice", "alice@example.com", domain.RoleMember)
	bob := f.seedUser(t, "Bob", "bob@example.com", domain.RoleMember)
	overdueBook := f.seedBook(t, "Late Book", "Author", 1)
	dueTodayBook := f.seedBook(t, "Due Today", "Author", 1)
	f.seedBook(t, "On Shelf", "Author", 1)

	// Alice's loan is one week overdue.
	f.loans.WithClock(fixedClock(now.AddDate(0, 0, -21)))
	overdueLoan, err := f.loans.Create(ctx, alice.ID, overdueBook.ID)
	require.NoError(t, err)

	// Bob's loan is due later today.
	f.loans.WithClock(fixedClock(now.AddDate(0, 0, -14).Add(2 * time.Hour)))
	_, err = f.loans.Create(ctx, bob.ID, dueTodayBook.ID)
	require.NoError(t, err)

	out, err := f.dash.Librarian(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.TotalBooks)
	assert.Equal(t, int64(2), out.TotalBorrowedBooks)
	assert.Equal(t, int64(1), out.BooksDueToday)

	require.Len(t, out.OverdueMembers, 1)
	group := out.OverdueMembers[0]
	assert.Equal(t, alice.ID, group.Member.ID)
	assert.Equal(t, "Alice", group.Member.Name)
	assert.Equal(t, "alice@example.com", group.Member.Email)
	require.Len(t, group.Overdue, 1)
	assert.Equal(t, overdueLoan.ID, group.Overdue[0].BorrowingID)
	assert.Equal(t, overdueBook.ID, group.Overdue[0].BookID)
	assert.Equal(t, "Late Book", group.Overdue[0].Title)
	assert.Equal(t, overdueLoan.DueDate.Unix(), group.Overdue[0].DueDate.Unix())
}

func TestLibrarianDashboardEmpty(t *testing.T) {
	f := newFixture(t)
	out, err := f.dash.Librarian(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.TotalBooks)
	assert.Empty(t, out.OverdueMembers)
}

func TestMemberDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	f.dash.WithClock(fixedClock(now))

	alice := f.seedUser(t, "Alice", "alice@example.com", domain.RoleMember)
	bob := f.seedUser(t, "Bob", "bob@example.com", domain.RoleMember)
	current := f.seedBook(t, "Current Read", "Author A", 1)
	late := f.seedBook(t, "Late Read", "Author B", 1)
	other := f.seedBook(t, "Bob's Book", "Author C", 1)

	f.loans.WithClock(fixedClock(now.AddDate(0, 0, -3)))
	_, err := f.loans.Create(ctx, alice.ID, current.ID)
	require.NoError(t, err)

	f.loans.WithClock(fixedClock(now.AddDate(0, 0, -30)))
	_, err = f.loans.Create(ctx, alice.ID, late.ID)
	require.NoError(t, err)
	_, err = f.loans.Create(ctx, bob.ID, other.ID)
	require.NoError(t, err)

	out, err := f.dash.Member(ctx, alice.ID)
	require.NoError(t, err)

	// overdue loans are a subset of active
	require.Len(t, out.Active, 2)
	require.Len(t, out.Overdue, 1)
	assert.Equal(t, "Late Read", out.Overdue[0].Book.Title)
	assert.Equal(t, "Author B", out.Overdue[0].Book.Author)

	// never another member's loans
	for _, l := range out.Active {
		assert.NotEqual(t, other.ID, l.Book.ID)
	}
}
