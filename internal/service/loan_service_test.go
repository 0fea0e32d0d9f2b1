package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
)

func TestCreateLoanDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.loans.WithClock(fixedClock(now))

	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Dune", "Frank Herbert", 3)

	b, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, now, b.BorrowedAt.UTC())
	assert.Equal(t, now.AddDate(0, 0, 14), b.DueDate.UTC())
	assert.Nil(t, b.ReturnedAt)

	// counter incremented in the same transaction
	got, err := f.books.FindByID(nil, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BorrowingsCount)
}

func TestCreateLoanUnknownBook(t *testing.T) {
	f := newFixture(t)
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)

	_, err := f.loans.Create(context.Background(), member.ID, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateLoanNoAvailableCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedUser(t, "A", "a@example.com", domain.RoleMember)
	b := f.seedUser(t, "B", "b@example.com", domain.RoleMember)
	book := f.seedBook(t, "Solo Copy", "Author", 1)

	_, err := f.loans.Create(ctx, a.ID, book.ID)
	require.NoError(t, err)

	_, err = f.loans.Create(ctx, b.ID, book.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.As(err).Messages(), "No available copies for this book")
}

func TestCreateLoanZeroCopies(t *testing.T) {
	f := newFixture(t)
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Ghost", "Nobody", 0)

	_, err := f.loans.Create(context.Background(), member.ID, book.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateLoanDuplicateActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Popular", "Author", 5)

	_, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)

	_, err = f.loans.Create(ctx, member.ID, book.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.As(err).Messages(), "User has already borrowed this book")
}

// The last-copy lifecycle: A borrows, B is refused, the librarian
// returns A's loan, B borrows.
func TestLastCopyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedUser(t, "A", "a@example.com", domain.RoleMember)
	b := f.seedUser(t, "B", "b@example.com", domain.RoleMember)
	book := f.seedBook(t, "Single", "Author", 1)

	loanA, err := f.loans.Create(ctx, a.ID, book.ID)
	require.NoError(t, err)

	_, err = f.loans.Create(ctx, b.ID, book.ID)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, already, err := f.loans.Return(ctx, loanA.ID)
	require.NoError(t, err)
	assert.False(t, already)

	_, err = f.loans.Create(ctx, b.ID, book.ID)
	require.NoError(t, err)
}

// Two simultaneous borrows racing for the last copy: the row lock (or
// the store's single writer) serializes them, so exactly one wins.
func TestCreateLoanLastCopyRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedUser(t, "A", "a@example.com", domain.RoleMember)
	b := f.seedUser(t, "B", "b@example.com", domain.RoleMember)
	book := f.seedBook(t, "Contested", "Author", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = f.loans.Create(ctx, userID, book.ID)
		}(i, userID)
	}
	wg.Wait()

	var won, refused int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		require.True(t, apperr.IsKind(err, apperr.KindValidation))
		refused++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, refused)

	active, err := f.borrows.CountActiveByBook(nil, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	got, err := f.books.FindByID(nil, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BorrowingsCount)
}

func TestReturnIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Book", "Author", 1)

	loan, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)

	first, already, err := f.loans.Return(ctx, loan.ID)
	require.NoError(t, err)
	require.False(t, already)
	require.NotNil(t, first.ReturnedAt)
	stamp := *first.ReturnedAt

	second, already, err := f.loans.Return(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, already)
	require.NotNil(t, second.ReturnedAt)
	assert.Equal(t, stamp.Unix(), second.ReturnedAt.Unix())
}

func TestReturnUnknown(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.loans.Return(context.Background(), "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateDueDateAnyDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Book", "Author", 1)

	loan, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.loans.UpdateDueDate(ctx, loan.ID, past)
	require.NoError(t, err)
	assert.Equal(t, past, got.DueDate.UTC())

	future := time.Now().AddDate(1, 0, 0).UTC().Truncate(time.Second)
	got, err = f.loans.UpdateDueDate(ctx, loan.ID, future)
	require.NoError(t, err)
	assert.Equal(t, future, got.DueDate.UTC().Truncate(time.Second))
}

func TestDeleteLoanDecrementsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Book", "Author", 2)

	loan, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)

	require.NoError(t, f.loans.Delete(ctx, loan.ID))

	got, err := f.books.FindByID(nil, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BorrowingsCount)

	_, err = f.loans.Get(ctx, loan.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// Two deletes of the same borrowing must decrement the counter exactly
// once, never twice.
func TestDeleteLoanTwiceDecrementsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.seedUser(t, "Member", "m@example.com", domain.RoleMember)
	book := f.seedBook(t, "Book", "Author", 1)

	loan, err := f.loans.Create(ctx, member.ID, book.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.loans.Delete(ctx, loan.ID)
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		require.True(t, apperr.IsKind(err, apperr.KindNotFound))
	}
	assert.Equal(t, 1, won)

	got, err := f.books.FindByID(nil, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BorrowingsCount)
}

func TestListScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedUser(t, "A", "a@example.com", domain.RoleMember)
	b := f.seedUser(t, "B", "b@example.com", domain.RoleMember)
	librarian := f.seedUser(t, "L", "l@example.com", domain.RoleLibrarian)
	b1 := f.seedBook(t, "One", "Author", 1)
	b2 := f.seedBook(t, "Two", "Author", 1)

	loanA, err := f.loans.Create(ctx, a.ID, b1.ID)
	require.NoError(t, err)
	_, err = f.loans.Create(ctx, b.ID, b2.ID)
	require.NoError(t, err)

	mine, err := f.loans.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, loanA.ID, mine[0].ID)

	all, err := f.loans.List(ctx, librarian)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
