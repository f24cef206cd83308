package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/library-service/internal/db"
	"github.com/Dan9191/library-service/internal/models"
	"github.com/Dan9191/library-service/internal/testutil"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testutil.OpenInMemoryDB(t), db.DriverSQLite)
}

func seedBooks(t *testing.T, r *Repository, books ...models.Book) []models.Book {
	t.Helper()
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		require.NoError(t, r.CreateBook(context.Background(), &b))
		out = append(out, b)
	}
	return out
}

func TestUsers_CreateAndFind(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := r.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = r.FindUserByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := r.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUsers_DuplicateUsername(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "a"}))
	err := r.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// usernames are case-sensitive
	require.NoError(t, r.CreateUser(ctx, &models.User{Username: "Bob", PasswordHash: "c"}))
}

func TestBooks_CRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	b := &models.Book{Title: "Dune", Author: "Herbert", ISBN: "X", PublishedDate: models.NewDate(1965, time.August, 1)}
	require.NoError(t, r.CreateBook(ctx, b))
	require.NotZero(t, b.ID)

	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)
	assert.Equal(t, b.Author, got.Author)
	assert.Equal(t, b.ISBN, got.ISBN)
	assert.Equal(t, "1965-08-01", got.PublishedDate.String())

	updated := *got
	updated.Title = "Dune Messiah"
	updated.PublishedDate = models.NewDate(1969, time.October, 15)
	n, err := r.UpdateBook(ctx, updated)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "1969-10-15", got.PublishedDate.String())

	n, err = r.UpdateBook(ctx, models.Book{ID: 999, Title: "x", Author: "y", ISBN: "z"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.DeleteBook(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.FindBookByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = r.DeleteBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBooks_ListPagingAndSearch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	d := models.NewDate(2000, time.January, 1)
	seeded := seedBooks(t, r,
		models.Book{Title: "Clean Code", Author: "Robert C. Martin", ISBN: "1", PublishedDate: d},
		models.Book{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "2", PublishedDate: d},
		models.Book{Title: "Design Patterns", Author: "Erich Gamma", ISBN: "3", PublishedDate: d},
		models.Book{Title: "100% Go", Author: "Gopher", ISBN: "4", PublishedDate: d},
	)

	page, err := r.ListBooks(ctx, models.BookQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, seeded[0].ID, page[0].ID)
	assert.Equal(t, seeded[1].ID, page[1].ID)

	page, err = r.ListBooks(ctx, models.BookQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.NotNil(t, page)

	page, err = r.ListBooks(ctx, models.BookQuery{Search: "Clean", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Clean Code", page[0].Title)

	// author match, OR semantics
	page, err = r.ListBooks(ctx, models.BookQuery{Search: "Gamma", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Design Patterns", page[0].Title)

	// case-sensitive
	page, err = r.ListBooks(ctx, models.BookQuery{Search: "clean", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	// wildcard characters are literal
	page, err = r.ListBooks(ctx, models.BookQuery{Search: "%", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "100% Go", page[0].Title)

	n, err := r.CountBooks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}
