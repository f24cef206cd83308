package service

import (
	"context"

	"github.com/Dan9191/library-service/internal/models"
)

// UserStore persists user credentials.
// FindUserByUsername returns repository.ErrNotFound when no user matches and
// CreateUser returns repository.ErrDuplicate on a username collision.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// BookStore persists catalog records.
type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	ListBooks(ctx context.Context, q models.BookQuery) ([]models.Book, error)
	FindBookByID(ctx context.Context, id int64) (*models.Book, error)
	UpdateBook(ctx context.Context, book models.Book) (int64, error)
	DeleteBook(ctx context.Context, id int64) (int64, error)
	CountBooks(ctx context.Context) (int64, error)
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints bearer tokens for an authenticated username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}
