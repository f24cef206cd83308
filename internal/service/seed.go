package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/models"
)

// Default credentials created on an empty database.
const (
	SeedAdminUsername = "admin"
	SeedAdminPassword = "Admin123!"
)

var seedBooks = []models.Book{
	{Title: "Clean Code", Author: "Robert C. Martin", ISBN: "9780132350884", PublishedDate: models.NewDate(2008, time.August, 1)},
	{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "9780201616224", PublishedDate: models.NewDate(1999, time.October, 30)},
	{Title: "Design Patterns", Author: "Erich Gamma", ISBN: "9780201633610", PublishedDate: models.NewDate(1994, time.October, 31)},
}

// Seeder fills an empty database with an admin account and a starter catalog
type Seeder struct {
	users  UserStore
	books  BookStore
	hasher Hasher
	log    *logrus.Logger
}

// NewSeeder initializes a new seeder
func NewSeeder(users UserStore, books BookStore, hasher Hasher, log *logrus.Logger) *Seeder {
	return &Seeder{users: users, books: books, hasher: hasher, log: log}
}

// Seed inserts the defaults into each table that is still empty
func (s *Seeder) Seed(ctx context.Context) error {
	nUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if nUsers == 0 {
		hash, err := s.hasher.Hash(SeedAdminPassword)
		if err != nil {
			return err
		}
		if err := s.users.CreateUser(ctx, &models.User{Username: SeedAdminUsername, PasswordHash: hash}); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		s.log.Infof("Seeded user %s", SeedAdminUsername)
	}

	nBooks, err := s.books.CountBooks(ctx)
	if err != nil {
		return err
	}
	if nBooks == 0 {
		for _, b := range seedBooks {
			if err := s.books.CreateBook(ctx, &b); err != nil {
				return fmt.Errorf("failed to seed book %q: %w", b.Title, err)
			}
		}
		s.log.Infof("Seeded %d books", len(seedBooks))
	}
	return nil
}
