package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/config"
	"github.com/Dan9191/library-service/internal/models"
	"github.com/Dan9191/library-service/internal/repository"
)

// BookInput carries the client-supplied fields of a book.
type BookInput struct {
	Title         string
	Author        string
	ISBN          string
	PublishedDate models.Date
}

// ListParams selects a page of books. Nil page fields take the configured defaults.
type ListParams struct {
	Search     string
	PageNumber *int
	PageSize   *int
}

// BookService handles catalog operations
type BookService struct {
	books BookStore
	cfg   config.PagingConfig
	log   *logrus.Logger
}

// NewBookService initializes a new book service
func NewBookService(books BookStore, cfg config.PagingConfig, log *logrus.Logger) *BookService {
	return &BookService{books: books, cfg: cfg, log: log}
}

// Add validates and stores a new book
func (s *BookService) Add(ctx context.Context, in BookInput) (*models.Book, error) {
	in, err := normalizeBook(in)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		PublishedDate: in.PublishedDate,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.WithFields(logrus.Fields{"book_id": book.ID, "title": book.Title, "author": book.Author}).Info("Book added")
	return book, nil
}

// List returns one page of books in ID order, optionally filtered by a
// substring of title or author.
func (s *BookService) List(ctx context.Context, p ListParams) ([]models.Book, error) {
	q, err := s.buildQuery(p)
	if err != nil {
		return nil, err
	}

	books, err := s.books.ListBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.log.Debugf("Returned %d books", len(books))
	return books, nil
}

// All returns the whole catalog in ID order, page by page.
func (s *BookService) All(ctx context.Context) ([]models.Book, error) {
	var all []models.Book
	q := models.BookQuery{Limit: s.cfg.MaxPageSize}
	for {
		page, err := s.books.ListBooks(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		all = append(all, page...)
		if len(page) < q.Limit {
			return all, nil
		}
		q.Offset += q.Limit
	}
}

// GetByID returns the book with the given ID
func (s *BookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.books.FindBookByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: book %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return book, nil
}

// Update replaces all mutable fields of an existing book
func (s *BookService) Update(ctx context.Context, id int64, in BookInput) error {
	in, err := normalizeBook(in)
	if err != nil {
		return err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next := models.Book{
		ID:            current.ID,
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		PublishedDate: in.PublishedDate,
	}
	n, err := s.books.UpdateBook(ctx, next)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// the row vanished between read and write
	if n == 0 {
		return fmt.Errorf("%w: update of book %d affected no rows", ErrPersistence, id)
	}

	s.log.WithField("book_id", id).Info("Book updated")
	return nil
}

// Delete permanently removes a book
func (s *BookService) Delete(ctx context.Context, id int64) error {
	n, err := s.books.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: book %d", ErrNotFound, id)
	}

	s.log.WithField("book_id", id).Info("Book deleted")
	return nil
}

func (s *BookService) buildQuery(p ListParams) (models.BookQuery, error) {
	pageNumber := s.cfg.DefaultPageNumber
	if p.PageNumber != nil {
		pageNumber = *p.PageNumber
	}
	pageSize := s.cfg.DefaultPageSize
	if p.PageSize != nil {
		pageSize = *p.PageSize
	}

	if pageNumber < 1 {
		return models.BookQuery{}, fmt.Errorf("%w: pageNumber must be at least 1", ErrInvalidInput)
	}
	if pageSize < 1 || pageSize > s.cfg.MaxPageSize {
		return models.BookQuery{}, fmt.Errorf("%w: pageSize must be between 1 and %d", ErrInvalidInput, s.cfg.MaxPageSize)
	}

	if pageNumber > math.MaxInt32/pageSize {
		return models.BookQuery{}, fmt.Errorf("%w: pageNumber is too large", ErrInvalidInput)
	}

	search := strings.TrimSpace(p.Search)
	if utf8.RuneCountInString(search) > s.cfg.MaxSearchLength {
		return models.BookQuery{}, fmt.Errorf("%w: search must be at most %d characters", ErrInvalidInput, s.cfg.MaxSearchLength)
	}

	return models.BookQuery{
		Search: search,
		Limit:  pageSize,
		Offset: (pageNumber - 1) * pageSize,
	}, nil
}

func normalizeBook(in BookInput) (BookInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if in.Title == "" || in.Author == "" || in.ISBN == "" {
		return in, fmt.Errorf("%w: title, author and isbn are required", ErrInvalidInput)
	}
	return in, nil
}
