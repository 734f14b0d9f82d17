package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"go-club-app/internal/data"
	"go-club-app/internal/entitlement"
	"go-club-app/internal/logger"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var pdfMagic = []byte("%PDF-")

// BookRepository defines the interface for database operations on the library.
type BookRepository interface {
	CreateBook(ctx context.Context, b *data.Book) error
	GetBookBySlug(ctx context.Context, slug string) (*data.Book, error)
	ListBooks(ctx context.Context) ([]*data.Book, error)
	GetProgress(ctx context.Context, userID, bookID int64) (*data.ReadingProgress, error)
	SaveProgress(ctx context.Context, p *data.ReadingProgress) error
}

// BookServicer defines the interface for the club library.
type BookServicer interface {
	ListBooks(ctx context.Context) ([]*data.Book, error)
	ViewBook(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession) (*BookView, error)
	OpenBook(ctx context.Context, slug string, viewer *entitlement.ViewerSession) (*data.Book, *os.File, error)
	Progress(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession) (int, error)
	SaveProgress(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession, page int) error
	AddBook(ctx context.Context, in BookInput, file io.Reader) (*data.Book, error)
}

// BookView is a library entry prepared for one viewer.
type BookView struct {
	Book       *data.Book
	Decision   entitlement.Decision
	LockReason entitlement.LockReason
	ResumePage int
}

// Locked reports whether the reader is withheld.
func (v *BookView) Locked() bool {
	return v.Decision != entitlement.Full
}

// BookInput describes an uploaded book.
type BookInput struct {
	Title       string
	Slug        string
	Author      string
	Description string
	PageCount   int
}

// BookService provides the club library and reading progress.
type BookService struct {
	books BookRepository
	users UserRepository
	dir   string
	log   logger.Logger
	now   func() time.Time
}

// NewBookService creates a BookService storing PDFs under dir.
func NewBookService(books BookRepository, users UserRepository, dir string, log logger.Logger) *BookService {
	return &BookService{books: books, users: users, dir: dir, log: log, now: time.Now}
}

// ListBooks returns the whole library. Listing is never gated.
func (s *BookService) ListBooks(ctx context.Context) ([]*data.Book, error) {
	return s.books.ListBooks(ctx)
}

// ViewBook decides whether the reader is shown and where it resumes.
func (s *BookService) ViewBook(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession) (*BookView, error) {
	b, err := s.books.GetBookBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := &BookView{Book: b, Decision: entitlement.DecideBook(viewer), ResumePage: 1}
	if view.Locked() {
		view.LockReason = entitlement.LockReasonFor(viewer)
		return view, nil
	}
	view.ResumePage = s.resumePage(ctx, b, subject)
	return view, nil
}

// OpenBook opens the PDF of an unlocked book. The caller closes the file.
func (s *BookService) OpenBook(ctx context.Context, slug string, viewer *entitlement.ViewerSession) (*data.Book, *os.File, error) {
	b, err := s.books.GetBookBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if entitlement.DecideBook(viewer) != entitlement.Full {
		return nil, nil, ErrLocked
	}
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(b.FileName)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open book file: %w", err)
	}
	return b, f, nil
}

// Progress returns the page to resume from, 1 when nothing is saved.
func (s *BookService) Progress(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession) (int, error) {
	if entitlement.DecideBook(viewer) != entitlement.Full {
		return 0, ErrLocked
	}
	b, err := s.books.GetBookBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	return s.resumePage(ctx, b, subject), nil
}

func (s *BookService) resumePage(ctx context.Context, b *data.Book, subject string) int {
	u, err := s.users.GetUserBySubject(ctx, subject)
	if err != nil {
		return 1
	}
	p, err := s.books.GetProgress(ctx, u.ID, b.ID)
	if err != nil {
		if !errors.Is(err, data.ErrNotFound) {
			s.log.Error(err, "Failed to load reading progress")
		}
		return 1
	}
	return p.Page
}

// SaveProgress records the page a member reached.
func (s *BookService) SaveProgress(ctx context.Context, slug, subject string, viewer *entitlement.ViewerSession, page int) error {
	if entitlement.DecideBook(viewer) != entitlement.Full {
		return ErrLocked
	}
	b, err := s.books.GetBookBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if page < 1 || (b.PageCount > 0 && page > b.PageCount) {
		return fmt.Errorf("%w: page %d is out of range", ErrInvalidInput, page)
	}
	u, err := s.users.GetUserBySubject(ctx, subject)
	if err != nil {
		return err
	}
	return s.books.SaveProgress(ctx, &data.ReadingProgress{
		UserID:    u.ID,
		BookID:    b.ID,
		Page:      page,
		UpdatedAt: s.now().UTC(),
	})
}

// AddBook stores an uploaded PDF under a random file name and records it.
func (s *BookService) AddBook(ctx context.Context, in BookInput, file io.Reader) (*data.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: title does not produce a usable slug", ErrInvalidInput)
	}
	if in.PageCount < 0 {
		return nil, fmt.Errorf("%w: page count cannot be negative", ErrInvalidInput)
	}

	br := bufio.NewReader(file)
	head, err := br.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, fmt.Errorf("%w: file is not a PDF", ErrInvalidInput)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library dir: %w", err)
	}
	name := uuid.NewString() + ".pdf"
	path := filepath.Join(s.dir, name)
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create book file: %w", err)
	}
	if _, err := io.Copy(out, br); err != nil {
		out.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write book file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write book file: %w", err)
	}

	b := &data.Book{
		Slug:        slug,
		Title:       title,
		Author:      strings.TrimSpace(in.Author),
		Description: strings.TrimSpace(in.Description),
		FileName:    name,
		PageCount:   in.PageCount,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.books.CreateBook(ctx, b); err != nil {
		os.Remove(path)
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Added book '%s' as %s", b.Slug, name))
	return b, nil
}
