//go:build unit

package service

import (
	"bytes"
	"context"
	"errors"
	"go-club-app/internal/data"
	"go-club-app/internal/entitlement"
	"go-club-app/internal/logger"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type mockBookRepository struct {
	books    map[string]*data.Book
	progress map[[2]int64]int
}

var _ BookRepository = (*mockBookRepository)(nil)

func newMockBookRepository(books ...*data.Book) *mockBookRepository {
	m := &mockBookRepository{books: map[string]*data.Book{}, progress: map[[2]int64]int{}}
	for _, b := range books {
		m.books[b.Slug] = b
	}
	return m
}

func (m *mockBookRepository) CreateBook(ctx context.Context, b *data.Book) error {
	b.ID = int64(len(m.books) + 1)
	m.books[b.Slug] = b
	return nil
}

func (m *mockBookRepository) GetBookBySlug(ctx context.Context, slug string) (*data.Book, error) {
	if b, ok := m.books[slug]; ok {
		return b, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockBookRepository) ListBooks(ctx context.Context) ([]*data.Book, error) {
	var out []*data.Book
	for _, b := range m.books {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookRepository) GetProgress(ctx context.Context, userID, bookID int64) (*data.ReadingProgress, error) {
	if p, ok := m.progress[[2]int64{userID, bookID}]; ok {
		return &data.ReadingProgress{UserID: userID, BookID: bookID, Page: p}, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockBookRepository) SaveProgress(ctx context.Context, p *data.ReadingProgress) error {
	m.progress[[2]int64{p.UserID, p.BookID}] = p.Page
	return nil
}

type mockUserRepository struct {
	users map[string]*data.User
	subs  map[string]*time.Time
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository(users ...*data.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*data.User{}, subs: map[string]*time.Time{}}
	for _, u := range users {
		m.users[u.Subject] = u
	}
	return m
}

func (m *mockUserRepository) GetUserBySubject(ctx context.Context, subject string) (*data.User, error) {
	if u, ok := m.users[subject]; ok {
		return u, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockUserRepository) UpsertUser(ctx context.Context, u *data.User) error {
	if existing, ok := m.users[u.Subject]; ok {
		u.ID = existing.ID
	} else {
		u.ID = int64(len(m.users) + 1)
	}
	m.users[u.Subject] = u
	return nil
}

func (m *mockUserRepository) SetSubscription(ctx context.Context, subject string, until *time.Time) error {
	if _, ok := m.users[subject]; !ok {
		return data.ErrNotFound
	}
	m.subs[subject] = until
	return nil
}

func newBookService(t *testing.T) (*BookService, *mockBookRepository, string) {
	t.Helper()
	dir := t.TempDir()
	books := newMockBookRepository(&data.Book{ID: 1, Slug: "go-book", Title: "Go", FileName: "go.pdf", PageCount: 100})
	users := newMockUserRepository(&data.User{ID: 5, Subject: "reader"})
	if err := os.WriteFile(filepath.Join(dir, "go.pdf"), []byte("%PDF-1.7 test"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewBookService(books, users, dir, logger.Nop()), books, dir
}

func TestViewBook(t *testing.T) {
	s, books, _ := newBookService(t)
	ctx := context.Background()
	books.progress[[2]int64{5, 1}] = 42

	locked, err := s.ViewBook(ctx, "go-book", "anonymous", nil)
	if err != nil {
		t.Fatalf("ViewBook failed: %v", err)
	}
	if locked.Decision != entitlement.FullyLocked || locked.LockReason != entitlement.NeedsLogin {
		t.Errorf("anonymous: got %s/%s", locked.Decision, locked.LockReason)
	}

	unpaid, _ := s.ViewBook(ctx, "go-book", "reader", freeMember)
	if unpaid.Decision != entitlement.FullyLocked || unpaid.LockReason != entitlement.NeedsSubscription {
		t.Errorf("free member: got %s/%s", unpaid.Decision, unpaid.LockReason)
	}

	open, _ := s.ViewBook(ctx, "go-book", "reader", subscriber)
	if open.Decision != entitlement.Full || open.ResumePage != 42 {
		t.Errorf("subscriber: got %s resume %d", open.Decision, open.ResumePage)
	}
}

func TestOpenBook(t *testing.T) {
	s, _, _ := newBookService(t)
	ctx := context.Background()

	if _, _, err := s.OpenBook(ctx, "go-book", freeMember); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}

	_, f, err := s.OpenBook(ctx, "go-book", subscriber)
	if err != nil {
		t.Fatalf("OpenBook failed: %v", err)
	}
	defer f.Close()
	b, _ := io.ReadAll(f)
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Errorf("unexpected file content %q", b)
	}
}

func TestSaveProgress(t *testing.T) {
	s, books, _ := newBookService(t)
	ctx := context.Background()

	if err := s.SaveProgress(ctx, "go-book", "reader", subscriber, 17); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if books.progress[[2]int64{5, 1}] != 17 {
		t.Error("progress not stored")
	}
	page, err := s.Progress(ctx, "go-book", "reader", subscriber)
	if err != nil || page != 17 {
		t.Errorf("want page 17; got %d (%v)", page, err)
	}

	for _, p := range []int{0, 101} {
		if err := s.SaveProgress(ctx, "go-book", "reader", subscriber, p); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("page %d: expected ErrInvalidInput, got %v", p, err)
		}
	}
	if err := s.SaveProgress(ctx, "go-book", "reader", freeMember, 3); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	if _, err := s.Progress(ctx, "go-book", "reader", nil); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestAddBook(t *testing.T) {
	s, books, dir := newBookService(t)
	ctx := context.Background()

	b, err := s.AddBook(ctx, BookInput{Title: "Concurrency in Practice", PageCount: 320}, strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("AddBook failed: %v", err)
	}
	if b.Slug != "concurrency-in-practice" || !strings.HasSuffix(b.FileName, ".pdf") {
		t.Errorf("unexpected book %+v", b)
	}
	stored, err := os.ReadFile(filepath.Join(dir, b.FileName))
	if err != nil || string(stored) != "%PDF-1.4 body" {
		t.Errorf("stored file mismatch: %q (%v)", stored, err)
	}
	if _, ok := books.books["concurrency-in-practice"]; !ok {
		t.Error("book not recorded")
	}

	if _, err := s.AddBook(ctx, BookInput{Title: "Not a pdf"}, strings.NewReader("<html>")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.AddBook(ctx, BookInput{}, strings.NewReader("%PDF-")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a missing title, got %v", err)
	}
}
