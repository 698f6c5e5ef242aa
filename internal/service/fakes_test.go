package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"library_catalog/internal/model"
	"library_catalog/internal/repository"
)

// fakeBookRepo mirrors the transactional behaviour of the Postgres repository: every call
// holds the lock for its whole duration, like a serialized transaction.
type fakeBookRepo struct {
	mu        sync.Mutex
	books     map[int64]*model.Book
	users     map[int64]model.User
	nextID    int64
	writes    int
	createErr error
}

func newFakeBookRepo(users ...model.User) *fakeBookRepo {
	r := &fakeBookRepo{books: make(map[int64]*model.Book), users: make(map[int64]model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeBookRepo) addBook(title string, status model.BookStatus, holder *model.Holder) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.books[r.nextID] = &model.Book{ID: r.nextID, Title: title, Status: status, IssuedTo: holder, CreatedAt: time.Now()}
	return r.nextID
}

func (r *fakeBookRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *fakeBookRepo) Create(_ context.Context, b *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	b.ID = r.nextID
	b.Status = model.StatusAvailable
	b.IssuedTo = nil
	b.CreatedAt = time.Now()
	stored := *b
	r.books[b.ID] = &stored
	r.writes++
	return nil
}

func (r *fakeBookRepo) FindByID(_ context.Context, id int64) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindAll(_ context.Context) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id int64) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	delete(r.books, id)
	r.writes++
	return b, nil
}

func (r *fakeBookRepo) Checkout(_ context.Context, bookID, userID int64, maxActive int) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[bookID]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	if b.Status != model.StatusAvailable {
		return nil, repository.ErrBookNotAvailable
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	active := 0
	for _, other := range r.books {
		if other.IssuedTo != nil && other.IssuedTo.ID == userID {
			active++
		}
	}
	if active >= maxActive {
		return nil, repository.ErrNoEligibleUser
	}
	now := time.Now()
	b.Status = model.StatusCheckedOut
	b.IssuedTo = &model.Holder{ID: u.ID, Name: u.Name, Phone: u.Phone, Flat: u.Flat}
	b.IssuedAt = &now
	r.writes++
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) Checkin(_ context.Context, bookID int64) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[bookID]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	if b.Status == model.StatusCheckedOut {
		b.Status = model.StatusAvailable
		b.IssuedTo = nil
		b.IssuedAt = nil
		r.writes++
	}
	cp := *b
	return &cp, nil
}

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string]string
	uploadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]string)}
}

func (s *fakeBlobStore) Upload(_ context.Context, objectPath string, r io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = string(data)
	return "http://blobs/" + objectPath, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectPath)
	return nil
}

func (s *fakeBlobStore) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "http://blobs/") {
		return "", false
	}
	return strings.TrimPrefix(url, "http://blobs/"), true
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[int64]model.User
	nextID    int64
	deleteErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.users, id)
	return nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]model.Admin
	nextID int64
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]model.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, a *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[a.Email]; ok {
		return repository.ErrDuplicate
	}
	r.nextID++
	a.ID = r.nextID
	r.admins[a.Email] = *a
	return nil
}

func (r *fakeAdminRepo) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAdminRepo) FindByID(_ context.Context, id int64) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func imageFrom(name, body string) *ImageUpload {
	return &ImageUpload{
		FileName: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

var errStoreDown = errors.New("store unavailable")
