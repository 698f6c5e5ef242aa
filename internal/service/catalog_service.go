package service

import (
	"library_catalog/internal/catalog"
	"library_catalog/internal/model"
)

// CatalogService answers every read from the in-memory mirror
type CatalogService interface {
	Stats() model.CatalogStats
	SearchBooks(term string) []model.Book
	SearchCheckedOut(term string) []model.Book
	GetBook(id int64) (model.Book, error)
	Users() []model.UserEntry
	EligibleUsers() []model.UserEntry
	View(q catalog.ViewQuery) catalog.View
	Subscribe() (<-chan *catalog.Snapshot, func())
	Version() uint64
}

type catalogService struct {
	mirror    *catalog.Mirror
	hub       *catalog.Hub
	maxActive int
}

// NewCatalogService creates a new CatalogService over a mirror kept fresh by a catalog.Watcher
func NewCatalogService(mirror *catalog.Mirror, hub *catalog.Hub, maxActive int) CatalogService {
	return &catalogService{mirror: mirror, hub: hub, maxActive: maxActive}
}

func (s *catalogService) Stats() model.CatalogStats {
	return s.mirror.Snapshot().Stats
}

func (s *catalogService) SearchBooks(term string) []model.Book {
	return catalog.SearchBooks(s.mirror.Snapshot().Books, term)
}

func (s *catalogService) SearchCheckedOut(term string) []model.Book {
	return catalog.SearchCheckedOut(s.mirror.Snapshot().Books, term)
}

func (s *catalogService) GetBook(id int64) (model.Book, error) {
	b, ok := s.mirror.Snapshot().Book(id)
	if !ok {
		return model.Book{}, ErrBookNotFound
	}
	return b, nil
}

func (s *catalogService) Users() []model.UserEntry {
	return s.mirror.Snapshot().Users
}

func (s *catalogService) EligibleUsers() []model.UserEntry {
	return s.mirror.Snapshot().EligibleUsers(s.maxActive)
}

func (s *catalogService) View(q catalog.ViewQuery) catalog.View {
	return catalog.BuildView(s.mirror.Snapshot(), q)
}

func (s *catalogService) Subscribe() (<-chan *catalog.Snapshot, func()) {
	return s.hub.Subscribe()
}

func (s *catalogService) Version() uint64 {
	return s.mirror.Snapshot().Version
}
