package catalog

import (
	"time"

	"library_catalog/internal/model"
)

// ViewQuery holds the active search terms of one viewer
type ViewQuery struct {
	Books      string
	CheckedOut string
}

// View is the structured state a front end renders
type View struct {
	Version     uint64             `json:"version"`
	RefreshedAt time.Time          `json:"refreshed_at"`
	Stats       model.CatalogStats `json:"stats"`
	Books       []model.Book       `json:"books"`
	CheckedOut  []model.Book       `json:"checked_out"`
}

// BuildView applies the query to a snapshot
func BuildView(s *Snapshot, q ViewQuery) View {
	return View{
		Version:     s.Version,
		RefreshedAt: s.RefreshedAt,
		Stats:       s.Stats,
		Books:       SearchBooks(s.Books, q.Books),
		CheckedOut:  SearchCheckedOut(s.Books, q.CheckedOut),
	}
}
