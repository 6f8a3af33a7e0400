// Package textindex is the bleve-backed accelerator for Query Engine text
// search (spec.md §4.5 "C5 enrichment"), grounded on the teacher's search
// service (internal/search in the korus generation this module descends
// from) adapted from a song/artist/album document mapping to a band/album
// one. It is advisory: internal/collection keeps it rebuilt, but ListBands
// and SearchAlbums match through query's plain substring scan and do not
// consult Search, so a textindex failure never changes search results.
package textindex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"bandvault/internal/collectionmodel"
)

// bandDoc is the document shape indexed per band: its name plus every
// local and missing album title, concatenated for a single text field.
type bandDoc struct {
	Name        string `json:"name"`
	AlbumTitles string `json:"album_titles"`
}

func newMapping() *bleve.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "standard"
	textField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", textField)
	doc.AddFieldMappingsAt("album_titles", textField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = doc
	return mapping
}

// Index is an in-memory full-text index over band names and album titles,
// rebuilt wholesale from the current band set. It holds no state that
// cannot be recomputed from band files.
type Index struct {
	mu    sync.RWMutex
	bleve bleve.Index
}

// New builds an index from the given bands. An empty or nil bands map
// yields a valid, empty index rather than an error.
func New(bands map[string]collectionmodel.Band) (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("textindex: create: %w", err)
	}
	ti := &Index{bleve: idx}
	if err := ti.rebuildLocked(bands); err != nil {
		return nil, err
	}
	return ti, nil
}

// Rebuild replaces the index contents with the given band set. Callers
// invoke this after every scan or metadata write that changes band or
// album names.
func (ti *Index) Rebuild(bands map[string]collectionmodel.Band) error {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	fresh, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return fmt.Errorf("textindex: rebuild: %w", err)
	}
	old := ti.bleve
	ti.bleve = fresh
	if err := ti.rebuildLocked(bands); err != nil {
		ti.bleve = old
		return err
	}
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (ti *Index) rebuildLocked(bands map[string]collectionmodel.Band) error {
	batch := ti.bleve.NewBatch()
	for name, band := range bands {
		titles := make([]string, 0, len(band.Albums)+len(band.AlbumsMissing))
		for _, a := range band.Albums {
			titles = append(titles, a.AlbumName)
		}
		for _, a := range band.AlbumsMissing {
			titles = append(titles, a.AlbumName)
		}
		doc := bandDoc{Name: name, AlbumTitles: strings.Join(titles, " ")}
		if err := batch.Index(name, doc); err != nil {
			return fmt.Errorf("textindex: index %q: %w", name, err)
		}
	}
	return ti.bleve.Batch(batch)
}

// Search returns band names whose name or any album title matches query,
// tokenized and scored by bleve's standard analyzer rather than an exact
// substring test — it is a relevance accelerator, not the source of truth
// for matching semantics (that lives in query.ListBands' plain scan).
func (ti *Index) Search(q string) ([]string, error) {
	ti.mu.RLock()
	defer ti.mu.RUnlock()

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	nameQ := bleve.NewMatchQuery(q)
	nameQ.SetField("name")
	albumQ := bleve.NewMatchQuery(q)
	albumQ.SetField("album_titles")
	disjunction := bleve.NewDisjunctionQuery(nameQ, albumQ)

	req := bleve.NewSearchRequest(disjunction)
	req.Size = 10000
	res, err := ti.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("textindex: search: %w", err)
	}

	names := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		names = append(names, hit.ID)
	}
	return names, nil
}

// Close releases the underlying bleve index.
func (ti *Index) Close() error {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	if ti.bleve == nil {
		return nil
	}
	return ti.bleve.Close()
}
