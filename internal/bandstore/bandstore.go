// Package bandstore is the Band Metadata Store (spec.md §4.3): the single
// source of truth for one band's sidecar JSON file. It loads, saves,
// validates, and merges scanner deltas while preserving any durable
// enrichment a human has already recorded.
package bandstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bandvault/internal/atomicfile"
	"bandvault/internal/bandlock"
	"bandvault/internal/collectionmodel"
	"bandvault/internal/scanner"
)

// ErrNotFound is returned by Load when no band file exists for the given
// name.
var ErrNotFound = errors.New("bandstore: band not found")

const metadataFileName = ".band_metadata.json"

// Store reads and writes band files under a music root.
type Store struct {
	root  string
	locks *bandlock.Registry
}

// New returns a Store rooted at musicRoot.
func New(musicRoot string) *Store {
	return &Store{root: musicRoot, locks: bandlock.NewRegistry()}
}

func (s *Store) path(bandName string) string {
	return filepath.Join(s.root, bandName, metadataFileName)
}

// Load reads the band file for bandName. It does not take a lock: readers
// tolerate observing either the pre- or post-state of a concurrent atomic
// write, never a torn file.
func (s *Store) Load(bandName string) (collectionmodel.Band, error) {
	var band collectionmodel.Band
	err := atomicfile.ReadJSON(s.path(bandName), &band)
	if errors.Is(err, os.ErrNotExist) {
		return collectionmodel.Band{}, ErrNotFound
	}
	if err != nil {
		return collectionmodel.Band{}, fmt.Errorf("bandstore: load %s: %w", bandName, err)
	}
	return band, nil
}

// Exists reports whether a band file is present for bandName.
func (s *Store) Exists(bandName string) bool {
	_, err := os.Stat(s.path(bandName))
	return err == nil
}

// Save validates and writes the full band record, stamping LastUpdated.
func (s *Store) Save(bandName string, band collectionmodel.Band) (time.Time, error) {
	if issues := Validate(band); len(issues) > 0 {
		return time.Time{}, &ValidationError{Issues: issues}
	}

	unlock := s.locks.Lock(bandName)
	defer unlock()

	band.BandName = bandName
	band.LastUpdated = time.Now().UTC()
	band.AlbumsCountRaw = band.AlbumsCount()

	if _, err := atomicfile.WriteJSON(s.path(bandName), band); err != nil {
		return time.Time{}, fmt.Errorf("bandstore: save %s: %w", bandName, err)
	}
	return band.LastUpdated, nil
}

// SaveAnalysis attaches an overall analysis block to an existing band. The
// band must already have a file (there is nothing else to analyze).
func (s *Store) SaveAnalysis(bandName string, analysis collectionmodel.BandAnalysis) (time.Time, error) {
	unlock := s.locks.Lock(bandName)
	defer unlock()

	band, err := s.loadUnlocked(bandName)
	if err != nil {
		return time.Time{}, err
	}

	applyAlbumAnalyses(&band, analysis.Albums)
	band.Analysis = &collectionmodel.BandAnalysis{
		Review:       analysis.Review,
		Rate:         analysis.Rate,
		SimilarBands: analysis.SimilarBands,
		Albums:       analysis.Albums,
	}
	band.LastUpdated = time.Now().UTC()
	band.AlbumsCountRaw = band.AlbumsCount()

	if issues := Validate(band); len(issues) > 0 {
		return time.Time{}, &ValidationError{Issues: issues}
	}
	if _, err := atomicfile.WriteJSON(s.path(bandName), band); err != nil {
		return time.Time{}, fmt.Errorf("bandstore: save analysis %s: %w", bandName, err)
	}
	return band.LastUpdated, nil
}

// applyAlbumAnalyses copies each per-album review/rate onto the matching
// local or missing album by album name, the key the analysis block uses.
func applyAlbumAnalyses(band *collectionmodel.Band, analyses []collectionmodel.AlbumAnalysis) {
	byName := make(map[string]collectionmodel.AlbumAnalysis, len(analyses))
	for _, a := range analyses {
		byName[a.AlbumName] = a
	}
	apply := func(albums []collectionmodel.Album) {
		for i := range albums {
			if a, ok := byName[albums[i].AlbumName]; ok {
				albums[i].Review = a.Review
				albums[i].Rate = a.Rate
			}
		}
	}
	apply(band.Albums)
	apply(band.AlbumsMissing)
}

func (s *Store) loadUnlocked(bandName string) (collectionmodel.Band, error) {
	var band collectionmodel.Band
	err := atomicfile.ReadJSON(s.path(bandName), &band)
	if errors.Is(err, os.ErrNotExist) {
		return collectionmodel.Band{}, ErrNotFound
	}
	if err != nil {
		return collectionmodel.Band{}, fmt.Errorf("bandstore: load %s: %w", bandName, err)
	}
	return band, nil
}

// MergeResult reports whether ApplyScan actually changed anything, for
// ScanReport aggregation.
type MergeResult struct {
	Created       bool
	Changed       bool
	AlbumsChanged int
	Warnings      []string
}

// ApplyScan merges a scanner delta for one band into its band file,
// following the merge contract of spec.md §4.3: local-on-disk albums
// overwrite scan-derived attributes but keep their prior enrichment by
// (title, year, edition); albums no longer found move to the missing list
// without losing their enrichment; band-level fields are untouched.
func (s *Store) ApplyScan(bandName string, delta scanner.BandDelta) (collectionmodel.Band, MergeResult, error) {
	unlock := s.locks.Lock(bandName)
	defer unlock()

	existing, err := s.loadUnlocked(bandName)
	result := MergeResult{}
	if errors.Is(err, ErrNotFound) {
		result.Created = true
		existing = collectionmodel.Band{BandName: bandName}
	} else if err != nil {
		return collectionmodel.Band{}, result, err
	}

	merged, changed, albumsChanged := mergeDelta(existing, bandName, delta)
	result.Changed = changed || result.Created
	result.AlbumsChanged = albumsChanged

	merged.LastUpdated = time.Now().UTC()
	merged.AlbumsCountRaw = merged.AlbumsCount()

	if issues := Validate(merged); len(issues) > 0 {
		return collectionmodel.Band{}, result, &ValidationError{Issues: issues}
	}
	if _, err := atomicfile.WriteJSON(s.path(bandName), merged); err != nil {
		return collectionmodel.Band{}, result, fmt.Errorf("bandstore: apply scan %s: %w", bandName, err)
	}
	return merged, result, nil
}

// ApplyOrphan converts every local album of an existing band into a missing
// album because its folder is gone, without discarding any enrichment. If
// the band has no file at all it writes nothing and returns ErrNotFound.
func (s *Store) ApplyOrphan(bandName string) (collectionmodel.Band, MergeResult, error) {
	unlock := s.locks.Lock(bandName)
	defer unlock()

	existing, err := s.loadUnlocked(bandName)
	result := MergeResult{}
	if errors.Is(err, ErrNotFound) {
		return collectionmodel.Band{}, result, ErrNotFound
	}
	if err != nil {
		return collectionmodel.Band{}, result, err
	}
	if len(existing.Albums) == 0 {
		return existing, result, nil
	}

	result.Changed = true
	result.AlbumsChanged = len(existing.Albums)
	for _, a := range existing.Albums {
		a.FolderPath = ""
		existing.AlbumsMissing = append(existing.AlbumsMissing, a)
	}
	existing.Albums = nil
	existing.LastUpdated = time.Now().UTC()
	existing.AlbumsCountRaw = existing.AlbumsCount()

	if _, err := atomicfile.WriteJSON(s.path(bandName), existing); err != nil {
		return collectionmodel.Band{}, result, fmt.Errorf("bandstore: orphan %s: %w", bandName, err)
	}
	return existing, result, nil
}
