// Package collectionindex maintains the single aggregate file summarizing
// every band (spec.md §4.4). It contains no data that cannot be recomputed
// from band files; Rebuild is its only mutation path.
package collectionindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"bandvault/internal/atomicfile"
	"bandvault/internal/bandstore"
	"bandvault/internal/collectionmodel"
)

const indexFileName = ".collection_index.json"

// Index owns reading and atomically rewriting the collection index file.
// A single writer mutex protects Rebuild; readers reread on demand and take
// no lock.
type Index struct {
	root string
	mu   sync.Mutex
}

// New returns an Index rooted at musicRoot.
func New(musicRoot string) *Index {
	return &Index{root: musicRoot}
}

func (idx *Index) path() string {
	return filepath.Join(idx.root, indexFileName)
}

// Load reads the current collection index from disk.
func (idx *Index) Load() (collectionmodel.CollectionIndex, error) {
	var ci collectionmodel.CollectionIndex
	if err := atomicfile.ReadJSON(idx.path(), &ci); err != nil {
		return collectionmodel.CollectionIndex{}, err
	}
	return ci, nil
}

// RebuildResult reports bands skipped during a rebuild because their file
// failed to parse.
type RebuildResult struct {
	Index   collectionmodel.CollectionIndex
	Corrupt []string
}

// Rebuild loads every band file under the music root (streaming one at a
// time to bound memory), projects each to a summary entry, recomputes
// aggregate statistics, and writes the result atomically. A corrupt band
// file is logged by the caller, excluded from the index, and reported; the
// rebuild does not abort.
func (idx *Index) Rebuild(store *bandstore.Store, bandNames []string) (RebuildResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var summaries []collectionmodel.CollectionBandSummary
	var corrupt []string
	genreCounts := make(map[string]int)

	var totalAlbums, totalLocal, totalMissing, withMetadata int

	for _, name := range bandNames {
		band, err := store.Load(name)
		if err != nil {
			if err != bandstore.ErrNotFound {
				corrupt = append(corrupt, name)
			}
			continue
		}
		summaries = append(summaries, collectionmodel.CollectionBandSummary{
			Name:               band.BandName,
			FolderPath:         band.FolderPath,
			AlbumsCount:        band.AlbumsCount(),
			LocalAlbumsCount:   len(band.Albums),
			MissingAlbumsCount: len(band.AlbumsMissing),
			HasMetadata:        true,
			HasAnalysis:        band.HasAnalysis(),
			LastUpdated:        band.LastUpdated,
		})
		totalAlbums += band.AlbumsCount()
		totalLocal += len(band.Albums)
		totalMissing += len(band.AlbumsMissing)
		withMetadata++
		for _, g := range band.Genres {
			genreCounts[g]++
		}
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	completion := 0.0
	if totalAlbums > 0 {
		completion = 100 * float64(totalLocal) / float64(totalAlbums)
	}

	ci := collectionmodel.CollectionIndex{
		Bands: summaries,
		Stats: collectionmodel.CollectionStats{
			TotalBands:           len(summaries),
			TotalAlbums:          totalAlbums,
			TotalLocalAlbums:     totalLocal,
			TotalMissingAlbums:   totalMissing,
			BandsWithMetadata:    withMetadata,
			CompletionPercentage: completion,
			TopGenres:            genreCounts,
			LastScan:             time.Now().UTC(),
		},
		LastUpdated: time.Now().UTC(),
	}

	if _, err := atomicfile.WriteJSON(idx.path(), ci); err != nil {
		return RebuildResult{}, fmt.Errorf("collectionindex: rebuild: %w", err)
	}

	return RebuildResult{Index: ci, Corrupt: corrupt}, nil
}

// ListBandDirectories enumerates the band names currently known, by
// combining the directories under the music root with any names already
// present in the last index (so bands with only enrichment and no folder
// are not dropped).
func ListBandDirectories(musicRoot string, lastIndex collectionmodel.CollectionIndex) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := os.ReadDir(musicRoot)
	if err != nil {
		return nil, fmt.Errorf("collectionindex: read music root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) == 0 || e.Name()[0] == '.' {
			continue
		}
		if !seen[e.Name()] {
			seen[e.Name()] = true
			names = append(names, e.Name())
		}
	}
	for _, b := range lastIndex.Bands {
		if !seen[b.Name] {
			seen[b.Name] = true
			names = append(names, b.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
