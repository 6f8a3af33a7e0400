// Package collection is the Core API Surface (spec.md §4.8, "C8"): the one
// entry point an RPC transport wraps. It orchestrates the scanner, band
// store, collection index, query engine, and analytics engine behind a
// typed, discriminated result so callers never see a panic or a bare error
// string cross the boundary.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"bandvault/internal/analytics"
	"bandvault/internal/atomicfile"
	"bandvault/internal/bandstore"
	"bandvault/internal/cache"
	"bandvault/internal/collectionindex"
	"bandvault/internal/collectionmodel"
	"bandvault/internal/query"
	"bandvault/internal/query/textindex"
	"bandvault/internal/scanner"
)

// insightsFileName is the optional collection-wide insights snapshot
// (spec.md §6.1), written only by SaveCollectionInsights.
const insightsFileName = ".collection_insight.json"

// ErrorKind discriminates the Error envelope so a transport layer can map
// it to the right status code without string matching (spec.md §7).
type ErrorKind string

const (
	ErrNotFound   ErrorKind = "not_found"
	ErrValidation ErrorKind = "validation"
	ErrConflict   ErrorKind = "conflict"
	ErrIO         ErrorKind = "io"
	ErrCorrupt    ErrorKind = "corrupt"
	ErrCancelled  ErrorKind = "cancelled"
	ErrInternal   ErrorKind = "internal"
)

// Error is the typed error every Collection operation returns in place of a
// bare error, carrying a remediation hint where one applies.
type Error struct {
	Kind        ErrorKind
	Message     string
	Remediation string
	Issues      []bandstore.Issue
}

func (e *Error) Error() string { return fmt.Sprintf("collection: %s: %s", e.Kind, e.Message) }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Collection is the Core API Surface. It owns no state beyond the music
// root path; every operation reads current disk state (through the cache)
// and writes atomically through its sub-stores.
type Collection struct {
	root      string
	store     *bandstore.Store
	index     *collectionindex.Index
	cache     *cache.Store
	analytics *analytics.Engine
	text      *textindex.Index
	log       *logrus.Logger
}

// Options configures a new Collection.
type Options struct {
	MusicRoot string
	CacheTTL  time.Duration
	Logger    *logrus.Logger
}

// New constructs a Collection rooted at opts.MusicRoot. It does not scan;
// callers invoke Scan explicitly or on a schedule.
func New(opts Options) *Collection {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	idx, err := textindex.New(nil)
	if err != nil {
		log.WithError(err).Warn("collection: text index unavailable, falling back to plain scan")
		idx = nil
	}
	return &Collection{
		root:      opts.MusicRoot,
		store:     bandstore.New(opts.MusicRoot),
		index:     collectionindex.New(opts.MusicRoot),
		cache:     cache.New(ttl),
		analytics: analytics.NewEngine(),
		text:      idx,
		log:       log,
	}
}

// Close releases background resources (cache eviction goroutines, the text
// index). Safe to call once during shutdown.
func (c *Collection) Close() {
	c.cache.Close()
	if c.text != nil {
		_ = c.text.Close()
	}
}

// Scan walks the music root, merges the delta into per-band files, rebuilds
// the collection index, and returns a report. It never returns a partial
// report: a cancelled or aborted walk returns only an error.
func (c *Collection) Scan(ctx context.Context) (collectionmodel.ScanReport, *Error) {
	started := time.Now().UTC()
	scanID := uuid.New()

	lastIndex, _ := c.index.Load() // absent or corrupt index just means no orphan baseline

	delta, err := scanner.Scan(ctx, c.root)
	if err != nil {
		if ctx.Err() != nil {
			return collectionmodel.ScanReport{}, newError(ErrCancelled, "scan cancelled")
		}
		return collectionmodel.ScanReport{}, newError(ErrIO, err.Error())
	}

	var merr *multierror.Error
	report := collectionmodel.ScanReport{ScanID: scanID, StartedAt: started}
	report.Warnings = append(report.Warnings, delta.Warnings...)
	report.Errors = append(report.Errors, delta.Errors...)

	seen := make(map[string]bool, len(delta.Bands))
	bandNames := make([]string, 0, len(delta.Bands))
	for name := range delta.Bands {
		bandNames = append(bandNames, name)
	}
	sort.Strings(bandNames)

	for _, name := range bandNames {
		bd := delta.Bands[name]
		seen[name] = true
		merged, mergeResult, err := c.store.ApplyScan(name, bd)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("band %s: %w", name, err))
			report.Errors = append(report.Errors, collectionmodel.BandScanError{Band: name, Message: err.Error()})
			continue
		}
		report.Warnings = append(report.Warnings, mergeResult.Warnings...)
		report.AlbumsChanged += mergeResult.AlbumsChanged
		if mergeResult.Created {
			report.BandsAdded++
		} else if mergeResult.Changed {
			report.BandsChanged++
		}
		c.cache.PutBand(name, merged)
	}

	// Bands present in the last index but absent from this scan have lost
	// their folder; every local album becomes missing and the band is
	// reported as orphaned via a warning, not a persisted field.
	for _, summary := range lastIndex.Bands {
		if seen[summary.Name] {
			continue
		}
		orphaned, _, err := c.store.ApplyOrphan(summary.Name)
		if err == bandstore.ErrNotFound {
			continue
		}
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("orphan %s: %w", summary.Name, err))
			continue
		}
		report.BandsRemoved++
		report.Warnings = append(report.Warnings, fmt.Sprintf("band %q folder is missing; its local albums were moved to missing", summary.Name))
		c.cache.PutBand(summary.Name, orphaned)
	}

	rebuild, rebuildErr := c.rebuildIndex()
	if rebuildErr != nil {
		return collectionmodel.ScanReport{}, rebuildErr
	}
	for _, name := range rebuild.Corrupt {
		report.Warnings = append(report.Warnings, fmt.Sprintf("band %q metadata file is corrupt and was excluded from the index", name))
	}

	report.FinishedAt = time.Now().UTC()
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	if merr.ErrorOrNil() != nil {
		c.log.WithError(merr).Warn("scan completed with per-band errors")
	}
	c.log.WithFields(logrus.Fields{
		"scan_id": scanID, "added": report.BandsAdded, "changed": report.BandsChanged,
		"removed": report.BandsRemoved, "duration": report.Duration,
	}).Info("scan complete")

	return report, nil
}

// rebuildIndex recomputes the collection index from every band file on
// disk, swaps it into the cache, and refreshes the text accelerator. Every
// successful write path (Scan, SaveBandMetadata, SaveBandAnalysis) calls
// this so the index never lags a completed write (spec.md §4.4 rebuild
// triggers, §3 invariants #1 and #4).
func (c *Collection) rebuildIndex() (collectionindex.RebuildResult, *Error) {
	lastIndex, _ := c.index.Load() // absent or corrupt index just means a full rebuild from directories

	names, err := collectionindex.ListBandDirectories(c.root, lastIndex)
	if err != nil {
		return collectionindex.RebuildResult{}, newError(ErrIO, err.Error())
	}
	rebuild, err := c.index.Rebuild(c.store, names)
	if err != nil {
		return collectionindex.RebuildResult{}, newError(ErrInternal, err.Error())
	}

	c.cache.InvalidateIndex()
	c.cache.PutIndex(rebuild.Index)
	c.refreshTextIndex()
	return rebuild, nil
}

// refreshTextIndex rebuilds the text search accelerator from every band
// currently on record. Failure is logged and swallowed: ListBands and
// SearchAlbums match through the plain substring scan in internal/query and
// do not read the text index.
func (c *Collection) refreshTextIndex() {
	if c.text == nil {
		return
	}
	bands, err := c.loadAllBands()
	if err != nil {
		c.log.WithError(err).Warn("collection: could not load bands to refresh text index")
		return
	}
	if err := c.text.Rebuild(bands); err != nil {
		c.log.WithError(err).Warn("collection: text index rebuild failed")
	}
}

func (c *Collection) loadAllBands() (map[string]collectionmodel.Band, error) {
	idx, ok := c.cache.GetIndex()
	if !ok {
		var err error
		idx, err = c.index.Load()
		if err != nil {
			return nil, err
		}
		c.cache.PutIndex(idx)
	}
	out := make(map[string]collectionmodel.Band, len(idx.Bands))
	for _, s := range idx.Bands {
		band, err := c.getBand(s.Name)
		if err != nil {
			continue
		}
		out[s.Name] = band
	}
	return out, nil
}

func (c *Collection) getBand(name string) (collectionmodel.Band, error) {
	if band, ok := c.cache.GetBand(name); ok {
		return band, nil
	}
	band, err := c.store.Load(name)
	if err != nil {
		return collectionmodel.Band{}, err
	}
	c.cache.PutBand(name, band)
	return band, nil
}

// GetBand returns one band's full record.
func (c *Collection) GetBand(name string) (collectionmodel.Band, *Error) {
	band, err := c.getBand(name)
	if err == bandstore.ErrNotFound {
		return collectionmodel.Band{}, newError(ErrNotFound, fmt.Sprintf("no band named %q", name))
	}
	if err != nil {
		return collectionmodel.Band{}, newError(ErrIO, err.Error())
	}
	return band, nil
}

// ListBands filters, sorts, and paginates the collection index.
func (c *Collection) ListBands(filter query.ListFilter, sort_ query.ListSort, page query.Page, detail query.AlbumDetailScope) (query.PagedBandList, *Error) {
	idx, err := c.currentIndex()
	if err != nil {
		return query.PagedBandList{}, err
	}
	records, loadErr := c.loadAllBands()
	if loadErr != nil {
		return query.PagedBandList{}, newError(ErrIO, loadErr.Error())
	}
	return query.ListBands(idx, records, filter, sort_, page, detail), nil
}

// SearchAlbums evaluates the structured album predicate across every band.
func (c *Collection) SearchAlbums(filter query.AlbumSearchFilter) (query.AlbumSearchResult, *Error) {
	records, err := c.loadAllBands()
	if err != nil {
		return query.AlbumSearchResult{}, newError(ErrIO, err.Error())
	}
	return query.SearchAlbums(records, filter), nil
}

// Analytics computes collection-wide insights from every known band.
func (c *Collection) Analytics() (collectionmodel.CollectionInsights, *Error) {
	records, err := c.loadAllBands()
	if err != nil {
		return collectionmodel.CollectionInsights{}, newError(ErrIO, err.Error())
	}
	return c.analytics.Compute(records), nil
}

// SaveBandMetadata replaces a band's full record after validation, then
// rebuilds the collection index so ListBands and Analytics immediately
// reflect the write, as spec.md §4.8 requires of this operation.
func (c *Collection) SaveBandMetadata(name string, band collectionmodel.Band) (collectionmodel.SaveReport, *Error) {
	ts, err := c.store.Save(name, band)
	if err != nil {
		return collectionmodel.SaveReport{}, c.wrapWriteError(err)
	}
	c.invalidateAfterWrite(name)
	if _, rebuildErr := c.rebuildIndex(); rebuildErr != nil {
		return collectionmodel.SaveReport{}, rebuildErr
	}
	return collectionmodel.SaveReport{Status: "success", Band: name, Timestamp: ts}, nil
}

// SaveBandAnalysis attaches an overall review/rating block to an existing
// band, then rebuilds the collection index for the same reason
// SaveBandMetadata does.
func (c *Collection) SaveBandAnalysis(name string, analysis collectionmodel.BandAnalysis) (collectionmodel.SaveReport, *Error) {
	ts, err := c.store.SaveAnalysis(name, analysis)
	if err != nil {
		if err == bandstore.ErrNotFound {
			return collectionmodel.SaveReport{}, newError(ErrNotFound, fmt.Sprintf("no band named %q", name))
		}
		return collectionmodel.SaveReport{}, c.wrapWriteError(err)
	}
	c.invalidateAfterWrite(name)
	if _, rebuildErr := c.rebuildIndex(); rebuildErr != nil {
		return collectionmodel.SaveReport{}, rebuildErr
	}
	return collectionmodel.SaveReport{Status: "success", Band: name, Timestamp: ts}, nil
}

// SaveCollectionInsights writes a computed insights snapshot to
// <root>/.collection_insight.json through the atomic writer, the same
// write protocol band and index files use (spec.md §6.1, §4.7).
func (c *Collection) SaveCollectionInsights(insights collectionmodel.CollectionInsights) (collectionmodel.SaveReport, *Error) {
	if insights.GeneratedAt.IsZero() {
		insights.GeneratedAt = time.Now().UTC()
	}
	path := filepath.Join(c.root, insightsFileName)
	if _, err := atomicfile.WriteJSON(path, insights); err != nil {
		return collectionmodel.SaveReport{}, newError(ErrIO, err.Error())
	}
	return collectionmodel.SaveReport{Status: "success", Timestamp: insights.GeneratedAt}, nil
}

// ValidateBandMetadata runs shape and schema checks on a raw JSON document
// without writing it, for a client to check before submitting a save.
func (c *Collection) ValidateBandMetadata(raw []byte) ([]bandstore.Issue, *Error) {
	if issues := bandstore.ValidateRaw(raw); len(issues) > 0 {
		return issues, nil
	}
	var band collectionmodel.Band
	if err := json.Unmarshal(raw, &band); err != nil {
		return []bandstore.Issue{{Field: "", Message: err.Error()}}, nil
	}
	return bandstore.Validate(band), nil
}

func (c *Collection) wrapWriteError(err error) *Error {
	if ve, ok := err.(*bandstore.ValidationError); ok {
		return &Error{Kind: ErrValidation, Message: ve.Error(), Issues: ve.Issues}
	}
	return newError(ErrIO, err.Error())
}

// invalidateAfterWrite purges the written band from the cache so the next
// read reflects the write rather than a stale hit. The caller still needs
// to rebuild the aggregate index afterward; this only clears the per-band
// entry.
func (c *Collection) invalidateAfterWrite(name string) {
	c.cache.InvalidateBand(name)
}

func (c *Collection) currentIndex() (collectionmodel.CollectionIndex, *Error) {
	if idx, ok := c.cache.GetIndex(); ok {
		return idx, nil
	}
	idx, err := c.index.Load()
	if err != nil {
		return collectionmodel.CollectionIndex{}, newError(ErrNotFound, "collection has not been scanned yet")
	}
	c.cache.PutIndex(idx)
	return idx, nil
}
