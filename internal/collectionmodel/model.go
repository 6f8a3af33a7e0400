// Package collectionmodel defines the on-disk and in-memory shapes shared by
// every Collection Store component: bands, albums, analyses, and the
// collection-wide index and insights views.
package collectionmodel

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// AlbumType enumerates the known album categories. Unknown strings coerce to
// AlbumTypeAlbum by the caller, with a warning recorded on the scan delta.
type AlbumType string

const (
	AlbumTypeAlbum        AlbumType = "Album"
	AlbumTypeEP           AlbumType = "EP"
	AlbumTypeLive         AlbumType = "Live"
	AlbumTypeDemo         AlbumType = "Demo"
	AlbumTypeCompilation  AlbumType = "Compilation"
	AlbumTypeSingle       AlbumType = "Single"
	AlbumTypeInstrumental AlbumType = "Instrumental"
	AlbumTypeSplit        AlbumType = "Split"
)

// KnownAlbumTypes lists every enumerated type, in the canonical order used
// for distribution reports.
var KnownAlbumTypes = []AlbumType{
	AlbumTypeAlbum, AlbumTypeEP, AlbumTypeLive, AlbumTypeDemo,
	AlbumTypeCompilation, AlbumTypeSingle, AlbumTypeInstrumental, AlbumTypeSplit,
}

// IsKnown reports whether t is one of KnownAlbumTypes.
func (t AlbumType) IsKnown() bool {
	for _, k := range KnownAlbumTypes {
		if k == t {
			return true
		}
	}
	return false
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ValidYear reports whether s is empty or a 4-digit year string.
func ValidYear(s string) bool {
	return s == "" || yearPattern.MatchString(s)
}

// AlbumAnalysis is the per-album review/rating enrichment. Rating 0 means
// "unrated" and is excluded from averages.
type AlbumAnalysis struct {
	AlbumName string `json:"album_name"`
	Review    string `json:"review,omitempty"`
	Rate      int    `json:"rate"`
}

// Album is an entry in either a band's local or missing list. Whether it is
// local is derived from which list it sits in; it is never duplicated across
// both.
type Album struct {
	AlbumName  string   `json:"album_name"`
	Year       string   `json:"year,omitempty"`
	Type       AlbumType `json:"type"`
	Edition    string   `json:"edition,omitempty"`
	TrackCount int      `json:"track_count"`
	Duration   string   `json:"duration,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	FolderPath string   `json:"folder_path,omitempty"`

	Review string `json:"review,omitempty"`
	Rate   int    `json:"rate,omitempty"`
}

// Key identifies an album within a band by the uniqueness rule spec.md §9
// fixes: (title, year, edition). Edition is compared as-written.
type AlbumKey struct {
	Title   string
	Year    string
	Edition string
}

// Key returns the (title, year, edition) identity of the album.
func (a Album) Key() AlbumKey {
	return AlbumKey{Title: a.AlbumName, Year: a.Year, Edition: a.Edition}
}

// EditionLabel returns "Standard" for an empty edition, otherwise the
// edition string as written.
func (a Album) EditionLabel() string {
	if a.Edition == "" {
		return "Standard"
	}
	return a.Edition
}

// HasRating reports whether the album carries a rating (>= 1).
func (a Album) HasRating() bool {
	return a.Rate >= 1
}

// BandAnalysis is the band-level enrichment block.
type BandAnalysis struct {
	Review       string          `json:"review,omitempty"`
	Rate         int             `json:"rate"`
	SimilarBands []string        `json:"similar_bands,omitempty"`
	Albums       []AlbumAnalysis `json:"albums,omitempty"`
}

// Band is the full sidecar record for one band folder.
type Band struct {
	BandName       string        `json:"band_name"`
	Formed         string        `json:"formed,omitempty"`
	Genres         []string      `json:"genres,omitempty"`
	Origin         string        `json:"origin,omitempty"`
	Members        []string      `json:"members,omitempty"`
	Description    string        `json:"description,omitempty"`
	Albums         []Album       `json:"albums"`
	AlbumsMissing  []Album       `json:"albums_missing"`
	Analysis       *BandAnalysis `json:"analyze,omitempty"`
	FolderPath     string        `json:"folder_path,omitempty"`
	LastUpdated    time.Time     `json:"last_updated"`
	AlbumsCountRaw int           `json:"albums_count,omitempty"`
}

// AlbumsCount returns len(local)+len(missing), the derived invariant spec.md
// §3 requires band summaries to match.
func (b Band) AlbumsCount() int {
	return len(b.Albums) + len(b.AlbumsMissing)
}

// HasAnalysis reports whether the band carries an overall analysis block.
func (b Band) HasAnalysis() bool {
	return b.Analysis != nil
}

// CompletionRate returns local/(local+missing) as a percentage, or 0 when the
// band has no known albums at all.
func (b Band) CompletionRate() float64 {
	total := b.AlbumsCount()
	if total == 0 {
		return 0
	}
	return 100 * float64(len(b.Albums)) / float64(total)
}

// CollectionBandSummary is one entry in the collection index.
type CollectionBandSummary struct {
	Name                string    `json:"name"`
	FolderPath          string    `json:"folder_path,omitempty"`
	AlbumsCount         int       `json:"albums_count"`
	LocalAlbumsCount    int       `json:"local_albums_count"`
	MissingAlbumsCount  int       `json:"missing_albums_count"`
	HasMetadata         bool      `json:"has_metadata"`
	HasAnalysis         bool      `json:"has_analysis"`
	LastUpdated         time.Time `json:"last_updated"`
	Checksum            string    `json:"checksum,omitempty"`
}

// CollectionStats is the aggregate statistics block. It must always be
// derivable from the band summaries; whenever it disagrees, the summaries
// are authoritative (spec.md §3 invariant).
type CollectionStats struct {
	TotalBands           int            `json:"total_bands"`
	TotalAlbums          int            `json:"total_albums"`
	TotalLocalAlbums     int            `json:"total_local_albums"`
	TotalMissingAlbums   int            `json:"total_missing_albums"`
	BandsWithMetadata    int            `json:"bands_with_metadata"`
	CompletionPercentage float64        `json:"completion_percentage"`
	TopGenres            map[string]int `json:"top_genres,omitempty"`
	LastScan             time.Time      `json:"last_scan"`
}

// CollectionIndex is the root-level aggregate snapshot.
type CollectionIndex struct {
	Bands       []CollectionBandSummary `json:"bands"`
	Stats       CollectionStats         `json:"stats"`
	LastUpdated time.Time               `json:"last_updated"`
}

// BandScanError records a per-band failure during a scan or rebuild that did
// not abort the overall operation.
type BandScanError struct {
	Band    string `json:"band"`
	Message string `json:"message"`
}

// SaveReport is the discriminated success payload every Save* operation
// returns (spec.md §4.8, §6.4): a status, the timestamp the store stamped
// the write with, and the band the write applies to, when there is one.
type SaveReport struct {
	Status    string    `json:"status"`
	Band      string    `json:"band,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ScanReport summarizes a completed scan, including non-fatal per-band
// errors and parsing warnings.
type ScanReport struct {
	ScanID        uuid.UUID       `json:"scan_id"`
	BandsAdded    int             `json:"bands_added"`
	BandsRemoved  int             `json:"bands_removed"`
	BandsChanged  int             `json:"bands_changed"`
	AlbumsChanged int             `json:"albums_changed"`
	Errors        []BandScanError `json:"errors,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Duration      time.Duration   `json:"duration"`
}

// TypeRecommendation suggests a band try an album type it currently lacks.
type TypeRecommendation struct {
	Band     string    `json:"band"`
	Type     AlbumType `json:"type"`
	Priority string    `json:"priority"` // High | Medium | Low
}

// EditionUpgrade suggests revisiting a highly-rated standard-edition album.
type EditionUpgrade struct {
	Band      string `json:"band"`
	AlbumName string `json:"album_name"`
	Rate      int    `json:"rate"`
	Reason    string `json:"reason"`
}

// CollectionInsights is the derived analytical view computed by the
// analytics engine (C6).
type CollectionInsights struct {
	MaturityLevel          string                  `json:"maturity_level"`
	HealthScore            float64                 `json:"health_score"`
	HealthBucket           string                  `json:"health_bucket"`
	TypeDistribution       map[AlbumType]int        `json:"type_distribution"`
	TypeDiversityScore     float64                 `json:"type_diversity_score"`
	EditionDistribution    map[string]int          `json:"edition_distribution"`
	EditionPercentages     map[string]float64      `json:"edition_percentages"`
	TypeRecommendations    []TypeRecommendation    `json:"type_recommendations,omitempty"`
	EditionUpgrades        []EditionUpgrade        `json:"edition_upgrades,omitempty"`
	DecadeDistribution     map[string]int          `json:"decade_distribution"`
	BandCompletionRates    map[string]float64      `json:"band_completion_rates"`
	DescriptionLanguages   map[string]int          `json:"description_languages,omitempty"`
	DiscoveryPotential     int                     `json:"discovery_potential"`
	ValueScore             int                     `json:"value_score"`
	GeneratedAt            time.Time               `json:"generated_at"`
}
