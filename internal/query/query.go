// Package query implements the Query Engine (spec.md §4.5): deterministic,
// order-stable filtering, sorting, and pagination over bands, plus the
// structured multi-predicate album search.
package query

import (
	"sort"
	"strconv"
	"strings"

	"bandvault/internal/collectionmodel"
)

// SortKey is one of the band list sort keys spec.md §4.5.1 names.
type SortKey string

const (
	SortByName        SortKey = "name"
	SortByAlbumsCount SortKey = "albums_count"
	SortByLastUpdated SortKey = "last_updated"
	SortByCompletion  SortKey = "completion"
)

// AlbumDetailScope controls which album lists ListBands attaches per band.
type AlbumDetailScope string

const (
	AlbumDetailNone    AlbumDetailScope = ""
	AlbumDetailLocal   AlbumDetailScope = "local"
	AlbumDetailMissing AlbumDetailScope = "missing"
	AlbumDetailBoth    AlbumDetailScope = "both"
)

// ListFilter is the AND-composed filter set for ListBands.
type ListFilter struct {
	TextContains     string // matched against band name or any album title, case-insensitive
	Genre            string // requires metadata; empty means unfiltered
	HasMetadata      *bool
	HasMissingAlbums *bool
}

// ListSort specifies the sort key and direction.
type ListSort struct {
	Key        SortKey
	Descending bool
}

// Page is a 1-based page request; Size is clamped to [1, 100] by Clamp.
type Page struct {
	Number int
	Size   int
}

// Clamp normalizes an out-of-range page request.
func (p Page) Clamp() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// BandListItem is one row of a ListBands response.
type BandListItem struct {
	collectionmodel.CollectionBandSummary
	CompletionRate float64                `json:"completion_rate"`
	Albums         []collectionmodel.Album `json:"albums,omitempty"`
	AlbumsMissing  []collectionmodel.Album `json:"albums_missing,omitempty"`
}

// PagedBandList is the ListBands response envelope.
type PagedBandList struct {
	Items      []BandListItem `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	HasPrev    bool           `json:"has_prev"`
	HasNext    bool           `json:"has_next"`
}

// bandSource is the data ListBands needs per band: the summary from the
// collection index plus the full record, used for text/genre filtering and
// optional album detail.
type bandSource struct {
	Summary collectionmodel.CollectionBandSummary
	Full    collectionmodel.Band
}

// ListBands filters, sorts, and paginates bands. summaries and records must
// be index-aligned by band name; records is used only for predicates and
// detail that the summary alone cannot answer (text search across album
// titles, genre membership, album lists).
func ListBands(index collectionmodel.CollectionIndex, records map[string]collectionmodel.Band, filter ListFilter, sort_ ListSort, page Page, detail AlbumDetailScope) PagedBandList {
	sources := make([]bandSource, 0, len(index.Bands))
	for _, s := range index.Bands {
		sources = append(sources, bandSource{Summary: s, Full: records[s.Name]})
	}

	filtered := sources[:0:0]
	for _, src := range sources {
		if matchesFilter(src, filter) {
			filtered = append(filtered, src)
		}
	}

	sortBands(filtered, sort_)

	total := len(filtered)
	page = page.Clamp()
	totalPages := (total + page.Size - 1) / page.Size
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page.Number - 1) * page.Size
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}

	items := make([]BandListItem, 0, end-start)
	for _, src := range filtered[start:end] {
		item := BandListItem{
			CollectionBandSummary: src.Summary,
			CompletionRate:        src.Full.CompletionRate(),
		}
		switch detail {
		case AlbumDetailLocal:
			item.Albums = src.Full.Albums
		case AlbumDetailMissing:
			item.AlbumsMissing = src.Full.AlbumsMissing
		case AlbumDetailBoth:
			item.Albums = src.Full.Albums
			item.AlbumsMissing = src.Full.AlbumsMissing
		}
		items = append(items, item)
	}

	return PagedBandList{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
		HasPrev:    page.Number > 1,
		HasNext:    page.Number < totalPages,
	}
}

func matchesFilter(src bandSource, f ListFilter) bool {
	if f.TextContains != "" && !matchesText(src, f.TextContains) {
		return false
	}
	if f.Genre != "" && !containsFold(src.Full.Genres, f.Genre) {
		return false
	}
	if f.HasMetadata != nil && src.Summary.HasMetadata != *f.HasMetadata {
		return false
	}
	if f.HasMissingAlbums != nil {
		has := src.Summary.MissingAlbumsCount > 0
		if has != *f.HasMissingAlbums {
			return false
		}
	}
	return true
}

func matchesText(src bandSource, substr string) bool {
	if containsFoldString(src.Summary.Name, substr) {
		return true
	}
	for _, a := range src.Full.Albums {
		if containsFoldString(a.AlbumName, substr) {
			return true
		}
	}
	for _, a := range src.Full.AlbumsMissing {
		if containsFoldString(a.AlbumName, substr) {
			return true
		}
	}
	return false
}

func containsFoldString(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsFold(list []string, needle string) bool {
	for _, s := range list {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// sortBands orders by the requested key with an explicit secondary key
// (name ascending) for ties, so results are deterministic regardless of
// the caller's original ordering.
func sortBands(sources []bandSource, s ListSort) {
	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		primary := compareKey(a, b, s.Key)
		if primary != 0 {
			if s.Descending {
				return primary > 0
			}
			return primary < 0
		}
		return a.Summary.Name < b.Summary.Name
	})
}

func compareKey(a, b bandSource, key SortKey) int {
	switch key {
	case SortByAlbumsCount:
		return a.Summary.AlbumsCount - b.Summary.AlbumsCount
	case SortByLastUpdated:
		switch {
		case a.Summary.LastUpdated.Before(b.Summary.LastUpdated):
			return -1
		case a.Summary.LastUpdated.After(b.Summary.LastUpdated):
			return 1
		default:
			return 0
		}
	case SortByCompletion:
		ca, cb := a.Full.CompletionRate(), b.Full.CompletionRate()
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(a.Summary.Name, b.Summary.Name)
	}
}

// AlbumSearchFilter is the AND-composed multi-predicate filter for
// SearchAlbums (spec.md §4.5.2). Zero-value fields mean "unfiltered".
type AlbumSearchFilter struct {
	Types      []collectionmodel.AlbumType
	YearMin    string
	YearMax    string
	Decades    []string // e.g. "1980s"
	Editions   []string
	Genres     []string
	BandNames  []string
	HasRating  *bool
	RatingMin  int
	RatingMax  int
	IsLocal    *bool
	TrackMin   int
	TrackMax   int
}

// AlbumSearchHit is one album match, with its owning band attached.
type AlbumSearchHit struct {
	Band    string                `json:"band"`
	Album   collectionmodel.Album `json:"album"`
	IsLocal bool                  `json:"is_local"`
}

// AlbumSearchResult groups hits by band, bands in ascending name order for
// determinism; within a band, local albums come before missing ones.
type AlbumSearchResult struct {
	Hits  []AlbumSearchHit `json:"hits"`
	Total int              `json:"total"`
}

// SearchAlbums evaluates the predicate against every album of every band in
// records.
func SearchAlbums(records map[string]collectionmodel.Band, f AlbumSearchFilter) AlbumSearchResult {
	bandNames := make([]string, 0, len(records))
	for name := range records {
		bandNames = append(bandNames, name)
	}
	sort.Strings(bandNames)

	var hits []AlbumSearchHit
	for _, name := range bandNames {
		band := records[name]
		if len(f.BandNames) > 0 && !containsFold(f.BandNames, name) {
			continue
		}
		for _, a := range band.Albums {
			if matchesAlbum(a, true, f) {
				hits = append(hits, AlbumSearchHit{Band: name, Album: a, IsLocal: true})
			}
		}
		for _, a := range band.AlbumsMissing {
			if matchesAlbum(a, false, f) {
				hits = append(hits, AlbumSearchHit{Band: name, Album: a, IsLocal: false})
			}
		}
	}
	return AlbumSearchResult{Hits: hits, Total: len(hits)}
}

func matchesAlbum(a collectionmodel.Album, isLocal bool, f AlbumSearchFilter) bool {
	if f.IsLocal != nil && *f.IsLocal != isLocal {
		return false
	}
	if len(f.Types) > 0 && !typeIn(a.Type, f.Types) {
		return false
	}
	if f.YearMin != "" || f.YearMax != "" {
		if a.Year == "" {
			return false
		}
		y, err := strconv.Atoi(a.Year)
		if err != nil {
			return false
		}
		if f.YearMin != "" {
			if min, err := strconv.Atoi(f.YearMin); err == nil && y < min {
				return false
			}
		}
		if f.YearMax != "" {
			if max, err := strconv.Atoi(f.YearMax); err == nil && y > max {
				return false
			}
		}
	}
	if len(f.Decades) > 0 {
		if a.Year == "" {
			return false
		}
		if !decadeIn(a.Year, f.Decades) {
			return false
		}
	}
	if len(f.Editions) > 0 && !editionIn(a.EditionLabel(), f.Editions) {
		return false
	}
	if len(f.Genres) > 0 && !genresIntersect(a.Genres, f.Genres) {
		return false
	}
	if f.HasRating != nil && a.HasRating() != *f.HasRating {
		return false
	}
	if f.RatingMin > 0 && a.Rate < f.RatingMin {
		return false
	}
	if f.RatingMax > 0 && a.Rate > f.RatingMax {
		return false
	}
	if f.TrackMin > 0 && a.TrackCount < f.TrackMin {
		return false
	}
	if f.TrackMax > 0 && a.TrackCount > f.TrackMax {
		return false
	}
	return true
}

func typeIn(t collectionmodel.AlbumType, set []collectionmodel.AlbumType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

func editionIn(edition string, set []string) bool {
	for _, s := range set {
		if strings.EqualFold(s, edition) {
			return true
		}
	}
	return false
}

func genresIntersect(albumGenres, want []string) bool {
	for _, g := range albumGenres {
		if containsFold(want, g) {
			return true
		}
	}
	return false
}

func decadeIn(year string, decades []string) bool {
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	label := strconv.Itoa((y/10)*10) + "s"
	for _, d := range decades {
		if d == label {
			return true
		}
	}
	return false
}
