// Package normalize turns folder names into the structured album attributes
// the filesystem scanner needs. Parsing is pure and depends only on its
// input: the same path always yields the same attributes, on any run.
package normalize

import (
	"regexp"
	"strings"

	"bandvault/internal/collectionmodel"
)

// ParsedAlbum is the result of parsing one album folder name, optionally
// inside a type subfolder.
type ParsedAlbum struct {
	Year    string
	Title   string
	Edition string
	Type    collectionmodel.AlbumType
	// TypeCoerced is true when the source folder named an album type that is
	// not one of the known enumerated values and it was coerced to Album.
	TypeCoerced    bool
	CoercedFromTag string
}

var yearPrefix = regexp.MustCompile(`^(\d{4})\s*-\s*(.+)$`)
var editionSuffix = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)

// typeSubfolderAliases maps a lowercased subfolder name, singular or plural,
// to its canonical album type, tolerating the "Albums", "EPs", plural-style names
// spec.md §4.1 calls out.
var typeSubfolderAliases = map[string]collectionmodel.AlbumType{
	"album":        collectionmodel.AlbumTypeAlbum,
	"albums":       collectionmodel.AlbumTypeAlbum,
	"ep":           collectionmodel.AlbumTypeEP,
	"eps":          collectionmodel.AlbumTypeEP,
	"live":         collectionmodel.AlbumTypeLive,
	"lives":        collectionmodel.AlbumTypeLive,
	"demo":         collectionmodel.AlbumTypeDemo,
	"demos":        collectionmodel.AlbumTypeDemo,
	"compilation":  collectionmodel.AlbumTypeCompilation,
	"compilations": collectionmodel.AlbumTypeCompilation,
	"single":       collectionmodel.AlbumTypeSingle,
	"singles":      collectionmodel.AlbumTypeSingle,
	"instrumental": collectionmodel.AlbumTypeInstrumental,
	"instrumentals": collectionmodel.AlbumTypeInstrumental,
	"split":        collectionmodel.AlbumTypeSplit,
	"splits":       collectionmodel.AlbumTypeSplit,
}

// ClassifyTypeSubfolder reports the album type a type subfolder name
// represents, if any. Matching is case-insensitive.
func ClassifyTypeSubfolder(name string) (collectionmodel.AlbumType, bool) {
	t, ok := typeSubfolderAliases[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// keywordRule is a word-boundary title keyword mapped to the type it infers.
// Order matters: more specific phrases are checked before single words.
type keywordRule struct {
	pattern *regexp.Regexp
	result  collectionmodel.AlbumType
}

var keywordRules = []keywordRule{
	{regexp.MustCompile(`(?i)\bbest of\b`), collectionmodel.AlbumTypeCompilation},
	{regexp.MustCompile(`(?i)\bgreatest hits\b`), collectionmodel.AlbumTypeCompilation},
	{regexp.MustCompile(`(?i)\bcompilation\b`), collectionmodel.AlbumTypeCompilation},
	{regexp.MustCompile(`(?i)\blive\b`), collectionmodel.AlbumTypeLive},
	{regexp.MustCompile(`(?i)\bdemo\b`), collectionmodel.AlbumTypeDemo},
	{regexp.MustCompile(`(?i)\bep\b`), collectionmodel.AlbumTypeEP},
	{regexp.MustCompile(`(?i)\bsingle\b`), collectionmodel.AlbumTypeSingle},
}

// InferTypeFromTitle scans a title for the type keywords spec.md §4.1 names.
// The first matching rule wins; titles matching nothing are Album.
func InferTypeFromTitle(title string) collectionmodel.AlbumType {
	for _, rule := range keywordRules {
		if rule.pattern.MatchString(title) {
			return rule.result
		}
	}
	return collectionmodel.AlbumTypeAlbum
}

// ParseAlbumFolder parses one album folder name, given the name of its
// immediate parent directory when that parent is a type subfolder (pass ""
// otherwise). It applies the five rules of spec.md §4.1 in order.
func ParseAlbumFolder(typeParent, folderName string) ParsedAlbum {
	name := strings.TrimSpace(folderName)

	year := ""
	if m := yearPrefix.FindStringSubmatch(name); m != nil {
		year = m[1]
		name = strings.TrimSpace(m[2])
	}

	edition := ""
	if m := editionSuffix.FindStringSubmatch(name); m != nil {
		candidate := strings.TrimSpace(m[1])
		if looksLikeEdition(candidate) {
			edition = candidate
			name = strings.TrimSpace(strings.TrimSuffix(name, m[0]))
		}
	}

	title := name

	parsed := ParsedAlbum{Year: year, Title: title, Edition: edition}

	if typeParent != "" {
		if t, ok := ClassifyTypeSubfolder(typeParent); ok {
			parsed.Type = t
			return parsed
		}
		// A subfolder that doesn't match any known alias isn't treated as a
		// type subfolder at all by the caller (it wouldn't have been
		// classified as one), so this branch only guards against callers
		// passing an unrecognized tag directly.
		parsed.Type = collectionmodel.AlbumTypeAlbum
		parsed.TypeCoerced = true
		parsed.CoercedFromTag = typeParent
		return parsed
	}

	parsed.Type = InferTypeFromTitle(title)
	return parsed
}

// looksLikeEdition filters out parenthesized clauses that are not edition
// markers, e.g. a bonus-disc track count "(12 tracks)" someone left in a
// folder name. Editions are recognized by a handful of common keywords;
// anything else is left as part of the title.
var editionKeywords = []string{
	"edition", "remaster", "deluxe", "anniversary", "demo", "live",
	"bonus", "expanded", "special", "limited", "reissue", "version",
}

func looksLikeEdition(clause string) bool {
	if clause == "" {
		return false
	}
	lower := strings.ToLower(clause)
	for _, kw := range editionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NormalizeBandKey trims a band folder/name for use as the band's key.
// Band names are compared case-sensitively, as spec.md §9's open question
// leaves case folding to the host filesystem.
func NormalizeBandKey(name string) string {
	return strings.TrimSpace(name)
}

// FolderStructure classifies how a band's albums sit under its folder.
type FolderStructure string

const (
	StructureDefault FolderStructure = "default"
	StructureTyped   FolderStructure = "typed"
	StructureMixed   FolderStructure = "mixed"
)

// AlbumPlacement records whether one album sat directly under the band
// folder or inside a type subfolder, for structure-compliance scoring.
type AlbumPlacement struct {
	UnderTypeSubfolder bool
}

// DetectStructure classifies a band's folder layout and returns the
// dominant structure plus the fraction of albums that agree with it.
func DetectStructure(placements []AlbumPlacement) (FolderStructure, float64) {
	if len(placements) == 0 {
		return StructureDefault, 1
	}
	var typed, plain int
	for _, p := range placements {
		if p.UnderTypeSubfolder {
			typed++
		} else {
			plain++
		}
	}
	total := float64(len(placements))
	switch {
	case typed == 0:
		return StructureDefault, 1
	case plain == 0:
		return StructureTyped, 1
	default:
		dominant := float64(typed)
		if plain > typed {
			dominant = float64(plain)
		}
		return StructureMixed, dominant / total
	}
}
