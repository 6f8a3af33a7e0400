package bandstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"bandvault/internal/collectionmodel"
)

// Issue is one validation failure, with a remediation hint a caller can
// surface directly to a user (spec.md §7).
type Issue struct {
	Field       string `json:"field"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// ValidationError wraps one or more Issues returned by a failed Save.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "bandstore: validation failed"
	}
	return fmt.Sprintf("bandstore: validation failed: %s", e.Issues[0].Message)
}

// Validate checks a fully-typed Band record against the schema invariants
// of spec.md §3: year format, rating range, track counts, duplicate album
// keys, and the local/missing partition.
func Validate(band collectionmodel.Band) []Issue {
	var issues []Issue

	if strings.TrimSpace(band.BandName) == "" {
		issues = append(issues, Issue{Field: "band_name", Message: "band_name is required"})
	}
	if !collectionmodel.ValidYear(band.Formed) {
		issues = append(issues, Issue{
			Field: "formed", Message: fmt.Sprintf("formed must be a 4-digit string or empty, got %q", band.Formed),
			Remediation: `send "formed" as a 4-digit string, e.g. "1965"`,
		})
	}

	seen := make(map[collectionmodel.AlbumKey]string)
	checkAlbum := func(list string, a collectionmodel.Album) {
		if !collectionmodel.ValidYear(a.Year) {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("%s[%s].year", list, a.AlbumName),
				Message: fmt.Sprintf("year must be a 4-digit string or empty, got %q", a.Year),
				Remediation: fmt.Sprintf(`field 'year' must be a 4-digit string — got %q; send it quoted, e.g. "1973"`, a.Year),
			})
		}
		if a.TrackCount < 0 {
			issues = append(issues, Issue{
				Field: fmt.Sprintf("%s[%s].track_count", list, a.AlbumName),
				Message: "track_count must be >= 0",
			})
		}
		if a.Rate < 0 || a.Rate > 10 {
			issues = append(issues, Issue{
				Field:       fmt.Sprintf("%s[%s].rate", list, a.AlbumName),
				Message:     fmt.Sprintf("rate must be in [0, 10], got %d", a.Rate),
				Remediation: "ratings are 0 (unrated) through 10",
			})
		}
		if a.Type != "" && !a.Type.IsKnown() {
			issues = append(issues, Issue{
				Field:       fmt.Sprintf("%s[%s].type", list, a.AlbumName),
				Message:     fmt.Sprintf("unknown album type %q", a.Type),
				Remediation: "type must be one of Album, EP, Live, Demo, Compilation, Single, Instrumental, Split",
			})
		}
		key := a.Key()
		if other, dup := seen[key]; dup {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("%s[%s]", list, a.AlbumName),
				Message: fmt.Sprintf("duplicate album key (title, year, edition) also present in %s", other),
			})
		}
		seen[key] = list
	}
	for _, a := range band.Albums {
		checkAlbum("albums", a)
	}
	for _, a := range band.AlbumsMissing {
		checkAlbum("albums_missing", a)
	}

	localKeys := make(map[collectionmodel.AlbumKey]bool, len(band.Albums))
	for _, a := range band.Albums {
		localKeys[a.Key()] = true
	}
	for _, a := range band.AlbumsMissing {
		if localKeys[a.Key()] {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("albums_missing[%s]", a.AlbumName),
				Message: "album key present in both albums and albums_missing",
				Remediation: "an album must sit in exactly one of albums or albums_missing",
			})
		}
	}

	if band.Analysis != nil {
		if band.Analysis.Rate < 0 || band.Analysis.Rate > 10 {
			issues = append(issues, Issue{
				Field:   "analyze.rate",
				Message: fmt.Sprintf("rate must be in [0, 10], got %d", band.Analysis.Rate),
			})
		}
	}

	return issues
}

// ValidateRaw inspects un-decoded JSON for the common shape mistakes
// spec.md §4.3 calls out before a strict unmarshal is attempted, so the
// remediation hint can name the exact field the caller got wrong.
func ValidateRaw(raw []byte) []Issue {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return []Issue{{Field: "", Message: fmt.Sprintf("not a JSON object: %v", err)}}
	}

	var issues []Issue

	if _, ok := obj["genre"]; ok {
		issues = append(issues, Issue{
			Field: "genre", Message: `field "genre" is not recognized`,
			Remediation: `use the plural "genres" with an array of strings`,
		})
	}

	if formed, ok := obj["formed"]; ok {
		if _, isNumber := formed.(float64); isNumber {
			issues = append(issues, Issue{
				Field: "formed", Message: "formed must be a string, got a number",
				Remediation: fmt.Sprintf(`send "formed" as a quoted 4-digit string, e.g. "%v"`, formed),
			})
		}
	}

	if members, ok := obj["members"]; ok {
		if m, isObject := members.(map[string]interface{}); isObject {
			_ = m
			issues = append(issues, Issue{
				Field: "members", Message: "members must be a flat array of strings, got an object",
				Remediation: `flatten {"current": [...], "former": [...]} into a single array`,
			})
		}
	}

	for _, listField := range []string{"albums", "albums_missing"} {
		list, ok := obj[listField].([]interface{})
		if !ok {
			continue
		}
		for i, raw := range list {
			albumObj, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			if year, ok := albumObj["year"]; ok {
				if _, isNumber := year.(float64); isNumber {
					issues = append(issues, Issue{
						Field:       fmt.Sprintf("%s[%d].year", listField, i),
						Message:     "year must be a string, got a number",
						Remediation: fmt.Sprintf(`send "year" as a quoted 4-digit string, e.g. "%v"`, year),
					})
				}
			}
		}
	}

	return issues
}
