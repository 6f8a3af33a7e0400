// Package scanner walks a music root and produces a scan delta listing, per
// band folder, the albums currently on disk. It reads no previously recorded
// state: the comparison with each band's stored record happens when
// internal/bandstore merges the delta. The scanner writes nothing itself;
// internal/bandstore and internal/collectionindex consume the delta it
// produces (spec.md §4.2).
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bandvault/internal/collectionmodel"
	"bandvault/internal/normalize"
)

// musicExtensions is the set of file extensions that make a directory an
// album (spec.md §6.1), matched case-insensitively.
var musicExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".aac": true,
	".m4a": true, ".ogg": true, ".wma": true, ".mp4": true, ".m4p": true,
}

func isMusicFile(name string) bool {
	return musicExtensions[strings.ToLower(filepath.Ext(name))]
}

// AlbumDelta is one album directory found on disk for a band.
type AlbumDelta struct {
	Key            collectionmodel.AlbumKey
	Type           collectionmodel.AlbumType
	TrackCount     int
	FolderPath     string // relative to the band folder
	TypeCoerced    bool
	CoercedFromTag string
}

// BandDelta is everything the scanner learned about one band candidate.
type BandDelta struct {
	BandName        string
	FolderPath      string // relative to the music root
	LocalAlbums     []AlbumDelta
	Structure       normalize.FolderStructure
	ComplianceScore float64
}

// ScanDelta is the full result of one scan pass.
type ScanDelta struct {
	Bands    map[string]BandDelta
	Errors   []collectionmodel.BandScanError
	Warnings []string
}

// Scan walks root (the music library root) and returns the scan delta.
// Permission errors on root itself abort the scan; unreadable band
// directories are skipped and reported, not fatal. ctx cancellation aborts
// the walk with no partial delta returned.
func Scan(ctx context.Context, root string) (ScanDelta, error) {
	delta := ScanDelta{Bands: make(map[string]BandDelta)}

	rootEntries, err := os.ReadDir(root)
	if err != nil {
		return ScanDelta{}, fmt.Errorf("scanner: read music root %s: %w", root, err)
	}

	for _, entry := range rootEntries {
		if err := ctx.Err(); err != nil {
			return ScanDelta{}, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		bandName := entry.Name()
		bandPath := filepath.Join(root, bandName)

		bd, warnings, scanErr := scanBand(ctx, bandName, bandPath)
		if scanErr != nil {
			delta.Errors = append(delta.Errors, collectionmodel.BandScanError{
				Band: bandName, Message: scanErr.Error(),
			})
			continue
		}
		delta.Warnings = append(delta.Warnings, warnings...)
		delta.Bands[bandName] = bd
	}

	return delta, nil
}

// scanBand enumerates one band directory to a depth bounded by the
// type-subfolder rule (max 2 levels): direct children are either albums, or
// type subfolders whose own children are albums.
func scanBand(ctx context.Context, bandName, bandPath string) (BandDelta, []string, error) {
	entries, err := os.ReadDir(bandPath)
	if err != nil {
		return BandDelta{}, nil, fmt.Errorf("read band directory: %w", err)
	}

	bd := BandDelta{BandName: bandName, FolderPath: bandName}
	var placements []normalize.AlbumPlacement
	var warnings []string

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return BandDelta{}, nil, err
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !entry.IsDir() {
			continue
		}

		if typ, isTypeFolder := normalize.ClassifyTypeSubfolder(entry.Name()); isTypeFolder {
			typeFolderPath := filepath.Join(bandPath, entry.Name())
			children, err := os.ReadDir(typeFolderPath)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: unreadable type folder %q: %v", bandName, entry.Name(), err))
				continue
			}
			for _, child := range children {
				if !child.IsDir() || strings.HasPrefix(child.Name(), ".") {
					continue
				}
				album, ok, w := buildAlbum(typeFolderPath, entry.Name(), child.Name(), typ)
				if w != "" {
					warnings = append(warnings, fmt.Sprintf("%s: %s", bandName, w))
				}
				if ok {
					album.FolderPath = filepath.Join(entry.Name(), child.Name())
					bd.LocalAlbums = append(bd.LocalAlbums, album)
					placements = append(placements, normalize.AlbumPlacement{UnderTypeSubfolder: true})
				}
			}
			continue
		}

		// Not a type subfolder: treat the entry itself as a candidate album.
		album, ok, w := buildAlbum(bandPath, "", entry.Name(), "")
		if w != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", bandName, w))
		}
		if ok {
			album.FolderPath = entry.Name()
			bd.LocalAlbums = append(bd.LocalAlbums, album)
			placements = append(placements, normalize.AlbumPlacement{UnderTypeSubfolder: false})
		}
	}

	bd.Structure, bd.ComplianceScore = normalize.DetectStructure(placements)
	sort.Slice(bd.LocalAlbums, func(i, j int) bool {
		return bd.LocalAlbums[i].FolderPath < bd.LocalAlbums[j].FolderPath
	})
	return bd, warnings, nil
}

// buildAlbum classifies dirPath as an album (>=1 direct music file) and
// parses its attributes. ok is false when the directory holds no music
// files and is therefore not an album.
func buildAlbum(parentPath, typeParentName, dirName string, forcedType collectionmodel.AlbumType) (AlbumDelta, bool, string) {
	full := filepath.Join(parentPath, dirName)
	entries, err := os.ReadDir(full)
	if err != nil {
		parsed := normalize.ParseAlbumFolder(typeParentName, dirName)
		if typeParentName != "" {
			parsed.Type = forcedType
		}
		degraded := AlbumDelta{
			Key:  collectionmodel.AlbumKey{Title: parsed.Title, Year: parsed.Year, Edition: parsed.Edition},
			Type: parsed.Type,
		}
		return degraded, true, fmt.Sprintf("unreadable album directory %q, degrading to 0 tracks: %v", dirName, err)
	}

	trackCount := 0
	for _, e := range entries {
		if !e.IsDir() && isMusicFile(e.Name()) {
			trackCount++
		}
	}
	if trackCount == 0 {
		return AlbumDelta{}, false, ""
	}

	parsed := normalize.ParseAlbumFolder(typeParentName, dirName)
	if typeParentName != "" {
		parsed.Type = forcedType
	}

	ad := AlbumDelta{
		Key: collectionmodel.AlbumKey{
			Title: parsed.Title, Year: parsed.Year, Edition: parsed.Edition,
		},
		Type:           parsed.Type,
		TrackCount:     trackCount,
		TypeCoerced:    parsed.TypeCoerced,
		CoercedFromTag: parsed.CoercedFromTag,
	}
	warn := ""
	if ad.TypeCoerced {
		warn = fmt.Sprintf("unknown album type %q coerced to Album for %q", ad.CoercedFromTag, dirName)
	}
	return ad, true, warn
}
