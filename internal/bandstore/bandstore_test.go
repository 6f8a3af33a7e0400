package bandstore

import (
	"os"
	"path/filepath"
	"testing"

	"bandvault/internal/collectionmodel"
	"bandvault/internal/scanner"
)

func writeTrack(t *testing.T, root, band, album, file string) {
	t.Helper()
	p := filepath.Join(root, band, album, file)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	band := collectionmodel.Band{
		BandName: "Pink Floyd",
		Formed:   "1965",
		Genres:   []string{"Progressive Rock"},
		Albums: []collectionmodel.Album{
			{AlbumName: "The Wall", Year: "1979", Type: collectionmodel.AlbumTypeAlbum, TrackCount: 26},
		},
	}
	if _, err := s.Save("Pink Floyd", band); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("Pink Floyd")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Formed != "1965" || len(got.Albums) != 1 {
		t.Fatalf("unexpected round-trip: %+v", got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("Nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyScan_PreservesAnalysisAcrossEditionChange(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	writeTrack(t, root, "Pink Floyd", "1973 - The Dark Side of the Moon", "01.mp3")
	delta := scanner.BandDelta{
		BandName:   "Pink Floyd",
		FolderPath: "Pink Floyd",
		LocalAlbums: []scanner.AlbumDelta{{
			Key:        collectionmodel.AlbumKey{Title: "The Dark Side of the Moon", Year: "1973"},
			Type:       collectionmodel.AlbumTypeAlbum,
			TrackCount: 10,
			FolderPath: "1973 - The Dark Side of the Moon",
		}},
	}
	if _, _, err := s.ApplyScan("Pink Floyd", delta); err != nil {
		t.Fatalf("ApplyScan: %v", err)
	}

	if _, err := s.SaveAnalysis("Pink Floyd", collectionmodel.BandAnalysis{
		Albums: []collectionmodel.AlbumAnalysis{{AlbumName: "The Dark Side of the Moon", Rate: 10, Review: "masterpiece"}},
	}); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	// Folder renamed to add an edition suffix.
	delta2 := scanner.BandDelta{
		BandName:   "Pink Floyd",
		FolderPath: "Pink Floyd",
		LocalAlbums: []scanner.AlbumDelta{{
			Key:        collectionmodel.AlbumKey{Title: "The Dark Side of the Moon", Year: "1973", Edition: "Remastered"},
			Type:       collectionmodel.AlbumTypeAlbum,
			TrackCount: 10,
			FolderPath: "1973 - The Dark Side of the Moon (Remastered)",
		}},
	}
	merged, result, err := s.ApplyScan("Pink Floyd", delta2)
	if err != nil {
		t.Fatalf("ApplyScan 2: %v", err)
	}
	if !result.Changed {
		t.Fatal("expected change to be reported")
	}
	if len(merged.Albums) != 1 || merged.Albums[0].Edition != "Remastered" {
		t.Fatalf("expected new edition in local list: %+v", merged.Albums)
	}
	if len(merged.AlbumsMissing) != 1 || merged.AlbumsMissing[0].Rate != 10 {
		t.Fatalf("expected old edition moved to missing with rating preserved: %+v", merged.AlbumsMissing)
	}
}

func TestApplyScan_MissingAlbumReappears(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	if _, err := s.Save("Iron Maiden", collectionmodel.Band{
		BandName:      "Iron Maiden",
		AlbumsMissing: []collectionmodel.Album{{AlbumName: "Live After Death", Year: "1985", Rate: 9}},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	delta := scanner.BandDelta{
		BandName: "Iron Maiden", FolderPath: "Iron Maiden",
		LocalAlbums: []scanner.AlbumDelta{{
			Key: collectionmodel.AlbumKey{Title: "Live After Death", Year: "1985"}, Type: collectionmodel.AlbumTypeLive, TrackCount: 12, FolderPath: "1985 - Live After Death",
		}},
	}
	merged, _, err := s.ApplyScan("Iron Maiden", delta)
	if err != nil {
		t.Fatalf("ApplyScan: %v", err)
	}
	if len(merged.AlbumsMissing) != 0 {
		t.Fatalf("expected album to move out of missing, got %+v", merged.AlbumsMissing)
	}
	if len(merged.Albums) != 1 || merged.Albums[0].Rate != 9 {
		t.Fatalf("expected rating preserved on reappeared album: %+v", merged.Albums)
	}
}

func TestValidate_RejectsOutOfRangeRating(t *testing.T) {
	band := collectionmodel.Band{
		BandName: "X",
		Albums:   []collectionmodel.Album{{AlbumName: "Y", Rate: 11}},
	}
	issues := Validate(band)
	if len(issues) == 0 {
		t.Fatal("expected a validation issue for out-of-range rating")
	}
}

func TestValidateRaw_SingularGenre(t *testing.T) {
	issues := ValidateRaw([]byte(`{"band_name":"X","genre":["Rock"]}`))
	if len(issues) == 0 {
		t.Fatal("expected an issue flagging the singular 'genre' field")
	}
}

func TestValidateRaw_NumericFormed(t *testing.T) {
	issues := ValidateRaw([]byte(`{"band_name":"X","formed":1965}`))
	if len(issues) == 0 {
		t.Fatal("expected an issue flagging numeric 'formed'")
	}
}
