package collection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bandvault/internal/collectionmodel"
	"bandvault/internal/query"
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

func TestScan_DiscoversBandsAndBuildsIndex(t *testing.T) {
	root := t.TempDir()
	writeTrack(t, root, "Pink Floyd", "1973 - The Dark Side of the Moon", "01.mp3")
	writeTrack(t, root, "Iron Maiden", "1982 - The Number of the Beast", "01.mp3")

	c := New(Options{MusicRoot: root})
	defer c.Close()

	report, errv := c.Scan(context.Background())
	if errv != nil {
		t.Fatalf("Scan: %v", errv)
	}
	if report.BandsAdded != 2 {
		t.Fatalf("expected 2 bands added, got %d", report.BandsAdded)
	}

	band, errv := c.GetBand("Pink Floyd")
	if errv != nil {
		t.Fatalf("GetBand: %v", errv)
	}
	if len(band.Albums) != 1 || band.Albums[0].AlbumName != "The Dark Side of the Moon" {
		t.Fatalf("unexpected band: %+v", band)
	}
}

func TestScan_OrphansBandWhoseFolderDisappears(t *testing.T) {
	root := t.TempDir()
	writeTrack(t, root, "Metallica", "1986 - Master of Puppets", "01.mp3")

	c := New(Options{MusicRoot: root})
	defer c.Close()

	if _, errv := c.Scan(context.Background()); errv != nil {
		t.Fatalf("first scan: %v", errv)
	}

	if err := os.RemoveAll(filepath.Join(root, "Metallica")); err != nil {
		t.Fatal(err)
	}

	report, errv := c.Scan(context.Background())
	if errv != nil {
		t.Fatalf("second scan: %v", errv)
	}
	if report.BandsRemoved != 1 {
		t.Fatalf("expected 1 band removed (orphaned), got %d", report.BandsRemoved)
	}

	band, errv := c.GetBand("Metallica")
	if errv != nil {
		t.Fatalf("GetBand after orphan: %v", errv)
	}
	if len(band.Albums) != 0 || len(band.AlbumsMissing) != 1 {
		t.Fatalf("expected the album to move to missing: %+v", band)
	}
}

func TestGetBand_NotFound(t *testing.T) {
	c := New(Options{MusicRoot: t.TempDir()})
	defer c.Close()

	_, errv := c.GetBand("Nobody")
	if errv == nil || errv.Kind != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %+v", errv)
	}
}

func TestSaveBandMetadata_RejectsInvalidRating(t *testing.T) {
	c := New(Options{MusicRoot: t.TempDir()})
	defer c.Close()

	_, err := c.SaveBandMetadata("X", collectionmodel.Band{
		BandName: "X",
		Albums:   []collectionmodel.Album{{AlbumName: "Y", Rate: 99}},
	})
	if err == nil || err.Kind != ErrValidation {
		t.Fatalf("expected ErrValidation, got %+v", err)
	}
}

func TestSaveBandMetadata_RebuildsIndexImmediately(t *testing.T) {
	root := t.TempDir()
	writeTrack(t, root, "Rush", "1981 - Moving Pictures", "01.mp3")

	c := New(Options{MusicRoot: root})
	defer c.Close()
	if _, errv := c.Scan(context.Background()); errv != nil {
		t.Fatalf("Scan: %v", errv)
	}

	band, errv := c.GetBand("Rush")
	if errv != nil {
		t.Fatalf("GetBand: %v", errv)
	}
	band.Genres = []string{"Progressive Rock"}

	report, saveErr := c.SaveBandMetadata("Rush", band)
	if saveErr != nil {
		t.Fatalf("SaveBandMetadata: %v", saveErr)
	}
	if report.Status != "success" || report.Band != "Rush" || report.Timestamp.IsZero() {
		t.Fatalf("unexpected save report: %+v", report)
	}

	result, errv := c.ListBands(query.ListFilter{Genre: "Progressive Rock"}, query.ListSort{Key: query.SortByName}, query.Page{Number: 1, Size: 10}, query.AlbumDetailNone)
	if errv != nil {
		t.Fatalf("ListBands: %v", errv)
	}
	if result.Total != 1 || result.Items[0].Name != "Rush" {
		t.Fatalf("expected the saved band to appear in a fresh list without a rescan: %+v", result)
	}
}

func TestSaveCollectionInsights_WritesSnapshotFile(t *testing.T) {
	root := t.TempDir()
	c := New(Options{MusicRoot: root})
	defer c.Close()

	insights := c.analytics.Compute(nil)
	report, errv := c.SaveCollectionInsights(insights)
	if errv != nil {
		t.Fatalf("SaveCollectionInsights: %v", errv)
	}
	if report.Status != "success" || report.Timestamp.IsZero() {
		t.Fatalf("unexpected save report: %+v", report)
	}

	if _, err := os.Stat(filepath.Join(root, ".collection_insight.json")); err != nil {
		t.Fatalf("expected .collection_insight.json to exist: %v", err)
	}
}

func TestListBands_ReflectsScan(t *testing.T) {
	root := t.TempDir()
	writeTrack(t, root, "Pink Floyd", "1973 - The Dark Side of the Moon", "01.mp3")

	c := New(Options{MusicRoot: root})
	defer c.Close()
	if _, errv := c.Scan(context.Background()); errv != nil {
		t.Fatalf("Scan: %v", errv)
	}

	result, errv := c.ListBands(query.ListFilter{}, query.ListSort{Key: query.SortByName}, query.Page{Number: 1, Size: 10}, query.AlbumDetailNone)
	if errv != nil {
		t.Fatalf("ListBands: %v", errv)
	}
	if result.Total != 1 || result.Items[0].Name != "Pink Floyd" {
		t.Fatalf("unexpected list result: %+v", result)
	}
}
