package collectionindex

import (
	"testing"

	"bandvault/internal/bandstore"
	"bandvault/internal/collectionmodel"
)

func TestRebuild_StatsDerivedFromSummaries(t *testing.T) {
	root := t.TempDir()
	store := bandstore.New(root)
	idx := New(root)

	if _, err := store.Save("Metallica", collectionmodel.Band{
		BandName: "Metallica",
		Genres:   []string{"Thrash Metal"},
		Albums: []collectionmodel.Album{
			{AlbumName: "Ride the Lightning", Year: "1984"},
			{AlbumName: "Master of Puppets", Year: "1986"},
		},
		AlbumsMissing: []collectionmodel.Album{{AlbumName: "Kill 'Em All", Year: "1983"}},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Save("Iron Maiden", collectionmodel.Band{
		BandName: "Iron Maiden",
		Genres:   []string{"Heavy Metal"},
		Albums:   []collectionmodel.Album{{AlbumName: "The Number of the Beast", Year: "1982"}},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := idx.Rebuild(store, []string{"Metallica", "Iron Maiden"})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.Index.Stats.TotalBands != 2 {
		t.Fatalf("expected 2 bands, got %d", res.Index.Stats.TotalBands)
	}
	if res.Index.Stats.TotalAlbums != 4 {
		t.Fatalf("expected 4 albums, got %d", res.Index.Stats.TotalAlbums)
	}
	if res.Index.Stats.TotalLocalAlbums != 3 || res.Index.Stats.TotalMissingAlbums != 1 {
		t.Fatalf("unexpected local/missing split: %+v", res.Index.Stats)
	}
	wantCompletion := 75.0
	if res.Index.Stats.CompletionPercentage != wantCompletion {
		t.Fatalf("expected completion %v, got %v", wantCompletion, res.Index.Stats.CompletionPercentage)
	}
}

func TestRebuild_ExcludesMissingBandWithoutAbort(t *testing.T) {
	root := t.TempDir()
	store := bandstore.New(root)
	idx := New(root)

	if _, err := store.Save("Real Band", collectionmodel.Band{BandName: "Real Band"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	res, err := idx.Rebuild(store, []string{"Real Band", "Ghost Band"})
	if err != nil {
		t.Fatalf("Rebuild should not abort: %v", err)
	}
	if res.Index.Stats.TotalBands != 1 {
		t.Fatalf("expected 1 band, got %d", res.Index.Stats.TotalBands)
	}
	if len(res.Corrupt) != 0 {
		t.Fatalf("expected no corrupt entries for a band with no file at all, got %v", res.Corrupt)
	}
}
