package normalize

import (
	"testing"

	"bandvault/internal/collectionmodel"
)

func TestParseAlbumFolder_YearAndDefault(t *testing.T) {
	p := ParseAlbumFolder("", "1973 - The Dark Side of the Moon")
	if p.Year != "1973" || p.Title != "The Dark Side of the Moon" || p.Edition != "" {
		t.Fatalf("unexpected parse: %+v", p)
	}
	if p.Type != collectionmodel.AlbumTypeAlbum {
		t.Fatalf("expected default type Album, got %s", p.Type)
	}
}

func TestParseAlbumFolder_Edition(t *testing.T) {
	p := ParseAlbumFolder("", "1973 - The Dark Side of the Moon (Remastered)")
	if p.Edition != "Remastered" {
		t.Fatalf("expected edition Remastered, got %q", p.Edition)
	}
	if p.Title != "The Dark Side of the Moon" {
		t.Fatalf("expected clean title, got %q", p.Title)
	}
}

func TestParseAlbumFolder_NonEditionParenthetical(t *testing.T) {
	p := ParseAlbumFolder("", "1999 - Album Title (feat. Someone)")
	if p.Edition != "" {
		t.Fatalf("expected no edition extracted, got %q", p.Edition)
	}
}

func TestParseAlbumFolder_TypeSubfolderWins(t *testing.T) {
	p := ParseAlbumFolder("EPs", "2001 - Short Release")
	if p.Type != collectionmodel.AlbumTypeEP {
		t.Fatalf("expected EP from type subfolder, got %s", p.Type)
	}
}

func TestParseAlbumFolder_KeywordInference(t *testing.T) {
	cases := map[string]collectionmodel.AlbumType{
		"1990 - Live at Wembley":       collectionmodel.AlbumTypeLive,
		"Greatest Hits":                collectionmodel.AlbumTypeCompilation,
		"Best of the Early Years":      collectionmodel.AlbumTypeCompilation,
		"Rehearsal Demo":               collectionmodel.AlbumTypeDemo,
		"Acoustic EP":                  collectionmodel.AlbumTypeEP,
		"Promo Single":                 collectionmodel.AlbumTypeSingle,
		"Ordinary Studio Record":       collectionmodel.AlbumTypeAlbum,
	}
	for name, want := range cases {
		p := ParseAlbumFolder("", name)
		if p.Type != want {
			t.Errorf("%q: expected %s, got %s", name, want, p.Type)
		}
	}
}

func TestParseAlbumFolder_Deterministic(t *testing.T) {
	a := ParseAlbumFolder("Live", "1985 - Radio Session (Anniversary Edition)")
	b := ParseAlbumFolder("Live", "1985 - Radio Session (Anniversary Edition)")
	if a != b {
		t.Fatalf("expected deterministic parse, got %+v vs %+v", a, b)
	}
}

func TestClassifyTypeSubfolder_CaseInsensitive(t *testing.T) {
	if _, ok := ClassifyTypeSubfolder("albums"); !ok {
		t.Fatal("expected 'albums' to classify as a type subfolder")
	}
	if _, ok := ClassifyTypeSubfolder("random"); ok {
		t.Fatal("expected 'random' to not classify as a type subfolder")
	}
}

func TestDetectStructure(t *testing.T) {
	s, score := DetectStructure(nil)
	if s != StructureDefault || score != 1 {
		t.Fatalf("empty band: expected default/1.0, got %s/%f", s, score)
	}

	s, score = DetectStructure([]AlbumPlacement{{}, {}, {UnderTypeSubfolder: true}})
	if s != StructureMixed {
		t.Fatalf("expected mixed structure, got %s", s)
	}
	if score < 0.66 || score > 0.67 {
		t.Fatalf("expected compliance ~0.667, got %f", score)
	}
}
