package analytics

import (
	"testing"

	"bandvault/internal/collectionmodel"
)

func TestMaturityLevel_Ladder(t *testing.T) {
	cases := []struct {
		albums   int
		meta     float64
		analysis float64
		want     string
	}{
		{5, 0, 0, "Beginner"},
		{10, 0, 0, "Intermediate"},
		{49, 0, 0, "Intermediate"},
		{50, 0, 0, "Advanced"},
		{500, 0, 0, "Master"},
	}
	for _, c := range cases {
		got := maturityLevel(c.albums, c.meta, c.analysis)
		if got != c.want {
			t.Errorf("maturityLevel(%d, %v, %v) = %q, want %q", c.albums, c.meta, c.analysis, got, c.want)
		}
	}
}

func TestMaturityLevel_StepsUpWithHighCoverage(t *testing.T) {
	got := maturityLevel(5, 95, 60)
	if got != "Intermediate" {
		t.Fatalf("expected a one-step bump from Beginner with high coverage, got %q", got)
	}
}

func TestCompute_HealthScoreAndBucket(t *testing.T) {
	e := &Engine{}
	bands := map[string]collectionmodel.Band{
		"Complete Band": {
			BandName: "Complete Band",
			Albums: []collectionmodel.Album{
				{AlbumName: "A", Year: "1990", Type: collectionmodel.AlbumTypeAlbum},
				{AlbumName: "B", Year: "1992", Type: collectionmodel.AlbumTypeLive},
			},
		},
	}
	insights := e.Compute(bands)
	if insights.HealthScore <= 0 {
		t.Fatalf("expected a positive health score, got %v", insights.HealthScore)
	}
	if insights.HealthBucket == "" {
		t.Fatal("expected a non-empty health bucket")
	}
}

func TestEditionUpgrades_FlagsHighRatedStandardEdition(t *testing.T) {
	e := &Engine{}
	bands := map[string]collectionmodel.Band{
		"Metallica": {
			BandName: "Metallica",
			Albums: []collectionmodel.Album{
				{AlbumName: "Master of Puppets", Rate: 10, Edition: ""},
				{AlbumName: "St. Anger", Rate: 2, Edition: ""},
				{AlbumName: "Ride the Lightning", Rate: 9, Edition: "Remastered"},
			},
		},
	}
	insights := e.Compute(bands)
	if len(insights.EditionUpgrades) != 1 || insights.EditionUpgrades[0].AlbumName != "Master of Puppets" {
		t.Fatalf("expected only Master of Puppets flagged, got %+v", insights.EditionUpgrades)
	}
}

func TestDecadeDistribution_GroupsByDecade(t *testing.T) {
	e := &Engine{}
	bands := map[string]collectionmodel.Band{
		"Band": {
			BandName: "Band",
			Albums: []collectionmodel.Album{
				{AlbumName: "A", Year: "1983"},
				{AlbumName: "B", Year: "1987"},
				{AlbumName: "C", Year: "1991"},
			},
		},
	}
	insights := e.Compute(bands)
	if insights.DecadeDistribution["1980s"] != 2 || insights.DecadeDistribution["1990s"] != 1 {
		t.Fatalf("unexpected decade distribution: %+v", insights.DecadeDistribution)
	}
}

func TestTypeDiversityScore_ZeroForSingleType(t *testing.T) {
	dist := map[collectionmodel.AlbumType]int{collectionmodel.AlbumTypeAlbum: 10}
	if got := typeDiversityScore(dist); got != 0 {
		t.Fatalf("expected 0 diversity for a single type, got %v", got)
	}
}
