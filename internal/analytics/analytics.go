// Package analytics computes the derived collection-wide insights view
// (spec.md §4.6): maturity, health, type and edition distributions,
// recommendations, and the language-detection supplement over band
// descriptions.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pemistahl/lingua-go"

	"bandvault/internal/collectionmodel"
)

// maturityStep names a rung on the collection-size ladder (spec.md §4.6.1).
type maturityStep struct {
	Name      string
	MaxAlbums int // exclusive upper bound; -1 means unbounded
}

var maturityLadder = []maturityStep{
	{Name: "Beginner", MaxAlbums: 10},
	{Name: "Intermediate", MaxAlbums: 50},
	{Name: "Advanced", MaxAlbums: 200},
	{Name: "Expert", MaxAlbums: 500},
	{Name: "Master", MaxAlbums: -1},
}

var maturityOrder = []string{"Beginner", "Intermediate", "Advanced", "Expert", "Master"}

func maturityLevel(totalAlbums int, metadataCoverage, analysisCoverage float64) string {
	base := "Master"
	for _, step := range maturityLadder {
		if step.MaxAlbums < 0 || totalAlbums < step.MaxAlbums {
			base = step.Name
			break
		}
	}
	if metadataCoverage >= 90 && analysisCoverage >= 50 {
		for i, name := range maturityOrder {
			if name == base && i < len(maturityOrder)-1 {
				return maturityOrder[i+1]
			}
		}
	}
	return base
}

// Engine computes CollectionInsights from the full set of band records. It
// holds only the lingua-go detector, which is expensive to construct and is
// reused across runs.
type Engine struct {
	detector lingua.LanguageDetector
}

// NewEngine builds an Engine with a language detector spanning the
// languages spec.md's description-language supplement is expected to see
// in practice.
func NewEngine() *Engine {
	languages := []lingua.Language{
		lingua.English, lingua.German, lingua.French, lingua.Spanish,
		lingua.Italian, lingua.Portuguese, lingua.Swedish, lingua.Finnish,
		lingua.Norwegian, lingua.Dutch, lingua.Polish, lingua.Russian,
		lingua.Japanese,
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithPreloadedLanguageModels().
		Build()
	return &Engine{detector: detector}
}

// Compute derives CollectionInsights from every known band record.
func (e *Engine) Compute(bands map[string]collectionmodel.Band) collectionmodel.CollectionInsights {
	var (
		totalAlbums, withMetadata, withAnalysis int
		typeDist                                = make(map[collectionmodel.AlbumType]int)
		editionDist                              = make(map[string]int)
		decadeDist                               = make(map[string]int)
		completionRates                          = make(map[string]float64)
		descriptionLanguages                     = make(map[string]int)
	)

	allAlbums := func(b collectionmodel.Band) []collectionmodel.Album {
		out := make([]collectionmodel.Album, 0, b.AlbumsCount())
		out = append(out, b.Albums...)
		out = append(out, b.AlbumsMissing...)
		return out
	}

	for _, band := range bands {
		totalAlbums += band.AlbumsCount()
		withMetadata++ // presence in this map means a file exists
		if band.HasAnalysis() {
			withAnalysis++
		}
		completionRates[band.BandName] = band.CompletionRate()

		for _, a := range allAlbums(band) {
			typeDist[a.Type]++
			editionDist[a.EditionLabel()]++
			if decade, ok := decadeOf(a.Year); ok {
				decadeDist[decade]++
			}
		}

		if band.Description != "" && e.detector != nil {
			if lang, ok := e.detector.DetectLanguageOf(band.Description); ok {
				descriptionLanguages[lang.String()]++
			} else {
				descriptionLanguages["Unknown"]++
			}
		}
	}

	totalBands := len(bands)
	metadataCoverage := percent(withMetadata, totalBands)
	analysisCoverage := percent(withAnalysis, totalBands)

	editionPct := make(map[string]float64, len(editionDist))
	for label, count := range editionDist {
		editionPct[label] = percent(count, totalAlbums)
	}

	organizationScore := typeDiversityScore(typeDist)
	completionAvg := averageOf(completionRates)
	health := completionAvg*0.40 + metadataCoverage*0.30 + organizationScore*100*0.20 + analysisCoverage*0.10
	health = clamp(health, 0, 100)

	insights := collectionmodel.CollectionInsights{
		MaturityLevel:        maturityLevel(totalAlbums, metadataCoverage, analysisCoverage),
		HealthScore:          round2(health),
		HealthBucket:         healthBucket(health),
		TypeDistribution:     typeDist,
		TypeDiversityScore:   round2(organizationScore * 100),
		EditionDistribution:  editionDist,
		EditionPercentages:   roundMap(editionPct),
		TypeRecommendations:  recommendTypes(bands),
		EditionUpgrades:      editionUpgrades(bands),
		DecadeDistribution:   decadeDist,
		BandCompletionRates:  roundMap(completionRates),
		DescriptionLanguages: descriptionLanguages,
		DiscoveryPotential:   discoveryPotential(totalBands, typeDist, decadeDist),
		ValueScore:           valueScore(completionAvg, metadataCoverage, totalAlbums),
		GeneratedAt:          time.Now().UTC(),
	}
	return insights
}

func decadeOf(year string) (string, bool) {
	if year == "" {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	return strconv.Itoa((y/10)*10) + "s", true
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func averageOf(rates map[string]float64) float64 {
	if len(rates) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rates {
		sum += r
	}
	return sum / float64(len(rates))
}

// typeDiversityScore is the Shannon-evenness of the type distribution,
// normalized to [0, 1]: 1 means albums are spread evenly across every known
// type, 0 means every album shares a single type.
func typeDiversityScore(dist map[collectionmodel.AlbumType]int) float64 {
	total := 0
	for _, c := range dist {
		total += c
	}
	if total == 0 || len(dist) <= 1 {
		return 0
	}
	var entropy float64
	for _, c := range dist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * log2(p)
	}
	maxEntropy := log2(float64(len(collectionmodel.KnownAlbumTypes)))
	if maxEntropy == 0 {
		return 0
	}
	return clamp(entropy/maxEntropy, 0, 1)
}

func log2(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log(x) / math.Log(2)
}

func healthBucket(score float64) string {
	switch {
	case score < 20:
		return "Critical"
	case score < 40:
		return "Poor"
	case score < 60:
		return "Fair"
	case score < 80:
		return "Good"
	default:
		return "Excellent"
	}
}

// recommendTypes suggests a Live album to every band with at least 3 local
// albums and no local Live album; priority is High from 8 local albums,
// Medium from 5, Low otherwise. No other album type is ever suggested, and
// neither the band's spread over other types, its genres, nor whether it has
// an analysis is considered.
func recommendTypes(bands map[string]collectionmodel.Band) []collectionmodel.TypeRecommendation {
	var recs []collectionmodel.TypeRecommendation
	for name, band := range bands {
		have := make(map[collectionmodel.AlbumType]bool)
		for _, a := range band.Albums {
			have[a.Type] = true
		}
		local := len(band.Albums)
		if local < 3 {
			continue
		}
		if !have[collectionmodel.AlbumTypeLive] {
			priority := "Low"
			if local >= 8 {
				priority = "High"
			} else if local >= 5 {
				priority = "Medium"
			}
			recs = append(recs, collectionmodel.TypeRecommendation{Band: name, Type: collectionmodel.AlbumTypeLive, Priority: priority})
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Band != recs[j].Band {
			return recs[i].Band < recs[j].Band
		}
		return recs[i].Type < recs[j].Type
	})
	return recs
}

// editionUpgrades flags highly-rated standard-edition local albums as
// candidates worth seeking a deluxe or remastered pressing of.
func editionUpgrades(bands map[string]collectionmodel.Band) []collectionmodel.EditionUpgrade {
	var upgrades []collectionmodel.EditionUpgrade
	for name, band := range bands {
		for _, a := range band.Albums {
			if a.Edition == "" && a.Rate >= 8 {
				upgrades = append(upgrades, collectionmodel.EditionUpgrade{
					Band: name, AlbumName: a.AlbumName, Rate: a.Rate,
					Reason: "highly rated standard edition; a remaster or deluxe pressing may exist",
				})
			}
		}
	}
	sort.Slice(upgrades, func(i, j int) bool {
		if upgrades[i].Rate != upgrades[j].Rate {
			return upgrades[i].Rate > upgrades[j].Rate
		}
		if upgrades[i].Band != upgrades[j].Band {
			return upgrades[i].Band < upgrades[j].Band
		}
		return upgrades[i].AlbumName < upgrades[j].AlbumName
	})
	return upgrades
}

// discoveryPotential estimates, on a 0-100 scale, how much of the
// collection's breadth is still unexplored: more bands and more decades
// covered raises the ceiling on what else might be out there.
func discoveryPotential(totalBands int, typeDist map[collectionmodel.AlbumType]int, decadeDist map[string]int) int {
	typeSpread := float64(len(typeDist)) / float64(len(collectionmodel.KnownAlbumTypes))
	decadeSpread := float64(len(decadeDist)) / 8.0 // 1950s..2020s
	bandFactor := clamp(float64(totalBands)/200.0, 0, 1)
	score := (typeSpread*0.4 + decadeSpread*0.4 + bandFactor*0.2) * 100
	return int(clamp(score, 0, 100))
}

// valueScore blends completeness and metadata richness against raw
// collection size into a single 0-100 composite.
func valueScore(completionAvg, metadataCoverage float64, totalAlbums int) int {
	sizeFactor := clamp(float64(totalAlbums)/1000.0, 0, 1) * 100
	score := completionAvg*0.5 + metadataCoverage*0.3 + sizeFactor*0.2
	return int(clamp(score, 0, 100))
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func roundMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round2(v)
	}
	return out
}
