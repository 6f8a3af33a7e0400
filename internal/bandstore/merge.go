package bandstore

import (
	"bandvault/internal/collectionmodel"
	"bandvault/internal/scanner"
)

// mergeDelta applies the ApplyScan merge contract (spec.md §4.3) and reports
// whether the band's album state changed and how many albums moved or had
// their disk-derived attributes change.
func mergeDelta(existing collectionmodel.Band, bandName string, delta scanner.BandDelta) (collectionmodel.Band, bool, int) {
	prevLocal := indexByKey(existing.Albums)
	prevMissing := indexByKey(existing.AlbumsMissing)

	newLocalKeys := make(map[collectionmodel.AlbumKey]bool, len(delta.LocalAlbums))
	newLocal := make([]collectionmodel.Album, 0, len(delta.LocalAlbums))
	albumsChanged := 0

	for _, ad := range delta.LocalAlbums {
		key := ad.Key
		newLocalKeys[key] = true

		var enrichment collectionmodel.Album
		wasLocal, hadLocal := prevLocal[key]
		wasMissing, hadMissing := prevMissing[key]
		switch {
		case hadLocal:
			enrichment = wasLocal
		case hadMissing:
			enrichment = wasMissing
		}

		album := collectionmodel.Album{
			AlbumName:  key.Title,
			Year:       key.Year,
			Edition:    key.Edition,
			Type:       ad.Type,
			TrackCount: ad.TrackCount,
			FolderPath: ad.FolderPath,
			Genres:     enrichment.Genres,
			Duration:   enrichment.Duration,
			Review:     enrichment.Review,
			Rate:       enrichment.Rate,
		}
		newLocal = append(newLocal, album)

		switch {
		case hadMissing:
			// Moved from missing back to local.
			albumsChanged++
		case !hadLocal:
			// Newly discovered local album.
			albumsChanged++
		case hadLocal && (wasLocal.TrackCount != ad.TrackCount || wasLocal.FolderPath != ad.FolderPath || wasLocal.Type != ad.Type):
			albumsChanged++
		}

		delete(prevLocal, key)
		delete(prevMissing, key)
	}

	newMissing := make([]collectionmodel.Album, 0, len(prevLocal)+len(prevMissing))
	for key, a := range prevLocal {
		_ = key
		a.FolderPath = ""
		newMissing = append(newMissing, a)
		albumsChanged++
	}
	for _, a := range prevMissing {
		newMissing = append(newMissing, a)
	}

	merged := existing
	merged.BandName = bandName
	merged.FolderPath = delta.FolderPath
	merged.Albums = newLocal
	merged.AlbumsMissing = newMissing

	changed := albumsChanged > 0 || len(newLocalKeys) != len(existing.Albums) || existing.FolderPath != delta.FolderPath
	return merged, changed, albumsChanged
}

func indexByKey(albums []collectionmodel.Album) map[collectionmodel.AlbumKey]collectionmodel.Album {
	m := make(map[collectionmodel.AlbumKey]collectionmodel.Album, len(albums))
	for _, a := range albums {
		m[a.Key()] = a
	}
	return m
}
