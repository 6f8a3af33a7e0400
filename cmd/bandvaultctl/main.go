// Command bandvaultctl is the operator CLI in front of the Collection Store
// Core API Surface: scan a music root, list and inspect bands, run
// searches, and record metadata/analysis without starting bandvaultd.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bandvault/internal/collection"
	"bandvault/internal/collectionmodel"
	"bandvault/internal/config"
	"bandvault/internal/logging"
	"bandvault/internal/query"
)

var rootCmd = &cobra.Command{
	Use:   "bandvaultctl",
	Short: "Inspect and maintain a band collection store",
}

func newCollection() (*collection.Collection, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)
	return collection.New(collection.Options{
		MusicRoot: cfg.MusicRootPath,
		CacheTTL:  cfg.CacheTTL(),
		Logger:    log,
	}), nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk the music root and update every band's metadata and the collection index",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()
		report, errv := col.Scan(context.Background())
		if errv != nil {
			return errv
		}
		printJSON(report)
		return nil
	},
}

var (
	listGenre   string
	listQuery   string
	listSort    string
	listOrder   string
	listPage    int
	listPerPage int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bands in the collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()

		filter := query.ListFilter{TextContains: listQuery, Genre: listGenre}
		sort_ := query.ListSort{Key: query.SortKey(listSort), Descending: listOrder == "desc"}
		page := query.Page{Number: listPage, Size: listPerPage}

		result, errv := col.ListBands(filter, sort_, page, query.AlbumDetailNone)
		if errv != nil {
			return errv
		}
		printJSON(result)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <band name>",
	Short: "Print a single band's full record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()
		band, errv := col.GetBand(args[0])
		if errv != nil {
			return errv
		}
		printJSON(band)
		return nil
	},
}

var (
	searchTypes   string
	searchDecades string
	searchGenres  string
	searchMinRate int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search albums across the whole collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()

		filter := query.AlbumSearchFilter{RatingMin: searchMinRate}
		if searchTypes != "" {
			for _, t := range strings.Split(searchTypes, ",") {
				filter.Types = append(filter.Types, collectionmodel.AlbumType(t))
			}
		}
		if searchDecades != "" {
			filter.Decades = strings.Split(searchDecades, ",")
		}
		if searchGenres != "" {
			filter.Genres = strings.Split(searchGenres, ",")
		}

		result, errv := col.SearchAlbums(filter)
		if errv != nil {
			return errv
		}
		printJSON(result)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute and print collection-wide insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()
		insights, errv := col.Analytics()
		if errv != nil {
			return errv
		}
		printJSON(insights)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <path to band_metadata.json>",
	Short: "Check a band metadata file for schema issues without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()
		issues, errv := col.ValidateBandMetadata(raw)
		if errv != nil {
			return errv
		}
		printJSON(map[string]interface{}{"issues": issues, "valid": len(issues) == 0})
		return nil
	},
}

var saveAnalysisCmd = &cobra.Command{
	Use:   "save-analysis <band name> <rate 0-10> [review]",
	Short: "Record an overall review and rating for a band",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rate must be an integer 0-10: %w", err)
		}
		review := ""
		if len(args) == 3 {
			review = args[2]
		}

		col, err := newCollection()
		if err != nil {
			return err
		}
		defer col.Close()
		report, errv := col.SaveBandAnalysis(args[0], collectionmodel.BandAnalysis{Rate: rate, Review: review})
		if errv != nil {
			return errv
		}
		printJSON(report)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listGenre, "genre", "", "filter by genre")
	listCmd.Flags().StringVar(&listQuery, "q", "", "substring match against band or album names")
	listCmd.Flags().StringVar(&listSort, "sort", string(query.SortByName), "sort key: name, albums_count, last_updated, completion")
	listCmd.Flags().StringVar(&listOrder, "order", "asc", "asc or desc")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPerPage, "page-size", 20, "results per page")

	searchCmd.Flags().StringVar(&searchTypes, "types", "", "comma-separated album types")
	searchCmd.Flags().StringVar(&searchDecades, "decades", "", "comma-separated decades, e.g. 1980s,1990s")
	searchCmd.Flags().StringVar(&searchGenres, "genres", "", "comma-separated genres")
	searchCmd.Flags().IntVar(&searchMinRate, "min-rate", 0, "minimum rating")

	rootCmd.AddCommand(scanCmd, listCmd, getCmd, searchCmd, analyzeCmd, validateCmd, saveAnalysisCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
