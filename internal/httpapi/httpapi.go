// Package httpapi is the thin gin transport (spec.md "C8 external
// interfaces", "A5") that wraps internal/collection.Collection. It holds no
// business logic: every handler translates a request into a Collection
// call and maps the typed Error back to an HTTP status.
package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bandvault/internal/collection"
	"bandvault/internal/collectionmodel"
	"bandvault/internal/query"
)

// Handler wraps a Collection for gin registration.
type Handler struct {
	col *collection.Collection
}

// New builds a Handler around col.
func New(col *collection.Collection) *Handler {
	return &Handler{col: col}
}

// Register attaches every route to router.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/bands", h.listBands)
	router.GET("/bands/:name", h.getBand)
	router.POST("/bands/:name/metadata", h.saveBandMetadata)
	router.POST("/bands/:name/analysis", h.saveBandAnalysis)
	router.POST("/bands/:name/validate", h.validateBandMetadata)
	router.GET("/search/albums", h.searchAlbums)
	router.GET("/analytics", h.analytics)
	router.POST("/scan", h.scan)
}

func statusFor(kind collection.ErrorKind) int {
	switch kind {
	case collection.ErrNotFound:
		return http.StatusNotFound
	case collection.ErrValidation:
		return http.StatusUnprocessableEntity
	case collection.ErrConflict:
		return http.StatusConflict
	case collection.ErrCancelled:
		return http.StatusRequestTimeout
	case collection.ErrCorrupt:
		return http.StatusUnprocessableEntity
	case collection.ErrIO:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err *collection.Error) {
	body := gin.H{"error": string(err.Kind), "message": err.Message}
	if err.Remediation != "" {
		body["remediation"] = err.Remediation
	}
	if len(err.Issues) > 0 {
		body["issues"] = err.Issues
	}
	c.JSON(statusFor(err.Kind), body)
}

func (h *Handler) listBands(c *gin.Context) {
	filter := query.ListFilter{
		TextContains: c.Query("q"),
		Genre:        c.Query("genre"),
	}
	if v := c.Query("has_metadata"); v != "" {
		b := v == "true"
		filter.HasMetadata = &b
	}
	if v := c.Query("has_missing_albums"); v != "" {
		b := v == "true"
		filter.HasMissingAlbums = &b
	}

	sort_ := query.ListSort{
		Key:        query.SortKey(c.DefaultQuery("sort", string(query.SortByName))),
		Descending: c.Query("order") == "desc",
	}
	page := query.Page{
		Number: parseIntParam(c, "page", 1),
		Size:   parseIntParam(c, "page_size", 20),
	}
	detail := query.AlbumDetailScope(c.Query("detail"))

	result, err := h.col.ListBands(filter, sort_, page, detail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getBand(c *gin.Context) {
	band, err := h.col.GetBand(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, band)
}

func (h *Handler) saveBandMetadata(c *gin.Context) {
	var band collectionmodel.Band
	if bindErr := c.ShouldBindJSON(&band); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "message": bindErr.Error()})
		return
	}
	report, err := h.col.SaveBandMetadata(c.Param("name"), band)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) saveBandAnalysis(c *gin.Context) {
	var analysis collectionmodel.BandAnalysis
	if bindErr := c.ShouldBindJSON(&analysis); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "message": bindErr.Error()})
		return
	}
	report, err := h.col.SaveBandAnalysis(c.Param("name"), analysis)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) validateBandMetadata(c *gin.Context) {
	raw, readErr := io.ReadAll(c.Request.Body)
	if readErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": readErr.Error()})
		return
	}
	issues, err := h.col.ValidateBandMetadata(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "valid": len(issues) == 0})
}

func (h *Handler) searchAlbums(c *gin.Context) {
	filter := query.AlbumSearchFilter{
		YearMin: c.Query("year_min"),
		YearMax: c.Query("year_max"),
	}
	if v := c.Query("types"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Types = append(filter.Types, collectionmodel.AlbumType(t))
		}
	}
	if v := c.Query("decades"); v != "" {
		filter.Decades = strings.Split(v, ",")
	}
	if v := c.Query("editions"); v != "" {
		filter.Editions = strings.Split(v, ",")
	}
	if v := c.Query("genres"); v != "" {
		filter.Genres = strings.Split(v, ",")
	}
	if v := c.Query("bands"); v != "" {
		filter.BandNames = strings.Split(v, ",")
	}
	if v := c.Query("has_rating"); v != "" {
		b := v == "true"
		filter.HasRating = &b
	}
	if v := c.Query("is_local"); v != "" {
		b := v == "true"
		filter.IsLocal = &b
	}
	filter.RatingMin = parseIntParam(c, "rating_min", 0)
	filter.RatingMax = parseIntParam(c, "rating_max", 0)
	filter.TrackMin = parseIntParam(c, "track_min", 0)
	filter.TrackMax = parseIntParam(c, "track_max", 0)

	result, err := h.col.SearchAlbums(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) analytics(c *gin.Context) {
	insights, err := h.col.Analytics()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (h *Handler) scan(c *gin.Context) {
	report, err := h.col.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseIntParam(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
