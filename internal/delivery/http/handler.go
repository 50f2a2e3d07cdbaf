package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/travelperks/dealdedup/internal/domain"
	"github.com/travelperks/dealdedup/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dedupService *usecase.DedupService
}

// NewHandler creates a new HTTP handler
func NewHandler(dedupService *usecase.DedupService) *Handler {
	return &Handler{
		dedupService: dedupService,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealdedup",
		"version": "1.0.0",
	})
}

// matchRequestBody is the body of POST /api/v1/deals/match.
// jsonDeals may be the deal array itself or a string holding it. When it is
// omitted the service falls back to the configured deal feed.
type matchRequestBody struct {
	HQText    string          `json:"hqText"`
	JSONDeals json.RawMessage `json:"jsonDeals"`
	Threshold int             `json:"threshold"`
}

// MatchDeals handles a full deduplication run
func (h *Handler) MatchDeals(c *gin.Context) {
	if h.dedupService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Deal matching service not configured",
		})
		return
	}

	var body matchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	jsonDeals, err := unwrapJSONDeals(body.JSONDeals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	report, err := h.dedupService.Run(c.Request.Context(), &domain.MatchRequest{
		HQText:    body.HQText,
		JSONDeals: jsonDeals,
		Threshold: body.Threshold,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		writeReportCSV(c, report)
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseRequestBody is the body of POST /api/v1/deals/parse.
// Empty or missing hqText parses to no deals.
type parseRequestBody struct {
	HQText string `json:"hqText"`
}

// ParseHQ parses HQ text and reports which deals repeat earlier ones
func (h *Handler) ParseHQ(c *gin.Context) {
	if h.dedupService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Deal matching service not configured",
		})
		return
	}

	var body parseRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	deals := h.dedupService.Parser().ParseHQDeals(body.HQText)
	_, duplicates := usecase.DedupeHQDeals(deals, false)

	c.JSON(http.StatusOK, gin.H{
		"count":      len(deals),
		"deals":      deals,
		"duplicates": duplicates,
	})
}

// CanonicalVendor resolves a free-form vendor name
func (h *Handler) CanonicalVendor(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "name query parameter is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"input":     name,
		"canonical": usecase.Canonicalize(name),
	})
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidJSON):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   domain.ErrInvalidJSON.Error(),
			"details": err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, domain.ErrFeedUnavailable):
		log.Printf("[HTTP] Request %s: deal feed unavailable: %v", c.GetString(requestIDKey), err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Deal feed unavailable",
		})
	default:
		log.Printf("[HTTP] Request %s failed: %v", c.GetString(requestIDKey), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

// unwrapJSONDeals accepts the deal array inline or as a JSON string.
// A missing or null value yields nil.
func unwrapJSONDeals(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return nil, domain.ErrInvalidJSON
		}
		return []byte(s), nil
	}

	return []byte(trimmed), nil
}
