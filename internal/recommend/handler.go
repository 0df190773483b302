package recommend

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
)

type Handler struct {
	Engine *Engine
	Logger logging.Logger
}

type eventResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Categories      []string `json:"categories,omitempty"`
	VenueName       string   `json:"venue_name,omitempty"`
	VenueType       string   `json:"venue_type,omitempty"`
	AttendeesCount  int      `json:"attendees_count"`
	InterestedCount int      `json:"interested_count"`
	// SimilarityPct is the blended score as a percentage, for display only.
	SimilarityPct *int `json:"similarity_pct,omitempty"`
}

type recommendationResponse struct {
	Success bool            `json:"success"`
	Events  []eventResponse `json:"events"`
	Message string          `json:"message,omitempty"`
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/recommendations/:userID", h.HandleGetRecommendations)
	router.POST("/api/recommendations/:userID/refresh", h.HandleRefreshRecommendations)
}

// HandleGetRecommendations serves the cached recommendation list, computing
// one when the profile has none.
func (h *Handler) HandleGetRecommendations(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	result := h.Engine.CachedOrCompute(c.Request.Context(), userID, parseK(c))
	c.JSON(http.StatusOK, toResponse(result))
}

// HandleRefreshRecommendations recomputes and re-caches the list on explicit
// user request.
func (h *Handler) HandleRefreshRecommendations(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	result := h.Engine.RefreshCached(c.Request.Context(), userID, parseK(c))
	c.JSON(http.StatusOK, toResponse(result))
}

func parseK(c *gin.Context) int {
	k := DefaultK
	if v := c.Query("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			k = n
		}
	}
	return k
}

func toResponse(result Result) recommendationResponse {
	resp := recommendationResponse{
		Success: result.Success,
		Events:  []eventResponse{},
		Message: result.Message,
	}
	for i, event := range result.Events {
		entry := eventResponse{
			ID:              event.ID,
			Title:           event.Title,
			Description:     event.Description,
			Categories:      event.Categories,
			VenueName:       event.VenueName,
			VenueType:       event.VenueType,
			AttendeesCount:  event.AttendeesCount,
			InterestedCount: event.InterestedCount,
		}
		if i < len(result.Scores) {
			pct := int(result.Scores[i] * 100)
			if pct > 100 {
				pct = 100
			}
			if pct < 0 {
				pct = 0
			}
			entry.SimilarityPct = &pct
		}
		resp.Events = append(resp.Events, entry)
	}
	return resp
}
