package interests

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
)

type Handler struct {
	Updater *Updater
	Logger  logging.Logger
}

type signalRequest struct {
	Keyword         string  `json:"keyword" binding:"required"`
	Confidence      float64 `json:"confidence"`
	Specificity     float64 `json:"specificity"`
	SourceMessageID string  `json:"source_message_id"`
}

type ingestRequest struct {
	Signals []signalRequest `json:"signals" binding:"required"`
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/users/:userID/interests", h.HandleIngestSignals)
}

// HandleIngestSignals appends extracted signals for a user and refreshes
// their interest embedding.
func (h *Handler) HandleIngestSignals(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	signals := make([]store.InterestSignal, 0, len(req.Signals))
	for _, s := range req.Signals {
		if s.Confidence < 0 || s.Confidence > 1 || s.Specificity < 0 || s.Specificity > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confidence and specificity must be in [0, 1]"})
			return
		}
		signals = append(signals, store.InterestSignal{
			Keyword:         s.Keyword,
			Confidence:      s.Confidence,
			Specificity:     s.Specificity,
			SourceMessageID: s.SourceMessageID,
		})
	}

	summary, err := h.Updater.Ingest(c.Request.Context(), userID, signals)
	if err != nil {
		h.Logger.WithFields(logging.Fields{"user_id": userID, "error": err}).Warn("Signal ingest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update interests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
