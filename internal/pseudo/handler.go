package pseudo

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
)

type Handler struct {
	Generator *Generator
	Logger    logging.Logger
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/pseudo-events/generate", h.HandleGenerate)
}

// HandleGenerate runs one generation batch and returns the full batch result,
// including per-cluster errors, so the caller can decide whether to
// materialize the proposals.
func (h *Handler) HandleGenerate(c *gin.Context) {
	result := h.Generator.GenerateAll(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
