package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListEquipment handles GET /api/v1/equipment. Read-only: equipment master
// data is owned by the fleet subsystem.
func (h *Handler) ListEquipment(c *gin.Context) {
	items, err := h.store.ListEquipment(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
