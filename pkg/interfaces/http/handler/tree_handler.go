package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/entities"
)

// TreeRequest is the body of POST /api/v1/bom/tree.
// Substitutes and inventory are included unless set to false.
type TreeRequest struct {
	ProductCodes       []string `json:"product_codes" binding:"required"`
	IncludeSubstitutes *bool    `json:"include_substitutes"`
	IncludeInventory   *bool    `json:"include_inventory"`
}

// InventoryTree returns the inventory-aware BOM tree of each requested product
func (h *GanttHandler) InventoryTree(c *gin.Context) {
	var req TreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	codes := make([]entities.MaterialCode, len(req.ProductCodes))
	for i, code := range req.ProductCodes {
		codes[i] = entities.MaterialCode(strings.TrimSpace(code))
	}
	result, err := h.svc.BuildInventoryTrees(c.Request.Context(), gantt.TreeRequest{
		ProductCodes:       codes,
		IncludeSubstitutes: boolOr(req.IncludeSubstitutes, true),
		IncludeInventory:   boolOr(req.IncludeInventory, true),
	})
	if err != nil {
		h.fail(c, strings.Join(req.ProductCodes, ","), err)
		return
	}
	Success(c, result)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
