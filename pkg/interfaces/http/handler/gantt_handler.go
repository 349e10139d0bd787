package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/application/dto"
	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cockpit/pkg/interfaces/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GanttHandler serves schedule trees and their exports
type GanttHandler struct {
	svc    *gantt.Service
	logger *zap.Logger
}

// NewGanttHandler creates a gantt handler
func NewGanttHandler(svc *gantt.Service, logger *zap.Logger) *GanttHandler {
	return &GanttHandler{svc: svc, logger: logging.OrNop(logger)}
}

// ScheduleRequest is the body of POST /api/v1/gantt/schedule
type ScheduleRequest struct {
	ProductCode     string        `json:"product_code" binding:"required"`
	ProductName     string        `json:"product_name"`
	ProductionStart entities.Date `json:"production_start"`
	ProductionEnd   entities.Date `json:"production_end"`
}

// Schedule builds the full schedule of one product
func (h *GanttHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, ok := h.build(c, gantt.GanttRequest{
		ProductCode:     entities.MaterialCode(req.ProductCode),
		ProductName:     req.ProductName,
		ProductionStart: req.ProductionStart,
		ProductionEnd:   req.ProductionEnd,
	})
	if !ok {
		return
	}
	Success(c, result)
}

// FlatResponse is the data of GET /api/v1/gantt/:product/flat
type FlatResponse struct {
	RunID     string             `json:"runId"`
	Rows      []dto.GanttRow     `json:"rows"`
	Total     int                `json:"total"`
	Truncated bool               `json:"truncated"`
	TimeRange entities.DateRange `json:"timeRange"`
	Warnings  []string           `json:"warnings"`
}

// Flat returns the schedule as pre-order rows
func (h *GanttHandler) Flat(c *gin.Context) {
	req, ok := requestFromQuery(c)
	if !ok {
		return
	}
	result, ok := h.build(c, req)
	if !ok {
		return
	}

	Success(c, FlatResponse{
		RunID:     result.RunID,
		Rows:      dto.NewGanttRows(result.Bars),
		Total:     len(result.Bars),
		Truncated: result.Truncated,
		TimeRange: result.TimeRange,
		Warnings:  result.Warnings,
	})
}

// ShortagesCSV exports the shortage rows as CSV in utf8 (default) or gbk
func (h *GanttHandler) ShortagesCSV(c *gin.Context) {
	encoding, err := csvsource.ParseEncoding(c.Query("encoding"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	req, ok := requestFromQuery(c)
	if !ok {
		return
	}
	result, ok := h.build(c, req)
	if !ok {
		return
	}

	charset := "utf-8"
	if encoding == csvsource.GBK {
		charset = "gbk"
	}
	setAttachment(c, fmt.Sprintf("shortages_%s.csv", req.ProductCode), "text/csv; charset="+charset)
	if err := export.WriteShortageCSV(c.Writer, gantt.ShortageRows(result), encoding); err != nil {
		h.logger.Error("Shortage CSV export failed", zap.Error(err))
		_ = c.Error(err)
	}
}

// ShortagesXLSX exports the shortage rows as a workbook
func (h *GanttHandler) ShortagesXLSX(c *gin.Context) {
	req, ok := requestFromQuery(c)
	if !ok {
		return
	}
	result, ok := h.build(c, req)
	if !ok {
		return
	}

	setAttachment(c, fmt.Sprintf("shortages_%s.xlsx", req.ProductCode), xlsxContentType)
	if err := export.WriteShortageXLSX(c.Writer, gantt.ShortageRows(result)); err != nil {
		h.logger.Error("Shortage XLSX export failed", zap.Error(err))
		_ = c.Error(err)
	}
}

// build runs the service and writes the error response when it fails
func (h *GanttHandler) build(c *gin.Context, req gantt.GanttRequest) (*dto.GanttResult, bool) {
	result, err := h.svc.BuildGantt(c.Request.Context(), req)
	if err != nil {
		h.fail(c, string(req.ProductCode), err)
		return nil, false
	}
	return result, true
}

// fail maps a service error to 400, 502 or 500
func (h *GanttHandler) fail(c *gin.Context, products string, err error) {
	var fetchErr *gantt.FetchError
	switch {
	case errors.Is(err, gantt.ErrInvalidRequest):
		BadRequest(c, err.Error())
	case errors.As(err, &fetchErr):
		h.logger.Warn("Supply data fetch failed",
			zap.String("product", products),
			zap.String("source", fetchErr.Source),
			zap.Error(fetchErr.Err),
		)
		BadGateway(c, err.Error(), gin.H{"retryable": true, "source": fetchErr.Source})
	default:
		h.logger.Error("Gantt build failed", zap.Error(err))
		InternalError(c, err.Error())
	}
}

// requestFromQuery reads :product plus start and end query dates
func requestFromQuery(c *gin.Context) (gantt.GanttRequest, bool) {
	req := gantt.GanttRequest{ProductCode: entities.MaterialCode(c.Param("product"))}

	for _, p := range []struct {
		name   string
		target *entities.Date
	}{
		{"start", &req.ProductionStart},
		{"end", &req.ProductionEnd},
	} {
		value := c.Query(p.name)
		if value == "" {
			BadRequest(c, fmt.Sprintf("query parameter %q is required", p.name))
			return req, false
		}
		date, err := entities.ParseDate(value)
		if err != nil {
			BadRequest(c, fmt.Sprintf("query parameter %q: %v", p.name, err))
			return req, false
		}
		*p.target = date
	}
	return req, true
}

func setAttachment(c *gin.Context, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
}
