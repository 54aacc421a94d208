package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derslik/derslik-api/internal/service"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
	"github.com/derslik/derslik-api/pkg/response"
)

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Schedule godoc
// @Summary Download the schedule
// @Description Renders the lessons in the range as a CSV or PDF download.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Param from query string false "Start date (YYYY-MM-DD), defaults to today"
// @Param to query string false "End date exclusive (YYYY-MM-DD), defaults to from + 7 days"
// @Success 200 {string} string "File payload"
// @Failure 400 {object} response.Envelope
// @Router /exports/schedule [get]
func (h *ExportHandler) Schedule(c *gin.Context) {
	from := time.Now().Truncate(24 * time.Hour)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	to := from.AddDate(0, 0, 7)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	result, err := h.exports.Schedule(c.Request.Context(), service.ExportFormat(c.Query("format")), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
