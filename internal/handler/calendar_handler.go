package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derslik/derslik-api/internal/service"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
	"github.com/derslik/derslik-api/pkg/response"
)

// CalendarHandler serves the calendar grids and the ICS feed.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// View godoc
// @Summary Calendar grid view
// @Description Returns the day, week, month or year grid around the reference date, each cell carrying its availability verdict.
// @Tags Calendar
// @Produce json
// @Param granularity path string true "day, week, month or year"
// @Param date query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/view/{granularity} [get]
func (h *CalendarHandler) View(c *gin.Context) {
	reference := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
			return
		}
		reference = parsed
	}

	view, err := h.calendar.View(c.Request.Context(), c.Param("granularity"), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Feed godoc
// @Summary ICS calendar feed
// @Description Renders the schedule as an iCalendar file covering one year back and one ahead.
// @Tags Calendar
// @Produce text/calendar
// @Success 200 {string} string "ICS payload"
// @Router /calendar/feed.ics [get]
func (h *CalendarHandler) Feed(c *gin.Context) {
	payload, err := h.calendar.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="lessons.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", payload)
}
