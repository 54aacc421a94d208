package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derslik/derslik-api/internal/models"
	"github.com/derslik/derslik-api/internal/service"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
	"github.com/derslik/derslik-api/pkg/response"
)

// LessonHandler exposes the lesson CRUD, gesture and series endpoints.
type LessonHandler struct {
	lessons *service.LessonService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param from query string false "Start of range (YYYY-MM-DD or RFC3339)"
// @Param to query string false "End of range (YYYY-MM-DD or RFC3339)"
// @Param studentId query string false "Filter by student"
// @Param seriesId query string false "Filter by series"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	var filter models.LessonFilter
	if from, ok := parseTimeQuery(c.Query("from")); ok {
		filter.From = &from
	}
	if to, ok := parseTimeQuery(c.Query("to")); ok {
		filter.To = &to
	}
	filter.StudentID = c.Query("studentId")
	filter.SeriesID = c.Query("seriesId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	lessons, pagination, err := h.lessons.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Get godoc
// @Summary Get a lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Create a lesson
// @Description Creates a lesson after checking working hours, holidays and conflicts.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body models.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req models.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body models.UpdateLessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	var req models.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	lesson, err := h.lessons.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.lessons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Move godoc
// @Summary Move a lesson to another slot
// @Description Drops the lesson onto a new date and hour, preserving the minute offset when requested.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body models.MoveLessonRequest true "Target slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /lessons/{id}/move [post]
func (h *LessonHandler) Move(c *gin.Context) {
	var req models.MoveLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	lesson, err := h.lessons.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// ResolvePlacement godoc
// @Summary Resolve a placement gesture
// @Description Evaluates a click or drop gesture against the schedule. A denial is part of the result, not an error.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body models.PlacementRequest true "Gesture payload"
// @Success 200 {object} response.Envelope
// @Router /placements/resolve [post]
func (h *LessonHandler) ResolvePlacement(c *gin.Context) {
	var req models.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid placement payload"))
		return
	}
	result, err := h.lessons.ResolvePlacement(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CreateSeries godoc
// @Summary Create a recurring lesson series
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body models.CreateSeriesRequest true "Series payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /lessons/series [post]
func (h *LessonHandler) CreateSeries(c *gin.Context) {
	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid series payload"))
		return
	}
	result, err := h.lessons.CreateSeries(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListSeries godoc
// @Summary List the lessons of a series
// @Tags Lessons
// @Produce json
// @Param id path string true "Series ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/series/{id} [get]
func (h *LessonHandler) ListSeries(c *gin.Context) {
	lessons, err := h.lessons.ListSeries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// DeleteSeries godoc
// @Summary Delete a whole series
// @Tags Lessons
// @Produce json
// @Param id path string true "Series ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/series/{id} [delete]
func (h *LessonHandler) DeleteSeries(c *gin.Context) {
	deleted, err := h.lessons.DeleteSeries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// parseTimeQuery accepts either a bare date or a full RFC3339 timestamp.
func parseTimeQuery(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
