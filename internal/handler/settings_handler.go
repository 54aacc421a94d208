package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derslik/derslik-api/internal/service"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
	"github.com/derslik/derslik-api/pkg/response"
)

// SettingsHandler exposes the planner configuration endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get schedule settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateWorkingHours godoc
// @Summary Replace the weekly working hours
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.WorkingHoursUpdate true "Working hours"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /settings/working-hours [put]
func (h *SettingsHandler) UpdateWorkingHours(c *gin.Context) {
	var req service.WorkingHoursUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid working hours payload"))
		return
	}
	view, err := h.settings.UpdateWorkingHours(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdatePreferences godoc
// @Summary Update planner preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.PreferencesUpdate true "Preferences"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /settings/preferences [put]
func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	var req service.PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}
	view, err := h.settings.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ListCustomHolidays godoc
// @Summary List custom holidays
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/holidays [get]
func (h *SettingsHandler) ListCustomHolidays(c *gin.Context) {
	holidays, err := h.settings.ListCustomHolidays(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}

// CreateCustomHoliday godoc
// @Summary Add a custom holiday
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.CustomHolidayRequest true "Holiday"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /settings/holidays [post]
func (h *SettingsHandler) CreateCustomHoliday(c *gin.Context) {
	var req service.CustomHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday payload"))
		return
	}
	holiday, err := h.settings.CreateCustomHoliday(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// DeleteCustomHoliday godoc
// @Summary Remove a custom holiday
// @Tags Settings
// @Param id path int true "Holiday ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /settings/holidays/{id} [delete]
func (h *SettingsHandler) DeleteCustomHoliday(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "holiday id must be numeric"))
		return
	}
	if err := h.settings.DeleteCustomHoliday(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NationalHolidays godoc
// @Summary National holidays for a year
// @Tags Settings
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} response.Envelope
// @Router /settings/holidays/national [get]
func (h *SettingsHandler) NationalHolidays(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
			return
		}
		year = parsed
	}
	response.JSON(c, http.StatusOK, h.settings.NationalHolidays(year), nil)
}
