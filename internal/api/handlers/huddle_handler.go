package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradepulse/huddle-backend/internal/domain"
	"github.com/tradepulse/huddle-backend/internal/service"
)

type HuddleHandler struct {
	service *service.PacingService
}

func NewHuddleHandler(service *service.PacingService) *HuddleHandler {
	return &HuddleHandler{service: service}
}

// parseDate validates the date query parameter. Malformed dates are rejected
// here at the boundary; the calculator itself never sees them.
func (h *HuddleHandler) parseDate(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return time.Now(), true
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD: " + raw})
		return time.Time{}, false
	}

	return date, true
}

func (h *HuddleHandler) GetDashboard(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}
	scope := strings.TrimSpace(c.Query("scope"))

	board, err := h.service.HuddleDashboard(c.Request.Context(), date, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *HuddleHandler) GetPacing(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	period := strings.ToLower(strings.TrimSpace(c.DefaultQuery("period", domain.PeriodMTD)))
	scope := strings.TrimSpace(c.Query("scope"))

	result, err := h.service.ComputePacing(c.Request.Context(), date, period, scope)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrUnknownPeriod) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HuddleHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if categories == nil {
		categories = make([]string, 0)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *HuddleHandler) GetTargets(c *gin.Context) {
	scope := strings.TrimSpace(c.Query("scope"))

	year := time.Now().Year()
	if rawYear := strings.TrimSpace(c.Query("year")); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year: " + rawYear})
			return
		}
		year = parsed
	}

	targets, err := h.service.Targets(c.Request.Context(), scope, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if targets == nil {
		targets = make([]domain.Target, 0)
	}

	c.JSON(http.StatusOK, gin.H{"targets": targets})
}
