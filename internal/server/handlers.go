package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/domain"
	"github.com/chronocop/chronocop/internal/timeslot"
	"github.com/gin-gonic/gin"
)

type entryRequest struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	Activity     string `json:"activity"`
	Type         string `json:"type"`
	EnergyImpact string `json:"energy_impact"`
}

type settingRequest struct {
	Value string `json:"value"`
}

type testNarrativeRequest struct {
	APIKey string `json:"api_key"`
}

func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs through the error handler and renders the uniform
// {"error": ...} payload. Internal details stay out of the response body.
func (s *Server) respondError(c *gin.Context, err error) {
	s.errs.Handle(c.Request.Context(), err)

	message := "Internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypePersistence && appErr.Type != apperrors.ErrorTypeInternal {
		message = appErr.Message
	}
	c.JSON(statusForError(err), gin.H{"error": message})
}

// Entries

func (s *Server) handleListEntries(c *gin.Context) {
	var start time.Time
	if weekStart := c.Query("week_start"); weekStart != "" {
		parsed, err := timeslot.ParseDate(weekStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		start = parsed
	} else {
		start = timeslot.WeekStart(time.Now())
	}
	end := start.AddDate(0, 0, 6)

	entries, err := s.entries.ListRange(c.Request.Context(),
		start.Format(timeslot.DateLayout), end.Format(timeslot.DateLayout))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if entries == nil {
		entries = []database.TimeEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	entry, err := s.entries.Create(c.Request.Context(), req.Date, req.StartTime, req.Activity,
		domain.ActivityType(req.Type), domain.EnergyImpact(req.EnergyImpact))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleUpdateEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	entry, err := s.entries.Update(c.Request.Context(), uint(id), req.Date, req.StartTime, req.Activity,
		domain.ActivityType(req.Type), domain.EnergyImpact(req.EnergyImpact))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	if err := s.entries.Delete(c.Request.Context(), uint(id)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Settings

func (s *Server) handleListSettings(c *gin.Context) {
	settings, err := s.settings.ListAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleGetSetting(c *gin.Context) {
	setting, err := s.settings.Lookup(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) handleSetSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	setting, err := s.settings.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) handleDeleteSetting(c *gin.Context) {
	if err := s.settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summaries

func (s *Server) handleGetDailySummary(c *gin.Context) {
	date := c.Param("date")
	if _, err := timeslot.ParseDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	summary, err := s.summaries.GetDaily(c.Request.Context(), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleGenerateDailySummary(c *gin.Context) {
	summary, err := s.summaries.GenerateDaily(c.Request.Context(), c.Param("date"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleGetWeeklySummary(c *gin.Context) {
	day, err := timeslot.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	// Any date inside the week is accepted; the cache is keyed by Monday.
	weekStart := timeslot.WeekStart(day).Format(timeslot.DateLayout)
	summary, err := s.summaries.GetWeekly(c.Request.Context(), weekStart)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleGenerateWeeklySummary(c *gin.Context) {
	summary, err := s.summaries.GenerateWeekly(c.Request.Context(), c.Param("date"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Narrative connectivity

func (s *Server) handleTestNarrative(c *gin.Context) {
	var req testNarrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: api_key"})
		return
	}

	if err := s.narrative.TestConnection(c.Request.Context(), req.APIKey); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
