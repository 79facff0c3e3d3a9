package server

import (
	"net/http"

	"github.com/chronocop/chronocop/internal/apperrors"
	"github.com/chronocop/chronocop/internal/logger"
	"github.com/chronocop/chronocop/internal/services"
	"github.com/gin-gonic/gin"
)

// Server is the JSON HTTP surface of the time audit.
type Server struct {
	entries   *services.EntryService
	settings  *services.SettingsService
	summaries *services.SummaryService
	narrative *services.NarrativeService
	errs      *apperrors.Handler
	router    *gin.Engine
}

// NewServer wires the services into the API routes.
func NewServer(entries *services.EntryService, settings *services.SettingsService, summaries *services.SummaryService, narrative *services.NarrativeService) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		entries:   entries,
		settings:  settings,
		summaries: summaries,
		narrative: narrative,
		errs:      apperrors.NewHandler(logger.GetLogger()),
		router:    router,
	}

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/entries", s.handleListEntries)
		api.POST("/entries", s.handleCreateEntry)
		api.PUT("/entries/:id", s.handleUpdateEntry)
		api.DELETE("/entries/:id", s.handleDeleteEntry)

		api.GET("/settings", s.handleListSettings)
		api.GET("/settings/:key", s.handleGetSetting)
		api.PUT("/settings/:key", s.handleSetSetting)
		api.DELETE("/settings/:key", s.handleDeleteSetting)

		api.GET("/summaries/:date", s.handleGetDailySummary)
		api.POST("/summaries/:date/generate", s.handleGenerateDailySummary)

		api.GET("/weekly-summaries/:date", s.handleGetWeeklySummary)
		api.POST("/weekly-summaries/:date/generate", s.handleGenerateWeeklySummary)

		api.POST("/test-narrative", s.handleTestNarrative)
	}

	return s
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
