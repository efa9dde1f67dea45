// Package server exposes the import log over a small review API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mirshida/sf-dta/internal/config"
	"github.com/Mirshida/sf-dta/internal/store"
)

// Server is the HTTP review server.
type Server struct {
	router *gin.Engine
	store  *store.Store
}

// NewServer wires the routes over an already-open store.
func NewServer(cfg *config.AppConfig, st *store.Store) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.Default(),
		store:  st,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:id", s.getRun)
		api.GET("/runs/:id/cards", s.listCards)
	}
}

func (s *Server) listRuns(c *gin.Context) {
	runs, err := s.store.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) listCards(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.GetRun(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	cards, err := s.store.ListCards(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
