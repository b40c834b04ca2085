// Package httpapi exposes board.Board over HTTP with github.com/gin-gonic/gin,
// implementing the external interface named in spec.md §6: look, flip,
// replace, script, watch, and a liveness-only health check.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"example.com/memoryscramble/board"
)

// Server wraps a *gin.Engine bound to a single board.Board.
type Server struct {
	engine *gin.Engine
	board  *board.Board
}

// New builds a Server with every route registered, ready to Run.
func New(b *board.Board) *Server {
	s := &Server{engine: gin.Default(), board: b}
	s.routes()
	return s
}

// Engine exposes the underlying *gin.Engine, e.g. for httptest.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts listening on addr, blocking until the server stops or errors.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.GET("/look/:pid", s.handleLook)
	s.engine.GET("/flip/:pid/:row/:col", s.handleFlip)
	s.engine.GET("/replace/:pid/:from/:to", s.handleReplace)
	s.engine.POST("/script", s.handleScript)
	s.engine.GET("/watch/:pid", s.handleWatch)
	s.engine.GET("/health", s.handleHealth)
}
