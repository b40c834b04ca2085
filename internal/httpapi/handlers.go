package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/memoryscramble/board"
	"example.com/memoryscramble/internal/scripting"
)

const plainText = "text/plain; charset=utf-8"

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleLook(c *gin.Context) {
	rendering, err := s.board.View(c.Param("pid"))
	respond(c, rendering, err)
}

func (s *Server) handleFlip(c *gin.Context) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		errorToConflict(c, board.ErrBadArgument)
		return
	}
	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		errorToConflict(c, board.ErrBadArgument)
		return
	}

	err = s.board.Flip(c.Request.Context(), c.Param("pid"), row, col)
	if err != nil {
		errorToConflict(c, err)
		return
	}
	rendering, err := s.board.View(c.Param("pid"))
	respond(c, rendering, err)
}

func (s *Server) handleReplace(c *gin.Context) {
	from, to := c.Param("from"), c.Param("to")
	err := s.board.Map(c.Request.Context(), func(_ context.Context, token string) (string, error) {
		if token == from {
			return to, nil
		}
		return token, nil
	})
	if err != nil {
		errorToConflict(c, err)
		return
	}
	rendering, err := s.board.View(c.Param("pid"))
	respond(c, rendering, err)
}

func (s *Server) handleScript(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errorToConflict(c, board.ErrBadArgument)
		return
	}

	compiler, err := scripting.Compile(string(body))
	if err != nil {
		errorToConflict(c, board.ErrBadArgument)
		return
	}

	if err := s.board.Map(c.Request.Context(), compiler.Transform); err != nil {
		errorToConflict(c, err)
		return
	}
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleWatch(c *gin.Context) {
	handle, err := s.board.Watch(c.Param("pid"))
	if err != nil {
		errorToConflict(c, err)
		return
	}

	select {
	case rendering := <-handle.C():
		c.Data(http.StatusOK, plainText, []byte(rendering))
	case <-c.Request.Context().Done():
		handle.Cancel()
		c.Status(http.StatusRequestTimeout)
	}
}

func respond(c *gin.Context, rendering string, err error) {
	if err != nil {
		errorToConflict(c, err)
		return
	}
	c.Data(http.StatusOK, plainText, []byte(rendering))
}

// errorToConflict maps every board error kind (spec.md §7) to HTTP 409, the
// single status the external façade ever returns for a failed Board call.
func errorToConflict(c *gin.Context, err error) {
	c.Data(http.StatusConflict, plainText, []byte(err.Error()))
}
