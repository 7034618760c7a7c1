package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// StartRunRequest optionally overrides which ranked candidate the
// priority stage selects (zero-based index into the ranked order).
type StartRunRequest struct {
	ManualOverride *int `json:"manual_override,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleStartRun(c echo.Context) error {
	var req StartRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	run := s.runs.Start(req.ManualOverride)
	return c.JSON(http.StatusAccepted, run)
}

func (s *Server) handleListRuns(c echo.Context) error {
	return c.JSON(http.StatusOK, s.runs.List())
}

func (s *Server) handleGetRun(c echo.Context) error {
	run, ok := s.runs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleListWorkItems(c echo.Context) error {
	items, err := s.store.ListWorkItems(c.Request().Context())
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetWorkItem(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	item, err := s.store.GetWorkItem(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "work item not found")
		}
		return s.internalError(c, err)
	}

	resp := map[string]any{"work_item": item}
	if summary, err := s.store.GetRoutingSummary(ctx, id); err == nil {
		resp["routing_summary"] = summary
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClearWorkItems(c echo.Context) error {
	if err := s.store.Clear(c.Request().Context()); err != nil {
		return s.internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListMatches(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if _, err := s.store.GetWorkItem(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "work item not found")
		}
		return s.internalError(c, err)
	}

	results, err := s.store.ListMatchResults(ctx, id)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.Error("http.handler_failed",
		"uri", c.Request().RequestURI,
		"error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
