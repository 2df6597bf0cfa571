package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/bluesky-social/mergetree/internal/mergetree/input"
	"github.com/bluesky-social/mergetree/internal/mergetree/metrics"
	"github.com/bluesky-social/mergetree/internal/mergetree/render"
	"github.com/bluesky-social/mergetree/internal/mergetree/submission"
	"github.com/bluesky-social/mergetree/mergesort"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
)

const (
	noticeSorted       = "Array sorted successfully!"
	noticeEmptyInput   = "Please enter some numbers to sort!"
	noticeInvalidInput = "Invalid input! Please enter only numbers separated by commas."

	maxRandomValues     = 32
	defaultRandomValues = 8
)

func (s *Server) WebHome(c echo.Context) error {
	info := pongo2.Context{}

	if q := c.QueryParam("random"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			n = defaultRandomValues
		}
		info["numbers"] = input.Format(input.Random(min(n, maxRandomValues)))
	}

	info["maxValues"] = s.maxValues()
	return c.Render(http.StatusOK, "home.html", info)
}

// e.POST("/sort", s.WebSort)
func (s *Server) WebSort(c echo.Context) error {
	ctx := c.Request().Context()
	raw := c.FormValue("numbers")

	numbers, err := input.Parse(raw, s.maxValues())
	if err != nil {
		metrics.SortsTotal.WithLabelValues("web", statusForError(err)).Inc()
		s.log.Debug("rejected sort input", "err", err)
		info := pongo2.Context{
			"numbers":     raw,
			"maxValues":   s.maxValues(),
			"error":       noticeForError(err, s.maxValues()),
			"errorDetail": err.Error(),
		}
		return c.Render(http.StatusBadRequest, "home.html", info)
	}

	sub := s.store.Submit(ctx, numbers)
	metrics.SortsTotal.WithLabelValues("web", metrics.StatusOK).Inc()
	s.log.Debug("sorted submission", "id", sub.ID, "length", len(numbers), "nodes", sub.Nodes)

	if err := s.recordSubmission(c, sub.ID); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return c.Redirect(http.StatusSeeOther, "/sort/"+sub.ID)
}

// e.GET("/sort/:id", s.WebSubmission)
func (s *Server) WebSubmission(c echo.Context) error {
	id := c.Param("id")
	sub, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "sort not found; it may have expired")
		}
		return err
	}

	// only ever show a client its most recent submission
	if latest := s.supersededBy(c, id); latest != "" {
		if _, err := s.store.Get(latest); err == nil {
			metrics.SubmissionsSuperseded.Inc()
			return c.Redirect(http.StatusFound, "/sort/"+latest)
		}
	}

	info := pongo2.Context{
		"id":      sub.ID,
		"numbers": input.Format(sub.Input),
	}

	if !s.store.Ready(sub) {
		info["refreshSeconds"] = int(math.Ceil(s.store.Remaining(sub).Seconds()))
		return c.Render(http.StatusOK, "loading.html", info)
	}

	info["steps"] = render.Steps(sub.Tree)
	info["result"] = input.Format(sub.Tree.Result)
	info["nodes"] = sub.Nodes
	info["depth"] = sub.Depth
	info["notice"] = noticeSorted
	return c.Render(http.StatusOK, "tree.html", info)
}

type SortRequest struct {
	Input string `json:"input"`
}

type SortResponse struct {
	ID    string                   `json:"id"`
	Tree  *mergesort.Node[float64] `json:"tree"`
	Nodes int                      `json:"nodes"`
	Depth int                      `json:"depth"`
}

// e.POST("/api/sort", s.APISort)
func (s *Server) APISort(c echo.Context) error {
	ctx := c.Request().Context()

	var req SortRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: "BadRequest", Message: "expected JSON body with an 'input' string"})
	}

	numbers, err := input.Parse(req.Input, s.maxValues())
	if err != nil {
		metrics.SortsTotal.WithLabelValues("api", statusForError(err)).Inc()
		return c.JSON(http.StatusBadRequest, APIError{Error: errorName(err), Message: err.Error()})
	}

	sub := s.store.Submit(ctx, numbers)
	metrics.SortsTotal.WithLabelValues("api", metrics.StatusOK).Inc()

	return c.JSON(http.StatusOK, SortResponse{
		ID:    sub.ID,
		Tree:  sub.Tree,
		Nodes: sub.Nodes,
		Depth: sub.Depth,
	})
}

func statusForError(err error) string {
	switch {
	case errors.Is(err, input.ErrEmptyInput):
		return metrics.StatusEmptyInput
	case errors.Is(err, input.ErrTooManyValues):
		return metrics.StatusTooManyValues
	default:
		return metrics.StatusInvalidToken
	}
}

func errorName(err error) string {
	switch {
	case errors.Is(err, input.ErrEmptyInput):
		return "EmptyInput"
	case errors.Is(err, input.ErrTooManyValues):
		return "TooManyValues"
	default:
		return "InvalidToken"
	}
}

func noticeForError(err error, maxValues int) string {
	switch {
	case errors.Is(err, input.ErrEmptyInput):
		return noticeEmptyInput
	case errors.Is(err, input.ErrTooManyValues):
		return fmt.Sprintf("Too many numbers! Please enter at most %d values.", maxValues)
	default:
		return noticeInvalidInput
	}
}
