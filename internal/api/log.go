package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

type logResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Count   int              `json:"count"`
}

// listLog returns the log newest first.
func (s *Server) listLog(c echo.Context) error {
	entries := s.deps.Log.Entries()
	return c.JSON(http.StatusOK, logResponse{Entries: entries, Count: len(entries)})
}

func (s *Server) logCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.deps.Log.WriteCSV(&buf); err != nil {
		return s.handleError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="batch_prediction_log.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// clearLog empties the log. The caller must pass confirm=true.
func (s *Server) clearLog(c echo.Context) error {
	if ok, _ := strconv.ParseBool(c.QueryParam("confirm")); !ok {
		return s.handleError(c, common.InvalidInput("Clearing the log cannot be undone. Repeat the request with confirm=true."))
	}
	cleared := s.deps.Log.Len()
	s.deps.Log.Clear()
	s.logger.Info("Prediction log cleared", "entries", cleared)
	return c.JSON(http.StatusOK, map[string]int{"cleared": cleared})
}
