package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

// startBatch accepts a CSV either as the multipart field "file" or as the
// raw request body, and starts a background job over its rows.
func (s *Server) startBatch(c echo.Context) error {
	r, err := batchInput(c)
	if err != nil {
		return s.handleError(c, err)
	}
	defer func() { _ = r.Close() }()

	ds, err := batch.ParseCSV(r)
	if err != nil {
		return s.handleError(c, err)
	}

	job := s.jobs.Start(s.ctx, s.deps.NewRunner(), ds)
	s.logger.Info("Batch job started", "job", job.id, "rows", len(ds.Rows))

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/batch/"+job.id)
	return c.JSON(http.StatusAccepted, job.View())
}

func batchInput(c echo.Context) (io.ReadCloser, error) {
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		return fh.Open()
	case errors.Is(err, http.ErrMissingFile):
		return nil, common.InvalidInput("Please select a CSV file.")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, common.InvalidInput("Please select a CSV file.")
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (s *Server) job(c echo.Context) (*Job, error) {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "batch job not found")
	}
	return job, nil
}

func (s *Server) getBatch(c echo.Context) error {
	job, err := s.job(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job.View())
}

// batchCSV exports the rows settled so far. Pass features=true to include
// the derived feature columns.
func (s *Server) batchCSV(c echo.Context) error {
	job, err := s.job(c)
	if err != nil {
		return err
	}
	features, _ := strconv.ParseBool(c.QueryParam("features"))
	view := job.View()

	var buf bytes.Buffer
	if err := batch.WriteResultsCSV(&buf, view.Results, batch.ExportOptions{IncludeID: job.hasID, IncludeFeatures: features}); err != nil {
		return s.handleError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="prediction_results.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) cancelBatch(c echo.Context) error {
	job, err := s.job(c)
	if err != nil {
		return err
	}
	job.Cancel()
	if err := job.Wait(c.Request().Context()); err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, job.View())
}

func (s *Server) sampleCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := batch.WriteSampleCSV(&buf); err != nil {
		return s.handleError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sample_eggs.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
