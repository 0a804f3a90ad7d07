package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/morphometry"
	"github.com/aswin0605itsme-droid/Eggai/internal/research"
)

type researchRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Mode      string   `json:"mode"`
	Prompt    string   `json:"prompt"`
}

type featuresResponse struct {
	Measurement model.Measurement     `json:"measurement"`
	Features    model.DerivedFeatures `json:"features"`
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) researchQuery(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return s.handleError(c, common.InvalidInput("Request body must be JSON with mode and prompt."))
	}
	mode, err := research.ParseMode(req.Mode)
	if err != nil {
		return s.handleError(c, err)
	}

	locator := research.StaticLocator{Coordinate: s.deps.Location}
	if req.Latitude != nil && req.Longitude != nil {
		locator.Coordinate = &model.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	o := research.New(s.deps.Research, locator, s.logger)
	if err := o.SetMode(mode); err != nil {
		return s.handleError(c, err)
	}
	res, err := o.Query(c.Request().Context(), req.Prompt, nil)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) simulate(c echo.Context) error {
	var m model.Measurement
	if err := c.Bind(&m); err != nil {
		return s.handleError(c, common.InvalidInput("Request body must be JSON with mass, long_axis and short_axis."))
	}
	report, err := s.deps.Simulator.Predict(c.Request().Context(), m)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) features(c echo.Context) error {
	var m model.Measurement
	if err := c.Bind(&m); err != nil {
		return s.handleError(c, common.InvalidInput("Request body must be JSON with mass, long_axis and short_axis."))
	}
	f, ok := morphometry.Compute(m)
	if !ok {
		return s.handleError(c, common.InvalidInput("long axis and mass cannot be zero"))
	}
	return c.JSON(http.StatusOK, featuresResponse{Measurement: m, Features: f})
}

// generateImage returns the rendered image bytes directly.
func (s *Server) generateImage(c echo.Context) error {
	var req imageRequest
	if err := c.Bind(&req); err != nil {
		return s.handleError(c, common.InvalidInput("Request body must be JSON with a prompt."))
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return s.handleError(c, common.InvalidInput("Please enter a prompt."))
	}
	img, err := s.deps.Imager.GenerateImage(c.Request().Context(), prompt)
	if err != nil {
		return s.handleError(c, common.NewUserError("Failed to generate image. Please try again.", err))
	}
	return c.Blob(http.StatusOK, img.MIMEType, img.Data)
}
