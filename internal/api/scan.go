package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

type alignmentResponse struct {
	Band       model.AlignmentBand `json:"band"`
	Confidence float64             `json:"confidence"`
	Aligned    bool                `json:"aligned"`
}

func newAlignmentResponse(score model.AlignmentScore) alignmentResponse {
	return alignmentResponse{Band: score.Band(), Confidence: score.Confidence, Aligned: score.Aligned}
}

type captureResponse struct {
	Entry     model.LogEntry    `json:"entry"`
	Analysis  llm.FrameAnalysis `json:"analysis"`
	Alignment alignmentResponse `json:"alignment"`
}

func (s *Server) scanAlignment(c echo.Context) error {
	img, err := formImage(c, "frame")
	if err != nil {
		return s.handleError(c, err)
	}
	score, err := s.deps.Scanner.Alignment(c.Request().Context(), img)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, newAlignmentResponse(score))
}

func (s *Server) scanCapture(c echo.Context) error {
	img, err := formImage(c, "frame")
	if err != nil {
		return s.handleError(c, err)
	}
	res, score, err := s.deps.Scanner.Capture(c.Request().Context(), c.FormValue("batch_number"), img)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(http.StatusOK, captureResponse{
		Entry:     res.Entry,
		Analysis:  res.Analysis,
		Alignment: newAlignmentResponse(score),
	})
}
