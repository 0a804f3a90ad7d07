package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// analyzeTrailer is the JSON line written after the streamed analysis text.
type analyzeTrailer struct {
	Entry      *model.LogEntry `json:"entry,omitempty"`
	Prediction model.Label     `json:"prediction,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// analyzeImage streams the analysis text as it arrives, then a newline and a
// JSON trailer with the recorded log entry.
func (s *Server) analyzeImage(c echo.Context) error {
	img, err := formImage(c, "image")
	if err != nil {
		return s.handleError(c, err)
	}

	resp := c.Response()
	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
		resp.Header().Set("X-Content-Type-Options", "nosniff")
		resp.WriteHeader(http.StatusOK)
	}

	result, err := s.deps.Images.Analyze(c.Request().Context(), c.FormValue("batch_number"), img, func(frag string) {
		begin()
		_, _ = resp.Write([]byte(frag))
		resp.Flush()
	})
	if err != nil && !started {
		return s.handleError(c, err)
	}

	begin()
	trailer := analyzeTrailer{}
	if err != nil {
		s.logger.Warn("Image analysis failed mid-stream", "error", err)
		trailer.Error = common.UserMessage(err)
	} else {
		trailer.Entry = &result.Entry
		trailer.Prediction = result.Label
	}
	body, err := json.Marshal(trailer)
	if err != nil {
		return err
	}
	_, err = resp.Write(append(append([]byte("\n"), body...), '\n'))
	return err
}
