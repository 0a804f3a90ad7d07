package analyzer

import (
	"regexp"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

var labelPattern = regexp.MustCompile(`(?i)\b(male|female)\b`)

// ScrapeLabel returns the first whole-word male or female in text, or
// LabelUnknown when neither appears.
func ScrapeLabel(text string) model.Label {
	m := labelPattern.FindStringSubmatch(text)
	if m == nil {
		return model.LabelUnknown
	}
	return model.ParseLabel(m[1])
}
