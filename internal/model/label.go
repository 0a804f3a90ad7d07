package model

import "strings"

// Label is a canonical prediction label.
type Label string

// Label constants. Error is only produced by the batch runner for failed rows.
const (
	LabelMale    Label = "male"
	LabelFemale  Label = "female"
	LabelUnknown Label = "unknown"
	LabelError   Label = "error"
)

// ParseLabel normalizes a provider-supplied label of any casing.
// Anything outside the known set becomes LabelUnknown.
func ParseLabel(s string) Label {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelMale:
		return LabelMale
	case LabelFemale:
		return LabelFemale
	case LabelError:
		return LabelError
	default:
		return LabelUnknown
	}
}

// Title returns the display form of the label, e.g. "Male".
func (l Label) Title() string {
	if l == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// IsDecided reports whether the label is male or female.
func (l Label) IsDecided() bool {
	return l == LabelMale || l == LabelFemale
}
