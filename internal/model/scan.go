package model

// AlignmentBand is a coarse bucket over alignment confidence.
type AlignmentBand string

// Alignment bands.
const (
	BandPoor AlignmentBand = "poor"
	BandFair AlignmentBand = "fair"
	BandGood AlignmentBand = "good"
)

// AlignmentScore is the provider's judgement of how well an egg is framed.
type AlignmentScore struct {
	Confidence float64 `json:"confidence"`
	Aligned    bool    `json:"is_aligned"`
}

// Band buckets the confidence: poor up to 0.5, fair up to 0.8, good above.
func (s AlignmentScore) Band() AlignmentBand {
	switch {
	case s.Confidence > 0.8:
		return BandGood
	case s.Confidence > 0.5:
		return BandFair
	default:
		return BandPoor
	}
}

// Image is an encoded still image.
type Image struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether the image carries no bytes.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}
