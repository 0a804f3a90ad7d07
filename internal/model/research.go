package model

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Citation is a grounding source. URI may be empty when the provider omits it.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundedAnswer is search-grounded text with its sources.
type GroundedAnswer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}
