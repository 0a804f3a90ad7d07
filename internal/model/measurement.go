// Package model defines the core domain models used throughout the application.
package model

// Measurement is one egg's raw morphological measurements.
// Mass is in grams, the axes in millimetres.
type Measurement struct {
	ID        string  `json:"id,omitempty"`
	Mass      float64 `json:"mass"`
	LongAxis  float64 `json:"long_axis"`
	ShortAxis float64 `json:"short_axis"`
}

// DerivedFeatures are the geometric features computed from a Measurement.
type DerivedFeatures struct {
	ShapeIndex  float64 `json:"shape_index"`
	Ovality     float64 `json:"ovality"`
	SurfaceArea float64 `json:"surface_area"`
	Volume      float64 `json:"volume"`
	Density     float64 `json:"density"`
}

// ResultRow is a batch input row paired with its prediction.
type ResultRow struct {
	Measurement
	PredictedSex Label `json:"predicted_sex"`
}
