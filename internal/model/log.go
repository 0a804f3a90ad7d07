package model

import "time"

// Source identifies which entry point produced a log entry.
type Source string

// Log entry sources.
const (
	SourceImage    Source = "Image"
	SourceLiveScan Source = "Live Scan"
)

// LogEntry is one attempted single-item analysis. Entries are immutable once created.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	BatchNumber string    `json:"batch_number"`
	Prediction  Label     `json:"prediction"`
	Source      Source    `json:"source"`
}
