package gizi

import (
	"time"

	"github.com/gizisehat/gizi/pkg/growth"
)

// ChartPoint is a measurement of the child placed on a growth chart.
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Index     float64   `json:"index"`
	Value     float64   `json:"value"`
	Z         float64   `json:"z"`
}

// GrowthChart holds reference lines of a metric and the child's own
// measurements on it.
type GrowthChart struct {
	ChildID string       `json:"child_id"`
	Curve   growth.Curve `json:"curve"`
	Points  []ChartPoint `json:"points"`
}
