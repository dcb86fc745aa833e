package gizi

import (
	"context"

	"github.com/gizisehat/gizi/pkg/nutrient"
)

// Photo is a food picture submitted by a caregiver.
type Photo struct {
	Data []byte
	// MIMEType is "image/jpeg" when empty.
	MIMEType string
	// Hint is optional free text from the caregiver, e.g. "bubur ayam".
	Hint string
}

// PhotoEstimate is what the analysis provider recognised on a photo.
// When FoodID matches a catalog item its nutrients are used, otherwise
// Nutrients must describe the whole recognised portion.
type PhotoEstimate struct {
	Food       string            `json:"food"`
	FoodID     string            `json:"food_id,omitempty"`
	Portion    float64           `json:"portion"`
	Nutrients  *nutrient.Amounts `json:"nutrients,omitempty"`
	Confidence float64           `json:"confidence"`
}

// PhotoAnalyzer estimates food and nutrients from a photo. It is an
// external service and may fail or time out.
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, p Photo) (PhotoEstimate, error)
}
