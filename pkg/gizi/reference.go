package gizi

import (
	"context"

	"github.com/gizisehat/gizi/pkg/refdata"
)

// ReferenceSource provides growth standards, nutrient targets, the food
// catalog, assistant intents and health facilities. Loaded data is
// immutable and shared by all components.
type ReferenceSource interface {
	Load(ctx context.Context) (*refdata.Data, error)
}
