package gizi

import (
	"context"
	"iter"
	"time"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
)

// ChildCorrection lists fields a guardian may correct. Zero values keep
// the current value.
type ChildCorrection struct {
	Name      string    `json:"name,omitempty"`
	Sex       child.Sex `json:"sex,omitempty"`
	BirthDate time.Time `json:"birth_date,omitzero"`
}

// GrowthAssessmentAPI registers children and assesses their
// measurements.
type GrowthAssessmentAPI interface {
	// AddChild registers a new child. Empty ID gets a generated one.
	AddChild(ctx context.Context, c child.Child) (child.Child, error)

	// CorrectChild stores a new version of the child profile.
	CorrectChild(ctx context.Context, id string, fix ChildCorrection) (child.Child, error)

	// Child returns the latest version of a child.
	Child(ctx context.Context, id string) (child.Child, error)

	// Children lists registered children.
	Children(ctx context.Context) ([]child.Child, error)

	// SubmitMeasurement validates, classifies and appends a measurement.
	SubmitMeasurement(ctx context.Context, childID string, m history.Measurement) (history.Entry, error)

	// History returns the child's entries oldest first.
	History(ctx context.Context, childID string) (iter.Seq[history.Entry], error)

	// GrowthChart returns reference lines of the metric for the child's
	// sex with the child's effective measurements placed on them.
	GrowthChart(ctx context.Context, childID string, m growth.Metric) (GrowthChart, error)
}

// NutrientTrackerAPI logs food intake and reports daily progress.
type NutrientTrackerAPI interface {
	// LogIntake records an intake entry for the child.
	LogIntake(ctx context.Context, childID string, e nutrient.IntakeEntry) (nutrient.IntakeEntry, error)

	// LogPhoto analyses a food photo and logs the result for the day.
	// Nothing is logged when the analysis fails.
	LogPhoto(ctx context.Context, childID, date string, p Photo) (nutrient.IntakeEntry, error)

	// DailyProgress reports nutrient totals against the age target.
	DailyProgress(ctx context.Context, childID, date string) (nutrient.Progress, error)

	// Recommendations ranks foods that best close the day's deficit.
	Recommendations(ctx context.Context, childID, date string) ([]nutrient.Recommendation, error)

	// MealPlan returns the feeding schedule for the child's age on the day.
	MealPlan(ctx context.Context, childID, date string) (nutrient.DayPlan, error)
}

// AssistantAPI runs caregiver conversations.
type AssistantAPI interface {
	// StartSession opens a conversation about a child and returns it
	// with the greeting message.
	StartSession(ctx context.Context, childID string) (Session, []assistant.Message, error)

	// SendMessage answers free text.
	SendMessage(ctx context.Context, sessionID, text string) (assistant.Message, error)

	// SelectQuickReply answers a quick-reply chip by intent ID.
	SelectQuickReply(ctx context.Context, sessionID, intentID string) (assistant.Message, error)

	// Session returns all turns of a session in order.
	Session(ctx context.Context, sessionID string) ([]assistant.Message, error)

	// QuickReplies lists chips offered to caregivers.
	QuickReplies() []assistant.QuickReply
}

// FacilityAPI lists nearby health services.
type FacilityAPI interface {
	Facilities(service string, n int) []facility.Facility
}

// Gizi is the complete engine exposed to the CLI and the tool server.
type Gizi interface {
	GrowthAssessmentAPI
	NutrientTrackerAPI
	AssistantAPI
	FacilityAPI
	Close() error
}
