package iomcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/facility"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/growth"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
)

// paramsError reports arguments that cannot be decoded.
type paramsError struct {
	err error
}

func (e paramsError) Error() string {
	return "invalid parameters: " + e.err.Error()
}

func (e paramsError) Unwrap() error {
	return e.err
}

// extractParams decodes tool arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	b, err := json.Marshal(req.Arguments)
	if err != nil {
		return paramsError{err: err}
	}
	if err = json.Unmarshal(b, target); err != nil {
		return paramsError{err: err}
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return paramsError{err: fmt.Errorf("%s is required", name)}
	}
	return nil
}

type ChildParams struct {
	ID        string `json:"id,omitempty" description:"Child ID, generated when empty"`
	Name      string `json:"name" description:"Child name"`
	Sex       string `json:"sex" description:"female or male"`
	BirthDate string `json:"birth_date" description:"Birth date YYYY-MM-DD"`
}

type CorrectChildParams struct {
	ID        string `json:"id" description:"Child ID"`
	Name      string `json:"name,omitempty" description:"Corrected name"`
	Sex       string `json:"sex,omitempty" description:"Corrected sex"`
	BirthDate string `json:"birth_date,omitempty" description:"Corrected birth date YYYY-MM-DD"`
}

type ChildIDParams struct {
	ChildID string `json:"child_id" description:"Child ID"`
}

type ChartParams struct {
	ChildID string `json:"child_id" description:"Child ID"`
	Metric  string `json:"metric,omitempty" description:"wfa, hfa, wfh, bfa or muac, defaults to wfa"`
}

type MeasurementParams struct {
	ChildID    string   `json:"child_id" description:"Child ID"`
	Timestamp  string   `json:"timestamp,omitempty" description:"RFC 3339 time of measurement, defaults to now"`
	WeightKg   float64  `json:"weight_kg" description:"Weight in kg"`
	HeightCm   float64  `json:"height_cm" description:"Length or height in cm"`
	MUACCm     *float64 `json:"muac_cm,omitempty" description:"Mid-upper arm circumference in cm"`
	Note       string   `json:"note,omitempty" description:"Free text note"`
	Supersedes string   `json:"supersedes,omitempty" description:"ID of a measurement this one corrects"`
}

type IntakeParams struct {
	ChildID     string            `json:"child_id" description:"Child ID"`
	Date        string            `json:"date,omitempty" description:"Day YYYY-MM-DD, defaults to today"`
	FoodID      string            `json:"food_id,omitempty" description:"Catalog food ID"`
	Portion     float64           `json:"portion,omitempty" description:"Number of catalog portions, defaults to 1"`
	Description string            `json:"description,omitempty" description:"What was eaten"`
	Nutrients   *nutrient.Amounts `json:"nutrients,omitempty" description:"Nutrients of an ad-hoc food"`
}

type PhotoParams struct {
	ChildID  string `json:"child_id" description:"Child ID"`
	Date     string `json:"date,omitempty" description:"Day YYYY-MM-DD, defaults to today"`
	Image    string `json:"image_base64" description:"Base64 encoded photo"`
	MIMEType string `json:"mime_type,omitempty" description:"Image MIME type"`
	Hint     string `json:"hint,omitempty" description:"What the caregiver thinks the food is"`
}

type DayParams struct {
	ChildID string `json:"child_id" description:"Child ID"`
	Date    string `json:"date,omitempty" description:"Day YYYY-MM-DD, defaults to today"`
	Limit   int    `json:"limit,omitempty" description:"Maximum number of foods"`
}

type MessageParams struct {
	SessionID string `json:"session_id" description:"Session ID"`
	Text      string `json:"text,omitempty" description:"Caregiver message"`
	IntentID  string `json:"intent_id,omitempty" description:"Quick-reply intent ID"`
}

type FacilityParams struct {
	Service string `json:"service,omitempty" description:"Required service, e.g. Imunisasi"`
	Limit   int    `json:"limit,omitempty" description:"Maximum number of facilities"`
}

// Assessment is the reply of submit_measurement.
type Assessment struct {
	Entry      history.Entry       `json:"entry"`
	Label      string              `json:"label"`
	Category   string              `json:"category"`
	Advice     string              `json:"advice"`
	Facilities []facility.Facility `json:"facilities,omitempty"`
}

type SessionReply struct {
	Session      gizi.Session           `json:"session"`
	Messages     []assistant.Message    `json:"messages"`
	QuickReplies []assistant.QuickReply `json:"quick_replies"`
}

func (s *Server) registerTools() map[string]tool {
	return map[string]tool{
		"add_child": {
			"Register a child for growth monitoring", s.handleAddChild},
		"correct_child": {
			"Store a corrected version of a child profile", s.handleCorrectChild},
		"list_children": {
			"List registered children", s.handleListChildren},
		"submit_measurement": {
			"Assess and record weight, height and MUAC of a child", s.handleSubmitMeasurement},
		"measurement_history": {
			"Measurements of a child with statuses and trends", s.handleHistory},
		"growth_chart": {
			"Reference lines of a growth metric with the child's measurements", s.handleGrowthChart},
		"log_intake": {
			"Log food eaten by a child", s.handleLogIntake},
		"log_photo": {
			"Log food eaten by a child from a photo", s.handleLogPhoto},
		"daily_progress": {
			"Nutrient intake of a day against the age target", s.handleDailyProgress},
		"recommendations": {
			"Foods that best close the nutrient gap of a day", s.handleRecommendations},
		"meal_plan": {
			"Daily feeding schedule for the age of a child", s.handleMealPlan},
		"start_session": {
			"Start an assistant conversation about a child", s.handleStartSession},
		"send_message": {
			"Ask the assistant a question", s.handleSendMessage},
		"select_quick_reply": {
			"Answer a quick-reply chip", s.handleSelectQuickReply},
		"facilities": {
			"Nearest health facilities", s.handleFacilities},
	}
}

func (s *Server) today(date string) string {
	if strings.TrimSpace(date) == "" {
		return nutrient.DateOf(s.now())
	}
	return date
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	res, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, paramsError{err: fmt.Errorf("%s %q is not YYYY-MM-DD", field, s)}
	}
	return res, nil
}

func parseSex(s string) (child.Sex, error) {
	if s == "" {
		return child.UnknownSex, nil
	}
	return child.ParseSex(s)
}

func (s *Server) handleAddChild(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p ChildParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	sex, err := parseSex(p.Sex)
	if err != nil {
		return nil, err
	}
	birth, err := parseDay("birth_date", p.BirthDate)
	if err != nil {
		return nil, err
	}
	return s.svc.AddChild(ctx, child.Child{
		ID: p.ID, Name: p.Name, Sex: sex, BirthDate: birth,
	})
}

func (s *Server) handleCorrectChild(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p CorrectChildParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("id", p.ID); err != nil {
		return nil, err
	}
	sex, err := parseSex(p.Sex)
	if err != nil {
		return nil, err
	}
	birth, err := parseDay("birth_date", p.BirthDate)
	if err != nil {
		return nil, err
	}
	return s.svc.CorrectChild(ctx, p.ID, gizi.ChildCorrection{
		Name: p.Name, Sex: sex, BirthDate: birth,
	})
}

func (s *Server) handleListChildren(ctx context.Context, _ *protocol.CallToolRequest) (any, error) {
	return s.svc.Children(ctx)
}

func (s *Server) handleSubmitMeasurement(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p MeasurementParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("child_id", p.ChildID); err != nil {
		return nil, err
	}
	ts := s.now()
	if p.Timestamp != "" {
		var err error
		if ts, err = time.Parse(time.RFC3339, p.Timestamp); err != nil {
			return nil, paramsError{err: fmt.Errorf("timestamp %q is not RFC 3339", p.Timestamp)}
		}
	}
	e, err := s.svc.SubmitMeasurement(ctx, p.ChildID, history.Measurement{
		Timestamp:  ts,
		WeightKg:   p.WeightKg,
		HeightCm:   p.HeightCm,
		MUACCm:     p.MUACCm,
		Note:       p.Note,
		Supersedes: p.Supersedes,
	})
	if err != nil {
		return nil, err
	}
	res := Assessment{
		Entry:    e,
		Label:    e.Status.Verdict.Label(),
		Category: e.Status.Verdict.Category().String(),
		Advice:   e.Status.Verdict.Advice(),
	}
	if e.Status.RequiresReferral {
		res.Facilities = s.svc.Facilities("", 3)
	}
	return res, nil
}

func (s *Server) handleHistory(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p ChildIDParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	seq, err := s.svc.History(ctx, p.ChildID)
	if err != nil {
		return nil, err
	}
	res := slices.Collect(seq)
	if res == nil {
		res = []history.Entry{}
	}
	return res, nil
}

func (s *Server) handleLogIntake(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p IntakeParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("child_id", p.ChildID); err != nil {
		return nil, err
	}
	if p.Portion == 0 {
		p.Portion = 1
	}
	return s.svc.LogIntake(ctx, p.ChildID, nutrient.IntakeEntry{
		Date:        s.today(p.Date),
		FoodID:      p.FoodID,
		AdHoc:       p.Nutrients,
		Portion:     p.Portion,
		Description: p.Description,
	})
}

func (s *Server) handleLogPhoto(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p PhotoParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("child_id", p.ChildID); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(p.Image)
	if err != nil {
		return nil, paramsError{err: fmt.Errorf("image_base64: %w", err)}
	}
	return s.svc.LogPhoto(ctx, p.ChildID, s.today(p.Date), gizi.Photo{
		Data: data, MIMEType: p.MIMEType, Hint: p.Hint,
	})
}

func (s *Server) handleDailyProgress(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p DayParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	return s.svc.DailyProgress(ctx, p.ChildID, s.today(p.Date))
}

func (s *Server) handleRecommendations(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p DayParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	res, err := s.svc.Recommendations(ctx, p.ChildID, s.today(p.Date))
	if err != nil {
		return nil, err
	}
	if p.Limit > 0 && len(res) > p.Limit {
		res = res[:p.Limit]
	}
	if res == nil {
		res = []nutrient.Recommendation{}
	}
	return res, nil
}

func (s *Server) handleStartSession(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p ChildIDParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	sess, msgs, err := s.svc.StartSession(ctx, p.ChildID)
	if err != nil {
		return nil, err
	}
	return SessionReply{
		Session:      sess,
		Messages:     msgs,
		QuickReplies: s.svc.QuickReplies(),
	}, nil
}

func (s *Server) handleSendMessage(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p MessageParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	return s.svc.SendMessage(ctx, p.SessionID, p.Text)
}

func (s *Server) handleSelectQuickReply(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p MessageParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	return s.svc.SelectQuickReply(ctx, p.SessionID, p.IntentID)
}

func (s *Server) handleFacilities(_ context.Context, req *protocol.CallToolRequest) (any, error) {
	var p FacilityParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	return s.svc.Facilities(p.Service, p.Limit), nil
}

func (s *Server) handleMealPlan(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p DayParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("child_id", p.ChildID); err != nil {
		return nil, err
	}
	return s.svc.MealPlan(ctx, p.ChildID, s.today(p.Date))
}

func (s *Server) handleGrowthChart(ctx context.Context, req *protocol.CallToolRequest) (any, error) {
	var p ChartParams
	if err := extractParams(req, &p); err != nil {
		return nil, err
	}
	if err := required("child_id", p.ChildID); err != nil {
		return nil, err
	}
	m := growth.WeightForAge
	if p.Metric != "" {
		if m = growth.ParseMetric(p.Metric); m == growth.UnknownMetric {
			return nil, paramsError{err: fmt.Errorf("unknown metric %q", p.Metric)}
		}
	}
	return s.svc.GrowthChart(ctx, p.ChildID, m)
}
