package iomcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gizisehat/gizi/internal/iomcp"
	"github.com/gizisehat/gizi/internal/ioservice"
	"github.com/gizisehat/gizi/internal/iostore"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/refdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, gizi.Photo) (gizi.PhotoEstimate, error) {
	return gizi.PhotoEstimate{}, errors.New("gateway down")
}

type result struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorReply struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func server(t *testing.T) *httptest.Server {
	t.Helper()
	data, err := refdata.Default()
	require.NoError(t, err)
	clock := func() time.Time { return now }
	svc := ioservice.New(data, iostore.NewMemory(),
		ioservice.OptClock(clock),
		ioservice.OptPhotoAnalyzer(failingAnalyzer{}),
	)
	srv := httptest.NewServer(iomcp.New(svc, iomcp.OptClock(clock)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// call posts a tool call and returns the status and the raw body.
func call(t *testing.T, srv *httptest.Server, name, args string) (int, []byte) {
	t.Helper()
	body := `{"name":"` + name + `","arguments":` + args + `}`
	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw
}

// ok calls a tool that must succeed and decodes its JSON text content.
func ok(t *testing.T, srv *httptest.Server, name, args string, target any) {
	t.Helper()
	status, raw := call(t, srv, name, args)
	require.Equal(t, http.StatusOK, status, string(raw))
	var res result
	require.NoError(t, json.Unmarshal(raw, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), target))
}

func fail(t *testing.T, srv *httptest.Server, name, args string) (int, errorReply) {
	t.Helper()
	status, raw := call(t, srv, name, args)
	var res errorReply
	require.NoError(t, json.Unmarshal(raw, &res))
	return status, res
}

func TestTools(t *testing.T) {
	srv := server(t)

	var c struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	}
	ok(t, srv, "add_child",
		`{"id":"sari","name":"Sari","sex":"female","birth_date":"2026-01-01"}`, &c)
	assert.Equal(t, "sari", c.ID)
	assert.Equal(t, 1, c.Version)

	var a struct {
		Label      string            `json:"label"`
		Category   string            `json:"category"`
		Facilities []json.RawMessage `json:"facilities"`
		Entry      struct {
			ID string `json:"id"`
		} `json:"entry"`
	}
	ok(t, srv, "submit_measurement",
		`{"child_id":"sari","timestamp":"2026-09-01T09:00:00Z",
		  "weight_kg":8,"height_cm":70,"muac_cm":13.5}`, &a)
	assert.Equal(t, "Normal", a.Label)
	assert.Empty(t, a.Facilities)
	assert.NotEmpty(t, a.Entry.ID)

	ok(t, srv, "submit_measurement",
		`{"child_id":"sari","timestamp":"2026-09-15T09:00:00Z",
		  "weight_kg":8.1,"height_cm":70.5,"muac_cm":11}`, &a)
	assert.Equal(t, "Gizi Buruk", a.Label)
	assert.NotEmpty(t, a.Facilities)

	var hist []json.RawMessage
	ok(t, srv, "measurement_history", `{"child_id":"sari"}`, &hist)
	assert.Len(t, hist, 2)

	var chart struct {
		Curve struct {
			Metric string            `json:"metric"`
			Points []json.RawMessage `json:"points"`
		} `json:"curve"`
		Points []json.RawMessage `json:"points"`
	}
	ok(t, srv, "growth_chart", `{"child_id":"sari","metric":"hfa"}`, &chart)
	assert.Equal(t, "height-for-age", chart.Curve.Metric)
	assert.NotEmpty(t, chart.Curve.Points)
	assert.Len(t, chart.Points, 2)

	var entry struct {
		ID     string `json:"id"`
		Date   string `json:"date"`
		Source string `json:"source"`
	}
	ok(t, srv, "log_intake", `{"child_id":"sari","food_id":"telur-rebus"}`, &entry)
	assert.Equal(t, "2026-10-19", entry.Date)
	assert.Equal(t, "manual", entry.Source)
	ok(t, srv, "log_intake",
		`{"child_id":"sari","description":"ASI","nutrients":{"energy":100,"protein":2}}`, &entry)

	var prog struct {
		Entries int `json:"entries"`
		Items   []struct {
			Current float64 `json:"current"`
			Target  float64 `json:"target"`
		} `json:"items"`
	}
	ok(t, srv, "daily_progress", `{"child_id":"sari"}`, &prog)
	assert.Equal(t, 2, prog.Entries)
	assert.Len(t, prog.Items, 4)

	var recs []json.RawMessage
	ok(t, srv, "recommendations", `{"child_id":"sari","limit":2}`, &recs)
	assert.LessOrEqual(t, len(recs), 2)

	var plan struct {
		Band  string            `json:"band"`
		Meals []json.RawMessage `json:"meals"`
	}
	ok(t, srv, "meal_plan", `{"child_id":"sari"}`, &plan)
	assert.Equal(t, "9-11 bulan", plan.Band)
	assert.NotEmpty(t, plan.Meals)

	var sess struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
		Messages     []json.RawMessage `json:"messages"`
		QuickReplies []json.RawMessage `json:"quick_replies"`
	}
	ok(t, srv, "start_session", `{"child_id":"sari"}`, &sess)
	require.NotEmpty(t, sess.Session.ID)
	assert.Len(t, sess.Messages, 1)
	assert.NotEmpty(t, sess.QuickReplies)

	var msg struct {
		IntentID string `json:"intent_id"`
		Text     string `json:"text"`
	}
	ok(t, srv, "send_message",
		`{"session_id":"`+sess.Session.ID+`","text":"MPASI 9-11 bulan"}`, &msg)
	assert.Equal(t, "mpasi", msg.IntentID)
	ok(t, srv, "select_quick_reply",
		`{"session_id":"`+sess.Session.ID+`","intent_id":"budget"}`, &msg)
	assert.Equal(t, "budget", msg.IntentID)

	var facs []json.RawMessage
	ok(t, srv, "facilities", `{"limit":1}`, &facs)
	assert.Len(t, facs, 1)

	var cs []json.RawMessage
	ok(t, srv, "list_children", `{}`, &cs)
	assert.Len(t, cs, 1)

	ok(t, srv, "correct_child", `{"id":"sari","name":"Sari Dewi"}`, &c)
	assert.Equal(t, 2, c.Version)
}

func TestToolErrors(t *testing.T) {
	srv := server(t)
	var c json.RawMessage
	ok(t, srv, "add_child",
		`{"id":"sari","name":"Sari","sex":"female","birth_date":"2026-01-01"}`, &c)

	tests := []struct {
		msg, tool, args string
		status          int
		code            string
	}{
		{"bad sex", "add_child",
			`{"name":"X","sex":"x","birth_date":"2026-01-01"}`,
			http.StatusUnprocessableEntity, "validation_error"},
		{"bad date", "add_child",
			`{"name":"X","sex":"f","birth_date":"01/01/2026"}`,
			http.StatusBadRequest, "bad_request"},
		{"unknown child", "submit_measurement",
			`{"child_id":"nobody","weight_kg":8,"height_cm":70}`,
			http.StatusNotFound, "not_found"},
		{"no child id", "submit_measurement",
			`{"weight_kg":8,"height_cm":70}`,
			http.StatusBadRequest, "bad_request"},
		{"bad weight", "submit_measurement",
			`{"child_id":"sari","weight_kg":-1,"height_cm":70}`,
			http.StatusUnprocessableEntity, "validation_error"},
		{"wrong argument type", "submit_measurement",
			`{"child_id":"sari","weight_kg":"heavy"}`,
			http.StatusBadRequest, "bad_request"},
		{"photo failure", "log_photo",
			`{"child_id":"sari","image_base64":"aGVsbG8="}`,
			http.StatusBadGateway, "external_service_failure"},
		{"bad photo encoding", "log_photo",
			`{"child_id":"sari","image_base64":"%%%"}`,
			http.StatusBadRequest, "bad_request"},
		{"unknown session", "send_message",
			`{"session_id":"none","text":"halo"}`,
			http.StatusNotFound, "not_found"},
		{"meal plan without child", "meal_plan", `{}`,
			http.StatusBadRequest, "bad_request"},
		{"meal plan gap", "meal_plan", `{"child_id":"sari","date":"2031-06-01"}`,
			http.StatusUnprocessableEntity, "reference_data_gap"},
		{"unknown metric", "growth_chart", `{"child_id":"sari","metric":"iq"}`,
			http.StatusBadRequest, "bad_request"},
		{"chart of unknown child", "growth_chart", `{"child_id":"nobody"}`,
			http.StatusNotFound, "not_found"},
		{"unknown tool", "weather", `{}`,
			http.StatusNotFound, "unknown_tool"},
	}
	for _, v := range tests {
		status, res := fail(t, srv, v.tool, v.args)
		assert.Equal(t, v.status, status, v.msg)
		assert.Equal(t, v.code, res.Code, v.msg)
		assert.NotEmpty(t, res.Error, v.msg)
	}
}

func TestGapIsUnprocessable(t *testing.T) {
	srv := server(t)
	var c json.RawMessage
	ok(t, srv, "add_child",
		`{"id":"old","name":"Old","sex":"male","birth_date":"2020-01-01"}`, &c)
	status, res := fail(t, srv, "submit_measurement",
		`{"child_id":"old","weight_kg":20,"height_cm":110}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "reference_data_gap", res.Code)
}

func TestHTTP(t *testing.T) {
	srv := server(t)

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tools []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tools))
	assert.Len(t, tools, 15)
	assert.Equal(t, "add_child", tools[0].Name)

	resp2, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)

	resp3, err := http.Post(srv.URL, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}
