package iophoto_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gizisehat/gizi/internal/iophoto"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateway(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openrouter-gateway", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Method string `json:"method"`
			Params struct {
				Name      string         `json:"name"`
				Arguments map[string]any `json:"arguments"`
			} `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tools/call", req.Method)
		assert.Equal(t, "create_completion", req.Params.Name)
		assert.Equal(t, "vision-model", req.Params.Arguments["model"])

		if status != http.StatusOK {
			http.Error(w, "upstream down", status)
			return
		}
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"content": []map[string]any{{"type": "text", "text": text}},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newClient(url string) gizi.PhotoAnalyzer {
	cfg := config.PhotoConfig{URL: url, APIKey: "secret", Model: "vision-model"}
	foods := []nutrient.FoodItem{{ID: "tempe", Name: "Tempe goreng", Portion: "1 potong"}}
	return iophoto.New(cfg, iophoto.OptFoods(foods))
}

var photo = gizi.Photo{Data: []byte{0xff, 0xd8, 0xff}, Hint: "bubur"}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		msg, text string
		food, id  string
		portion   float64
	}{
		{
			"catalog food",
			`{"food": "Tempe goreng", "food_id": "tempe", "portion": 2, "confidence": 0.9}`,
			"Tempe goreng", "tempe", 2,
		},
		{
			"wrapped ad hoc",
			`{"content": "Here it is: {\"food\": \"Bubur ayam\", \"nutrients\": {\"energy\": 150, \"protein\": 6}, \"confidence\": 0.6}"}`,
			"Bubur ayam", "", 1,
		},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			srv := gateway(t, http.StatusOK, v.text)
			defer srv.Close()

			res, err := newClient(srv.URL).Analyze(context.Background(), photo)
			require.NoError(t, err)
			assert.Equal(t, v.food, res.Food)
			assert.Equal(t, v.id, res.FoodID)
			assert.InDelta(t, v.portion, res.Portion, 1e-9)
		})
	}
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		msg    string
		status int
		text   string
	}{
		{"http error", http.StatusBadGateway, ""},
		{"not json", http.StatusOK, "I see a bowl of porridge."},
		{"no food", http.StatusOK, `{"food": "", "food_id": "tempe"}`},
		{"no nutrients", http.StatusOK, `{"food": "Nasi"}`},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			srv := gateway(t, v.status, v.text)
			defer srv.Close()

			_, err := newClient(srv.URL).Analyze(context.Background(), photo)
			assert.True(t, errcode.Is(err, errcode.ExternalServiceFailure), err)
		})
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newClient(srv.URL).Analyze(ctx, photo)
	assert.True(t, errcode.Is(err, errcode.ExternalServiceFailure))
}

func TestAnalyzeInput(t *testing.T) {
	_, err := newClient("http://localhost:1").Analyze(context.Background(), gizi.Photo{})
	assert.True(t, errcode.Is(err, errcode.ValidationError))

	_, err = newClient("").Analyze(context.Background(), photo)
	assert.True(t, errcode.Is(err, errcode.ExternalServiceFailure))
}
