package questions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abhisek/cybersage/internal/catalog"
)

func TestModulePath(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"digital_arrest", "digital-arrest"},
		{catalog.CyberAttacks, "cyber-attacks"},
		{"a_b_c", "a-b-c"},
	}
	for _, tt := range tests {
		if got := ModulePath(tt.id); got != tt.want {
			t.Errorf("ModulePath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestHTTPSource_ModuleRoute(t *testing.T) {
	var gotPath, gotCount, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCount = r.URL.Query().Get("count")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"questions": []map[string]any{
				{
					"id":            1,
					"question":      "What is a digital arrest?",
					"options":       []string{"A scam", "A court order", "A police check", "A fine"},
					"correctAnswer": "A scam",
					"description":   "There is no such thing as a digital arrest.",
					"difficulty":    "easy",
					"category":      "impersonation",
					"module":        "digital_arrest",
				},
				{
					"id":            2,
					"question":      "Wrong tier",
					"options":       []string{"a", "b"},
					"correctAnswer": "a",
					"difficulty":    "hard",
				},
			},
			"difficultyLevel": "easy",
			"moduleId":        "digital_arrest",
		})
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{BaseURL: srv.URL + "/api/", Token: "tok"}, nil)
	set, err := src.Fetch(context.Background(), Request{ModuleID: catalog.DigitalArrest, Difficulty: catalog.Easy, Count: 3})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/api/questions/digital-arrest/easy" {
		t.Errorf("path = %q", gotPath)
	}
	if gotCount != "3" {
		t.Errorf("count = %q, want 3", gotCount)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", gotAuth)
	}

	// The hard-tier question is dropped.
	if len(set.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(set.Questions))
	}
	q := set.Questions[0]
	if q.ID != "1" {
		t.Errorf("ID = %q, want 1", q.ID)
	}
	if q.Correct != "A scam" {
		t.Errorf("Correct = %q, want A scam", q.Correct)
	}
	if q.Explanation != "There is no such thing as a digital arrest." {
		t.Errorf("Explanation = %q", q.Explanation)
	}
	if q.ModuleID != catalog.DigitalArrest {
		t.Errorf("ModuleID = %q, want %q", q.ModuleID, catalog.DigitalArrest)
	}
	if q.Source != "http" {
		t.Errorf("Source = %q, want http", q.Source)
	}
}

func TestHTTPSource_PracticeRoute(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"questions":[{"id":"x","question":"Q?","options":["yes","no"],"correctAnswer":"no","description":"d","module":"cloud_security"}]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{BaseURL: srv.URL}, nil)
	set, err := src.Fetch(context.Background(), Request{Difficulty: catalog.Medium})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/questions/medium" {
		t.Errorf("path = %q, want /questions/medium", gotPath)
	}
	if len(set.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(set.Questions))
	}
	if q := set.Questions[0]; q.ModuleID != catalog.CloudSecurity || q.Difficulty != catalog.Medium {
		t.Errorf("question = %s/%s, want %s/%s", q.ModuleID, q.Difficulty, catalog.CloudSecurity, catalog.Medium)
	}
}

func TestHTTPSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"question service down"}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{BaseURL: srv.URL}, nil)
	_, err := src.Fetch(context.Background(), Request{ModuleID: catalog.SocialMedia, Difficulty: catalog.Easy, Count: 5})
	var fe *ExternalFetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *ExternalFetchError", err)
	}
	if fe.Source != "http" {
		t.Errorf("Source = %q, want http", fe.Source)
	}
	if !strings.Contains(err.Error(), "question service down") {
		t.Errorf("error %q should carry the server message", err)
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src := NewHTTPSource(HTTPConfig{BaseURL: url}, nil)
	_, err := src.Fetch(context.Background(), Request{Difficulty: catalog.Easy, Count: 5})

	var fe *ExternalFetchError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want *ExternalFetchError", err)
	}
}
