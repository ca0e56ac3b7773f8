package aiserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
)

func testClient(baseURL string) *client {
	return &client{
		log:        logger.NewNop(),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCategorizeVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/categorize-video" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("video_id") != "v1" {
			t.Errorf("unexpected video_id %q", r.URL.Query().Get("video_id"))
		}
		w.Write([]byte(`[{"category":"music","percentage":0.7},{"category":"comedy","percentage":0.3}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).CategorizeVideo(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Category != "music" || got[0].Percentage != 0.7 {
		t.Fatalf("unexpected assignments: %+v", got)
	}
}

func TestCategorizeVideo_ClampsAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"category":"music","percentage":1.5},{"category":"  ","percentage":0.3},{"category":"gaming","percentage":-2}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).CategorizeVideo(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("blank category should be dropped: %+v", got)
	}
	if got[0].Percentage != 1 || got[1].Percentage != 0 {
		t.Fatalf("percentages not clamped: %+v", got)
	}
}

func TestCategorizeVideo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CategorizeVideo(context.Background(), "v1")
	if !apperr.IsKind(err, apperr.KindExternalService) {
		t.Fatalf("expected external-service error, got %v", err)
	}
}

func TestCategorizeVideo_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CategorizeVideo(context.Background(), "v1")
	if !apperr.IsKind(err, apperr.KindExternalService) {
		t.Fatalf("expected external-service error, got %v", err)
	}
}

func TestEvaluateVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/evaluate-video" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"quality_score":0.85}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).EvaluateVideo(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.85 {
		t.Fatalf("quality: got %v, want 0.85", got)
	}
}

func TestEvaluateVideo_ClampsQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quality_score":7.2}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).EvaluateVideo(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("quality should clamp to 1, got %v", got)
	}
}

func TestEvaluateVideo_Unreachable(t *testing.T) {
	_, err := testClient("http://127.0.0.1:1").EvaluateVideo(context.Background(), "v1")
	if !apperr.IsKind(err, apperr.KindExternalService) {
		t.Fatalf("expected external-service error, got %v", err)
	}
}
