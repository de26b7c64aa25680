package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/models"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, 5*time.Second)
}

func TestCreateSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/summaries/" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req models.SummaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if req.SummaryType != models.TypeBrief {
			t.Errorf("Expected Brief type, got %s", req.SummaryType)
		}

		json.NewEncoder(w).Encode(models.Summary{
			ID:          "s1",
			VideoURL:    req.URL,
			SummaryText: "generated",
			SummaryType: req.SummaryType,
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).CreateSummary(context.Background(), models.SummaryRequest{
		URL:           "https://www.youtube.com/watch?v=abc",
		SummaryType:   models.TypeBrief,
		SummaryLength: models.LengthShort,
	})
	if err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}
	if got.ID != "s1" || got.SummaryText != "generated" {
		t.Errorf("Unexpected summary: %+v", got)
	}
}

func TestSetStarredBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/summaries/s1/star" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]bool
		json.NewDecoder(r.Body).Decode(&body)
		starred, ok := body["is_starred"]
		if !ok || !starred {
			t.Errorf("Expected is_starred=true in body, got %v", body)
		}

		json.NewEncoder(w).Encode(models.Summary{ID: "s1", IsStarred: starred})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).SetStarred(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("SetStarred failed: %v", err)
	}
	if !got.IsStarred {
		t.Error("Expected starred summary")
	}
}

func TestNotFoundClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Summary not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetSummary(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Summary not found") {
		t.Errorf("Expected backend detail in message, got %v", err)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"transcript unavailable"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateSummary(context.Background(), models.SummaryRequest{URL: "x"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, errors.ErrAPI) {
		t.Errorf("Expected ErrAPI, got %v", err)
	}
	if errors.IsNetwork(err) {
		t.Error("API error must not classify as network failure")
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	// A server that is already closed produces a transport-level failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv).ListSummaries(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.IsNetwork(err) {
		t.Errorf("Expected network classification, got %v", err)
	}
}

func TestCancelledClassification(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(srv).GetSummary(ctx, "s1")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.IsCancelled(err) {
		t.Errorf("Expected cancelled classification, got %v", err)
	}
	if errors.IsNetwork(err) {
		t.Error("Cancellation must not classify as network failure")
	}
}

func TestDeleteSummary(t *testing.T) {
	deleted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/summaries/s1" {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if err := newTestClient(srv).DeleteSummary(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSummary failed: %v", err)
	}
	if !deleted {
		t.Error("Expected DELETE to reach the server")
	}
}

func TestListSummariesPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "10" || q.Get("offset") != "20" {
			t.Errorf("Expected limit=10 offset=20, got %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]models.Summary{{ID: "s1"}, {ID: "s2"}})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).ListSummaries(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 summaries, got %d", len(got))
	}
}
