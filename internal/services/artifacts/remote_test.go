package artifacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRemoteClassifierRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify/rental_predictor" {
			http.NotFound(w, r)
			return
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"probability": req.Features["x"]})
	}))
	defer srv.Close()

	clf := NewRemoteModel(srv.URL, time.Second, 2).Classifier(BreakdownModel)
	p, err := clf.Classify(context.Background(), map[string]float64{"x": 0.25})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if p != 0.25 {
		t.Fatalf("expected 0.25, got %v", p)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRemoteRegressorNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	reg := NewRemoteModel(srv.URL, time.Second, 3).Regressor(PriceModel)
	if _, err := reg.Regress(context.Background(), map[string]float64{}); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}
