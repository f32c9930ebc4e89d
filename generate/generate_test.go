package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       "test-key",
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		pollInterval: time.Millisecond,
	}
}

func TestGeneratePollsToCompletion(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/generations":
			json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/generations/task-1":
			if polls.Add(1) < 3 {
				json.NewEncoder(w).Encode(taskResponse{Status: "pending"})
				return
			}
			json.NewEncoder(w).Encode(taskResponse{Status: "succeeded", Images: []string{
				"http://" + r.Host + "/images/one.png",
				"http://" + r.Host + "/images/two.png",
			}})
		case r.URL.Path == "/images/one.png":
			w.Write([]byte("png-one"))
		case r.URL.Path == "/images/two.png":
			w.Write([]byte("png-two"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	images, err := testClient(srv.URL).Generate(context.Background(), "a red bird", 2)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("Generate() returned %d images, want 2", len(images))
	}
	if string(images[0]) != "png-one" || string(images[1]) != "png-two" {
		t.Error("Generate() returned wrong image bytes")
	}
	if polls.Load() < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls.Load())
	}
}

func TestGenerateRetriesRateLimitedSubmit(t *testing.T) {
	var submits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/generations":
			if submits.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/generations/task-1":
			json.NewEncoder(w).Encode(taskResponse{Status: "succeeded", Images: nil})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Generate(context.Background(), "prompt", 1); err != nil {
		t.Fatalf("Generate() should survive one rate-limit response: %v", err)
	}
	if submits.Load() != 2 {
		t.Errorf("expected 2 submit attempts, got %d", submits.Load())
	}
}

func TestGenerateFailedTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1"})
			return
		}
		json.NewEncoder(w).Encode(taskResponse{Status: "failed"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "prompt", 1)
	if err != ErrFailed {
		t.Errorf("Generate() error = %v, want ErrFailed", err)
	}
}

func TestGenerateTimesOutAfterPollBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(submitResponse{TaskID: "task-1"})
			return
		}
		json.NewEncoder(w).Encode(taskResponse{Status: "pending"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "prompt", 1)
	if err != ErrTimedOut {
		t.Errorf("Generate() error = %v, want ErrTimedOut", err)
	}
}
