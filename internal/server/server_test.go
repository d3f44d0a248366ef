package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

func newTestServer(t *testing.T, capacity int, criteria models.Criteria) (*Server, *session.Manager) {
	t.Helper()
	sessions, err := session.NewManager(capacity, criteria, nil)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	return NewServer(sessions, nil), sessions
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_API(t *testing.T) {
	srv, _ := newTestServer(t, 3, models.CriteriaTime)
	h := srv.Handler()

	t.Run("POST /api/sessions/default/tasks", func(t *testing.T) {
		for _, body := range []string{
			`{"title":"a","description":"d","estimated_minutes":5}`,
			`{"title":"b","description":"d","estimated_minutes":10,"priority_level":"high"}`,
			`{"title":"c","description":"d","estimated_minutes":1}`,
		} {
			w := do(t, h, "POST", "/api/sessions/default/tasks", body)
			if w.Code != http.StatusCreated {
				t.Fatalf("Expected status Created, got %v: %s", w.Code, w.Body.String())
			}
		}
	})

	t.Run("queue full", func(t *testing.T) {
		w := do(t, h, "POST", "/api/sessions/default/tasks", `{"title":"x","description":"d","estimated_minutes":2}`)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status Conflict, got %v", w.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal error: %v", err)
		}
		if resp.Error == "" {
			t.Error("Expected error message")
		}
	})

	t.Run("GET /api/sessions/default", func(t *testing.T) {
		w := do(t, h, "GET", "/api/sessions/default", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v", w.Code)
		}
		var status session.Status
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatalf("Failed to unmarshal status: %v", err)
		}
		if status.Size != 3 || status.Capacity != 3 || status.Criteria != models.CriteriaTime {
			t.Errorf("Unexpected status: %+v", status)
		}
	})

	t.Run("GET /api/sessions/default/best", func(t *testing.T) {
		w := do(t, h, "GET", "/api/sessions/default/best", "")
		var task models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
			t.Fatalf("Failed to unmarshal task: %v", err)
		}
		if task.Title != "b" || task.PriorityLevel != models.PriorityHigh {
			t.Errorf("Expected task b, got %+v", task)
		}
	})

	t.Run("PUT /api/sessions/default/criteria", func(t *testing.T) {
		w := do(t, h, "PUT", "/api/sessions/default/criteria", `{"criteria":"title"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v: %s", w.Code, w.Body.String())
		}

		w = do(t, h, "GET", "/api/sessions/default/best", "")
		var task models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
			t.Fatalf("Failed to unmarshal task: %v", err)
		}
		if task.Title != "a" {
			t.Errorf("Expected task a under title order, got %s", task.Title)
		}

		w = do(t, h, "PUT", "/api/sessions/default/criteria", `{"criteria":"deadline"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status BadRequest, got %v", w.Code)
		}
	})

	t.Run("POST /api/sessions/default/dequeue", func(t *testing.T) {
		for _, want := range []string{"a", "b", "c"} {
			w := do(t, h, "POST", "/api/sessions/default/dequeue", "")
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status OK, got %v", w.Code)
			}
			var task models.Task
			if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
				t.Fatalf("Failed to unmarshal task: %v", err)
			}
			if task.Title != want {
				t.Errorf("Expected task %s, got %s", want, task.Title)
			}
		}

		w := do(t, h, "POST", "/api/sessions/default/dequeue", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status NotFound on empty queue, got %v", w.Code)
		}
	})
}

func TestServer_Heap(t *testing.T) {
	srv, sessions := newTestServer(t, 2, models.CriteriaTime)
	h := srv.Handler()

	w := do(t, h, "GET", "/api/sessions/default/heap", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	var slots []*models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &slots); err != nil {
		t.Fatalf("Failed to unmarshal heap: %v", err)
	}
	if len(slots) != 2 || slots[0] != nil || slots[1] != nil {
		t.Errorf("Expected two empty slots, got %v", slots)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}

	req := httptest.NewRequest("GET", "/api/sessions/default/heap", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("Expected status NotModified, got %v", rec.Code)
	}

	task := models.Task{Title: "t", Description: "d", EstimatedMinutes: 1}
	if err := sessions.Enqueue(context.Background(), "", task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status OK after change, got %v", rec.Code)
	}
	if rec.Header().Get("ETag") == etag {
		t.Error("Expected ETag to change after enqueue")
	}
}

func TestServer_Sessions(t *testing.T) {
	srv, _ := newTestServer(t, 1, models.CriteriaTime)
	h := srv.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"malformed body", "POST", "/api/sessions", `{`, http.StatusBadRequest},
		{"zero capacity", "POST", "/api/sessions", `{"capacity":0}`, http.StatusBadRequest},
		{"unknown criteria", "POST", "/api/sessions", `{"capacity":2,"criteria":"size"}`, http.StatusBadRequest},
		{"unknown session", "GET", "/api/sessions/nope", "", http.StatusNotFound},
		{"delete default", "DELETE", "/api/sessions/default", "", http.StatusConflict},
		{"blank title", "POST", "/api/sessions/default/tasks", `{"title":"","description":"d","estimated_minutes":1}`, http.StatusBadRequest},
		{"missing minutes", "POST", "/api/sessions/default/tasks", `{"title":"t","description":"d"}`, http.StatusBadRequest},
		{"peek empty", "GET", "/api/sessions/default/best", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, h, tt.method, tt.path, tt.body); w.Code != tt.code {
				t.Errorf("Expected status %v, got %v: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	w := do(t, h, "POST", "/api/sessions", `{"capacity":4,"criteria":"level"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status Created, got %v: %s", w.Code, w.Body.String())
	}
	var created session.Status
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal status: %v", err)
	}
	if created.Capacity != 4 || created.Criteria != models.CriteriaLevel {
		t.Errorf("Unexpected status: %+v", created)
	}

	w = do(t, h, "GET", "/api/sessions", "")
	var list []session.Status
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to unmarshal sessions: %v", err)
	}
	if len(list) != 2 || list[0].ID != session.DefaultID {
		t.Errorf("Unexpected sessions: %+v", list)
	}

	if w := do(t, h, "DELETE", "/api/sessions/"+created.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("Expected status NoContent, got %v", w.Code)
	}
	if w := do(t, h, "GET", "/api/sessions/"+created.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status NotFound after delete, got %v", w.Code)
	}
}

func TestServer_CreateSessionDefaultsToTime(t *testing.T) {
	srv, _ := newTestServer(t, 1, models.CriteriaLevel)

	w := do(t, srv.Handler(), "POST", "/api/sessions", `{"capacity":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status Created, got %v: %s", w.Code, w.Body.String())
	}
	var created session.Status
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal status: %v", err)
	}
	if created.Criteria != models.CriteriaTime {
		t.Errorf("Expected time criteria, got %s", created.Criteria)
	}
}
