package repository

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRest is a minimal PostgREST stand-in that understands eq filters and
// a single order clause.
type fakeRest struct {
	mu       sync.Mutex
	rows     []map[string]interface{}
	requests []string
	delay    time.Duration
}

func newFakeRest(t *testing.T) (*fakeRest, *httptest.Server) {
	fake := &fakeRest{}
	srv := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(srv.Close)
	return fake, srv
}

func (f *fakeRest) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())

	if !strings.HasSuffix(r.URL.Path, "/universities") {
		http.NotFound(w, r)
		return
	}

	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 && strings.HasPrefix(values[0], "eq.") {
			filters[key] = strings.TrimPrefix(values[0], "eq.")
		}
	}

	var out []map[string]interface{}
	switch r.Method {
	case http.MethodGet:
		out = f.match(filters)
		orderRows(out, r.URL.Query().Get("order"))
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var many []map[string]interface{}
		if err := json.Unmarshal(body, &many); err != nil {
			var one map[string]interface{}
			if err := json.Unmarshal(body, &one); err != nil {
				http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
				return
			}
			many = []map[string]interface{}{one}
		}
		f.rows = append(f.rows, many...)
		out = many
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
		return
	case http.MethodPatch:
		var patch map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for _, row := range f.match(filters) {
			for k, v := range patch {
				row[k] = v
			}
			out = append(out, row)
		}
	case http.MethodDelete:
		kept := f.rows[:0]
		for _, row := range f.rows {
			if matches(row, filters) {
				out = append(out, row)
				continue
			}
			kept = append(kept, row)
		}
		f.rows = kept
	}
	if out == nil {
		out = []map[string]interface{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (f *fakeRest) match(filters map[string]string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, row := range f.rows {
		if matches(row, filters) {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeRest) setDelay(d time.Duration) {
	f.mu.Lock()
	f.delay = d
	f.mu.Unlock()
}

func (f *fakeRest) lastRequest(method string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.HasPrefix(f.requests[i], method+" ") {
			return f.requests[i]
		}
	}
	return ""
}

func (f *fakeRest) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if strings.HasPrefix(req, method+" ") {
			n++
		}
	}
	return n
}

func matches(row map[string]interface{}, filters map[string]string) bool {
	for key, want := range filters {
		got, _ := row[key].(string)
		if got != want {
			return false
		}
	}
	return true
}

// orderRows applies "column.asc" or "column.desc" on string values, which
// covers RFC 3339 timestamps in one zone.
func orderRows(rows []map[string]interface{}, order string) {
	if order == "" {
		return
	}
	column, direction, _ := strings.Cut(order, ".")
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i][column].(string)
		b, _ := rows[j][column].(string)
		if direction == "desc" {
			return a > b
		}
		return a < b
	})
}
