// Package testutil holds fixtures shared by package tests: number lists and fake lookup
// services.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MixedList covers every record outcome: two valid numbers, a bad area code, a Canadian
// number and a short number
const MixedList = "2175550199\n0175550199\n4165550100\n3125550142\n555-0199"

// TestContext creates a context with timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// AssertEventually asserts that a condition is met within a timeout
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, tick time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-timer.C:
			require.FailNow(t, "condition not met within timeout", msgAndArgs...)
		case <-ticker.C:
			if condition() {
				return
			}
		}
	}
}

// LookupServer is a fake DNC lookup service answering GET ?<param>=<number> with JSON
type LookupServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []string
}

// NewLookupServer starts a fake lookup service. respond returns the JSON body for a number.
// The server is closed when the test ends.
func NewLookupServer(t *testing.T, param string, respond func(number string) any) *LookupServer {
	t.Helper()

	ls := &LookupServer{}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		number := r.URL.Query().Get(param)

		ls.mu.Lock()
		ls.queries = append(ls.queries, number)
		ls.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(respond(number))
	}))
	t.Cleanup(ls.Close)
	return ls
}

// Queries returns every number looked up so far, in arrival order
func (ls *LookupServer) Queries() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]string(nil), ls.queries...)
}
