package chat

import (
	"sort"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestRouter() (*Router, *Registry, *History) {
	registry := NewRegistry(testLogger())
	history := NewHistory(0)
	router := NewRouter(registry, history, testLogger())
	return router, registry, history
}

func assertSameSet(t *testing.T, got, want []string) {
	t.Helper()

	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)

	if len(g) != len(w) {
		t.Fatalf("expected %v, got %v", w, g)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("expected %v, got %v", w, g)
		}
	}
}
