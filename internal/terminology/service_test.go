package terminology

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/somnolink/somnolink/pkg/logging"
)

type stubClient struct {
	results []SearchResult
	err     error
	calls   int
}

func (c *stubClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	c.calls++
	return c.results, c.err
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := NewService(nil, nil, nil, logging.Default())

	if _, err := svc.Search(context.Background(), "", "   "); !errors.Is(err, ErrQueryRequired) {
		t.Fatalf("expected ErrQueryRequired, got %v", err)
	}
}

func TestSearchSimulatedWithoutClient(t *testing.T) {
	svc := NewService(nil, nil, nil, logging.Default())

	resp, err := svc.Search(context.Background(), "", "apnée")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Source != SourceSimulated {
		t.Errorf("expected simulated source, got %q", resp.Source)
	}
	if len(resp.Results) == 0 {
		t.Error("expected simulated hits for apnée")
	}
}

func TestSearchTimeoutSurfaces(t *testing.T) {
	client := &stubClient{err: ErrTimeout}
	svc := NewService(client, nil, nil, logging.Default())

	if _, err := svc.Search(context.Background(), SystemICD11, "apnée"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout to surface, got %v", err)
	}
}

func TestSearchDegradesToFallbackOnUpstreamFailure(t *testing.T) {
	client := &stubClient{err: ErrUpstream}
	svc := NewService(client, nil, nil, logging.Default())

	resp, err := svc.Search(context.Background(), SystemICD11, "hypertension")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Source != SourceFallback {
		t.Errorf("expected fallback source, got %q", resp.Source)
	}
	if len(resp.Results) == 0 {
		t.Error("expected fallback hits for hypertension")
	}
}

func TestSearchCachesLiveResults(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logging.Default())

	client := &stubClient{results: []SearchResult{{Code: "7A40", Label: "Apnée obstructive du sommeil", System: SystemICD11}}}
	svc := NewService(client, cache, nil, logging.Default())

	first, err := svc.Search(context.Background(), SystemICD11, "apnée")
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if first.Source != SourceLive {
		t.Fatalf("expected live source, got %q", first.Source)
	}

	second, err := svc.Search(context.Background(), SystemICD11, "apnée")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if second.Source != SourceCache {
		t.Errorf("expected cache source, got %q", second.Source)
	}
	if client.calls != 1 {
		t.Errorf("expected one upstream call, got %d", client.calls)
	}
}

func TestICPC2ServedLocally(t *testing.T) {
	// A client that would fail proves the lookup never leaves the process.
	client := &stubClient{err: ErrUpstream}
	svc := NewService(client, nil, nil, logging.Default())

	resp, err := svc.Search(context.Background(), SystemICPC2, "apnée")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if client.calls != 0 {
		t.Error("CISP-2 lookups must not hit the upstream")
	}
	if len(resp.Results) == 0 {
		t.Error("expected CISP-2 hits for apnée")
	}
	for _, r := range resp.Results {
		if r.System != SystemICPC2 {
			t.Errorf("unexpected system %q", r.System)
		}
	}
}

// Compile-time check that the real client satisfies the interface the
// service consumes.
var _ SearchClient = (*ICDClient)(nil)

func TestHandlerTimeoutEnvelope(t *testing.T) {
	client := &stubClient{err: ErrTimeout}
	h := NewHandler(NewService(client, nil, nil, logging.Default()), logging.Default())

	req := httptest.NewRequest("GET", "/api/terminology-search?q=apnée", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != 504 {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"code":"timeout"`) {
		t.Errorf("expected timeout code in body, got %s", body)
	}
}
