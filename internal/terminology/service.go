package terminology

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/somnolink/somnolink/internal/observability/metrics"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Service answers terminology searches. CISP-2 is served from the embedded
// nomenclature; CIM-11 goes to the WHO API when credentials are configured,
// with a cache in front and the embedded dataset behind. Only a timeout
// surfaces to the caller; every other upstream failure degrades.
type Service struct {
	client  SearchClient
	cache   *Cache
	metrics *metrics.PortalMetrics
	logger  *logging.Logger
}

// NewService creates a terminology service. client may be nil (simulated
// mode) and cache may be nil (uncached).
func NewService(client SearchClient, cache *Cache, m *metrics.PortalMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, cache: cache, metrics: m, logger: logger}
}

// Search runs a terminology lookup.
func (s *Service) Search(ctx context.Context, system, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if system == "" {
		system = SystemICD11
	}

	if system == SystemICPC2 {
		s.metrics.ObserveTerminologyLookup("local")
		return &SearchResponse{Results: filterDataset(icpc2Dataset, query), Source: SourceLive}, nil
	}

	if cached := s.cache.Get(ctx, system, query); cached != nil {
		s.metrics.ObserveTerminologyLookup("cache")
		return &SearchResponse{Results: cached, Source: SourceCache}, nil
	}

	if s.client == nil {
		s.metrics.ObserveTerminologyLookup("simulated")
		return &SearchResponse{Results: filterDataset(icd11Fallback, query), Source: SourceSimulated}, nil
	}

	start := time.Now()
	results, err := s.client.Search(ctx, query)
	s.metrics.ObserveTerminologyLatency(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			s.metrics.ObserveTerminologyLookup("timeout")
			return nil, ErrTimeout
		}
		s.metrics.ObserveTerminologyLookup("fallback")
		s.logger.Warn("terminology upstream failed, serving fallback", "error", err)
		return &SearchResponse{Results: filterDataset(icd11Fallback, query), Source: SourceFallback}, nil
	}

	s.metrics.ObserveTerminologyLookup("live")
	s.cache.Set(ctx, system, query, results)
	return &SearchResponse{Results: results, Source: SourceLive}, nil
}
