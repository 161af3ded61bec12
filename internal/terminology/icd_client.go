package terminology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/somnolink/somnolink/pkg/logging"
)

var icdTracer = otel.Tracer("somnolink.internal.terminology.icd")

// SearchClient is the upstream lookup behind the terminology service.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// ICDClient queries the WHO ICD-11 API using OAuth2 client credentials.
// Tokens are cached until shortly before expiry.
type ICDClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	searchURL    string
	httpClient   *http.Client
	logger       *logging.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewICDClient builds a client for the ICD-11 API. The timeout bounds the
// whole lookup, token fetch included.
func NewICDClient(clientID, clientSecret, tokenURL, searchURL string, timeout time.Duration, logger *logging.Logger) *ICDClient {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ICDClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		searchURL:    searchURL,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (c *ICDClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", "icdapi_access")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("terminology: token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("icd token endpoint failed", "status", resp.StatusCode, "body", string(body))
		return "", ErrUpstream
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("terminology: decode token: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", ErrUpstream
	}

	c.accessToken = parsed.AccessToken
	// Renew a minute early so in-flight searches never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// Search queries the ICD-11 flexible search in French.
func (c *ICDClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	ctx, span := icdTracer.Start(ctx, "terminology.icd.search", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("somnolink.query", query))

	token, err := c.token(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("terminology: search request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("useFlexisearch", "true")
	q.Set("flatResults", "true")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "fr")
	req.Header.Set("API-Version", "v2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = classifyTransportError(err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("icd search failed", "status", resp.StatusCode, "body", string(body))
		span.RecordError(ErrUpstream)
		return nil, ErrUpstream
	}

	var parsed struct {
		DestinationEntities []struct {
			TheCode string `json:"theCode"`
			Title   string `json:"title"`
		} `json:"destinationEntities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("terminology: decode search response: %w", err)
	}

	out := make([]SearchResult, 0, len(parsed.DestinationEntities))
	for _, e := range parsed.DestinationEntities {
		out = append(out, SearchResult{
			Code:   e.TheCode,
			Label:  stripMarkup(e.Title),
			System: SystemICD11,
		})
	}
	return out, nil
}

// classifyTransportError separates deadline expiry from other transport
// failures so the handler can answer 504 instead of degrading silently.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// stripMarkup removes the <em> highlighting the flexible search embeds in
// titles.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<em class='found'>", "")
	s = strings.ReplaceAll(s, "</em>", "")
	return s
}
