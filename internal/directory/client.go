package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/somnolink/somnolink/pkg/logging"
)

var directoryTracer = otel.Tracer("somnolink.internal.directory")

// DoctorDirectoryClient queries the public health-professional directory.
type DoctorDirectoryClient interface {
	SearchDoctors(ctx context.Context, query string, limit int) ([]DirectoryDoctor, error)
}

// MedicationClient queries the French medication database.
type MedicationClient interface {
	SearchMedications(ctx context.Context, query string, limit int) ([]Medication, error)
}

// HTTPDirectoryClient implements both directory lookups against JSON APIs.
type HTTPDirectoryClient struct {
	doctorURL     string
	medicationURL string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewHTTPDirectoryClient builds a directory client. Either URL may be empty;
// the matching lookup then returns nothing and the service serves its
// simulated dataset instead.
func NewHTTPDirectoryClient(doctorURL, medicationURL string, timeout time.Duration, logger *logging.Logger) *HTTPDirectoryClient {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDirectoryClient{
		doctorURL:     doctorURL,
		medicationURL: medicationURL,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// SearchDoctors queries the public directory.
func (c *HTTPDirectoryClient) SearchDoctors(ctx context.Context, query string, limit int) ([]DirectoryDoctor, error) {
	if c.doctorURL == "" {
		return nil, nil
	}
	ctx, span := directoryTracer.Start(ctx, "directory.doctors.search")
	defer span.End()
	span.SetAttributes(attribute.String("somnolink.query", query))

	var parsed struct {
		Results []struct {
			Name      string `json:"name"`
			Specialty string `json:"specialty"`
			City      string `json:"city"`
			RPPS      string `json:"rpps"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.doctorURL, query, limit, &parsed); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := make([]DirectoryDoctor, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, DirectoryDoctor{
			Name:      r.Name,
			Specialty: r.Specialty,
			City:      r.City,
			RPPS:      r.RPPS,
		})
	}
	return out, nil
}

// SearchMedications queries the medication database.
func (c *HTTPDirectoryClient) SearchMedications(ctx context.Context, query string, limit int) ([]Medication, error) {
	if c.medicationURL == "" {
		return nil, nil
	}
	ctx, span := directoryTracer.Start(ctx, "directory.medications.search")
	defer span.End()
	span.SetAttributes(attribute.String("somnolink.query", query))

	var parsed struct {
		Results []Medication `json:"results"`
	}
	if err := c.getJSON(ctx, c.medicationURL, query, limit, &parsed); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return parsed.Results, nil
}

func (c *HTTPDirectoryClient) getJSON(ctx context.Context, base, query string, limit int, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return fmt.Errorf("directory: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("directory lookup failed", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("directory: upstream status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
