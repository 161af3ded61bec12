package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/pkg/logging"
)

const (
	defaultLimit = 10
	maxLimit     = 50
	cacheTTL     = time.Hour
)

// Service answers doctor and medication searches. Registered doctors from
// the local registry come first so patients can request an association in
// one click; the public directory fills in the rest. Directory failures are
// logged and degrade to the simulated dataset, never to an error.
type Service struct {
	doctors     *doctors.Service
	dirClient   DoctorDirectoryClient
	medClient   MedicationClient
	redis       *redis.Client
	logger      *logging.Logger
	simulateDir bool
	simulateMed bool
}

// NewService creates a directory service. redis may be nil. simulateDir and
// simulateMed switch the matching lookup to the embedded dataset; set them
// when no upstream URL is configured.
func NewService(doctorSvc *doctors.Service, dirClient DoctorDirectoryClient, medClient MedicationClient, redisClient *redis.Client, simulateDir, simulateMed bool, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		doctors:     doctorSvc,
		dirClient:   dirClient,
		medClient:   medClient,
		redis:       redisClient,
		logger:      logger,
		simulateDir: simulateDir,
		simulateMed: simulateMed,
	}
}

// SearchDoctors merges registered doctors with public directory hits.
func (s *Service) SearchDoctors(ctx context.Context, query string, limit int) ([]DirectoryDoctor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	limit = clampLimit(limit)

	out := []DirectoryDoctor{}
	seen := map[string]bool{}

	registered, err := s.doctors.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for _, d := range registered {
		out = append(out, DirectoryDoctor{
			DoctorID:   d.ID.String(),
			Name:       d.DisplayName(),
			Specialty:  d.Specialty,
			City:       d.City,
			Registered: true,
		})
		seen[strings.ToLower(d.DisplayName())] = true
	}

	var external []DirectoryDoctor
	if s.simulateDir {
		external = filterDoctors(query)
	} else {
		external, err = s.dirClient.SearchDoctors(ctx, query, limit)
		if err != nil {
			s.logger.Warn("doctor directory failed, serving simulated dataset", "error", err)
			external = filterDoctors(query)
		}
	}
	for _, d := range external {
		if len(out) >= limit {
			break
		}
		if seen[strings.ToLower(d.Name)] {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// SearchMedications looks up the medication database, cached in Redis.
func (s *Service) SearchMedications(ctx context.Context, query string, limit int) ([]Medication, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	limit = clampLimit(limit)

	key := fmt.Sprintf("medicaments:%s:%d", strings.ToLower(query), limit)
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Result(); err == nil {
			var cached []Medication
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	var (
		meds []Medication
		err  error
	)
	if s.simulateMed {
		meds = filterMedications(query)
	} else {
		meds, err = s.medClient.SearchMedications(ctx, query, limit)
		if err != nil {
			s.logger.Warn("medication database failed, serving simulated dataset", "error", err)
			meds = filterMedications(query)
		}
	}
	if len(meds) > limit {
		meds = meds[:limit]
	}

	if s.redis != nil {
		if raw, err := json.Marshal(meds); err == nil {
			if err := s.redis.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
				s.logger.Warn("medication cache write failed", "error", err)
			}
		}
	}
	return meds, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
