package usage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
)

// API is the provider surface the reporter needs: per-day query stats from
// the job history for the configured region and window.
type API interface {
	DailyQueryStats(ctx context.Context, cfg domain.UsageConfig) ([]domain.DailyQueryStats, error)
}

// Renderer turns a finished usage report into operator-facing output.
type Renderer interface {
	Handle(report *domain.UsageReport) error
}

// BuildWindow lays fetched stats onto a rolling window of the last `days`
// calendar days ending today, oldest first. Days without activity appear
// with zero counts; fetched rows outside the window are dropped.
func BuildWindow(today time.Time, days int, stats []domain.DailyQueryStats) []domain.DailyQueryStats {
	byDate := make(map[string]domain.DailyQueryStats, len(stats))
	for _, s := range stats {
		byDate[s.Date] = s
	}

	window := make([]domain.DailyQueryStats, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		if s, ok := byDate[date]; ok {
			window = append(window, s)
			continue
		}
		window = append(window, domain.DailyQueryStats{Date: date})
	}
	return window
}

// ErrRegionNotConfigured aborts the reporter when the config has no region.
var ErrRegionNotConfigured = errors.New("usage reporter region is not configured")

// Reporter aggregates query counts and billed bytes over a rolling day
// window. It is read-only: the global delete and dry-run flags do not apply.
type Reporter struct {
	api      API
	renderer Renderer
	now      func() time.Time
}

func NewReporter(api API, renderer Renderer) *Reporter {
	return &Reporter{api: api, renderer: renderer, now: time.Now}
}

func (r *Reporter) Descriptor() audit.Descriptor {
	return audit.Descriptor{
		ConfigKey:   "usage_reporter",
		DisplayName: "Query Usage Reporter",
	}
}

func (r *Reporter) Run(ctx context.Context, req audit.Request) error {
	log := zerolog.Ctx(ctx)
	cfg := req.Config.Usage

	if cfg.Region == "" {
		return ErrRegionNotConfigured
	}

	log.Info().
		Str("region", cfg.Region).
		Int("days", cfg.Days).
		Str("project", req.ProjectID).
		Msg("reporting query usage from job history")

	stats, err := r.api.DailyQueryStats(ctx, cfg)
	if err != nil {
		// Degrade to a zero-filled window, matching the other tools'
		// log-and-continue treatment of listing failures.
		log.Error().Err(err).Msg("could not fetch query history, reporting empty window")
		stats = nil
	}

	report := &domain.UsageReport{
		ProjectID: req.ProjectID,
		Region:    cfg.Region,
		Days:      cfg.Days,
		Daily:     BuildWindow(r.now().UTC(), cfg.Days, stats),
	}
	return r.renderer.Handle(report)
}
