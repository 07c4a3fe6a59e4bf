package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// QueryHistory reads daily query counts and billed bytes from the BigQuery
// job-history INFORMATION_SCHEMA tables.
type QueryHistory struct {
	client    *bigquery.Client
	projectID string
}

func NewQueryHistory(ctx context.Context, projectID string, opts ...option.ClientOption) (*QueryHistory, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &QueryHistory{client: client, projectID: projectID}, nil
}

func (q *QueryHistory) Close() error {
	return q.client.Close()
}

// DailyQueryStats runs the configured job-history query for the last cfg.Days
// days in cfg.Region and returns one row per day that had query activity.
//
// The table template may reference {project_id} and {dataset_region_part};
// the query template references {info_schema_table_name} and binds the
// @num_report_days parameter.
func (q *QueryHistory) DailyQueryStats(ctx context.Context, cfg domain.UsageConfig) ([]domain.DailyQueryStats, error) {
	log := zerolog.Ctx(ctx)

	regionPart := "region-" + strings.ReplaceAll(strings.ToLower(cfg.Region), "_", "-")
	tableName := strings.NewReplacer(
		"{project_id}", q.projectID,
		"{dataset_region_part}", regionPart,
	).Replace(cfg.TableTemplate)
	sql := strings.ReplaceAll(cfg.QueryTemplate, "{info_schema_table_name}", tableName)

	log.Info().Str("table", tableName).Int("days", cfg.Days).Msg("fetching query history")
	log.Debug().Str("query", strings.TrimSpace(sql)).Msg("executing job-history query")

	query := q.client.Query(sql)
	query.Location = cfg.Region
	query.DisableQueryCache = true
	query.Parameters = []bigquery.QueryParameter{
		{Name: "num_report_days", Value: cfg.Days},
	}

	it, err := query.Read(ctx)
	if err != nil {
		return nil, wrapAPIError(err, fmt.Sprintf("querying job history in %q", tableName))
	}

	var stats []domain.DailyQueryStats
	for {
		var row struct {
			JobDate     civil.Date `bigquery:"job_date"`
			NumQueries  int64      `bigquery:"num_queries"`
			BytesBilled int64      `bigquery:"total_bytes_billed_for_queries"`
		}
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrapAPIError(err, "reading job history row")
		}
		stats = append(stats, domain.DailyQueryStats{
			Date:             row.JobDate.String(),
			QueryCount:       row.NumQueries,
			TotalBytesBilled: row.BytesBilled,
		})
	}
	return stats, nil
}
