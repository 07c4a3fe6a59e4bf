package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// Defaults applied before unmarshalling, so every consumer sees fully
// populated, validated structures instead of branching on missing keys.
const (
	DefaultSourceIPAlert = "0.0.0.0/0"
	DefaultUsageDays     = 7

	defaultTableTemplate = "`{project_id}`.`{dataset_region_part}`.INFORMATION_SCHEMA.JOBS_BY_PROJECT"
	defaultQueryTemplate = `
SELECT
  DATE(creation_time) AS job_date,
  COUNT(*) AS num_queries,
  SUM(total_bytes_billed) AS total_bytes_billed_for_queries
FROM {info_schema_table_name}
WHERE creation_time >= TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL @num_report_days DAY)
  AND job_type = 'QUERY'
  AND state = 'DONE'
GROUP BY job_date
ORDER BY job_date`
)

// Load reads the config file at path into a typed Config. A missing file,
// malformed content, or an absent project_id is fatal to the whole run.
func Load(path string) (domain.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("firewall_inspector.source_ip_alert", DefaultSourceIPAlert)
	v.SetDefault("firewall_inspector.flag_ingress_only", true)

	v.SetDefault("iam_scanner.roles_to_flag", []string{"roles/storage.admin"})
	v.SetDefault("iam_scanner.members_to_flag", []string{"allUsers", "allAuthenticatedUsers"})

	v.SetDefault("usage_reporter.report_days", DefaultUsageDays)
	v.SetDefault("usage_reporter.table_template", defaultTableTemplate)
	v.SetDefault("usage_reporter.query_template", defaultQueryTemplate)
}

func validate(cfg domain.Config) error {
	if cfg.ProjectID == "" {
		return fmt.Errorf("config field %q is required", "project_id")
	}
	if cfg.Usage.Days <= 0 {
		return fmt.Errorf("config field %q must be positive, got %d", "usage_reporter.report_days", cfg.Usage.Days)
	}
	for _, criterion := range cfg.Firewall.Criteria {
		if criterion.Protocol == "" {
			return fmt.Errorf("config field %q is required on every permissive criterion", "protocol")
		}
	}
	return nil
}
