package domain

// PermissiveCriterion is one configured permissiveness rule. Protocol is
// matched case-insensitively; the literal "any" matches every protocol.
// An empty Ports list means "any port".
type PermissiveCriterion struct {
	Protocol string   `mapstructure:"protocol"`
	Ports    []string `mapstructure:"ports"`
}

// FirewallConfig drives the firewall inspector. Defaults are applied during
// loading, so consumers always see fully populated values.
type FirewallConfig struct {
	SourceIPAlert         string                `mapstructure:"source_ip_alert"`
	FlagIngressOnly       bool                  `mapstructure:"flag_ingress_only"`
	Criteria              []PermissiveCriterion `mapstructure:"permissive_criteria"`
	IgnoreTags            []string              `mapstructure:"ignore_target_tags"`
	IgnoreServiceAccounts []string              `mapstructure:"ignore_target_service_accounts"`
}

// IAMConfig drives the bucket policy scanner.
type IAMConfig struct {
	RolesToFlag   []string `mapstructure:"roles_to_flag"`
	MembersToFlag []string `mapstructure:"members_to_flag"`
	IgnoreBuckets []string `mapstructure:"buckets_to_ignore"`
}

// UsageConfig drives the query usage reporter. Region is required; the query
// and table templates have working defaults for the provider's job history
// INFORMATION_SCHEMA layout.
type UsageConfig struct {
	Region        string `mapstructure:"region"`
	Days          int    `mapstructure:"report_days"`
	QueryTemplate string `mapstructure:"query_template"`
	TableTemplate string `mapstructure:"table_template"`
}

// Config is the full, validated configuration handed to the tools.
type Config struct {
	ProjectID string         `mapstructure:"project_id"`
	Firewall  FirewallConfig `mapstructure:"firewall_inspector"`
	IAM       IAMConfig      `mapstructure:"iam_scanner"`
	Usage     UsageConfig    `mapstructure:"usage_reporter"`
}
