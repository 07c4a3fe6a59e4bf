package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-audit/pkg/gcp"
	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/runtime/terminal"
	"github.com/de-tools/cloud-audit/pkg/runtime/terminal/commands"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
	"github.com/de-tools/cloud-audit/pkg/services/firewall"
	"github.com/de-tools/cloud-audit/pkg/services/guard"
	"github.com/de-tools/cloud-audit/pkg/services/iam"
	"github.com/de-tools/cloud-audit/pkg/services/usage"
)

func main() {
	// Lets GOOGLE_APPLICATION_CREDENTIALS live in a local .env.
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		BuildTools: buildTools,
		KnownTools: []commands.ToolInfo{
			{ID: "firewall", DisplayName: "Firewall Rule Inspector & Cleaner"},
			{ID: "iam", DisplayName: "Bucket IAM Policy Scanner"},
			{ID: "usage", DisplayName: "Query Usage Reporter"},
		},
		Output: os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildTools constructs the provider clients once and injects them into the
// inspectors, in the order they should execute.
func buildTools(ctx context.Context, cfg domain.Config) ([]audit.Registration, error) {
	firewalls, err := gcp.NewFirewallService(ctx)
	if err != nil {
		return nil, err
	}
	buckets, err := gcp.NewBucketService(ctx)
	if err != nil {
		return nil, err
	}
	queryHistory, err := gcp.NewQueryHistory(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}

	confirmer := guard.TerminalConfirmer{In: os.Stdin, Out: os.Stderr}

	return []audit.Registration{
		{ID: "firewall", Tool: firewall.NewInspector(firewalls, confirmer)},
		{ID: "iam", Tool: iam.NewScanner(buckets)},
		{ID: "usage", Tool: usage.NewReporter(queryHistory, terminal.NewReporter(os.Stdout))},
	}, nil
}
