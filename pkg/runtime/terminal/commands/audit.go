package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
	"github.com/de-tools/cloud-audit/pkg/services/config"
)

// ToolFactory constructs the tool set for one run once the configuration is
// known. Provider clients are built here, once, and injected into the tools.
type ToolFactory func(ctx context.Context, cfg domain.Config) ([]audit.Registration, error)

type AuditCmd struct {
	configPath    string
	project       string
	dryRun        bool
	deleteFlagged bool
	tools         []string
	verbose       bool

	buildTools ToolFactory
	output     io.Writer
}

func NewAuditCmd(buildTools ToolFactory, output io.Writer) *cobra.Command {
	ac := &AuditCmd{buildTools: buildTools, output: output}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the project's resource policies",
		Long: "Runs the registered inspectors against one project, flags policy violations,\n" +
			"and optionally deletes flagged firewall rules under a confirm/dry-run protocol.",
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&ac.project, "project", "", "Project ID (overrides the config file)")
	cmd.Flags().BoolVar(&ac.dryRun, "dry-run", false, "Simulate destructive actions without performing them")
	cmd.Flags().BoolVar(&ac.deleteFlagged, "delete", false,
		"Delete flagged firewall rules; requires confirmation unless --dry-run is also set")
	cmd.Flags().StringSliceVar(&ac.tools, "tools", nil, "Tools to run by identifier (default: all)")
	cmd.Flags().BoolVarP(&ac.verbose, "verbose", "v", false, "Enable debug logging")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (ac *AuditCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ac.verbose {
		logger := zerolog.Ctx(ctx).Level(zerolog.DebugLevel)
		ctx = logger.WithContext(ctx)
	}
	log := zerolog.Ctx(ctx)

	cfg, err := config.Load(ac.configPath)
	if err != nil {
		return err
	}
	if ac.project != "" {
		cfg.ProjectID = ac.project
	}

	log.Info().Str("project", cfg.ProjectID).Msg("starting audit")
	if ac.dryRun {
		log.Info().Msg("global dry-run mode enabled, destructive operations will be simulated")
	}

	registrations, err := ac.buildTools(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to construct tools: %w", err)
	}
	selected, err := selectTools(registrations, ac.tools)
	if err != nil {
		return err
	}

	manager := audit.NewManager()
	for _, reg := range selected {
		manager.Register(ctx, reg.ID, reg.Tool)
	}

	summary := manager.RunAll(ctx, audit.Request{
		ProjectID:       cfg.ProjectID,
		Config:          cfg,
		DryRun:          ac.dryRun,
		DeleteRequested: ac.deleteFlagged,
	})

	_, err = fmt.Fprintf(ac.output, "Audit finished: %d tool(s) attempted, %d completed, %d failed.\n",
		summary.Attempted, summary.Completed, summary.Failed)
	return err
}

// selectTools filters registrations by the requested identifiers, preserving
// registration order. No selection means every tool runs.
func selectTools(registrations []audit.Registration, requested []string) ([]audit.Registration, error) {
	if len(requested) == 0 {
		return registrations, nil
	}

	known := make(map[string]struct{}, len(registrations))
	ids := make([]string, 0, len(registrations))
	for _, reg := range registrations {
		known[reg.ID] = struct{}{}
		ids = append(ids, reg.ID)
	}
	wanted := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("unknown tool %q, available tools: %s", id, strings.Join(ids, ", "))
		}
		wanted[id] = struct{}{}
	}

	selected := make([]audit.Registration, 0, len(wanted))
	for _, reg := range registrations {
		if _, ok := wanted[reg.ID]; ok {
			selected = append(selected, reg)
		}
	}
	return selected, nil
}
