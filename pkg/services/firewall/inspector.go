package firewall

import (
	"context"
	"path"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-audit/pkg/gcp"
	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
	"github.com/de-tools/cloud-audit/pkg/services/guard"
)

// API is the provider surface the inspector needs: a full rule snapshot and
// a per-rule delete with an explicit outcome.
type API interface {
	ListFirewallRules(ctx context.Context, projectID string) ([]domain.FirewallRule, error)
	DeleteFirewallRule(ctx context.Context, projectID, name string, dryRun bool) gcp.DeleteResult
}

// Inspector flags overly permissive firewall rules and, when deletion is
// requested and allowed by the guard, removes them.
type Inspector struct {
	api       API
	confirmer guard.ConfirmationProvider
}

func NewInspector(api API, confirmer guard.ConfirmationProvider) *Inspector {
	return &Inspector{api: api, confirmer: confirmer}
}

func (i *Inspector) Descriptor() audit.Descriptor {
	return audit.Descriptor{
		ConfigKey:   "firewall_inspector",
		DisplayName: "Firewall Rule Inspector & Cleaner",
	}
}

func (i *Inspector) Run(ctx context.Context, req audit.Request) error {
	log := zerolog.Ctx(ctx)
	cfg := req.Config.Firewall

	// The deletion decision is made once per run, before any item-level
	// action, and reused for every flagged rule.
	decision := guard.Decide(ctx, req.DeleteRequested, req.DryRun, i.confirmer)

	rules, err := i.api.ListFirewallRules(ctx, req.ProjectID)
	if err != nil {
		// Listing failures degrade to an empty snapshot; classification of
		// nothing still yields a run summary.
		log.Error().Err(err).Str("project", req.ProjectID).Msg("could not list firewall rules")
		rules = nil
	}
	log.Info().Int("rules", len(rules)).Str("project", req.ProjectID).Msg("analyzing firewall rules")

	flagged := 0
	actioned := 0
	for _, rule := range rules {
		if rule.Disabled {
			log.Debug().Str("rule", rule.Name).Msg("rule is disabled, skipping")
			continue
		}

		outcome := Classify(ctx, rule, cfg)
		if !outcome.IsFlagged() {
			continue
		}
		flagged++
		log.Warn().
			Str("rule", rule.Name).
			Int64("priority", rule.Priority).
			Str("network", path.Base(rule.Network)).
			Str("reason", outcome.Reason()).
			Msg("FLAGGED overly permissive firewall rule")

		if !decision.Proceed {
			continue
		}
		result := i.api.DeleteFirewallRule(ctx, req.ProjectID, rule.Name, decision.EffectiveDryRun)
		switch result.Status {
		case gcp.Deleted:
			actioned++
		case gcp.AlreadyGone:
			log.Warn().Str("rule", rule.Name).Msg("rule not found, might be already deleted")
		case gcp.DeletePermissionDenied:
			log.Error().Str("rule", rule.Name).Msg("permission denied deleting rule, requires compute.firewalls.delete")
		default:
			log.Error().Err(result.Detail).Str("rule", rule.Name).Msg("unexpected error deleting rule")
		}
	}

	log.Info().Int("flagged", flagged).Msg("firewall analysis complete")
	if decision.Proceed {
		verb := "initiated"
		if decision.EffectiveDryRun {
			verb = "simulated"
		}
		log.Info().Int("actioned", actioned).Str("action", verb).Msg("deletions processed for flagged rules")
	}
	return nil
}
