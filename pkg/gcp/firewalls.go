package gcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// DeleteStatus is the outcome of a firewall rule deletion attempt. Callers
// branch on the status instead of catching provider faults; an idempotent
// "already gone" is data, not an error.
type DeleteStatus int

const (
	DeleteFailed DeleteStatus = iota
	Deleted
	AlreadyGone
	DeletePermissionDenied
)

func (s DeleteStatus) String() string {
	switch s {
	case Deleted:
		return "deleted"
	case AlreadyGone:
		return "already_gone"
	case DeletePermissionDenied:
		return "permission_denied"
	default:
		return "failed"
	}
}

// DeleteResult carries the deletion status plus failure detail when the
// status is DeleteFailed.
type DeleteResult struct {
	Status DeleteStatus
	Detail error
}

// FirewallService lists and deletes compute firewall rules for one project.
// It is constructed once at startup and injected into the inspector.
type FirewallService struct {
	svc *compute.Service
}

func NewFirewallService(ctx context.Context, opts ...option.ClientOption) (*FirewallService, error) {
	svc, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute service: %w", err)
	}
	return &FirewallService{svc: svc}, nil
}

// ListFirewallRules returns a complete snapshot of the project's firewall
// rules. Pagination is handled here; callers see one full listing.
func (s *FirewallService) ListFirewallRules(ctx context.Context, projectID string) ([]domain.FirewallRule, error) {
	var rules []domain.FirewallRule
	err := s.svc.Firewalls.List(projectID).Pages(ctx, func(page *compute.FirewallList) error {
		for _, fw := range page.Items {
			rules = append(rules, mapFirewall(fw))
		}
		return nil
	})
	if err != nil {
		return nil, wrapAPIError(err, fmt.Sprintf("listing firewall rules in project %q", projectID))
	}
	return rules, nil
}

// DeleteFirewallRule deletes one rule by name. With dryRun set the call is
// logged and simulated, nothing is sent to the provider.
func (s *FirewallService) DeleteFirewallRule(ctx context.Context, projectID, name string, dryRun bool) DeleteResult {
	log := zerolog.Ctx(ctx)

	if dryRun {
		log.Info().Str("rule", name).Str("project", projectID).Msg("[dry-run] would delete firewall rule")
		return DeleteResult{Status: Deleted}
	}

	op, err := s.svc.Firewalls.Delete(projectID, name).Context(ctx).Do()
	if err != nil {
		wrapped := wrapAPIError(err, fmt.Sprintf("deleting firewall rule %q", name))
		switch {
		case errors.Is(wrapped, ErrNotFound):
			return DeleteResult{Status: AlreadyGone}
		case errors.Is(wrapped, ErrPermissionDenied):
			return DeleteResult{Status: DeletePermissionDenied}
		default:
			return DeleteResult{Status: DeleteFailed, Detail: wrapped}
		}
	}

	log.Info().Str("rule", name).Str("operation", op.Name).Msg("firewall rule delete operation initiated")
	return DeleteResult{Status: Deleted}
}

func mapFirewall(fw *compute.Firewall) domain.FirewallRule {
	rule := domain.FirewallRule{
		Name:                  fw.Name,
		Direction:             domain.Direction(fw.Direction),
		Disabled:              fw.Disabled,
		SourceRanges:          fw.SourceRanges,
		TargetTags:            fw.TargetTags,
		TargetServiceAccounts: fw.TargetServiceAccounts,
		Priority:              fw.Priority,
		Network:               fw.Network,
	}
	for _, allowed := range fw.Allowed {
		rule.Allowed = append(rule.Allowed, domain.AllowedEntry{
			Protocol: allowed.IPProtocol,
			Ports:    allowed.Ports,
		})
	}
	return rule
}
