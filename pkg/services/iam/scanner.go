package iam

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
)

// API is the provider surface the scanner needs: every bucket in the project
// paired with its IAM bindings or the error that prevented retrieving them.
type API interface {
	ListBucketPolicies(ctx context.Context, projectID string) ([]domain.BucketPolicy, error)
}

// FindViolations returns one finding for every (role, member) pair on the
// resource where the role and the member are both configured as sensitive.
// Unlike firewall classification this collects all matches, not just the
// first: every offending pair is reported.
func FindViolations(resourceName string, bindings []domain.Binding, cfg domain.IAMConfig) []domain.BindingFinding {
	flaggedRoles := toSet(cfg.RolesToFlag)
	flaggedMembers := toSet(cfg.MembersToFlag)

	var findings []domain.BindingFinding
	for _, binding := range bindings {
		if binding.Role == "" {
			continue
		}
		if _, ok := flaggedRoles[binding.Role]; !ok {
			continue
		}
		for _, member := range binding.Members {
			if _, ok := flaggedMembers[member]; !ok {
				continue
			}
			findings = append(findings, domain.BindingFinding{
				ResourceName: resourceName,
				Role:         binding.Role,
				Member:       member,
				Condition:    binding.Condition,
			})
		}
	}
	return findings
}

// Remediation suggests the least-privilege fix for one finding.
func Remediation(f domain.BindingFinding) string {
	text := fmt.Sprintf("remove role %q for member %q on bucket %q, apply the principle of least privilege",
		f.Role, f.Member, f.ResourceName)
	if f.Condition != nil {
		text += fmt.Sprintf("; note the binding carries condition %q, evaluate its impact", f.Condition.Title)
	}
	return text
}

// Scanner flags bucket IAM bindings that grant sensitive roles to sensitive
// members. It is read-only: the global delete and dry-run flags do not apply.
type Scanner struct {
	api API
}

func NewScanner(api API) *Scanner {
	return &Scanner{api: api}
}

func (s *Scanner) Descriptor() audit.Descriptor {
	return audit.Descriptor{
		ConfigKey:   "iam_scanner",
		DisplayName: "Bucket IAM Policy Scanner",
	}
}

func (s *Scanner) Run(ctx context.Context, req audit.Request) error {
	log := zerolog.Ctx(ctx)
	cfg := req.Config.IAM

	log.Info().
		Strs("roles_to_flag", cfg.RolesToFlag).
		Strs("members_to_flag", cfg.MembersToFlag).
		Str("project", req.ProjectID).
		Msg("scanning bucket IAM policies")

	policies, err := s.api.ListBucketPolicies(ctx, req.ProjectID)
	if err != nil {
		log.Error().Err(err).Str("project", req.ProjectID).Msg("could not list bucket policies")
		return nil
	}
	if len(policies) == 0 {
		log.Info().Msg("no buckets found, scan finished")
		return nil
	}

	ignored := toSet(cfg.IgnoreBuckets)
	ignoredCount := 0
	analyzed := 0
	bucketsFlagged := 0
	totalFindings := 0

	for _, bp := range policies {
		if _, skip := ignored[bp.BucketName]; skip {
			ignoredCount++
			log.Debug().Str("bucket", bp.BucketName).Msg("bucket is on the ignore list, skipping")
			continue
		}
		if bp.Err != nil {
			log.Warn().Err(bp.Err).Str("bucket", bp.BucketName).
				Msg("skipping bucket: its IAM policy could not be retrieved")
			continue
		}

		analyzed++
		findings := FindViolations(bp.BucketName, bp.Bindings, cfg)
		if len(findings) == 0 {
			continue
		}
		bucketsFlagged++
		totalFindings += len(findings)
		for _, f := range findings {
			event := log.Warn().
				Str("bucket", f.ResourceName).
				Str("role", f.Role).
				Str("member", f.Member).
				Str("remediation", Remediation(f))
			if f.Condition != nil {
				event = event.Str("condition", f.Condition.Expression)
			}
			event.Msg("FLAGGED sensitive IAM binding")
		}
	}

	log.Info().
		Int("buckets_total", len(policies)).
		Int("buckets_ignored", ignoredCount).
		Int("buckets_analyzed", analyzed).
		Int("buckets_flagged", bucketsFlagged).
		Int("findings", totalFindings).
		Msg("bucket IAM scan complete")
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
