package firewall

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// WildcardProtocol on the config side matches every protocol.
const WildcardProtocol = "any"

// Classify decides whether one firewall rule violates the configured
// permissiveness criteria. The caller filters out disabled rules before
// classification.
//
// The guard chain short-circuits to NotFlagged: only ingress rules are
// considered when FlagIngressOnly is set, the alert source range must be an
// exact element of the rule's source ranges (no CIDR containment reasoning),
// and rules targeting ignored tags or service accounts are skipped. The first
// (allowed entry, criterion) pair that matches flags the rule; later pairs on
// the same rule are not evaluated.
func Classify(ctx context.Context, rule domain.FirewallRule, cfg domain.FirewallConfig) domain.Outcome {
	log := zerolog.Ctx(ctx)

	if cfg.FlagIngressOnly && rule.Direction != domain.DirectionIngress {
		return domain.NotFlagged
	}
	if !contains(rule.SourceRanges, cfg.SourceIPAlert) {
		return domain.NotFlagged
	}
	if intersects(rule.TargetTags, cfg.IgnoreTags) {
		log.Debug().Str("rule", rule.Name).Strs("target_tags", rule.TargetTags).
			Msg("rule skipped: matches ignored target tags")
		return domain.NotFlagged
	}
	if intersects(rule.TargetServiceAccounts, cfg.IgnoreServiceAccounts) {
		log.Debug().Str("rule", rule.Name).Strs("target_service_accounts", rule.TargetServiceAccounts).
			Msg("rule skipped: matches ignored target service accounts")
		return domain.NotFlagged
	}
	if len(rule.Allowed) == 0 {
		// A source-matching rule with no allow clauses grants nothing.
		log.Debug().Str("rule", rule.Name).Msg("rule has alert source but no allowed entries")
		return domain.NotFlagged
	}

	for _, entry := range rule.Allowed {
		protocol := strings.ToLower(entry.Protocol)
		for _, criterion := range cfg.Criteria {
			criterionProtocol := strings.ToLower(criterion.Protocol)
			if criterionProtocol != protocol && criterionProtocol != WildcardProtocol {
				continue
			}

			if len(criterion.Ports) == 0 {
				return domain.Flagged(fmt.Sprintf(
					"allows %s on ALL ports from %q (criterion protocol %q has no port restriction)",
					strings.ToUpper(protocol), cfg.SourceIPAlert, criterion.Protocol))
			}

			overlap, err := PortsOverlap(entry.Ports, criterion.Ports)
			if err != nil {
				log.Warn().Err(err).Str("rule", rule.Name).
					Strs("rule_ports", entry.Ports).Strs("config_ports", criterion.Ports).
					Msg("invalid port format, treating as no match")
				continue
			}
			if overlap {
				rulePorts := "ALL"
				if len(entry.Ports) > 0 {
					rulePorts = strings.Join(entry.Ports, ",")
				}
				return domain.Flagged(fmt.Sprintf(
					"allows %s on ports [%s] from %q matching configured permissive ports %v for criterion protocol %q",
					strings.ToUpper(protocol), rulePorts, cfg.SourceIPAlert, criterion.Ports, criterion.Protocol))
			}
		}
	}
	return domain.NotFlagged
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
