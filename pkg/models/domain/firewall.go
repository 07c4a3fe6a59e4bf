package domain

// Direction of traffic a firewall rule governs.
type Direction string

const (
	DirectionIngress Direction = "INGRESS"
	DirectionEgress  Direction = "EGRESS"
)

// AllowedEntry is one (protocol, ports) pair a firewall rule permits.
// An empty Ports list means the entry grants every port for the protocol.
type AllowedEntry struct {
	Protocol string
	Ports    []string
}

// FirewallRule is an immutable snapshot of one compute firewall rule
// as returned by the provider at listing time.
type FirewallRule struct {
	Name                  string
	Direction             Direction
	Disabled              bool
	SourceRanges          []string
	Allowed               []AllowedEntry
	TargetTags            []string
	TargetServiceAccounts []string
	Priority              int64
	Network               string
}

// Outcome is the result of classifying a single firewall rule. It is either
// flagged with a human-readable reason, or not flagged.
type Outcome struct {
	flagged bool
	reason  string
}

// NotFlagged is the zero outcome: the rule passed every check.
var NotFlagged = Outcome{}

// Flagged constructs an outcome carrying the reason the rule was flagged.
func Flagged(reason string) Outcome {
	return Outcome{flagged: true, reason: reason}
}

func (o Outcome) IsFlagged() bool { return o.flagged }

// Reason returns the explanation for a flagged outcome, empty otherwise.
func (o Outcome) Reason() string { return o.reason }
