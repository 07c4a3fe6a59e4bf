package firewall

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// WildcardPortToken on the config side matches every port.
const WildcardPortToken = "1-65535"

// ErrInvalidPortFormat reports a token that is not a valid port or port
// range. Callers treat it as "no match", not as a fault.
var ErrInvalidPortFormat = errors.New("invalid port format")

type portRange struct {
	lo, hi int
}

// parsePortToken parses "n" into [n,n] and "a-b" into [a,b]. Ports must be
// 1-65535 decimal and a range must not be inverted.
func parsePortToken(token string) (portRange, error) {
	parse := func(s string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 || n > 65535 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPortFormat, token)
		}
		return n, nil
	}

	if lo, hi, found := strings.Cut(token, "-"); found {
		start, err := parse(lo)
		if err != nil {
			return portRange{}, err
		}
		end, err := parse(hi)
		if err != nil {
			return portRange{}, err
		}
		if start > end {
			return portRange{}, fmt.Errorf("%w: inverted range %q", ErrInvalidPortFormat, token)
		}
		return portRange{lo: start, hi: end}, nil
	}

	n, err := parse(token)
	if err != nil {
		return portRange{}, err
	}
	return portRange{lo: n, hi: n}, nil
}

// PortsOverlap reports whether any port granted by the rule falls inside any
// configured permissive port token.
//
// An empty rulePorts list means the rule grants every port, and the wildcard
// token on the config side matches everything; both short-circuit to true
// before any range math. A malformed token yields ErrInvalidPortFormat.
func PortsOverlap(rulePorts, configPorts []string) (bool, error) {
	if len(rulePorts) == 0 {
		return true, nil
	}
	for _, token := range configPorts {
		if token == WildcardPortToken {
			return true, nil
		}
	}

	ruleRanges := make([]portRange, 0, len(rulePorts))
	for _, token := range rulePorts {
		r, err := parsePortToken(token)
		if err != nil {
			return false, err
		}
		ruleRanges = append(ruleRanges, r)
	}
	configRanges := make([]portRange, 0, len(configPorts))
	for _, token := range configPorts {
		r, err := parsePortToken(token)
		if err != nil {
			return false, err
		}
		configRanges = append(configRanges, r)
	}

	for _, rr := range ruleRanges {
		for _, cr := range configRanges {
			if rr.lo <= cr.hi && cr.lo <= rr.hi {
				return true, nil
			}
		}
	}
	return false, nil
}
