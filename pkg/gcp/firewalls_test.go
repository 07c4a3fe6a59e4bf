package gcp

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/googleapi"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

func TestMapFirewall(t *testing.T) {
	fw := &compute.Firewall{
		Name:      "allow-ssh",
		Direction: "INGRESS",
		Disabled:  true,
		Allowed: []*compute.FirewallAllowed{
			{IPProtocol: "tcp", Ports: []string{"22"}},
			{IPProtocol: "icmp"},
		},
		SourceRanges:          []string{"0.0.0.0/0"},
		TargetTags:            []string{"ssh"},
		TargetServiceAccounts: []string{"sa@p.iam.gserviceaccount.com"},
		Priority:              900,
		Network:               "projects/p/global/networks/default",
	}

	rule := mapFirewall(fw)

	assert.Equal(t, "allow-ssh", rule.Name)
	assert.Equal(t, domain.DirectionIngress, rule.Direction)
	assert.True(t, rule.Disabled)
	require.Len(t, rule.Allowed, 2)
	assert.Equal(t, domain.AllowedEntry{Protocol: "tcp", Ports: []string{"22"}}, rule.Allowed[0])
	assert.Empty(t, rule.Allowed[1].Ports)
	assert.Equal(t, []string{"0.0.0.0/0"}, rule.SourceRanges)
	assert.Equal(t, int64(900), rule.Priority)
}

func TestWrapAPIError(t *testing.T) {
	t.Run("403 maps to permission denied", func(t *testing.T) {
		err := wrapAPIError(&googleapi.Error{Code: http.StatusForbidden, Message: "nope"}, "listing")
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Contains(t, err.Error(), "listing")
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		err := wrapAPIError(&googleapi.Error{Code: http.StatusNotFound}, "deleting")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other codes pass through wrapped", func(t *testing.T) {
		apiErr := &googleapi.Error{Code: http.StatusServiceUnavailable}
		err := wrapAPIError(apiErr, "listing")
		assert.NotErrorIs(t, err, ErrPermissionDenied)
		assert.NotErrorIs(t, err, ErrNotFound)
		var got *googleapi.Error
		assert.ErrorAs(t, err, &got)
	})

	t.Run("non-API errors pass through wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := wrapAPIError(cause, "listing")
		assert.ErrorIs(t, err, cause)
	})
}
