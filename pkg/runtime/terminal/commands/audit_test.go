package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-audit/pkg/services/audit"
)

func registrations(ids ...string) []audit.Registration {
	regs := make([]audit.Registration, 0, len(ids))
	for _, id := range ids {
		regs = append(regs, audit.Registration{ID: id})
	}
	return regs
}

func TestSelectTools(t *testing.T) {
	all := registrations("firewall", "iam", "usage")

	t.Run("empty selection keeps everything", func(t *testing.T) {
		selected, err := selectTools(all, nil)
		require.NoError(t, err)
		assert.Equal(t, all, selected)
	})

	t.Run("selection preserves registration order", func(t *testing.T) {
		selected, err := selectTools(all, []string{"usage", "firewall"})
		require.NoError(t, err)
		require.Len(t, selected, 2)
		assert.Equal(t, "firewall", selected[0].ID)
		assert.Equal(t, "usage", selected[1].ID)
	})

	t.Run("unknown identifier lists the available tools", func(t *testing.T) {
		_, err := selectTools(all, []string{"dns"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"dns"`)
		assert.Contains(t, err.Error(), "firewall, iam, usage")
	})
}
