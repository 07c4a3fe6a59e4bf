package audit

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Summary reports how a RunAll invocation went: how many tools were
// attempted, how many completed, and how many failed with a caught error.
type Summary struct {
	Attempted int
	Completed int
	Failed    int
}

// Manager is an ordered registry and sequential executor of tools. Tools run
// strictly in first-registration order, and a failing tool never prevents the
// remaining ones from executing.
type Manager struct {
	order []string
	tools map[string]Tool
}

func NewManager() *Manager {
	return &Manager{tools: make(map[string]Tool)}
}

// Register adds a tool under the given identifier. Registering a duplicate
// identifier overwrites the previous tool but keeps its original position in
// the execution order.
func (m *Manager) Register(ctx context.Context, id string, tool Tool) {
	log := zerolog.Ctx(ctx)
	if _, exists := m.tools[id]; exists {
		log.Warn().Str("tool_id", id).Msg("tool already registered, overwriting previous instance")
	} else {
		m.order = append(m.order, id)
	}
	m.tools[id] = tool
	log.Debug().Str("tool_id", id).Str("tool", tool.Descriptor().DisplayName).Msg("tool registered")
}

// IDs returns the registered identifiers in execution order.
func (m *Manager) IDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// RunAll executes every registered tool in registration order. Errors and
// panics inside one tool are caught and logged with the tool's display name;
// they never stop the remaining tools.
func (m *Manager) RunAll(ctx context.Context, req Request) Summary {
	log := zerolog.Ctx(ctx)
	if len(m.order) == 0 {
		log.Warn().Msg("no tools are registered, nothing to execute")
		return Summary{}
	}

	var summary Summary
	for _, id := range m.order {
		tool := m.tools[id]
		name := tool.Descriptor().DisplayName
		summary.Attempted++

		log.Info().Str("tool", name).Msg("executing tool")
		if err := m.runTool(ctx, tool, req); err != nil {
			summary.Failed++
			log.Error().Err(err).Str("tool", name).Msg("tool execution failed")
			continue
		}
		summary.Completed++
		log.Info().Str("tool", name).Msg("tool finished")
	}

	log.Info().
		Int("attempted", summary.Attempted).
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Msg("all registered tools processed")
	return summary
}

func (m *Manager) runTool(ctx context.Context, tool Tool, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return tool.Run(ctx, req)
}
