package audit

import (
	"context"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// Descriptor identifies a tool: the config section it consumes and the name
// it is reported under in logs.
type Descriptor struct {
	ConfigKey   string
	DisplayName string
}

// Request carries the per-run inputs shared by every tool: the project under
// audit, the loaded configuration, and the global dry-run/delete flags.
type Request struct {
	ProjectID       string
	Config          domain.Config
	DryRun          bool
	DeleteRequested bool
}

// Tool is one inspector: it pulls a resource snapshot from its collaborator,
// classifies it, and reports (and optionally remediates) violations.
type Tool interface {
	Descriptor() Descriptor
	Run(ctx context.Context, req Request) error
}

// Registration pairs a tool with the identifier it is registered under.
type Registration struct {
	ID   string
	Tool Tool
}
