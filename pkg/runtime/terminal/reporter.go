package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/usage"
)

// Reporter outputs usage reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(report *domain.UsageReport) error {
	tmpl := `
Query usage for project {{.ProjectID}} (region {{.Region}}, last {{.Days}} days)
{{range .Daily}}{{.Date}}  queries: {{.QueryCount}}  bytes billed: {{formatBytes .TotalBytesBilled}}
{{end}}`
	t, err := template.New("usage").
		Funcs(template.FuncMap{"formatBytes": usage.FormatBytes}).
		Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, report)
}
