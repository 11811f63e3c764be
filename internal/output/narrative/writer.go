// Package narrative renders the health summary as a Markdown executive
// report.
package narrative

import (
	"fmt"
	"path/filepath"
	"text/template"
	"time"

	"github.com/spf13/afero"

	"cmhealth/pkg/models"
)

// Report is the rendering input. Everything needed is in the summary and the
// warning ledger; no further lookups happen here.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Summary     *models.HealthSummary
	Warnings    []models.Warning
}

const reportTemplate = `# Central Manager Health Check

- Generated: {{datetime .GeneratedAt}}
- Run: {{.RunID}}
- Monitored nodes: {{.Summary.NodeCount}} ({{.Summary.CollectorCount}} collectors)

## 1. Agent Status (STAP)

- Total agents detected: {{.Summary.Agents.Total}}
- Active agents: {{.Summary.Agents.Active}}
- **Inactive agents: {{.Summary.Agents.Inactive}}**
{{if .Summary.InactiveAgents}}
| Host | Status | Revision |
|------|--------|----------|
{{- range .Summary.InactiveAgents}}
| {{.Host}} | {{.Status}} | {{.Revision}} |
{{- end}}
{{else}}
All reported agents are active.
{{end}}
## 2. Aggregation Process Failures
{{if .Summary.Failures}}
| Collector | Failure | Occurrence Date |
|-----------|---------|-----------------|
{{- range .Summary.Failures}}
| {{.Collector}} | {{.ActivityType}} ({{.Status}}) | {{datetime .Date}} |
{{- end}}
{{else}}
No failures found in the provided aggregation logs.
{{end}}
## 3. Warnings
{{if .Warnings}}
{{- range .Warnings}}
- {{.}}
{{- end}}
{{else}}
No warnings recorded.
{{end}}`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}).Parse(reportTemplate))

// Write renders the Markdown report to path.
func Write(fsys afero.Fs, path string, report Report) error {
	if report.Summary == nil {
		return fmt.Errorf("nil health summary")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
