package connector

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"gocloud.dev/blob"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

type (
	// Report renders a plain-text report from the run's working state and
	// writes the artifact to an injected bucket
	Report struct {
		bucket *blob.Bucket
		prefix string
		ws     *Workspace
	}

	reportData struct {
		Title     string
		Generated string
		Records   int
		Summary   *Summary
	}
)

// Artifact is the workspace handle the report step leaves for downstream
// notification steps
type Artifact struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var reportTmpl = template.Must(template.New("report").Parse(
	`{{.Title}}
Generated: {{.Generated}}

Records: {{.Records}}
{{- if .Summary}}

Total after cleaning: {{.Summary.Total}}
Revenue: {{printf "%.2f" .Summary.Revenue}}
By status:
{{- range $status, $count := .Summary.ByStatus}}
  {{$status}}: {{$count}}
{{- end}}
{{- end}}
`))

// NewReport creates the report connector over an already-open bucket
func NewReport(bucket *blob.Bucket, prefix string, ws *Workspace) *Report {
	return &Report{bucket: bucket, prefix: prefix, ws: ws}
}

func (r *Report) Name() string {
	return "report"
}

// Register contributes the generate_report handler
func (r *Report) Register(reg *engine.Registry) error {
	return reg.Register(planner.ActionGenerateReport, r.generate)
}

func (r *Report) generate(
	ctx context.Context, params api.Args,
) (api.Args, error) {
	records, err := recordsFrom(ctx, r.ws)
	if err != nil {
		return nil, err
	}

	data := &reportData{
		Title:     params.GetString("title", "CRM Report"),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Records:   len(records),
	}

	// The summary only exists when an analyze step preceded this one
	if val, err := r.ws.Get(ctx, wsSummary); err == nil {
		if summary, ok := val.(*Summary); ok {
			data.Summary = summary
		}
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	// The title is caller-supplied; scrub it before it becomes part of
	// the object key
	runID, _ := api.RunIDFrom(ctx)
	name := api.SanitizeID(fmt.Sprintf("%s %s", data.Title, runID))
	key := fmt.Sprintf("%s%s.txt", r.prefix, name)
	if err := r.bucket.WriteAll(ctx, key, buf.Bytes(), nil); err != nil {
		return nil, fmt.Errorf("failed to write report artifact: %w", err)
	}

	artifact := &Artifact{Key: key, Title: data.Title, Body: buf.String()}
	if err := r.ws.Put(ctx, wsArtifact, artifact); err != nil {
		return nil, err
	}

	return api.Args{
		"artifact_key": key,
		"bytes":        buf.Len(),
	}, nil
}
