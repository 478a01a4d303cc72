package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

var outcomeTmpl = template.Must(template.New("outcome").Parse(`<html>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
    <h2 style="color: {{.Color}}; margin-top: 0;">{{.Title}}</h2>
    <div style="line-height: 1.6; color: #333;">
      <p><strong>Schedule:</strong> {{.Name}}</p>
      <p><strong>Source:</strong> {{.Source}}</p>
      <p><strong>Destination:</strong> {{.Destination}}</p>
{{- if .Transferred}}
      <p><strong>Transferred:</strong> {{.Transferred}}</p>
{{- end}}
{{- if .Details}}
      <p><strong>Details:</strong> {{.Details}}</p>
{{- end}}
      <p><strong>Duration:</strong> {{.Duration}}</p>
      <p><strong>Finished at:</strong> {{.FinishedAt}}</p>
    </div>
    <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-bottom: 0;">Nereus sync service</p>
  </div>
</body>
</html>`))

var testTmpl = template.Must(template.New("test").Parse(`<html>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
    <h2 style="color: #388e3c; margin-top: 0;">Test notification</h2>
    <div style="line-height: 1.6; color: #333;">
      <p>Your notification settings are working.</p>
      <p><strong>Sent at:</strong> {{.SentAt}}</p>
    </div>
    <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-bottom: 0;">Nereus sync service</p>
  </div>
</body>
</html>`))

type outcomeData struct {
	Title       string
	Color       string
	Name        string
	Source      string
	Destination string
	Transferred string
	Details     string
	Duration    string
	FinishedAt  string
}

func renderOutcome(sched model.Schedule, outcome model.RunOutcome) (string, error) {
	data := outcomeData{
		Name:        sched.Name,
		Source:      sched.Source,
		Destination: sched.Destination,
		Duration:    outcome.Duration().Round(time.Second).String(),
		FinishedAt:  outcome.FinishedAt.Format(timestampLayout),
	}
	switch outcome.Status {
	case model.RunSuccess:
		data.Title = "Sync completed"
		data.Color = "#388e3c"
		data.Transferred = humanize.Comma(int64(outcome.FilesTransferred)) + " files (" +
			humanize.Bytes(uint64(outcome.BytesTransferred)) + ")"
	default:
		data.Title = "Sync failed"
		data.Color = "#d32f2f"
		data.Details = outcome.Message
	}

	var buf bytes.Buffer
	if err := outcomeTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderTest(sentAt time.Time) (string, error) {
	var buf bytes.Buffer
	err := testTmpl.Execute(&buf, struct{ SentAt string }{SentAt: sentAt.Format(timestampLayout)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
