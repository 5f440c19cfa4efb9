package calendar

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/nhle/offercal/internal/model"
)

// Marker is appended to the day number of days with offers.
const Marker = "✈"

// SubjectSeparator joins the subjects shown in a day's tooltip.
const SubjectSeparator = "; "

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var tableTemplate = template.Must(template.New("calendar").Funcs(template.FuncMap{
	"tooltip": func(subjects []string) string {
		return strings.Join(subjects, SubjectSeparator)
	},
}).Parse(`<table>
  <thead>
    <tr><th>Month</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
{{- range .Weeks}}
    <tr>
      <td>{{.Label}}</td>
{{- range .Days}}
{{- if .HasOffers}}
      <td title="{{tooltip .Subjects}}">{{.Date.Day}} {{$.Marker}}</td>
{{- else}}
      <td>{{.Date.Day}}</td>
{{- end}}
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
`))

// Render builds the calendar for offers and returns it as an HTML table.
// Subjects, labels and day numbers are HTML-escaped.
func Render(offers []model.Offer) (string, error) {
	weeks, err := Build(offers)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, weeks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML renders weeks as an HTML table to w.
func WriteHTML(w io.Writer, weeks []Week) error {
	err := tableTemplate.Execute(w, struct {
		Headers []string
		Weeks   []Week
		Marker  string
	}{
		Headers: weekdayHeaders,
		Weeks:   weeks,
		Marker:  Marker,
	})
	if err != nil {
		return fmt.Errorf("rendering calendar: %w", err)
	}
	return nil
}
