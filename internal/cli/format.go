package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"example.com/healthdash/internal/dashboard"
	"example.com/healthdash/internal/projection"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
	}
}

// Gruvbox-inspired palette shared by the table renderer.
var (
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
	colorRed    = lipgloss.Color("#fb4934")

	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleCell   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	styleFlag   = styleCell.Foreground(colorRed)
)

type inspectView struct {
	UploadID string      `json:"upload_id" yaml:"upload_id"`
	Range    string      `json:"range" yaml:"range"`
	Total    int         `json:"total" yaml:"total"`
	Skipped  int         `json:"skipped" yaml:"skipped"`
	Filtered int         `json:"filtered" yaml:"filtered"`
	Groups   []groupView `json:"groups" yaml:"groups"`
}

type groupView struct {
	Type   string    `json:"type" yaml:"type"`
	Label  string    `json:"label" yaml:"label"`
	Unit   string    `json:"unit" yaml:"unit"`
	Count  int       `json:"count" yaml:"count"`
	Points int       `json:"points" yaml:"points"`
	Min    *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Rows   []rowView `json:"rows" yaml:"rows"`
}

type rowView struct {
	Start  string `json:"start" yaml:"start"`
	End    string `json:"end" yaml:"end"`
	Value  string `json:"value" yaml:"value"`
	Kind   string `json:"kind" yaml:"kind"`
	Unit   string `json:"unit" yaml:"unit"`
	Source string `json:"source" yaml:"source"`
}

func newInspectView(report *dashboard.Report, maxRows int) inspectView {
	view := inspectView{
		UploadID: report.UploadID,
		Range:    string(report.Range),
		Total:    report.Total,
		Skipped:  report.Skipped,
		Filtered: report.Filtered,
		Groups:   make([]groupView, 0, len(report.Groups)),
	}
	for _, g := range report.Groups {
		view.Groups = append(view.Groups, newGroupView(g, maxRows))
	}
	return view
}

func newGroupView(g projection.Group, maxRows int) groupView {
	gv := groupView{
		Type:   g.Type,
		Label:  g.Label,
		Unit:   g.Unit,
		Count:  len(g.Rows),
		Points: len(g.Points),
	}
	for i, p := range g.Points {
		v := p.Value
		if i == 0 || v < *gv.Min {
			gv.Min = &v
		}
		if i == 0 || v > *gv.Max {
			gv.Max = &v
		}
	}

	rows := g.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	gv.Rows = make([]rowView, 0, len(rows))
	for _, r := range rows {
		gv.Rows = append(gv.Rows, rowView{Start: r.Start, End: r.End, Value: r.Value, Kind: r.Kind, Unit: r.Unit, Source: r.Source})
	}
	return gv
}

func writeReport(w io.Writer, format outputFormat, view inspectView) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, renderTables(view))
		return err
	}
}

func renderTables(view inspectView) string {
	var b strings.Builder
	summary := fmt.Sprintf("%d records, %d skipped, %d filtered (range %s)", view.Total, view.Skipped, view.Filtered, view.Range)
	b.WriteString(styleDim.Render(summary))
	b.WriteString("\n")

	for _, g := range view.Groups {
		title := g.Label
		if g.Unit != "" {
			title += " [" + g.Unit + "]"
		}
		b.WriteString("\n")
		b.WriteString(styleHeader.Render(strings.ToUpper(title)))
		b.WriteString("\n")

		stats := fmt.Sprintf("%d records, %d charted", g.Count, g.Points)
		if g.Min != nil && g.Max != nil {
			stats += fmt.Sprintf(", min %s, max %s", formatFloat(*g.Min), formatFloat(*g.Max))
		}
		b.WriteString(styleDim.Render(stats))
		b.WriteString("\n")

		rows := make([][]string, 0, len(g.Rows))
		for _, r := range g.Rows {
			rows = append(rows, []string{r.Start, r.End, r.Value, r.Unit, r.Source})
		}
		kinds := make([]string, len(g.Rows))
		for i, r := range g.Rows {
			kinds[i] = r.Kind
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(styleDim).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return styleHeader.PaddingLeft(1).PaddingRight(1)
				case row >= 0 && row < len(kinds) && kinds[row] == "unparsed":
					return styleFlag
				default:
					return styleCell
				}
			}).
			Headers("START", "END", "VALUE", "UNIT", "SOURCE").
			Rows(rows...)
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
