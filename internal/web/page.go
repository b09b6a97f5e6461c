// Package web renders the dashboard pages as templ components.
package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"example.com/healthdash/internal/domain"
	"example.com/healthdash/internal/projection"
)

// PageData drives Page. Report is nil on the bare upload form.
type PageData struct {
	Range  domain.TimeRange
	Error  string
	Report *ReportView
}

// ReportView is the part of a processed upload the page shows.
type ReportView struct {
	UploadID string
	Range    domain.TimeRange
	Total    int
	Skipped  int
	Filtered int
	Groups   []projection.Group
	Daily    projection.DailyTable
}

// Page renders the upload form followed by the dashboard, if any.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>Health Dashboard</title><style>`)
		h.raw(pageStyle)
		h.raw(`</style></head><body><main>`)
		h.raw(`<h1>Health Dashboard</h1>`)
		h.render(ctx, uploadForm(data.Range))
		if data.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(data.Error)
			h.raw(`</p>`)
		}
		if data.Report != nil {
			h.render(ctx, report(*data.Report))
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func uploadForm(selected domain.TimeRange) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if selected == "" {
			selected = domain.RangeAll
		}
		h := &htmlWriter{w: w}
		h.raw(`<form class="upload" method="post" action="/upload" enctype="multipart/form-data">`)
		h.raw(`<label for="archive">Export archive (.zip)</label>`)
		h.raw(`<input id="archive" type="file" name="archive" accept=".zip,application/zip" required>`)
		h.raw(`<fieldset><legend>Period of time</legend>`)
		for _, r := range domain.TimeRanges {
			h.raw(`<label><input type="radio" name="range" value="`)
			h.text(string(r))
			h.raw(`"`)
			if r == selected {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(r.Label())
			h.raw(`</label>`)
		}
		h.raw(`</fieldset><button type="submit">Upload</button></form>`)
		return h.err
	})
}

func report(view ReportView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="summary" data-upload-id="`)
		h.text(view.UploadID)
		h.raw(`"><p>`)
		h.text(view.Range.Label())
		h.raw(`: `)
		h.text(strconv.Itoa(view.Total))
		h.raw(` records`)
		if view.Skipped > 0 {
			h.raw(`, `)
			h.text(strconv.Itoa(view.Skipped))
			h.raw(` skipped`)
		}
		if view.Filtered > 0 {
			h.raw(`, `)
			h.text(strconv.Itoa(view.Filtered))
			h.raw(` of other types not shown`)
		}
		h.raw(`</p></section>`)

		if len(view.Groups) == 0 {
			h.raw(`<p class="empty">No records in this period.</p>`)
			return h.err
		}
		for _, g := range view.Groups {
			h.render(ctx, groupSection(g))
		}
		h.render(ctx, dailyTable(view.Daily))
		return h.err
	})
}

func groupSection(g projection.Group) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="group" id="`)
		h.text(g.Type)
		h.raw(`"><h2>`)
		h.text(g.Label)
		if g.Unit != "" {
			h.raw(` <small>[`)
			h.text(g.Unit)
			h.raw(`]</small>`)
		}
		h.raw(`</h2>`)
		h.render(ctx, chart(g))
		h.render(ctx, recordTable(g.Rows))
		h.raw(`</section>`)
		return h.err
	})
}

func chart(g projection.Group) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		geo, ok := layoutChart(g.Points, g.ReferenceLines)
		if !ok {
			h.raw(`<p class="empty">No numeric values to chart.</p>`)
			return h.err
		}
		h.raw(`<svg class="chart" viewBox="0 0 720 240" role="img" aria-label="`)
		h.text(g.Label)
		h.raw(` over time">`)
		for _, ref := range geo.RefLines {
			y := formatNumber(ref.Y)
			h.raw(`<line class="ref" x1="40" x2="680" y1="` + y + `" y2="` + y + `"></line>`)
			h.raw(`<text class="ref" x="684" y="` + y + `">`)
			h.text(ref.Label)
			h.raw(`</text>`)
		}
		h.raw(`<polyline class="series" points="` + geo.Polyline + `"></polyline>`)
		for _, d := range geo.Dots {
			h.raw(`<circle r="2.5" cx="` + formatNumber(d.X) + `" cy="` + formatNumber(d.Y) + `"></circle>`)
		}
		h.raw(`<text class="axis" x="4" y="44">`)
		h.text(geo.MaxLabel)
		h.raw(`</text><text class="axis" x="4" y="200">`)
		h.text(geo.MinLabel)
		h.raw(`</text><text class="axis" x="40" y="228">`)
		h.text(geo.FromLabel)
		h.raw(`</text><text class="axis end" x="680" y="228">`)
		h.text(geo.ToLabel)
		h.raw(`</text></svg>`)
		return h.err
	})
}

func recordTable(rows []projection.TableRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table class="records"><thead><tr><th>Start</th><th>End</th><th>Value</th><th>Unit</th><th>Source</th></tr></thead><tbody>`)
		for _, row := range rows {
			h.raw(`<tr class="` + row.Kind + `"><td>`)
			h.text(row.Start)
			h.raw(`</td><td>`)
			h.text(row.End)
			h.raw(`</td><td>`)
			h.text(row.Value)
			h.raw(`</td><td>`)
			h.text(row.Unit)
			h.raw(`</td><td>`)
			h.text(row.Source)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func dailyTable(t projection.DailyTable) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if len(t.Rows) == 0 {
			return nil
		}
		h.raw(`<section class="daily"><h2>Daily</h2><table><thead><tr><th>Date</th>`)
		for _, col := range t.Columns {
			h.raw(`<th>`)
			h.text(col)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range t.Rows {
			h.raw(`<tr><td>`)
			h.text(row.Date)
			h.raw(`</td>`)
			for _, cell := range row.Cells {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

// htmlWriter keeps the first write error so components can write unchecked.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#fafafa;color:#222}
main{max-width:960px;margin:0 auto;padding:1rem}
form.upload{display:grid;gap:.5rem;padding:1rem;border:1px solid #ddd;background:#fff}
fieldset{border:0;padding:0;display:flex;gap:1rem}
.error{color:#b00020}
.empty{color:#777}
svg.chart{width:100%;height:auto;background:#fff;border:1px solid #eee}
polyline.series{fill:none;stroke:#3366cc;stroke-width:1.5}
circle{fill:#3366cc}
line.ref{stroke:#888;stroke-dasharray:4 4}
text{font-size:11px;fill:#555}
text.end{text-anchor:end}
table{border-collapse:collapse;width:100%;margin:.5rem 0 1.5rem}
th,td{border:1px solid #ddd;padding:.25rem .5rem;text-align:left}
tbody tr:nth-child(odd){background:#f3f3f3}
tr.unparsed td{color:#b00020}`
