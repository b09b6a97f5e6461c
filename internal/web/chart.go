package web

import (
	"math"
	"strconv"
	"strings"
	"time"

	"example.com/healthdash/internal/projection"
)

const (
	chartWidth   = 720.0
	chartHeight  = 240.0
	chartPadding = 40.0
)

// chartGeometry is a series laid out in SVG user space.
type chartGeometry struct {
	Polyline  string
	Dots      []point
	RefLines  []refLine
	MinLabel  string
	MaxLabel  string
	FromLabel string
	ToLabel   string
}

type point struct{ X, Y float64 }

type refLine struct {
	Y     float64
	Label string
}

// layoutChart scales points into the drawing area. The y axis always
// covers the reference lines so thresholds stay visible.
func layoutChart(points []projection.SeriesPoint, refs []float64) (chartGeometry, bool) {
	if len(points) == 0 {
		return chartGeometry{}, false
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	for _, r := range refs {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}

	first, last := points[0].Time, points[len(points)-1].Time
	span := last.Sub(first)

	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding
	scaleX := func(ts time.Time) float64 {
		if span <= 0 {
			return chartPadding + plotW/2
		}
		return chartPadding + plotW*float64(ts.Sub(first))/float64(span)
	}
	scaleY := func(v float64) float64 {
		return chartPadding + plotH*(hi-v)/(hi-lo)
	}

	geo := chartGeometry{
		Dots:      make([]point, 0, len(points)),
		MinLabel:  formatNumber(lo),
		MaxLabel:  formatNumber(hi),
		FromLabel: first.Format("2006-01-02"),
		ToLabel:   last.Format("2006-01-02"),
	}
	coords := make([]string, 0, len(points))
	for _, p := range points {
		pt := point{X: round2(scaleX(p.Time)), Y: round2(scaleY(p.Value))}
		geo.Dots = append(geo.Dots, pt)
		coords = append(coords, formatNumber(pt.X)+","+formatNumber(pt.Y))
	}
	geo.Polyline = strings.Join(coords, " ")
	for _, r := range refs {
		geo.RefLines = append(geo.RefLines, refLine{Y: round2(scaleY(r)), Label: formatNumber(r)})
	}
	return geo, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
