// Package render draws domain figures as SVG images with go-chart.
package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/beevik/etree"
	"github.com/tfkr-ae/launchdash/domain"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels.
const (
	DefaultWidth  = 900
	DefaultHeight = 450
)

// Options controls the size and identity of a rendered chart.
type Options struct {
	ID     string // Element id set on the <svg> root.
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// SVG renders fig as an SVG document.
//
// An empty figure, or one go-chart refuses to draw, is rendered as a placeholder
// carrying the figure title, so callers always get an image to display. go-chart
// output that cannot be decorated is replaced by the placeholder as well. The returned
// error only reports failures writing the placeholder itself.
func SVG(fig *domain.Figure, opts Options) ([]byte, error) {
	if fig.Empty() {
		return Placeholder(titleOf(fig), opts)
	}

	var buf bytes.Buffer
	var err error
	switch fig.Kind {
	case domain.FigurePie:
		err = pieChart(fig, opts).Render(chart.SVG, &buf)
	case domain.FigureScatter:
		err = scatterChart(fig, opts).Render(chart.SVG, &buf)
	default:
		err = fmt.Errorf("unsupported figure kind %q", fig.Kind)
	}
	if err != nil {
		return Placeholder(fig.Title, opts)
	}

	out, err := decorate(buf.Bytes(), fig.Title, opts.ID)
	if err != nil {
		return Placeholder(fig.Title, opts)
	}
	return out, nil
}

func titleOf(fig *domain.Figure) string {
	if fig == nil {
		return ""
	}
	return fig.Title
}

// text escapes a string handed to go-chart, which writes text nodes into its SVG verbatim.
func text(s string) string {
	return html.EscapeString(s)
}

func pieChart(fig *domain.Figure, opts Options) chart.PieChart {
	w, h := opts.size()
	values := make([]chart.Value, 0, len(fig.Slices))
	for _, s := range fig.Slices {
		// go-chart cannot draw zero-width wedges
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: text(s.Label), Value: s.Value})
	}
	return chart.PieChart{
		Title:  text(fig.Title),
		Width:  w,
		Height: h,
		Values: values,
	}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

func scatterChart(fig *domain.Figure, opts Options) chart.Chart {
	w, h := opts.size()

	series := make([]chart.Series, 0, len(fig.Series))
	for i, s := range fig.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    text(s.Name),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(chart.GetDefaultColor(i)),
		})
	}

	ch := chart.Chart{
		Title:      text(fig.Title),
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis: chart.XAxis{
			Name:  text(fig.XLabel),
			Range: xAxisRange(fig),
		},
		YAxis: chart.YAxis{
			Name:  text(fig.YLabel),
			Range: &chart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

// xAxisRange pins the x axis to the selected payload range so charts for different
// selections stay comparable. A degenerate range is widened around the points.
func xAxisRange(fig *domain.Figure) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	if fig.XRange != nil && fig.XRange.Low < fig.XRange.High {
		lo, hi = fig.XRange.Low, fig.XRange.High
	} else {
		for _, s := range fig.Series {
			for _, p := range s.Points {
				lo, hi = math.Min(lo, p.X), math.Max(hi, p.X)
			}
		}
	}
	if hi-lo < 1 {
		mid := (lo + hi) / 2
		lo, hi = math.Max(0, mid-500), mid+500
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// decorate parses the go-chart SVG and adds the accessibility attributes the page relies on.
func decorate(svg []byte, title, id string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return nil, fmt.Errorf("parsing rendered svg : %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("rendered svg has no root element")
	}
	label(root, title, id)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("writing decorated svg : %w", err)
	}
	return out, nil
}

func label(root *etree.Element, title, id string) {
	if id != "" {
		root.CreateAttr("id", id)
	}
	root.CreateAttr("role", "img")
	root.CreateAttr("aria-label", title)
	t := etree.NewElement("title")
	t.SetText(title)
	root.InsertChildAt(0, t)
}

// Placeholder renders an SVG showing title over a "No data" notice.
func Placeholder(title string, opts Options) ([]byte, error) {
	w, h := opts.size()

	doc := etree.NewDocument()
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("width", fmt.Sprint(w))
	root.CreateAttr("height", fmt.Sprint(h))
	root.CreateAttr("class", "placeholder")

	bg := root.CreateElement("rect")
	bg.CreateAttr("width", "100%")
	bg.CreateAttr("height", "100%")
	bg.CreateAttr("fill", "#ffffff")

	heading := root.CreateElement("text")
	heading.CreateAttr("x", fmt.Sprint(w/2))
	heading.CreateAttr("y", "32")
	heading.CreateAttr("text-anchor", "middle")
	heading.CreateAttr("font-size", "16")
	heading.SetText(title)

	notice := root.CreateElement("text")
	notice.CreateAttr("x", fmt.Sprint(w/2))
	notice.CreateAttr("y", fmt.Sprint(h/2))
	notice.CreateAttr("text-anchor", "middle")
	notice.CreateAttr("fill", "#8b949e")
	notice.SetText("No data")

	label(root, title, opts.ID)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("writing placeholder svg : %w", err)
	}
	return out, nil
}
