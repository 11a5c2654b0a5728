package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/tfkr-ae/launchdash/domain"
)

func parseSVG(t *testing.T, raw []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		t.Fatalf("parsing svg: %v\n%s", err, raw)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		t.Fatalf("\nwanted:\n<svg> root\ngot:\n%v", root)
	}
	return root
}

func TestSVG(t *testing.T) {
	t.Run("should render a pie chart with an accessible title", func(t *testing.T) {
		fig := &domain.Figure{
			Kind:   domain.FigurePie,
			Title:  "Total Success Launches by Site",
			Slices: []domain.Slice{{Label: "CCAFS", Value: 1}, {Label: "KSC", Value: 2}, {Label: "VAFB", Value: 0}},
		}

		got, err := SVG(fig, Options{ID: "success-pie-chart"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		root := parseSVG(t, got)
		if id := root.SelectAttrValue("id", ""); id != "success-pie-chart" {
			t.Fatalf("\nwanted:\nsuccess-pie-chart\ngot:\n%q", id)
		}
		if role := root.SelectAttrValue("role", ""); role != "img" {
			t.Fatalf("\nwanted:\nimg\ngot:\n%q", role)
		}
		title := root.SelectElement("title")
		if title == nil || title.Text() != fig.Title {
			t.Fatalf("\nwanted:\n<title>%s</title>\ngot:\n%v", fig.Title, title)
		}
		if root.SelectAttrValue("class", "") == "placeholder" {
			t.Fatalf("\nwanted:\ndrawn chart\ngot:\nplaceholder")
		}
	})

	t.Run("should render a scatter chart with a single point", func(t *testing.T) {
		fig := &domain.Figure{
			Kind:   domain.FigureScatter,
			Title:  "Payload vs. Outcome for CCAFS",
			Series: []domain.Series{{Name: "v1.0", Points: []domain.Point{{X: 500, Y: 1, Site: "CCAFS"}}}},
			XRange: &domain.PayloadRange{Low: 500, High: 500},
			XLabel: "Payload Mass (kg)",
			YLabel: "class",
		}

		got, err := SVG(fig, Options{ID: "success-payload-scatter-chart", Width: 640, Height: 320})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		root := parseSVG(t, got)
		if root.SelectAttrValue("class", "") == "placeholder" {
			t.Fatalf("\nwanted:\ndrawn chart\ngot:\nplaceholder")
		}
		if w := root.SelectAttrValue("width", ""); w != "640" {
			t.Fatalf("\nwanted:\n640\ngot:\n%q", w)
		}
	})

	t.Run("should render a placeholder for an empty scatter", func(t *testing.T) {
		fig := &domain.Figure{
			Kind:   domain.FigureScatter,
			Title:  "Payload vs. Outcome for All Sites",
			Series: []domain.Series{},
		}

		got, err := SVG(fig, Options{ID: "success-payload-scatter-chart"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		root := parseSVG(t, got)
		if root.SelectAttrValue("class", "") != "placeholder" {
			t.Fatalf("\nwanted:\nplaceholder\ngot:\n%s", got)
		}
		if !bytes.Contains(got, []byte("No data")) {
			t.Fatalf("wanted placeholder to contain %q\ngot: %s", "No data", got)
		}
	})

	t.Run("should render a placeholder for a pie of zero slices", func(t *testing.T) {
		fig := &domain.Figure{
			Kind:   domain.FigurePie,
			Title:  "Success and Failed Counts for Boca Chica",
			Slices: []domain.Slice{{Label: "VAFB", Value: 0}},
		}

		got, err := SVG(fig, Options{})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		root := parseSVG(t, got)
		if root.SelectAttrValue("class", "") != "placeholder" {
			t.Fatalf("\nwanted:\nplaceholder\ngot:\n%s", got)
		}
		if w := root.SelectAttrValue("width", ""); w != "900" {
			t.Fatalf("\nwanted:\n900\ngot:\n%q", w)
		}
	})

	t.Run("should render a placeholder for a nil figure", func(t *testing.T) {
		got, err := SVG(nil, Options{})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		parseSVG(t, got)
	})

	t.Run("should draw markup in site names as text", func(t *testing.T) {
		site := "<script>alert(1)</script>"
		figs := []*domain.Figure{
			{
				Kind:   domain.FigurePie,
				Title:  "Success and Failed Counts for " + site,
				Slices: []domain.Slice{{Label: site, Value: 1}, {Label: "KSC", Value: 2}},
			},
			{
				Kind:   domain.FigureScatter,
				Title:  "Payload vs. Outcome for " + site,
				Series: []domain.Series{{Name: site, Points: []domain.Point{{X: 500, Y: 1, Site: site}}}},
				XRange: &domain.PayloadRange{Low: 0, High: 10000},
			},
		}
		for _, fig := range figs {
			got, err := SVG(fig, Options{ID: "chart"})
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if bytes.Contains(got, []byte("<script")) {
				t.Fatalf("\nwanted:\nno script element\ngot:\n%s", got)
			}
			if !bytes.Contains(got, []byte("&lt;script")) {
				t.Fatalf("\nwanted:\nescaped site name\ngot:\n%s", got)
			}
			root := parseSVG(t, got)
			if n := len(root.FindElements("//script")); n != 0 {
				t.Fatalf("\nwanted:\n0\ngot:\n%d", n)
			}
			if title := root.SelectElement("title"); title == nil || title.Text() != fig.Title {
				t.Fatalf("\nwanted:\n%s\ngot:\n%v", fig.Title, title)
			}
		}
	})
}

func TestPlaceholder(t *testing.T) {
	t.Run("should escape the title", func(t *testing.T) {
		got, err := Placeholder("Launches <script>", Options{ID: "x"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if strings.Contains(string(got), "<script>") {
			t.Fatalf("wanted escaped title\ngot: %s", got)
		}
		root := parseSVG(t, got)
		if root.SelectElement("title").Text() != "Launches <script>" {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", "Launches <script>", root.SelectElement("title").Text())
		}
	})
}

func TestXAxisRange(t *testing.T) {
	tests := []struct {
		name     string
		fig      *domain.Figure
		min, max float64
	}{
		{
			name: "selected range",
			fig:  &domain.Figure{XRange: &domain.PayloadRange{Low: 1000, High: 6000}},
			min:  1000, max: 6000,
		},
		{
			name: "degenerate range widened",
			fig: &domain.Figure{
				XRange: &domain.PayloadRange{Low: 3000, High: 3000},
				Series: []domain.Series{{Points: []domain.Point{{X: 3000}}}},
			},
			min: 2500, max: 3500,
		},
		{
			name: "degenerate range at zero clamped",
			fig: &domain.Figure{
				XRange: &domain.PayloadRange{Low: 0, High: 0},
				Series: []domain.Series{{Points: []domain.Point{{X: 0}}}},
			},
			min: 0, max: 500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xAxisRange(tt.fig)
			if got.Min != tt.min || got.Max != tt.max {
				t.Fatalf("\nwanted:\n[%v, %v]\ngot:\n[%v, %v]", tt.min, tt.max, got.Min, got.Max)
			}
		})
	}
}
