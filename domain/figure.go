package domain

// FigureKind identifies how a Figure is drawn.
type FigureKind string

const (
	FigurePie     FigureKind = "pie"
	FigureScatter FigureKind = "scatter"
)

// Figure is a renderer-independent description of a chart.
// Pie figures carry Slices, scatter figures carry Series.
type Figure struct {
	Kind   FigureKind    `json:"kind"`
	Title  string        `json:"title"`
	Slices []Slice       `json:"slices,omitempty"`
	Series []Series      `json:"series,omitempty"`
	XRange *PayloadRange `json:"x_range,omitempty"` // Visible x axis for scatter figures.
	XLabel string        `json:"x_label,omitempty"`
	YLabel string        `json:"y_label,omitempty"`
}

// Slice is one wedge of a pie figure.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is one coloured group of scatter points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is one scatter marker.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Site string  `json:"site"`
}

// Empty reports whether the figure has nothing to draw.
func (f *Figure) Empty() bool {
	if f == nil {
		return true
	}
	switch f.Kind {
	case FigurePie:
		for _, s := range f.Slices {
			if s.Value > 0 {
				return false
			}
		}
		return true
	case FigureScatter:
		return f.PointCount() == 0
	}
	return true
}

// PointCount returns the number of points across every series.
func (f *Figure) PointCount() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.Points)
	}
	return n
}
