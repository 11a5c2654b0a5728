package launchdash

import (
	"fmt"
	"math"

	"github.com/tfkr-ae/launchdash/domain"
)

// Component IDs shared by the page, the layout endpoint and the callbacks.
const (
	SiteDropdownID  = "site-dropdown"
	PayloadSliderID = "payload-slider"
	PieChartID      = "success-pie-chart"
	ScatterChartID  = "success-payload-scatter-chart"
)

// Payload slider configuration, in kilograms.
const (
	SliderMin  = 0
	SliderMax  = 10000
	SliderStep = 1000
)

// Option is one entry of a dropdown.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown describes the site selection widget.
type Dropdown struct {
	ID          string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Searchable  bool     `json:"searchable"`
}

// Mark is one labelled tick of a range slider.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// RangeSlider describes the payload range widget.
type RangeSlider struct {
	ID    string     `json:"id"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Value [2]float64 `json:"value"`
	Marks []Mark     `json:"marks"`
}

// Layout is the component tree of the dashboard page.
type Layout struct {
	Title         string      `json:"title"`
	SiteDropdown  Dropdown    `json:"site_dropdown"`
	PayloadSlider RangeSlider `json:"payload_slider"`
	Graphs        []string    `json:"graphs"`

	validSites map[string]struct{}
}

// NewLayout builds the widgets from the dataset behind repo. It runs once at startup;
// the set of valid sites is fixed from then on.
func NewLayout(repo domain.LaunchRepository) (*Layout, error) {
	sites, err := repo.Sites()
	if err != nil {
		return nil, fmt.Errorf("listing sites for layout : %w", err)
	}
	bounds, err := repo.PayloadBounds()
	if err != nil {
		return nil, fmt.Errorf("getting payload bounds for layout : %w", err)
	}

	layout := &Layout{
		Title: "SpaceX Launch Records Dashboard",
		SiteDropdown: Dropdown{
			ID:          SiteDropdownID,
			Options:     []Option{{Label: "All Sites", Value: domain.SiteAll}},
			Value:       domain.SiteAll,
			Placeholder: "Select a Launch Site here",
			Searchable:  true,
		},
		PayloadSlider: RangeSlider{
			ID:    PayloadSliderID,
			Min:   SliderMin,
			Max:   SliderMax,
			Step:  SliderStep,
			Value: [2]float64{bounds.Low, bounds.High},
		},
		Graphs:     []string{PieChartID, ScatterChartID},
		validSites: map[string]struct{}{domain.SiteAll: {}},
	}
	for _, site := range sites {
		layout.SiteDropdown.Options = append(layout.SiteDropdown.Options, Option{Label: site, Value: site})
		layout.validSites[site] = struct{}{}
	}
	for v := SliderMin; v <= SliderMax; v += SliderStep {
		layout.PayloadSlider.Marks = append(layout.PayloadSlider.Marks, Mark{Value: float64(v), Label: fmt.Sprintf("%d Kg", v)})
	}
	return layout, nil
}

// IsValidSite reports whether site is ALL or one of the dataset's sites.
// Selections are never rejected for an unknown site; this only drives logging.
func (l *Layout) IsValidSite(site string) bool {
	_, ok := l.validSites[site]
	return ok
}

// DefaultSelection returns the widget defaults: every site over the observed payload range.
func (l *Layout) DefaultSelection() domain.SelectionState {
	return domain.SelectionState{
		Site:    l.SiteDropdown.Value,
		Payload: domain.PayloadRange{Low: l.PayloadSlider.Value[0], High: l.PayloadSlider.Value[1]},
	}
}

// ClampPayload limits both ends of r to the slider bounds. Low is not reordered
// against High; an inverted range selects nothing.
func (l *Layout) ClampPayload(r domain.PayloadRange) domain.PayloadRange {
	clamp := func(v float64) float64 {
		if math.IsNaN(v) {
			return l.PayloadSlider.Min
		}
		return math.Min(math.Max(v, l.PayloadSlider.Min), l.PayloadSlider.Max)
	}
	return domain.PayloadRange{Low: clamp(r.Low), High: clamp(r.High)}
}
