package launchdash

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tfkr-ae/launchdash/core"
	"github.com/tfkr-ae/launchdash/domain"
)

var (
	// ErrUnknownOutput is returned when no callback renders the requested component.
	ErrUnknownOutput = errors.New("unknown output component")
	// ErrInvalidInput is returned for widget values or request bodies that cannot be used.
	ErrInvalidInput = errors.New("invalid input")
)

// FigureFunc computes a figure for the current selection.
type FigureFunc func(repo domain.LaunchRepository, selection domain.SelectionState) (*domain.Figure, error)

// Callback binds a chart to the widgets whose value changes must redraw it.
type Callback struct {
	Output string     // Graph component ID
	Inputs []string   // Widget component IDs, property "value"
	Figure FigureFunc // Computes the chart for the selection
}

// Dependency is the JSON description of a callback served on /_dash-dependencies.
type Dependency struct {
	Output string            `json:"output"`
	Inputs []DependencyInput `json:"inputs"`
}

// DependencyInput names one property a callback reads.
type DependencyInput struct {
	ID       string `json:"id"`
	Property string `json:"property"`
}

// Registry holds the callbacks of the dashboard in registration order.
type Registry struct {
	callbacks []Callback
}

// NewRegistry returns a registry with the two dashboard charts registered: the pie follows
// the site dropdown; the scatter follows both the dropdown and the payload slider.
func NewRegistry() *Registry {
	r := &Registry{}
	r.callbacks = []Callback{
		{
			Output: PieChartID,
			Inputs: []string{SiteDropdownID},
			Figure: func(repo domain.LaunchRepository, selection domain.SelectionState) (*domain.Figure, error) {
				return core.SuccessPie(repo, selection.Site)
			},
		},
		{
			Output: ScatterChartID,
			Inputs: []string{SiteDropdownID, PayloadSliderID},
			Figure: func(repo domain.LaunchRepository, selection domain.SelectionState) (*domain.Figure, error) {
				return core.PayloadScatter(repo, selection.Site, selection.Payload)
			},
		},
	}
	return r
}

// Register adds a callback. Every output can only be drawn by one callback.
func (r *Registry) Register(cb Callback) error {
	if cb.Output == "" || cb.Figure == nil {
		return errors.New("callback needs an output and a figure function")
	}
	if _, ok := r.Lookup(cb.Output); ok {
		return fmt.Errorf("output %s already has a callback", cb.Output)
	}
	r.callbacks = append(r.callbacks, cb)
	return nil
}

// Lookup returns the callback drawing output.
func (r *Registry) Lookup(output string) (Callback, bool) {
	for _, cb := range r.callbacks {
		if cb.Output == output {
			return cb, true
		}
	}
	return Callback{}, false
}

// Triggered returns the outputs to redraw when the widget inputID changes.
func (r *Registry) Triggered(inputID string) []string {
	outputs := make([]string, 0)
	for _, cb := range r.callbacks {
		for _, in := range cb.Inputs {
			if in == inputID {
				outputs = append(outputs, cb.Output)
				break
			}
		}
	}
	return outputs
}

// Dependencies describes the registered callbacks.
func (r *Registry) Dependencies() []Dependency {
	deps := make([]Dependency, 0, len(r.callbacks))
	for _, cb := range r.callbacks {
		dep := Dependency{Output: cb.Output + ".figure", Inputs: make([]DependencyInput, 0, len(cb.Inputs))}
		for _, in := range cb.Inputs {
			dep.Inputs = append(dep.Inputs, DependencyInput{ID: in, Property: "value"})
		}
		deps = append(deps, dep)
	}
	return deps
}

// Dispatch computes the figure of output for the selection.
func (r *Registry) Dispatch(repo domain.LaunchRepository, output string, selection domain.SelectionState) (*domain.Figure, error) {
	cb, ok := r.Lookup(output)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
	fig, err := cb.Figure(repo, selection)
	if err != nil {
		return nil, fmt.Errorf("running callback for %s : %w", output, err)
	}
	return fig, nil
}

// parseOutputs splits an output list into component IDs. A single output is
// "id" or "id.figure"; several outputs use the "..a.figure...b.figure.." form.
func parseOutputs(outputs string) []string {
	outputs = strings.TrimSpace(outputs)
	if outputs == "" {
		return nil
	}
	var parts []string
	if strings.HasPrefix(outputs, "..") && strings.HasSuffix(outputs, "..") && len(outputs) > 4 {
		parts = strings.Split(outputs[2:len(outputs)-2], "...")
	} else {
		parts = []string{outputs}
	}
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		ids = append(ids, strings.TrimSuffix(part, ".figure"))
	}
	return ids
}

// parseChangedProps maps "id.value" entries to the outputs they trigger.
func (r *Registry) parseChangedProps(changed []string) []string {
	seen := make(map[string]struct{})
	outputs := make([]string, 0)
	for _, prop := range changed {
		id, _, _ := strings.Cut(prop, ".")
		for _, out := range r.Triggered(id) {
			if _, ok := seen[out]; ok {
				continue
			}
			seen[out] = struct{}{}
			outputs = append(outputs, out)
		}
	}
	return outputs
}
