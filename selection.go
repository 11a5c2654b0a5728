package launchdash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tfkr-ae/launchdash/domain"
)

// Query string keys understood by the page and chart endpoints.
const (
	QuerySite = "site"
	QueryLow  = "lo"
	QueryHigh = "hi"
)

// Input is the current value of one widget property, as sent by the page.
type Input struct {
	ID       string          `json:"id"`
	Property string          `json:"property"`
	Value    json.RawMessage `json:"value"`
}

// SelectionFromQuery builds a selection from the query string, starting from the widget
// defaults. Missing keys keep their default; values that are not numbers are rejected
// with ErrInvalidInput.
func (l *Layout) SelectionFromQuery(values url.Values) (domain.SelectionState, error) {
	selection := l.DefaultSelection()
	if site := values.Get(QuerySite); site != "" {
		selection.Site = site
	}
	if raw := values.Get(QueryLow); raw != "" {
		lo, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return selection, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidInput, QueryLow, raw)
		}
		selection.Payload.Low = lo
	}
	if raw := values.Get(QueryHigh); raw != "" {
		hi, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return selection, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidInput, QueryHigh, raw)
		}
		selection.Payload.High = hi
	}
	selection.Payload = l.ClampPayload(selection.Payload)
	return selection, nil
}

// SelectionFromInputs applies widget values to the defaults. A null dropdown value,
// which the page sends once the selection is cleared, selects every site.
func (l *Layout) SelectionFromInputs(inputs []Input) (domain.SelectionState, error) {
	selection := l.DefaultSelection()
	for _, in := range inputs {
		if in.Property != "" && in.Property != "value" {
			return selection, fmt.Errorf("%w: %s has no property %q", ErrInvalidInput, in.ID, in.Property)
		}
		switch in.ID {
		case SiteDropdownID:
			if isNull(in.Value) {
				selection.Site = domain.SiteAll
				continue
			}
			var site string
			if err := json.Unmarshal(in.Value, &site); err != nil {
				return selection, fmt.Errorf("%w: %s value must be a string", ErrInvalidInput, SiteDropdownID)
			}
			if site == "" {
				site = domain.SiteAll
			}
			selection.Site = site
		case PayloadSliderID:
			var bounds []float64
			if err := json.Unmarshal(in.Value, &bounds); err != nil || len(bounds) != 2 {
				return selection, fmt.Errorf("%w: %s value must be [low, high]", ErrInvalidInput, PayloadSliderID)
			}
			selection.Payload = domain.PayloadRange{Low: bounds[0], High: bounds[1]}
		default:
			return selection, fmt.Errorf("%w: unknown input %q", ErrInvalidInput, in.ID)
		}
	}
	selection.Payload = l.ClampPayload(selection.Payload)
	return selection, nil
}

// Query encodes selection for the page and chart URLs.
func Query(selection domain.SelectionState) url.Values {
	values := url.Values{}
	values.Set(QuerySite, selection.Site)
	values.Set(QueryLow, strconv.FormatFloat(selection.Payload.Low, 'f', -1, 64))
	values.Set(QueryHigh, strconv.FormatFloat(selection.Payload.High, 'f', -1, 64))
	return values
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
