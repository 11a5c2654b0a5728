package domain

// SiteAll is the dropdown value selecting every launch site.
const SiteAll = "ALL"

// LaunchRepository defines the read-only queries the dashboard runs against the launch dataset.
// Every method returns results in dataset order; grouped results are ordered by the first
// appearance of the group key.
type LaunchRepository interface {
	// Sites returns the distinct launch site names.
	Sites() ([]string, error)

	// PayloadBounds returns the smallest and largest payload mass observed.
	// An empty dataset yields the zero range.
	PayloadBounds() (PayloadRange, error)

	// SuccessesBySite sums the outcome class over every record, grouped by site.
	// Sites without a single success are still returned with a zero count.
	SuccessesBySite() ([]SiteCount, error)

	// OutcomesForSite counts the records of one site grouped by outcome class.
	// An unknown site yields an empty slice, not an error.
	OutcomesForSite(site string) ([]ClassCount, error)

	// LaunchesByPayload returns the records whose payload lies within r (inclusive).
	// Unless site is SiteAll only records of that exact site are returned, so an
	// empty site matches nothing but records with an empty site name.
	LaunchesByPayload(r PayloadRange, site string) ([]LaunchRecord, error)
}

// LaunchRecord is one row of the launch dataset.
type LaunchRecord struct {
	Site                   string  // Launch site name.
	PayloadMassKg          float64 // Payload mass in kilograms, never negative.
	Class                  int     // Outcome class, 1 for success and 0 for failure.
	BoosterVersionCategory string  // Booster version category, used for scatter colouring.
}

// Dataset is the ordered, read-only collection of launch records loaded at startup.
type Dataset []LaunchRecord

// Sites returns the distinct site names in order of first appearance.
func (d Dataset) Sites() []string {
	seen := make(map[string]struct{})
	sites := make([]string, 0)
	for _, rec := range d {
		if _, ok := seen[rec.Site]; ok {
			continue
		}
		seen[rec.Site] = struct{}{}
		sites = append(sites, rec.Site)
	}
	return sites
}

// PayloadBounds returns the minimum and maximum payload mass in the dataset.
func (d Dataset) PayloadBounds() PayloadRange {
	if len(d) == 0 {
		return PayloadRange{}
	}
	bounds := PayloadRange{Low: d[0].PayloadMassKg, High: d[0].PayloadMassKg}
	for _, rec := range d[1:] {
		bounds.Low = min(bounds.Low, rec.PayloadMassKg)
		bounds.High = max(bounds.High, rec.PayloadMassKg)
	}
	return bounds
}

// PayloadRange is a closed interval of payload mass in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether kg lies within the range. A range with Low > High contains nothing.
func (r PayloadRange) Contains(kg float64) bool {
	return r.Low <= kg && kg <= r.High
}

// SiteCount is the number of successful launches attributed to a site.
type SiteCount struct {
	Site      string `db:"site"`
	Successes int    `db:"successes"`
}

// ClassCount is the number of launches that ended in a given outcome class.
type ClassCount struct {
	Class int `db:"class"`
	Count int `db:"count"`
}

// SelectionState is the transient widget state driving the charts.
type SelectionState struct {
	Site    string       // SiteAll or a site name. Unknown names are tolerated.
	Payload PayloadRange // Selected payload range, clamped to the slider bounds.
}
