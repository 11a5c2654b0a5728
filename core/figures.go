package core

import (
	"fmt"
	"strconv"

	"github.com/tfkr-ae/launchdash/domain"
)

// Axis labels of the scatter figure, named after the source columns.
const (
	PayloadAxisLabel = "Payload Mass (kg)"
	ClassAxisLabel   = "class"
)

// SuccessPie builds the pie figure for the selected site.
//
// For SiteAll every site gets a slice sized by its number of successful launches.
// For a single site the slices are the outcome classes ("1" and "0") sized by launch count.
// A site that is not in the dataset is not rejected; it yields a figure without slices.
func SuccessPie(repo domain.LaunchRepository, site string) (*domain.Figure, error) {
	if site == domain.SiteAll {
		counts, err := repo.SuccessesBySite()
		if err != nil {
			return nil, fmt.Errorf("building success pie : %w", err)
		}
		fig := &domain.Figure{
			Kind:   domain.FigurePie,
			Title:  "Total Success Launches by Site",
			Slices: make([]domain.Slice, 0, len(counts)),
		}
		for _, c := range counts {
			fig.Slices = append(fig.Slices, domain.Slice{Label: c.Site, Value: float64(c.Successes)})
		}
		return fig, nil
	}

	counts, err := repo.OutcomesForSite(site)
	if err != nil {
		return nil, fmt.Errorf("building outcome pie for %s : %w", site, err)
	}
	fig := &domain.Figure{
		Kind:   domain.FigurePie,
		Title:  fmt.Sprintf("Success and Failed Counts for %s", site),
		Slices: make([]domain.Slice, 0, len(counts)),
	}
	for _, c := range counts {
		fig.Slices = append(fig.Slices, domain.Slice{Label: strconv.Itoa(c.Class), Value: float64(c.Count)})
	}
	return fig, nil
}

// PayloadScatter builds the payload versus outcome scatter figure.
//
// Records are kept when their payload lies within r (inclusive) and, unless site is
// SiteAll, when they belong to site. Each booster version category becomes one series,
// in order of first appearance. No matching record yields a figure without points.
func PayloadScatter(repo domain.LaunchRepository, site string, r domain.PayloadRange) (*domain.Figure, error) {
	title := "Payload vs. Outcome for All Sites"
	if site != domain.SiteAll {
		title = fmt.Sprintf("Payload vs. Outcome for %s", site)
	}

	records, err := repo.LaunchesByPayload(r, site)
	if err != nil {
		return nil, fmt.Errorf("building payload scatter : %w", err)
	}

	xRange := r
	fig := &domain.Figure{
		Kind:   domain.FigureScatter,
		Title:  title,
		Series: make([]domain.Series, 0),
		XRange: &xRange,
		XLabel: PayloadAxisLabel,
		YLabel: ClassAxisLabel,
	}

	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.BoosterVersionCategory]
		if !ok {
			i = len(fig.Series)
			index[rec.BoosterVersionCategory] = i
			fig.Series = append(fig.Series, domain.Series{Name: rec.BoosterVersionCategory})
		}
		fig.Series[i].Points = append(fig.Series[i].Points, domain.Point{
			X:    rec.PayloadMassKg,
			Y:    float64(rec.Class),
			Site: rec.Site,
		})
	}
	return fig, nil
}
