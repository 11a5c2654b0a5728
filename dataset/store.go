package dataset

import (
	"github.com/tfkr-ae/launchdash/domain"
)

var (
	_ domain.LaunchRepository = (*Store)(nil)
	_ domain.StatsRepository  = (*Store)(nil)
)

// Store answers launch queries directly from an in-memory Dataset.
// The dataset is referenced, not copied, and never mutated.
type Store struct {
	data domain.Dataset
}

// NewStore wraps ds in a Store.
func NewStore(ds domain.Dataset) *Store {
	return &Store{data: ds}
}

// Dataset returns the underlying dataset.
func (s *Store) Dataset() domain.Dataset {
	return s.data
}

// Sites returns the distinct launch site names in order of first appearance.
func (s *Store) Sites() ([]string, error) {
	return s.data.Sites(), nil
}

// PayloadBounds returns the smallest and largest payload mass observed.
func (s *Store) PayloadBounds() (domain.PayloadRange, error) {
	return s.data.PayloadBounds(), nil
}

// SuccessesBySite sums the outcome class per site.
func (s *Store) SuccessesBySite() ([]domain.SiteCount, error) {
	order := make(map[string]int)
	counts := make([]domain.SiteCount, 0)
	for _, rec := range s.data {
		i, ok := order[rec.Site]
		if !ok {
			i = len(counts)
			order[rec.Site] = i
			counts = append(counts, domain.SiteCount{Site: rec.Site})
		}
		counts[i].Successes += rec.Class
	}
	return counts, nil
}

// OutcomesForSite counts the records of site per outcome class.
func (s *Store) OutcomesForSite(site string) ([]domain.ClassCount, error) {
	order := make(map[int]int)
	counts := make([]domain.ClassCount, 0)
	for _, rec := range s.data {
		if rec.Site != site {
			continue
		}
		i, ok := order[rec.Class]
		if !ok {
			i = len(counts)
			order[rec.Class] = i
			counts = append(counts, domain.ClassCount{Class: rec.Class})
		}
		counts[i].Count++
	}
	return counts, nil
}

// LaunchesByPayload returns the records within r, restricted to site unless it is SiteAll.
func (s *Store) LaunchesByPayload(r domain.PayloadRange, site string) ([]domain.LaunchRecord, error) {
	records := make([]domain.LaunchRecord, 0)
	for _, rec := range s.data {
		if !r.Contains(rec.PayloadMassKg) {
			continue
		}
		if site != domain.SiteAll && rec.Site != site {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountLaunches returns the number of records.
func (s *Store) CountLaunches() (int, error) {
	return len(s.data), nil
}

// CountSites returns the number of distinct sites.
func (s *Store) CountSites() (int, error) {
	return len(s.data.Sites()), nil
}

// CountSuccesses returns the number of successful launches.
func (s *Store) CountSuccesses() (int, error) {
	n := 0
	for _, rec := range s.data {
		n += rec.Class
	}
	return n, nil
}
