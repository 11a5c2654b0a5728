package db

import (
	"fmt"

	"github.com/tfkr-ae/launchdash/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountLaunches returns the total number of launch records.
func (repo *Repository) CountLaunches() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM launches`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting launch count: %w", err)
	}

	return count, nil
}

// CountSites returns the number of distinct launch sites.
func (repo *Repository) CountSites() (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT site) FROM launches`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting site count: %w", err)
	}

	return count, nil
}

// CountSuccesses returns the number of launches with outcome class 1.
func (repo *Repository) CountSuccesses() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM launches WHERE class = 1`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting success count: %w", err)
	}

	return count, nil
}
