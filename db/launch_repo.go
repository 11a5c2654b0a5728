package db

import (
	"fmt"

	"github.com/tfkr-ae/launchdash/domain"
)

var _ domain.LaunchRepository = (*Repository)(nil)

// dbLaunch represents a launch record as stored in the database.
type dbLaunch struct {
	Seq                    int     `db:"seq"`                      // Position of the record in the source dataset.
	Site                   string  `db:"site"`                     // Launch site name.
	PayloadMassKg          float64 `db:"payload_mass_kg"`          // Payload mass in kilograms.
	Class                  int     `db:"class"`                    // Outcome class.
	BoosterVersionCategory string  `db:"booster_version_category"` // Booster version category.
}

func toDomainLaunch(l *dbLaunch) domain.LaunchRecord {
	return domain.LaunchRecord{
		Site:                   l.Site,
		PayloadMassKg:          l.PayloadMassKg,
		Class:                  l.Class,
		BoosterVersionCategory: l.BoosterVersionCategory,
	}
}

// InsertLaunches copies every record of ds into the launches table inside one transaction.
// The record index is kept in the seq column so queries can restore dataset order.
func (repo *Repository) InsertLaunches(ds domain.Dataset) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction : %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO launches (seq, site, payload_mass_kg, class, booster_version_category)
	          VALUES (:seq, :site, :payload_mass_kg, :class, :booster_version_category)`

	stmt, err := tx.PrepareNamed(query)
	if err != nil {
		return fmt.Errorf("preparing insert : %w", err)
	}
	defer stmt.Close()

	for i, rec := range ds {
		row := dbLaunch{
			Seq:                    i,
			Site:                   rec.Site,
			PayloadMassKg:          rec.PayloadMassKg,
			Class:                  rec.Class,
			BoosterVersionCategory: rec.BoosterVersionCategory,
		}
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("inserting launch %d : %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing launches : %w", err)
	}
	return nil
}

// Sites returns the distinct launch site names in order of first appearance.
func (repo *Repository) Sites() ([]string, error) {
	sites := make([]string, 0)
	query := `SELECT site FROM launches GROUP BY site ORDER BY MIN(seq)`

	err := repo.dbConn.Select(&sites, query)
	if err != nil {
		return nil, fmt.Errorf("getting sites: %w", err)
	}
	return sites, nil
}

// PayloadBounds returns the smallest and largest payload mass observed.
func (repo *Repository) PayloadBounds() (domain.PayloadRange, error) {
	var bounds domain.PayloadRange
	query := `SELECT COALESCE(MIN(payload_mass_kg), 0) AS low, COALESCE(MAX(payload_mass_kg), 0) AS high FROM launches`

	row := repo.dbConn.QueryRowx(query)
	if err := row.Scan(&bounds.Low, &bounds.High); err != nil {
		return domain.PayloadRange{}, fmt.Errorf("getting payload bounds: %w", err)
	}
	return bounds, nil
}

// SuccessesBySite sums the outcome class per site, keeping sites without successes.
func (repo *Repository) SuccessesBySite() ([]domain.SiteCount, error) {
	counts := make([]domain.SiteCount, 0)
	query := `SELECT site, SUM(class) AS successes
	          FROM launches
	          GROUP BY site
	          ORDER BY MIN(seq)`

	err := repo.dbConn.Select(&counts, query)
	if err != nil {
		return nil, fmt.Errorf("getting successes by site: %w", err)
	}
	return counts, nil
}

// OutcomesForSite counts the records of site per outcome class.
func (repo *Repository) OutcomesForSite(site string) ([]domain.ClassCount, error) {
	counts := make([]domain.ClassCount, 0)
	query := `SELECT class, COUNT(*) AS count
	          FROM launches
	          WHERE site = ?
	          GROUP BY class
	          ORDER BY MIN(seq)`

	err := repo.dbConn.Select(&counts, query, site)
	if err != nil {
		return nil, fmt.Errorf("getting outcomes for site %s: %w", site, err)
	}
	return counts, nil
}

// LaunchesByPayload returns the records within r, restricted to site unless it is SiteAll.
func (repo *Repository) LaunchesByPayload(r domain.PayloadRange, site string) ([]domain.LaunchRecord, error) {
	var rows []*dbLaunch
	query := `SELECT seq, site, payload_mass_kg, class, booster_version_category
	          FROM launches
	          WHERE payload_mass_kg BETWEEN ? AND ?`
	args := []any{r.Low, r.High}
	if site != domain.SiteAll {
		query += ` AND site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY seq`

	err := repo.dbConn.Select(&rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting launches between %v and %v: %w", r.Low, r.High, err)
	}

	records := make([]domain.LaunchRecord, len(rows))
	for i, row := range rows {
		records[i] = toDomainLaunch(row)
	}
	return records, nil
}
