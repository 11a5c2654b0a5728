package domain

// StatsRepository defines the interface for retrieving summary counts about the loaded dataset.
type StatsRepository interface {
	// CountLaunches returns the total number of launch records.
	CountLaunches() (int, error)
	// CountSites returns the number of distinct launch sites.
	CountSites() (int, error)
	// CountSuccesses returns the number of launches with outcome class 1.
	CountSuccesses() (int, error)
}
