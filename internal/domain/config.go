package domain

// ElectionConfig is the singleton election state, toggled only by an admin
// action.
type ElectionConfig struct {
	ResultsPublished bool `json:"results_published"`
}
