package models

// Achievement is one entry in the fixed, read-only achievement catalog.
// The catalog is static configuration shared by all participants; only the
// unlocked identifiers are persisted, never the catalog itself.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}
