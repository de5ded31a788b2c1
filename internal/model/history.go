package model

import "time"

// GenerationRecord is a persisted generation event. It never holds the password.
type GenerationRecord struct {
	ID        string    `json:"id"`
	Length    int       `json:"length"`
	Classes   string    `json:"classes"`
	EachClass string    `json:"each_class"`
	Entropy   float64   `json:"entropy"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse lists the most recent generation events.
type HistoryResponse struct {
	Records []GenerationRecord `json:"records"`
}

// HistoryStats counts generation events per strength label.
type HistoryStats struct {
	Total   int            `json:"total"`
	ByLabel map[string]int `json:"by_label"`
}
