package models

import "time"

// Visit is one row of the append-only visitor log.
type Visit struct {
	ID        int64     `json:"id"`
	IP        string    `json:"ip"`
	VisitedAt time.Time `json:"visitedAt"`
}
