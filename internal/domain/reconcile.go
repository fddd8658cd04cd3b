package domain

import "time"

type ReconcileRequest struct {
	Source      string    `json:"source"`
	RequestedAt time.Time `json:"requestedAt"`
}
