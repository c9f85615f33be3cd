package models

import "time"

// Plan is a financial target for a group over a date range. Progress is
// derived from ledger totals inside [StartsOn, EndsOn]; it is never stored.
type Plan struct {
	ID           string
	GroupID      string
	Title        string
	TargetAmount int64
	StartsOn     time.Time
	EndsOn       time.Time
	CreatedBy    string
	CreatedAt    time.Time
}
