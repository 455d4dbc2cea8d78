package entity

import "time"

type ConsentRecord struct {
	ID        uint64
	VisitorID string
	Necessary bool
	Analytics bool
	Marketing bool
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
