package domain

import "time"

type Tournament struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
