package domain

import "time"

type Playground struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournamentID"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
