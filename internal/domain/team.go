package domain

import "time"

type Team struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournamentID"`
	Name         string    `json:"name"`
	ShortName    string    `json:"shortName"`
	Skill        int32     `json:"skill"`
	Group        string    `json:"group"` // 同一组内的队伍两两之间各赛一场
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
