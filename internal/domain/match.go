package domain

import (
	"time"

	"github.com/google/uuid"
)

// 比赛尚未被安排轮次或场地时使用的值
const Unassigned = -1

type Match struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournamentID"`
	Team1ID      int64     `json:"team1ID"`
	Team2ID      int64     `json:"team2ID"`
	Group        string    `json:"group"`
	Round        int32     `json:"round"`        // 从 0 开始，Unassigned 表示未安排
	PlaygroundID int64     `json:"playgroundID"` // Unassigned 表示未安排
	CreatedAt    time.Time `json:"createdAt"`
}

// ScheduleRun 记录一次自动排程的参数与结果
type ScheduleRun struct {
	ID           uuid.UUID          `json:"id"`
	TournamentID int64              `json:"tournamentID"`
	Seed         int64              `json:"seed"`
	Fitness      float64            `json:"fitness"`
	Generations  int                `json:"generations"`
	Evaluations  int                `json:"evaluations"`
	DurationMs   int64              `json:"durationMs"`
	Breakdown    map[string]float64 `json:"breakdown"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type Schedule struct {
	TournamentID int64        `json:"tournamentID"`
	Run          *ScheduleRun `json:"run"` // 手动提交的赛程没有对应的运行记录
	Matches      []*Match     `json:"matches"`
}
