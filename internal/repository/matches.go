package repository

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

// ReplaceSchedule 用新的赛程替换赛事原有的全部比赛
//
// run 为 nil 表示手动提交的赛程，此时旧的运行记录也会被删除
func (r *Repository) ReplaceSchedule(tournamentID int64, matches []*domain.Match, run *domain.ScheduleRun) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的赛程删除
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_runs WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}

	if run != nil {
		breakdown, err := json.Marshal(run.Breakdown)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO schedule_runs (id, tournament_id, seed, fitness, generations, evaluations, duration_ms, breakdown)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`
		args := []any{run.ID, tournamentID, run.Seed, run.Fitness, run.Generations, run.Evaluations, run.DurationMs, breakdown}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.CreatedAt); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO matches (tournament_id, team1_id, team2_id, group_name, round, playground_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	for _, m := range matches {
		m.TournamentID = tournamentID
		args := []any{tournamentID, m.Team1ID, m.Team2ID, m.Group, m.Round, m.PlaygroundID}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetScheduleByTournamentID 返回赛事当前的赛程，没有任何比赛时返回 sql.ErrNoRows
func (r *Repository) GetScheduleByTournamentID(tournamentID int64) (*domain.Schedule, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT m.id, m.team1_id, m.team2_id, m.group_name, m.round, m.playground_id, m.created_at
		FROM matches m
		WHERE m.tournament_id = $1
		ORDER BY m.round, m.playground_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedule := &domain.Schedule{
		TournamentID: tournamentID,
		Matches:      []*domain.Match{},
	}
	for rows.Next() {
		m := &domain.Match{TournamentID: tournamentID}
		dst := []any{&m.ID, &m.Team1ID, &m.Team2ID, &m.Group, &m.Round, &m.PlaygroundID, &m.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedule.Matches = append(schedule.Matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(schedule.Matches) == 0 {
		return nil, sql.ErrNoRows
	}

	run := &domain.ScheduleRun{TournamentID: tournamentID}
	var breakdown []byte
	query = `
		SELECT id, seed, fitness, generations, evaluations, duration_ms, breakdown, created_at
		FROM schedule_runs WHERE tournament_id = $1
	`
	dst := []any{&run.ID, &run.Seed, &run.Fitness, &run.Generations, &run.Evaluations, &run.DurationMs, &breakdown, &run.CreatedAt}
	err = r.dbpool.QueryRowContext(ctx, query, tournamentID).Scan(dst...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// 手动提交的赛程
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(breakdown, &run.Breakdown); err != nil {
			return nil, err
		}
		schedule.Run = run
	}

	return schedule, nil
}
