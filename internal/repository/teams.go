package repository

import (
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

// CreateTeams 在一个事务中插入多支队伍，任意一支失败（例如重名）则全部回滚
func (r *Repository) CreateTeams(teams []*domain.Team) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO teams (tournament_id, name, short_name, skill, group_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	for _, team := range teams {
		args := []any{team.TournamentID, team.Name, team.ShortName, team.Skill, team.Group}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&team.ID, &team.CreatedAt, &team.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetTeamsByTournamentID(tournamentID int64) ([]*domain.Team, error) {
	query := `
		SELECT id, name, short_name, skill, group_name, created_at, version
		FROM teams WHERE tournament_id = $1
		ORDER BY group_name, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []*domain.Team{}
	for rows.Next() {
		team := &domain.Team{TournamentID: tournamentID}
		dst := []any{&team.ID, &team.Name, &team.ShortName, &team.Skill, &team.Group, &team.CreatedAt, &team.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *Repository) UpdateTeam(team *domain.Team) error {
	query := `
		UPDATE teams
		SET
			name = $1,
			short_name = $2,
			skill = $3,
			group_name = $4,
			version = version + 1
		WHERE id = $5 AND tournament_id = $6 AND version = $7
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{team.Name, team.ShortName, team.Skill, team.Group, team.ID, team.TournamentID, team.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&team.CreatedAt, &team.Version)
}

// DeleteTeam 删除队伍，返回是否真的删除了记录
func (r *Repository) DeleteTeam(tournamentID, teamID int64) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM teams WHERE id = $1 AND tournament_id = $2`, teamID, tournamentID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
