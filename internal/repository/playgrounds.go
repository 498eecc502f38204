package repository

import (
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

func (r *Repository) CreatePlayground(pg *domain.Playground) error {
	query := `
		INSERT INTO playgrounds (tournament_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, pg.TournamentID, pg.Name).Scan(&pg.ID, &pg.CreatedAt, &pg.Version)
}

// GetPlaygroundsByTournamentID 按 id 排序，这个顺序也是赛程中场地的分配顺序
func (r *Repository) GetPlaygroundsByTournamentID(tournamentID int64) ([]*domain.Playground, error) {
	query := `
		SELECT id, name, created_at, version
		FROM playgrounds WHERE tournament_id = $1
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playgrounds := []*domain.Playground{}
	for rows.Next() {
		pg := &domain.Playground{TournamentID: tournamentID}
		if err := rows.Scan(&pg.ID, &pg.Name, &pg.CreatedAt, &pg.Version); err != nil {
			return nil, err
		}
		playgrounds = append(playgrounds, pg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return playgrounds, nil
}

func (r *Repository) DeletePlayground(tournamentID, playgroundID int64) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM playgrounds WHERE id = $1 AND tournament_id = $2`, playgroundID, tournamentID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
