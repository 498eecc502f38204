package repository

import (
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

func (r *Repository) CreateTournament(t *domain.Tournament) error {
	query := `
		INSERT INTO tournaments (name, description, start_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, t.Name, t.Description, t.StartTime).Scan(&t.ID, &t.CreatedAt, &t.Version)
}

func (r *Repository) GetTournamentByID(id int64) (*domain.Tournament, error) {
	query := `
		SELECT name, description, start_time, created_at, version
		FROM tournaments WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	t := &domain.Tournament{ID: id}
	dst := []any{&t.Name, &t.Description, &t.StartTime, &t.CreatedAt, &t.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return t, nil
}

func (r *Repository) GetAllTournaments() ([]*domain.Tournament, error) {
	query := `
		SELECT id, name, description, start_time, created_at, version
		FROM tournaments ORDER BY start_time DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []*domain.Tournament{}
	for rows.Next() {
		var t domain.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.StartTime, &t.CreatedAt, &t.Version); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

// UpdateTournament 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateTournament(t *domain.Tournament) error {
	query := `
		UPDATE tournaments
		SET
			name = $1,
			description = $2,
			start_time = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{t.Name, t.Description, t.StartTime, t.ID, t.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&t.Version)
}

// DeleteTournament 依赖外键的 ON DELETE CASCADE 一并删除队伍、场地和赛程
func (r *Repository) DeleteTournament(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	return err
}
