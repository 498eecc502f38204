package scheduler

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

// Generate 为赛事生成完整的赛程：按组生成单循环比赛，安排轮次和场地，最后按轮次和场地排序
//
// 和 Run 一样，ctx 被取消时仍返回目前最好的赛程以及 ctx 的错误
func Generate(ctx context.Context, parameters Parameters, restWeight float64, teams []*domain.Team, playgrounds []*domain.Playground, rng *rand.Rand, logger *slog.Logger) ([]*domain.Match, *Result, error) {
	matches := utils.GenerateRoundRobinMatches(teams)

	optimizer, err := New(parameters, matches, playgrounds, teams, rng)
	if err != nil {
		return nil, nil, err
	}
	optimizer.SetLogger(logger)

	if err := RegisterDefaultFitness(optimizer, restWeight); err != nil {
		return nil, nil, err
	}

	res, err := optimizer.Run(ctx)
	if res == nil {
		return nil, nil, err
	}

	utils.SortSchedule(matches, playgrounds)
	return matches, res, err
}
