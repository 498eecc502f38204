package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

type fixture struct {
	matches     []*domain.Match
	playgrounds []*domain.Playground
	teams       []*domain.Team
}

// newFixture 生成 nTeams 支同组队伍的单循环赛以及 nPlaygrounds 个场地
func newFixture(nTeams, nPlaygrounds int) fixture {
	teams := utils.GenerateTeams(1, nTeams, 1)
	return fixture{
		matches:     utils.GenerateRoundRobinMatches(teams),
		playgrounds: utils.GeneratePlaygrounds(1, nPlaygrounds),
		teams:       teams,
	}
}

func (f fixture) problem(t *testing.T) *Problem {
	t.Helper()
	p, err := newProblem(f.matches, f.playgrounds, f.teams)
	require.NoError(t, err)
	return p
}

func solutionOf(p *Problem, values ...int) *Solution {
	return &Solution{problem: p, values: values}
}

func testParameters() Parameters {
	return Parameters{
		CloneRate:         0.1,
		CrossoverRate:     0.8,
		PopulationSize:    40,
		NewPopulationSize: 120,
		MaxGenerations:    300,
		MaxStagnation:     40,
		MutationChanges:   2,
		Workers:           1,
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
