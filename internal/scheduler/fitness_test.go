package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

// 4 支队伍的比赛顺序: 1-2, 1-3, 1-4, 2-3, 2-4, 3-4

func TestNoTeamPlaysTwiceEachRound(t *testing.T) {
	p := newFixture(4, 2).problem(t)

	tests := []struct {
		name   string
		values []int
		want   float64
	}{
		{"完美的赛程", []int{0, 1, 2, 2, 1, 0}, 1},
		{"两轮冲突", []int{0, 0, 1, 1, 2, 2}, 1 - 8.0/12.0},
		{"全部在同一轮", []int{0, 0, 0, 0, 0, 0}, 0},
		// 第 3 轮的 2-3、2-4、3-4 冲突，按 3^2 扣分
		{"大轮次冲突扣分更多", []int{0, 1, 2, 3, 3, 3}, 1 - 9.0/12.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NoTeamPlaysTwiceEachRound(solutionOf(p, tt.values...))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNoTeamPlaysTwiceEachRoundSinglePlayground(t *testing.T) {
	teams := []*domain.Team{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	playgrounds := []*domain.Playground{{ID: 1}}

	disjoint := []*domain.Match{
		{Team1ID: 1, Team2ID: 2},
		{Team1ID: 3, Team2ID: 4},
	}
	p, err := newProblem(disjoint, playgrounds, teams)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.MaxRounds)
	assert.Equal(t, 1.0, NoTeamPlaysTwiceEachRound(solutionOf(p, 0, 0)))

	sharing := []*domain.Match{
		{Team1ID: 1, Team2ID: 2},
		{Team1ID: 1, Team2ID: 3},
	}
	p, err = newProblem(sharing, playgrounds, teams)
	assert.NoError(t, err)
	assert.Less(t, NoTeamPlaysTwiceEachRound(solutionOf(p, 0, 0)), 1.0)
	assert.Equal(t, 1.0, NoTeamPlaysTwiceEachRound(solutionOf(p, 0, 1)))
}

func TestEachRoundHasSameNumberOfMatches(t *testing.T) {
	p := newFixture(4, 2).problem(t)

	tests := []struct {
		name   string
		values []int
		want   float64
	}{
		{"三轮各两场，第 4 轮为空", []int{0, 1, 2, 2, 1, 0}, 1},
		{"比赛数少于场地数不扣分", []int{0, 1, 2, 3, 0, 1}, 1},
		{"一轮超出", []int{0, 0, 0, 1, 1, 2}, 1 - 1.0/3.0},
		{"全部在同一轮", []int{0, 0, 0, 0, 0, 0}, 0},
		{"跳过中间的轮次", []int{0, 0, 3, 3, 3, 3}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EachRoundHasSameNumberOfMatches(solutionOf(p, tt.values...))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPerfectScheduleScoresOne(t *testing.T) {
	f := newFixture(4, 2)
	o, err := New(testParameters(), f.matches, f.playgrounds, f.teams, newRand(1))
	assert.NoError(t, err)
	assert.NoError(t, RegisterDefaultFitness(o, 0))

	fitness, err := o.ComputeFitness(solutionOf(o.Problem(), 0, 1, 2, 2, 1, 0))
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, fitness, 1e-9)
}

func TestRestPeriodFairness(t *testing.T) {
	teams := []*domain.Team{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	playgrounds := []*domain.Playground{{ID: 1}, {ID: 2}}
	matches := []*domain.Match{
		{Team1ID: 1, Team2ID: 2},
		{Team1ID: 3, Team2ID: 4},
		{Team1ID: 1, Team2ID: 3},
		{Team1ID: 2, Team2ID: 4},
	}
	p, err := newProblem(matches, playgrounds, teams)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.MaxRounds)

	// 每支队伍的间隔都是 1
	assert.InDelta(t, 1.0, RestPeriodFairness(solutionOf(p, 0, 0, 1, 1)), 1e-9)

	// 队伍 1、3 的间隔为 2，队伍 2、4 的间隔为 1，平均 1.5，偏差之和 2
	assert.InDelta(t, 1-2.0/12.0, RestPeriodFairness(solutionOf(p, 0, 0, 2, 1)), 1e-9)
}

func TestRestPeriodFairnessWithoutGaps(t *testing.T) {
	teams := []*domain.Team{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	playgrounds := []*domain.Playground{{ID: 1}}
	matches := []*domain.Match{
		{Team1ID: 1, Team2ID: 2},
		{Team1ID: 3, Team2ID: 4},
	}
	p, err := newProblem(matches, playgrounds, teams)
	assert.NoError(t, err)

	assert.Equal(t, 1.0, RestPeriodFairness(solutionOf(p, 0, 2)))
}

func TestRegisterDefaultFitness(t *testing.T) {
	f := newFixture(4, 2)

	o, err := New(testParameters(), f.matches, f.playgrounds, f.teams, newRand(1))
	assert.NoError(t, err)
	assert.NoError(t, RegisterDefaultFitness(o, 0))
	assert.Len(t, o.fitnessFunctions, 2)

	o, err = New(testParameters(), f.matches, f.playgrounds, f.teams, newRand(1))
	assert.NoError(t, err)
	assert.NoError(t, RegisterDefaultFitness(o, 0.5))
	assert.Len(t, o.fitnessFunctions, 3)
	assert.Equal(t, "rest_period_fairness", o.fitnessFunctions[2].name)
	assert.Equal(t, 0.5, o.fitnessFunctions[2].importance)
}
