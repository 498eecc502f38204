package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

func TestGenerateSortsSchedule(t *testing.T) {
	teams := utils.GenerateTeams(1, 8, 2)
	playgrounds := utils.GeneratePlaygrounds(1, 2)

	matches, res, err := Generate(context.Background(), testParameters(), 0.5, teams, playgrounds, newRand(8), nil)
	require.NoError(t, err)
	require.Len(t, matches, 12)
	assert.Contains(t, res.Breakdown, "rest_period_fairness")

	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		assert.LessOrEqual(t, prev.Round, cur.Round)
		if prev.Round == cur.Round {
			assert.LessOrEqual(t, prev.PlaygroundID, cur.PlaygroundID)
		}
	}

	assert.NoError(t, utils.ValidateMatchesWithTeams(matches, teams))
}

func TestGenerateRejectsInvalidParameters(t *testing.T) {
	params := testParameters()
	params.PopulationSize = 0

	matches, res, err := Generate(context.Background(), params, 0, utils.GenerateTeams(1, 4, 1), utils.GeneratePlaygrounds(1, 1), newRand(1), nil)
	assert.Error(t, err)
	assert.Nil(t, matches)
	assert.Nil(t, res)
}
