package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

func TestGenerateRoundRobinMatches(t *testing.T) {
	teams := []*domain.Team{
		{ID: 1, TournamentID: 7, Group: "A"},
		{ID: 2, TournamentID: 7, Group: "B"},
		{ID: 3, TournamentID: 7, Group: "A"},
		{ID: 4, TournamentID: 7, Group: "B"},
		{ID: 5, TournamentID: 7, Group: "A"},
	}

	matches := GenerateRoundRobinMatches(teams)
	require.Len(t, matches, 4)

	got := [][2]int64{}
	for _, m := range matches {
		got = append(got, [2]int64{m.Team1ID, m.Team2ID})
		assert.Equal(t, int64(7), m.TournamentID)
		assert.Equal(t, int32(domain.Unassigned), m.Round)
		assert.Equal(t, int64(domain.Unassigned), m.PlaygroundID)
	}
	assert.Equal(t, [][2]int64{{1, 3}, {1, 5}, {3, 5}, {2, 4}}, got)
	assert.Equal(t, "A", matches[0].Group)
	assert.Equal(t, "B", matches[3].Group)

	assert.NoError(t, ValidateMatchesWithTeams(matches, teams))
}

func TestGenerateRoundRobinMatchesCount(t *testing.T) {
	for n := 0; n <= 10; n++ {
		matches := GenerateRoundRobinMatches(GenerateTeams(1, n, 1))
		assert.Len(t, matches, n*(n-1)/2, "n=%d", n)
	}
}
