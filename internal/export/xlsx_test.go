package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

func newWorkbook() *ScheduleWorkbook {
	return &ScheduleWorkbook{
		Tournament: &domain.Tournament{ID: 1, Name: "新生杯"},
		Teams: []*domain.Team{
			{ID: 1, Name: "猛虎", ShortName: "MH", Group: "A"},
			{ID: 2, Name: "雄鹰", ShortName: "XY", Group: "A"},
			{ID: 3, Name: "飞龙", ShortName: "FL", Group: "A"},
		},
		Playgrounds: []*domain.Playground{
			{ID: 10, Name: "1 号场"},
			{ID: 20, Name: "2 号场"},
		},
		Matches: []*domain.Match{
			{Team1ID: 1, Team2ID: 2, Group: "A", Round: 0, PlaygroundID: 10},
			{Team1ID: 1, Team2ID: 3, Group: "A", Round: 1, PlaygroundID: 20},
			{Team1ID: 2, Team2ID: 3, Group: "A", Round: 2, PlaygroundID: 10},
		},
	}
}

func TestWriteScheduleWorkbook(t *testing.T) {
	var buf bytes.Buffer
	_, err := newWorkbook().WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{GridSheet, ListSheet, TeamsSheet}, f.GetSheetList())

	grid, err := f.GetRows(GridSheet)
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, []string{"轮次", "1 号场", "2 号场"}, grid[0])
	assert.Equal(t, []string{"第 1 轮", "猛虎 vs 雄鹰"}, grid[1])
	assert.Equal(t, []string{"第 2 轮", "", "猛虎 vs 飞龙"}, grid[2])
	assert.Equal(t, []string{"第 3 轮", "雄鹰 vs 飞龙"}, grid[3])

	list, err := f.GetRows(ListSheet)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, []string{"2", "2 号场", "A", "猛虎", "飞龙"}, list[2])

	teams, err := f.GetRows(TeamsSheet)
	require.NoError(t, err)
	require.Len(t, teams, 4)
	assert.Equal(t, []string{"猛虎", "MH", "A", "2"}, teams[1])
}

func TestWriteEmptySchedule(t *testing.T) {
	wb := &ScheduleWorkbook{}

	var buf bytes.Buffer
	_, err := wb.WriteTo(&buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	grid, err := f.GetRows(GridSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"轮次"}}, grid)
}
