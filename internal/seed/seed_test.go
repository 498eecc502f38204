package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTeamsCSV(t *testing.T) {
	input := "\ufeff队名,简称,组别,实力\n" +
		"广州猛虎,,A,7\n" +
		"深圳雄鹰,SZ,B,\n" +
		",,,\n" +
		"珠海飞龙,,,3\n"

	teams, err := ReadTeamsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, teams, 3)

	assert.Equal(t, "广州猛虎", teams[0].Name)
	assert.Equal(t, "GZMH", teams[0].ShortName)
	assert.Equal(t, int32(7), teams[0].Skill)

	assert.Equal(t, "SZ", teams[1].ShortName)
	assert.Equal(t, "B", teams[1].Group)
	assert.Zero(t, teams[1].Skill)

	assert.Equal(t, "A", teams[2].Group)
}

func TestReadTeamsCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"空文件", ""},
		{"缺少队名列", "简称,组别\nA,B\n"},
		{"队名重复", "队名\n猛虎\n猛虎\n"},
		{"实力不是整数", "队名,实力\n猛虎,很强\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTeamsCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
