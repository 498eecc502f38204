package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/utils"
)

// 队伍 CSV 的表头，只有队名是必需的
const (
	HeaderName      = "队名"
	HeaderShortName = "简称"
	HeaderGroup     = "组别"
	HeaderSkill     = "实力"
)

// ReadTeamsCSV 从 CSV 中读取队伍，缺少简称时根据队名生成，缺少组别时放入 A 组
func ReadTeamsCSV(r io.Reader) ([]*domain.Team, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		// 去掉 Excel 导出时可能带上的 BOM
		headers[i] = strings.TrimPrefix(strings.TrimSpace(headers[i]), "\ufeff")
	}
	if !slices.Contains(headers, HeaderName) {
		return nil, fmt.Errorf("没有找到%s列", HeaderName)
	}

	teams := []*domain.Team{}
	names := make(map[string]bool)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		team := &domain.Team{
			Name:      record[HeaderName],
			ShortName: record[HeaderShortName],
			Group:     record[HeaderGroup],
		}
		if team.Name == "" {
			slog.Warn("跳过没有队名的行", "line", line)
			continue
		}
		if names[team.Name] {
			return nil, fmt.Errorf("第 %d 行的队名 %s 重复", line, team.Name)
		}
		names[team.Name] = true

		if team.ShortName == "" {
			team.ShortName = utils.GenerateTeamShortName(team.Name)
		}
		if team.Group == "" {
			team.Group = utils.GenerateGroupName(0)
		}
		if s := record[HeaderSkill]; s != "" {
			skill, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行的实力 %q 不是整数", line, s)
			}
			team.Skill = int32(skill)
		}

		teams = append(teams, team)
	}

	return teams, nil
}

// ImportTeams 将 CSV 文件中的队伍导入到指定赛事
func ImportTeams(r *repository.Repository, tournamentID int64, path string) error {
	if _, err := r.GetTournamentByID(tournamentID); err != nil {
		return fmt.Errorf("获取赛事失败: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	teams, err := ReadTeamsCSV(file)
	if err != nil {
		return err
	}
	for _, team := range teams {
		team.TournamentID = tournamentID
	}

	if err := r.CreateTeams(teams); err != nil {
		return err
	}

	slog.Info("导入队伍完成", "tournament", tournamentID, "count", len(teams))
	return nil
}

// SeedRandomTournament 插入一个随机赛事及其队伍和场地，返回赛事 ID
func SeedRandomTournament(r *repository.Repository) (int64, error) {
	t, teams, playgrounds := utils.GenerateRandomTournament()

	if err := r.CreateTournament(t); err != nil {
		return 0, err
	}

	for _, team := range teams {
		team.TournamentID = t.ID
	}
	if err := r.CreateTeams(teams); err != nil {
		return 0, err
	}

	for _, pg := range playgrounds {
		pg.TournamentID = t.ID
		if err := r.CreatePlayground(pg); err != nil {
			return 0, err
		}
	}

	slog.Info("插入随机赛事完成", "tournament", t.ID, "name", t.Name, "teams", len(teams), "playgrounds", len(playgrounds))
	return t.ID, nil
}
