package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

func ValidateTournamentName(name string) error {
	if len([]rune(name)) > 64 {
		return errors.New("赛事名称不能超过 64 个字符")
	}
	return nil
}

// ValidateMatchesWithTeams 检查比赛是否都由该赛事中同一组的两支不同队伍组成，且同一对队伍只比赛一次
func ValidateMatchesWithTeams(matches []*domain.Match, teams []*domain.Team) error {
	teamMap := make(map[int64]*domain.Team, len(teams))
	for _, team := range teams {
		teamMap[team.ID] = team
	}
	pairs := make(map[[2]int64]bool, len(matches))

	for i, match := range matches {
		if match.Team1ID == match.Team2ID {
			return fmt.Errorf("第 %d 场比赛的两支队伍相同", i+1)
		}

		t1, ok1 := teamMap[match.Team1ID]
		t2, ok2 := teamMap[match.Team2ID]
		if !ok1 || !ok2 {
			return fmt.Errorf("第 %d 场比赛中存在不属于该赛事的队伍", i+1)
		}

		if t1.Group != t2.Group {
			return fmt.Errorf("第 %d 场比赛的两支队伍不在同一组", i+1)
		}

		pair := [2]int64{min(t1.ID, t2.ID), max(t1.ID, t2.ID)}
		if pairs[pair] {
			return fmt.Errorf("第 %d 场比赛重复：%s 与 %s 已经比赛过", i+1, t1.Name, t2.Name)
		}
		pairs[pair] = true
	}

	return nil
}

// ValidateSchedule 检查赛程是否可行：
//  1. 每场比赛都安排了轮次和该赛事的场地
//  2. 同一轮中每支队伍最多出场一次
//  3. 同一轮中每个场地最多安排一场比赛
func ValidateSchedule(matches []*domain.Match, playgrounds []*domain.Playground) error {
	playgroundIDs := make([]int64, 0, len(playgrounds))
	for _, pg := range playgrounds {
		playgroundIDs = append(playgroundIDs, pg.ID)
	}

	roundTeams := make(map[int32]map[int64]bool)
	roundPlaygrounds := make(map[int32]map[int64]bool)

	for i, match := range matches {
		if match.Round < 0 {
			return fmt.Errorf("第 %d 场比赛没有安排轮次", i+1)
		}
		if !slices.Contains(playgroundIDs, match.PlaygroundID) {
			return fmt.Errorf("第 %d 场比赛没有安排该赛事的场地", i+1)
		}

		if _, exists := roundTeams[match.Round]; !exists {
			roundTeams[match.Round] = make(map[int64]bool)
			roundPlaygrounds[match.Round] = make(map[int64]bool)
		}

		for _, teamID := range []int64{match.Team1ID, match.Team2ID} {
			if roundTeams[match.Round][teamID] {
				return fmt.Errorf("第 %d 轮中 id 为 %d 的队伍出场了不止一次", match.Round+1, teamID)
			}
			roundTeams[match.Round][teamID] = true
		}

		if roundPlaygrounds[match.Round][match.PlaygroundID] {
			return fmt.Errorf("第 %d 轮中 id 为 %d 的场地安排了不止一场比赛", match.Round+1, match.PlaygroundID)
		}
		roundPlaygrounds[match.Round][match.PlaygroundID] = true
	}

	return nil
}

// SortSchedule 按轮次排序，同一轮次内按场地在 playgrounds 中的位置排序
func SortSchedule(matches []*domain.Match, playgrounds []*domain.Playground) {
	position := make(map[int64]int, len(playgrounds))
	for i, pg := range playgrounds {
		position[pg.ID] = i
	}

	slices.SortStableFunc(matches, func(a, b *domain.Match) int {
		if a.Round != b.Round {
			return int(a.Round) - int(b.Round)
		}
		return position[a.PlaygroundID] - position[b.PlaygroundID]
	})
}
