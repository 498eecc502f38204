package utils

import "github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"

// GenerateRoundRobinMatches 按组生成单循环赛的全部比赛
//
// 组的顺序为其在 teams 中首次出现的顺序，组内按队伍顺序两两配对，
// 生成的比赛尚未安排轮次和场地
func GenerateRoundRobinMatches(teams []*domain.Team) []*domain.Match {
	groupOrder := []string{}
	groups := make(map[string][]*domain.Team)

	for _, team := range teams {
		if _, exists := groups[team.Group]; !exists {
			groupOrder = append(groupOrder, team.Group)
		}
		groups[team.Group] = append(groups[team.Group], team)
	}

	matches := []*domain.Match{}
	for _, g := range groupOrder {
		group := groups[g]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				matches = append(matches, &domain.Match{
					TournamentID: group[i].TournamentID,
					Team1ID:      group[i].ID,
					Team2ID:      group[j].ID,
					Group:        g,
					Round:        domain.Unassigned,
					PlaygroundID: domain.Unassigned,
				})
			}
		}
	}

	return matches
}
