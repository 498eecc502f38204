package scheduler

import "math"

// NoTeamPlaysTwiceEachRound 惩罚同一轮中出现同一支队伍的情况
//
// 每个存在冲突的轮次扣除 (该轮比赛数)^2，使比赛越多的冲突轮次被惩罚得越重
func NoTeamPlaysTwiceEachRound(s *Solution) float64 {
	penalty := 0.0
	normalizingFactor := 0.0
	matches := s.Problem().Matches

	for _, roundMatches := range s.RoundMap() {
		roundTeams := make(map[int64]struct{}, 2*len(roundMatches))
		nonOverlapping := true

		for _, idx := range roundMatches {
			t1 := matches[idx].Team1ID
			t2 := matches[idx].Team2ID

			_, seen1 := roundTeams[t1]
			_, seen2 := roundTeams[t2]
			if seen1 || seen2 {
				nonOverlapping = false
				break
			}

			roundTeams[t1] = struct{}{}
			roundTeams[t2] = struct{}{}
		}

		size := float64(len(roundMatches))
		normalizingFactor += size * size
		if !nonOverlapping {
			penalty += size * size
		}
	}

	if normalizingFactor == 0 {
		return 1
	}

	return 1 - penalty/normalizingFactor
}

// EachRoundHasSameNumberOfMatches 惩罚比赛数超过场地数的轮次
//
// 只统计出现在 RoundMap 中的轮次，因此末尾没有比赛的空轮次不扣分；
// 比赛数少于场地数的轮次同样不扣分
func EachRoundHasSameNumberOfMatches(s *Solution) float64 {
	penalty := 0.0
	normalizingFactor := 0.0
	nPlaygrounds := s.Problem().NPlaygrounds
	rounds := s.RoundMap()

	for _, round := range rounds.Rounds() {
		normalizingFactor += 1
		if len(rounds[round]) > nPlaygrounds {
			penalty += 1
		}
	}

	if normalizingFactor == 0 {
		return 1
	}

	return 1 - penalty/normalizingFactor
}

// RestPeriodFairness 惩罚各队伍之间休息间隔不均衡的情况
//
// 取每支队伍任意两场比赛之间的轮次差，与所有间隔的平均值比较，
// 偏差之和除以 (间隔数 * MaxRounds) 进行归一化
func RestPeriodFairness(s *Solution) float64 {
	maxRounds := float64(s.Problem().MaxRounds)

	var stops []float64
	stopsTotal := 0.0
	for _, rounds := range s.TeamRoundMap() {
		for i := 0; i < len(rounds)-1; i++ {
			for j := i + 1; j < len(rounds); j++ {
				stop := math.Abs(float64(rounds[j] - rounds[i]))
				stops = append(stops, stop)
				stopsTotal += stop
			}
		}
	}

	if len(stops) == 0 {
		return 1
	}

	idealStop := stopsTotal / float64(len(stops))
	penalty := 0.0
	for _, stop := range stops {
		penalty += math.Abs(stop - idealStop)
	}

	return 1 - penalty/(float64(len(stops))*maxRounds)
}

// RegisterDefaultFitness 注册默认的适应度函数，restWeight <= 0 时不考虑休息间隔
func RegisterDefaultFitness(o *MatchOptimizer, restWeight float64) error {
	if err := o.AddNamedFitness("no_team_plays_twice_each_round", NoTeamPlaysTwiceEachRound, 1.0); err != nil {
		return err
	}
	if err := o.AddNamedFitness("each_round_has_same_number_of_matches", EachRoundHasSameNumberOfMatches, 1.0); err != nil {
		return err
	}
	if restWeight > 0 {
		if err := o.AddNamedFitness("rest_period_fairness", RestPeriodFairness, restWeight); err != nil {
			return err
		}
	}
	return nil
}
