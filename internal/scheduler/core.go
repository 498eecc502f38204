package scheduler

import (
	"fmt"
	"math/rand"
)

// Solution: 一个候选赛程，values[i] 表示第 i 场比赛所在的轮次
//
// 例如 [2, 2, 1, 3, 1] 表示第一场比赛在第 2 轮，第三场比赛在第 1 轮，以此类推
type Solution struct {
	problem *Problem
	values  []int

	fitness   float64
	evaluated bool

	// 以下缓存只对生成它们的 values 有效，修改 values 时必须同时清空
	rounds     RoundMap
	teamRounds TeamRoundMap
}

// newRandomSolution 随机初始化一个解，它不一定满足约束，但形式上是一个完整的赛程
func newRandomSolution(p *Problem, rng *rand.Rand) *Solution {
	s := &Solution{
		problem: p,
		values:  make([]int, p.NMatches),
	}
	for i := range s.values {
		s.values[i] = rng.Intn(p.MaxRounds)
	}

	// 再整体打乱一次，避免抽取顺序带来的位置偏差
	shuffleInts(s.values, rng)

	return s
}

func (s *Solution) Problem() *Problem {
	return s.problem
}

// Values 返回轮次序列的副本
func (s *Solution) Values() []int {
	return append([]int(nil), s.values...)
}

func (s *Solution) Len() int {
	return len(s.values)
}

// Fitness 返回引擎计算的适应度，尚未计算时 ok 为 false
func (s *Solution) Fitness() (fitness float64, ok bool) {
	return s.fitness, s.evaluated
}

// Clone 深拷贝轮次序列，适应度和缓存都不会被复制
func (s *Solution) Clone() *Solution {
	return &Solution{
		problem: s.problem,
		values:  append([]int(nil), s.values...),
	}
}

// Crossover 单点交叉：前半段取自 s，后半段取自 other
func (s *Solution) Crossover(other *Solution, point int) *Solution {
	if len(s.values) != len(other.values) {
		// 同一次运行中的解长度必然相同，出现这种情况说明代码有问题
		panic(fmt.Sprintf("交叉的两个解长度不一致：%d != %d", len(s.values), len(other.values)))
	}

	values := make([]int, 0, len(s.values))
	values = append(values, s.values[:point]...)
	values = append(values, other.values[point:]...)

	return &Solution{
		problem: s.problem,
		values:  values,
	}
}

// MutateInPlace 随机选择 nChanges 个位置（可重复）并重新抽取轮次
func (s *Solution) MutateInPlace(nChanges int, maxRounds int, rng *rand.Rand) {
	if len(s.values) == 0 {
		return
	}

	for i := 0; i < nChanges; i++ {
		s.values[rng.Intn(len(s.values))] = rng.Intn(maxRounds)
	}

	s.invalidate()
}

func (s *Solution) invalidate() {
	s.rounds = nil
	s.teamRounds = nil
	s.evaluated = false
	s.fitness = 0
}

func (s *Solution) precomputeAndCache() {
	rounds := make(RoundMap)
	teamRounds := make(TeamRoundMap)

	for i, round := range s.values {
		rounds[round] = append(rounds[round], i)

		match := s.problem.Matches[i]
		teamRounds[match.Team1ID] = append(teamRounds[match.Team1ID], round)
		teamRounds[match.Team2ID] = append(teamRounds[match.Team2ID], round)
	}

	s.rounds = rounds
	s.teamRounds = teamRounds
}

// RoundMap 返回 轮次 -> 比赛下标 的映射，首次访问时计算
func (s *Solution) RoundMap() RoundMap {
	if s.rounds == nil {
		s.precomputeAndCache()
	}
	return s.rounds
}

// TeamRoundMap 返回 队伍 ID -> 轮次 的映射，首次访问时计算
func (s *Solution) TeamRoundMap() TeamRoundMap {
	if s.teamRounds == nil {
		s.precomputeAndCache()
	}
	return s.teamRounds
}

// ApplyToMatches 将解写回比赛记录
//
// 某一轮中第 k 场比赛被分配到第 k % nPlaygrounds 个场地，
// 一轮的比赛数超过场地数时按顺序循环分配，而不是报错
func (s *Solution) ApplyToMatches() {
	p := s.problem
	placed := make(map[int]int)

	for i, round := range s.values {
		k := placed[round]
		p.Matches[i].Round = int32(round)
		p.Matches[i].PlaygroundID = p.Playgrounds[k%p.NPlaygrounds].ID
		placed[round] = k + 1
	}
}
