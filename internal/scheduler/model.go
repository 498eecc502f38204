package scheduler

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

var (
	ErrNoPlaygrounds      = errors.New("没有可用的场地")
	ErrNoFitnessFunctions = errors.New("没有注册任何适应度函数")
	ErrNilRand            = errors.New("随机数生成器未初始化")
)

// Problem 是一次排程的只读输入，在整个运行过程中不会被修改（除了最后的 ApplyToMatches）
type Problem struct {
	Matches     []*domain.Match
	Playgrounds []*domain.Playground
	Teams       []*domain.Team

	NMatches     int
	NPlaygrounds int
	MaxRounds    int // 轮次上界 = 比赛数 / 场地数 + 1
}

func newProblem(matches []*domain.Match, playgrounds []*domain.Playground, teams []*domain.Team) (*Problem, error) {
	if len(playgrounds) == 0 {
		return nil, ErrNoPlaygrounds
	}

	return &Problem{
		Matches:      matches,
		Playgrounds:  playgrounds,
		Teams:        teams,
		NMatches:     len(matches),
		NPlaygrounds: len(playgrounds),
		MaxRounds:    len(matches)/len(playgrounds) + 1,
	}, nil
}

// RoundMap: 轮次 -> 该轮次中比赛的下标（按比赛原始顺序）
type RoundMap map[int][]int

// Rounds 按升序返回出现过的轮次
func (rm RoundMap) Rounds() []int {
	return slices.Sorted(maps.Keys(rm))
}

// TeamRoundMap: 队伍 ID -> 该队伍被安排的轮次（每出场一次记录一次）
type TeamRoundMap map[int64][]int

// FitnessFunc 对一个解打分，1.0 表示完全满足该约束，越小越差（可以为负）
type FitnessFunc func(s *Solution) float64

type weightedFitness struct {
	name       string
	fn         FitnessFunc
	importance float64
}

// 遗传算法参数
type Parameters struct {
	CloneRate         float64 // 直接复制的概率
	CrossoverRate     float64 // 交叉的概率，剩下的 1 - CloneRate - CrossoverRate 为变异概率
	PopulationSize    int     // 每一代保留的种群大小
	NewPopulationSize int     // 每一代产生的后代数量
	MaxGenerations    int     // 最大迭代次数
	MaxStagnation     int     // 最佳适应度连续多少代没有提升后停止
	MutationChanges   int     // 每次变异修改的基因数量
	Workers           int     // 并行计算适应度的 goroutine 数量，<= 1 时串行计算
}

func DefaultParameters() Parameters {
	return Parameters{
		CloneRate:         0.1,
		CrossoverRate:     0.8,
		PopulationSize:    300,
		NewPopulationSize: 1000,
		MaxGenerations:    1000,
		MaxStagnation:     100,
		MutationChanges:   2,
		Workers:           1,
	}
}

func (p Parameters) Validate() error {
	if p.CloneRate < 0 || p.CloneRate > 1 {
		return fmt.Errorf("复制概率必须在 [0, 1] 之间（当前为 %f）", p.CloneRate)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("交叉概率必须在 [0, 1] 之间（当前为 %f）", p.CrossoverRate)
	}
	if p.CloneRate+p.CrossoverRate > 1 {
		return fmt.Errorf("复制概率与交叉概率之和不能大于 1（当前为 %f）", p.CloneRate+p.CrossoverRate)
	}
	if p.PopulationSize < 1 {
		return fmt.Errorf("种群大小必须大于 0（当前为 %d）", p.PopulationSize)
	}
	if p.NewPopulationSize < 1 {
		return fmt.Errorf("后代数量必须大于 0（当前为 %d）", p.NewPopulationSize)
	}
	if p.MaxGenerations < 1 {
		return fmt.Errorf("最大迭代次数必须大于 0（当前为 %d）", p.MaxGenerations)
	}
	if p.MaxStagnation < 0 {
		return fmt.Errorf("最大停滞代数不能为负数（当前为 %d）", p.MaxStagnation)
	}
	if p.MutationChanges < 1 {
		return fmt.Errorf("变异修改的基因数量必须大于 0（当前为 %d）", p.MutationChanges)
	}
	return nil
}
