package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	Fitness     float64            `json:"fitness"`
	Generations int                `json:"generations"`
	Stagnation  int                `json:"stagnation"`
	Evaluations int                `json:"evaluations"`
	Duration    time.Duration      `json:"duration"`
	Breakdown   map[string]float64 `json:"breakdown"` // 最佳解在各个适应度函数上的得分
}

type MatchOptimizer struct {
	parameters       Parameters
	problem          *Problem
	fitnessFunctions []weightedFitness
	rng              *rand.Rand
	logger           *slog.Logger
	evaluations      int
}

func New(parameters Parameters, matches []*domain.Match, playgrounds []*domain.Playground, teams []*domain.Team, rng *rand.Rand) (*MatchOptimizer, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	problem, err := newProblem(matches, playgrounds, teams)
	if err != nil {
		return nil, err
	}

	return &MatchOptimizer{
		parameters: parameters,
		problem:    problem,
		rng:        rng,
		logger:     slog.Default(),
	}, nil
}

func (o *MatchOptimizer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

func (o *MatchOptimizer) Problem() *Problem {
	return o.problem
}

// AddFitness 注册一个适应度函数，importance 为其权重
func (o *MatchOptimizer) AddFitness(fn FitnessFunc, importance float64) error {
	return o.AddNamedFitness(fmt.Sprintf("fitness_%d", len(o.fitnessFunctions)+1), fn, importance)
}

func (o *MatchOptimizer) AddNamedFitness(name string, fn FitnessFunc, importance float64) error {
	if fn == nil {
		return fmt.Errorf("适应度函数 %s 为空", name)
	}
	if !(importance > 0) || math.IsInf(importance, 1) {
		return fmt.Errorf("适应度函数 %s 的权重必须为正数（当前为 %f）", name, importance)
	}

	o.fitnessFunctions = append(o.fitnessFunctions, weightedFitness{
		name:       name,
		fn:         fn,
		importance: importance,
	})
	return nil
}

// ComputeFitness 计算各适应度函数的加权平均
func (o *MatchOptimizer) ComputeFitness(s *Solution) (float64, error) {
	if len(o.fitnessFunctions) == 0 {
		return 0, ErrNoFitnessFunctions
	}
	return o.computeFitness(s), nil
}

func (o *MatchOptimizer) computeFitness(s *Solution) float64 {
	fitness := 0.0
	totalImportance := 0.0

	for _, f := range o.fitnessFunctions {
		fitness += f.importance * f.fn(s)
		totalImportance += f.importance
	}

	return fitness / totalImportance
}

// evaluate 为种群中尚未计算适应度的解计算适应度
//
// 每个解只会被一个 goroutine 访问，适应度函数只读取 Problem，因此可以并行
func (o *MatchOptimizer) evaluate(pop []*Solution) {
	pending := make([]*Solution, 0, len(pop))
	for _, s := range pop {
		if !s.evaluated {
			pending = append(pending, s)
		}
	}
	o.evaluations += len(pending)

	if o.parameters.Workers <= 1 {
		for _, s := range pending {
			s.fitness = o.computeFitness(s)
			s.evaluated = true
		}
		return
	}

	g := errgroup.Group{}
	g.SetLimit(o.parameters.Workers)
	for _, s := range pending {
		g.Go(func() error {
			s.fitness = o.computeFitness(s)
			s.evaluated = true
			return nil
		})
	}
	_ = g.Wait()
}

func (o *MatchOptimizer) createInitialPopulation() []*Solution {
	pop := make([]*Solution, o.parameters.PopulationSize)
	for i := range pop {
		pop[i] = newRandomSolution(o.problem, o.rng)
	}
	return pop
}

// chooseOne 随机选择一个解并返回它的副本
func (o *MatchOptimizer) chooseOne(pop []*Solution) *Solution {
	return pop[o.rng.Intn(len(pop))].Clone()
}

func (o *MatchOptimizer) mutationClone(newPop []*Solution, pop []*Solution) []*Solution {
	return append(newPop, o.chooseOne(pop))
}

func (o *MatchOptimizer) mutationCrossover(newPop []*Solution, pop []*Solution) []*Solution {
	member1 := o.chooseOne(pop)
	member2 := o.chooseOne(pop)

	point := o.rng.Intn(member1.Len())

	return append(newPop, member1.Crossover(member2, point), member2.Crossover(member1, point))
}

func (o *MatchOptimizer) mutationMutate(newPop []*Solution, pop []*Solution) []*Solution {
	member := o.chooseOne(pop)
	member.MutateInPlace(o.parameters.MutationChanges, o.problem.MaxRounds, o.rng)
	return append(newPop, member)
}

// makeMutation 产生新一代的后代并计算它们的适应度
//
// 交叉一次产生两个后代，因此后代数量可能比 NewPopulationSize 多一个
func (o *MatchOptimizer) makeMutation(pop []*Solution) []*Solution {
	newPop := make([]*Solution, 0, o.parameters.NewPopulationSize+1)

	for len(newPop) < o.parameters.NewPopulationSize {
		choice := o.rng.Float64()

		switch {
		case choice < o.parameters.CloneRate:
			newPop = o.mutationClone(newPop, pop)
		case choice < o.parameters.CloneRate+o.parameters.CrossoverRate:
			newPop = o.mutationCrossover(newPop, pop)
		default:
			newPop = o.mutationMutate(newPop, pop)
		}
	}

	o.evaluate(newPop)

	return newPop
}

// killOut 按适应度从高到低排序，只保留最好的 PopulationSize 个
func (o *MatchOptimizer) killOut(pop []*Solution) []*Solution {
	o.evaluate(pop)

	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness > pop[j].fitness
	})

	if len(pop) > o.parameters.PopulationSize {
		pop = pop[:o.parameters.PopulationSize]
	}
	return pop
}

// Run 运行遗传算法并将最佳解写回比赛记录
//
// ctx 只在两代之间检查，被取消时仍然会应用目前为止最好的解，并同时返回 ctx 的错误
func (o *MatchOptimizer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if len(o.fitnessFunctions) == 0 {
		return nil, ErrNoFitnessFunctions
	}

	// 没有比赛或者没有队伍时不需要排程
	if o.problem.NMatches == 0 || len(o.problem.Teams) == 0 {
		return &Result{
			Fitness:   1,
			Breakdown: map[string]float64{},
			Duration:  time.Since(start),
		}, nil
	}

	o.evaluations = 0
	pop := o.createInitialPopulation()
	term := NewTermination(o.parameters.MaxGenerations, o.parameters.MaxStagnation)

	for {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("排程被取消，使用目前最好的结果", "generation", term.Generation(), "error", err)
			return o.finish(pop, term, start), err
		}

		newPop := o.makeMutation(pop)
		pop = o.killOut(append(newPop, pop...))

		best := bestOf(pop)
		stop := term.Observe(best)
		o.logger.Debug("完成一代", "generation", term.Generation(), "best", best, "stagnation", term.Stagnation())
		if stop {
			break
		}
	}

	return o.finish(pop, term, start), nil
}

func (o *MatchOptimizer) finish(pop []*Solution, term *Termination, start time.Time) *Result {
	pop = o.killOut(pop)
	best := pop[0]
	best.ApplyToMatches()

	breakdown := make(map[string]float64, len(o.fitnessFunctions))
	for _, f := range o.fitnessFunctions {
		breakdown[f.name] = f.fn(best)
	}

	res := &Result{
		Fitness:     best.fitness,
		Generations: term.Generation(),
		Stagnation:  term.Stagnation(),
		Evaluations: o.evaluations,
		Duration:    time.Since(start),
		Breakdown:   breakdown,
	}

	o.logger.Info("排程完成",
		"fitness", res.Fitness,
		"generations", res.Generations,
		"evaluations", res.Evaluations,
		"duration", res.Duration,
	)

	return res
}
