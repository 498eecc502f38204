package scheduler

import "math"

// Termination 记录迭代次数与停滞次数，每一代结束后调用一次 Observe
type Termination struct {
	MaxGenerations int
	MaxStagnation  int

	generation int
	stagnation int
	best       float64
}

func NewTermination(maxGenerations, maxStagnation int) *Termination {
	return &Termination{
		MaxGenerations: maxGenerations,
		MaxStagnation:  maxStagnation,
		best:           math.Inf(-1),
	}
}

// Observe 记录本代的最佳适应度，返回是否应该停止
//
// 最佳适应度没有严格提升时停滞次数加一，否则清零
func (t *Termination) Observe(best float64) bool {
	if best <= t.best {
		t.stagnation++
	} else {
		t.stagnation = 0
	}
	t.best = best
	t.generation++

	return t.Done()
}

func (t *Termination) Done() bool {
	return t.stagnation > t.MaxStagnation || t.generation >= t.MaxGenerations
}

func (t *Termination) Generation() int {
	return t.generation
}

func (t *Termination) Stagnation() int {
	return t.stagnation
}
