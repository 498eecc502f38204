package scheduler

import "math/rand"

// shuffleInts 使用 Fisher-Yates 洗牌算法原地打乱
func shuffleInts(a []int, rng *rand.Rand) {
	for i := len(a) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// bestOf 返回已排序种群中的最佳适应度
func bestOf(pop []*Solution) float64 {
	if len(pop) == 0 {
		return 0
	}
	return pop[0].fitness
}
