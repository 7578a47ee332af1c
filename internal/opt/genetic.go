package opt

import (
	"context"

	"routeopt/internal/model"
)

const (
	populationSize     = 50
	defaultGenerations = 100
	tournamentSize     = 3
	mutationRate       = 0.1
)

type individual struct {
	order   []int
	fitness float64
}

// Genetic evolves random permutations with tournament selection, order
// crossover and swap mutation. Fitness is 1/(totalDistance+1) from a full
// simulation, and the fittest member of the final population is returned.
func (e *Engine) Genetic(ctx context.Context, locations []model.Location, v model.Vehicle, o model.OptimizationOptions) (model.RouteSolution, error) {
	t := newTable(locations)
	n := len(locations)
	if n < 2 {
		return e.simulate(t, identity(n), v, o), nil
	}
	defer e.startClock()()
	generations := o.MaxIterations
	if generations <= 0 {
		generations = defaultGenerations
	}
	e.log.Debugf("genetic: %d locations, %d generations, seed %d", n, generations, e.seed)

	pop := make([]individual, populationSize)
	for i := range pop {
		pop[i] = individual{order: e.rng.Perm(n)}
	}
	e.evaluate(t, pop, v, o)
	bestSeen := fittest(pop).fitness

	for g := 0; g < generations; g++ {
		if err := ctx.Err(); err != nil {
			return e.finish(t, pop, v, o), err
		}
		if e.expired() {
			e.log.Debugf("genetic: time budget reached after %d generations", g)
			break
		}
		next := make([]individual, populationSize)
		for i := range next {
			p1 := e.tournament(pop)
			p2 := e.tournament(pop)
			child := e.orderCrossover(p1.order, p2.order)
			if e.rng.Float64() < mutationRate {
				e.swapMutate(child)
			}
			next[i] = individual{order: child}
		}
		pop = next
		e.evaluate(t, pop, v, o)
		e.stats.Iterations++
		if f := fittest(pop).fitness; f > bestSeen {
			bestSeen = f
			e.stats.Improvements++
		}
		e.report(g+1, model.AlgorithmGenetic, 1/bestSeen-1)
	}
	return e.finish(t, pop, v, o), nil
}

func (e *Engine) evaluate(t *table, pop []individual, v model.Vehicle, o model.OptimizationOptions) {
	for i := range pop {
		sol := e.simulate(t, pop[i].order, v, o)
		pop[i].fitness = 1 / (sol.TotalDistance + 1)
	}
}

func (e *Engine) finish(t *table, pop []individual, v model.Vehicle, o model.OptimizationOptions) model.RouteSolution {
	sol := e.simulate(t, fittest(pop).order, v, o)
	e.stats.BestDistance = sol.TotalDistance
	return sol
}

func fittest(pop []individual) individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness > best.fitness {
			best = ind
		}
	}
	return best
}

// tournament draws tournamentSize members at random and keeps the fittest.
func (e *Engine) tournament(pop []individual) individual {
	best := pop[e.rng.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		if c := pop[e.rng.Intn(len(pop))]; c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// orderCrossover copies a random slice of p1 into the child and fills the
// remaining positions with p2's genes in their relative order.
func (e *Engine) orderCrossover(p1, p2 []int) []int {
	n := len(p1)
	a, b := e.rng.Intn(n), e.rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	child := make([]int, n)
	used := make([]bool, n)
	for i := range child {
		child[i] = -1
	}
	for i := a; i <= b; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}
	pos := 0
	for _, g := range p2 {
		if used[g] {
			continue
		}
		for child[pos] != -1 {
			pos++
		}
		child[pos] = g
		used[g] = true
	}
	return child
}

func (e *Engine) swapMutate(order []int) {
	i, j := e.rng.Intn(len(order)), e.rng.Intn(len(order))
	order[i], order[j] = order[j], order[i]
}
