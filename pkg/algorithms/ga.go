/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

const (
	Name = "GA"

	tracerName = "github.com/mihai-snyk/gapartition/pkg/algorithms"
)

// ErrSeedContract is returned when the seed generator hands over partitions
// that do not cover every vertex exactly once, or the wrong number of them.
var ErrSeedContract = errors.New("algorithms: seed generator contract violation")

// SeedGenerator produces the initial population.
type SeedGenerator interface {
	Generate(count int) ([]framework.Partition, error)
}

// SeedGeneratorFunc adapts a function to SeedGenerator.
type SeedGeneratorFunc func(count int) ([]framework.Partition, error)

// Generate calls f(count).
func (f SeedGeneratorFunc) Generate(count int) ([]framework.Partition, error) {
	return f(count)
}

// Phase names a step of the generational pipeline.
type Phase string

const (
	PhasePopulate   Phase = "populate"
	PhaseSelection  Phase = "selection"
	PhaseTournament Phase = "tournament"
	PhaseCrossover  Phase = "crossover"
	PhaseMutation   Phase = "mutation"
)

// PhaseTimings accumulates wall time spent in each phase.
type PhaseTimings struct {
	Populate   time.Duration `json:"populate"`
	Selection  time.Duration `json:"selection"`
	Tournament time.Duration `json:"tournament"`
	Crossover  time.Duration `json:"crossover"`
	Mutation   time.Duration `json:"mutation"`
}

// Total is the sum of all phases.
func (t PhaseTimings) Total() time.Duration {
	return t.Populate + t.Selection + t.Tournament + t.Crossover + t.Mutation
}

func (t *PhaseTimings) add(o PhaseTimings) {
	t.Populate += o.Populate
	t.Selection += o.Selection
	t.Tournament += o.Tournament
	t.Crossover += o.Crossover
	t.Mutation += o.Mutation
}

// GenerationStats summarizes one population.
type GenerationStats struct {
	Generation int               `json:"generation"`
	Size       int               `json:"size"`
	Best       framework.Fitness `json:"best"`
	Feasible   int               `json:"feasible"`
	Unique     int               `json:"unique"`
	Stagnation int               `json:"stagnation"`
}

// Observer receives progress from the driver. Calls happen on the driver
// goroutine, once per generation.
type Observer interface {
	ObserveGeneration(stats GenerationStats)
	ObservePhases(timings PhaseTimings)
}

// Result is the outcome of a run.
type Result struct {
	Best    framework.Partition `json:"best"`
	Fitness framework.Fitness   `json:"fitness"`
	// LastGeneration is the last generation that improved the best fitness
	// when the run stopped on stagnation, otherwise the last generation run.
	LastGeneration int               `json:"lastGeneration"`
	GenerationsRun int               `json:"generationsRun"`
	Stagnated      bool              `json:"stagnated"`
	Seed           uint64            `json:"seed"`
	Timings        PhaseTimings      `json:"timings"`
	History        []GenerationStats `json:"history,omitempty"`
}

// Option configures optional collaborators of the GA.
type Option func(*GA)

// WithEvaluator replaces the fitness evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(g *GA) {
		g.evaluator = e
	}
}

// WithCrossover replaces the recombination operator.
func WithCrossover(f CrossoverFunc) Option {
	return func(g *GA) {
		g.crossover = f
	}
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(g *GA) {
		g.observer = o
	}
}

// WithClock replaces the clock used for phase timings.
func WithClock(c clock.PassiveClock) Option {
	return func(g *GA) {
		g.clock = c
	}
}

// GA is the generational driver: elitism, the
// selection -> tournament -> crossover -> mutation pipeline, population
// replacement and stagnation-based early termination.
type GA struct {
	config    Config
	instance  *framework.Instance
	seeder    SeedGenerator
	evaluator Evaluator
	crossover CrossoverFunc
	mutator   *Mutator
	observer  Observer
	clock     clock.PassiveClock
}

// NewGA validates the configuration and wires the operators. Unless
// overridden, fitness comes from the instance's feasibility oracle and
// recombination from AdjacencyCrossover.
func NewGA(config Config, inst *framework.Instance, seeder SeedGenerator, opts ...Option) (*GA, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if inst == nil || inst.Graph == nil {
		return nil, fmt.Errorf("%w: nil instance", ErrInvalidConfig)
	}
	if seeder == nil {
		return nil, fmt.Errorf("%w: nil seed generator", ErrInvalidConfig)
	}

	g := &GA{
		config:    config,
		instance:  inst,
		seeder:    seeder,
		evaluator: constraints.NewOracle(inst),
		crossover: NewAdjacencyCrossover(inst.Graph),
		clock:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.evaluator == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidConfig)
	}
	g.mutator = NewMutator(inst.Graph, g.evaluator, config.MutationProbability, config.MutationStrategy)
	return g, nil
}

var seedCounter atomic.Uint64

// ResolveSeed returns seed, or a time-based seed when seed is 0. Successive
// calls within a process never return the same time-based seed.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	seed = uint64(time.Now().UnixNano()) + seedCounter.Add(1)*0x9e3779b97f4a7c15
	if seed == 0 {
		seed = 1
	}
	return seed
}

// Run executes the GA. On context cancellation it returns the best
// individual of the current population together with the context error.
func (g *GA) Run(ctx context.Context) (*Result, error) {
	logger := klog.FromContext(ctx).WithValues("algorithm", Name, "instance", g.instance.Name)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GA.Run")
	defer span.End()

	seed := ResolveSeed(g.config.Seed)
	rng := rand.New(rand.NewSource(seed))

	workers := 1
	if g.config.ParallelExecution {
		workers = g.config.Workers
		if workers == 0 {
			workers = runtime.NumCPU()
		}
	}
	logger.Info("Starting evolution",
		"populationSize", g.config.PopulationSize,
		"generations", g.config.Generations,
		"selectionRatio", g.config.SelectionRatio,
		"mutationProbability", g.config.MutationProbability,
		"mutationStrategy", g.mutator.Strategy,
		"elitism", g.config.Elitism,
		"repeatLimit", g.config.RepeatLimit,
		"workers", workers,
		"seed", seed)

	result := &Result{Seed: seed}

	start := g.clock.Now()
	population, err := g.initialPopulation()
	result.Timings.Populate = g.clock.Since(start)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if g.observer != nil {
		g.observer.ObservePhases(PhaseTimings{Populate: result.Timings.Populate})
	}

	stats := g.generationStats(0, population)
	lastBest := stats.Best
	logger.Info("Initial population", "feasible", stats.Feasible, "unique", stats.Unique, "best", stats.Best)

	stagnation := 0
	for gen := 0; gen < g.config.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			g.finish(result, population)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}

		genCtx, genSpan := otel.Tracer(tracerName).Start(ctx, "GA.Generation",
			trace.WithAttributes(attribute.Int("generation", gen+1)))
		next, timings, err := g.nextGeneration(genCtx, rng, population, workers)
		genSpan.End()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		result.Timings.add(timings)
		population = next

		stats = g.generationStats(gen+1, population)
		result.GenerationsRun = gen + 1
		result.LastGeneration = gen + 1

		stop := false
		if stats.Best == lastBest {
			stagnation++
			if g.config.RepeatLimit > 0 && stagnation == g.config.RepeatLimit {
				result.LastGeneration = gen + 1 - g.config.RepeatLimit
				result.Stagnated = true
				stop = true
			}
		} else {
			lastBest = stats.Best
			stagnation = 0
		}
		stats.Stagnation = stagnation
		result.History = append(result.History, stats)

		if g.observer != nil {
			g.observer.ObserveGeneration(stats)
			g.observer.ObservePhases(timings)
		}
		logger.V(2).Info("Generation complete",
			"generation", gen+1,
			"size", stats.Size,
			"best", stats.Best,
			"feasible", stats.Feasible,
			"unique", stats.Unique,
			"stagnation", stagnation)

		if stop {
			logger.Info("Stopped improving", "lastImprovingGeneration", result.LastGeneration, "repeatLimit", g.config.RepeatLimit)
			break
		}
	}

	g.finish(result, population)
	span.SetAttributes(
		attribute.Int("generations", result.GenerationsRun),
		attribute.String("fitness", result.Fitness.String()),
	)
	logger.Info("Evolution complete",
		"generationsRun", result.GenerationsRun,
		"lastGeneration", result.LastGeneration,
		"fitness", result.Fitness,
		"elapsed", result.Timings.Total())
	return result, nil
}

// finish stores the best individual of the population in the result.
func (g *GA) finish(result *Result, population []framework.Partition) {
	idx, fitness, err := TournamentIndex(population, g.evaluator)
	if err != nil {
		return
	}
	result.Best = population[idx].Clone()
	result.Fitness = fitness
}

// initialPopulation pulls the seed batch and rejects it unless every
// partition is valid and the batch has the configured size.
func (g *GA) initialPopulation() ([]framework.Partition, error) {
	population, err := g.seeder.Generate(g.config.PopulationSize)
	if err != nil {
		return nil, fmt.Errorf("generating initial population: %w", err)
	}
	if len(population) != g.config.PopulationSize {
		return nil, fmt.Errorf("%w: got %d partitions, want %d", ErrSeedContract, len(population), g.config.PopulationSize)
	}
	n := g.instance.Graph.N()
	for i, p := range population {
		if err := p.Validate(n); err != nil {
			return nil, fmt.Errorf("%w: individual %d: %v", ErrSeedContract, i, err)
		}
	}
	return population, nil
}

// nextGeneration builds the replacement population. Children come in pairs,
// so the result holds PopulationSize or PopulationSize+1 individuals.
//
// Each pair slot draws its own RNG seed from rng before any work starts;
// sequential and parallel execution therefore produce the same population.
func (g *GA) nextGeneration(ctx context.Context, rng *rand.Rand, population []framework.Partition, workers int) ([]framework.Partition, PhaseTimings, error) {
	logger := klog.FromContext(ctx)
	var timings PhaseTimings

	next := make([]framework.Partition, 0, g.config.PopulationSize+1)
	if g.config.Elitism {
		start := g.clock.Now()
		idx, _, err := TournamentIndex(population, g.evaluator)
		timings.Tournament += g.clock.Since(start)
		if err != nil {
			return nil, timings, err
		}
		next = append(next, population[idx].Clone())
	}

	pairs := 0
	if missing := g.config.PopulationSize - len(next); missing > 0 {
		pairs = (missing + 1) / 2
	}
	k := g.config.SelectionSize(len(population))

	seeds := make([]uint64, pairs)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}
	children := make([]framework.Partition, 2*pairs)
	pairTimings := make([]PhaseTimings, pairs)
	errs := make([]error, pairs)

	breed := func(i int) {
		pairRng := rand.New(rand.NewSource(seeds[i]))
		errs[i] = g.breedPair(pairRng, population, k, children[2*i:2*i+2], &pairTimings[i])
	}

	if workers > 1 && pairs > 1 {
		workChan := make(chan int, pairs)
		wg := &sync.WaitGroup{}
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range workChan {
					breed(i)
				}
			}()
		}
		for i := 0; i < pairs; i++ {
			workChan <- i
		}
		close(workChan)
		wg.Wait()
	} else {
		for i := 0; i < pairs; i++ {
			breed(i)
		}
	}

	for i := range pairTimings {
		timings.add(pairTimings[i])
	}
	if err := errors.Join(errs...); err != nil {
		return nil, timings, err
	}

	logger.V(4).Info("Bred offspring", "pairs", pairs, "selectionSize", k)
	return append(next, children...), timings, nil
}

// breedPair runs one pipeline iteration and writes two children into out.
func (g *GA) breedPair(rng *rand.Rand, population []framework.Partition, k int, out []framework.Partition, timings *PhaseTimings) error {
	start := g.clock.Now()
	selected, err := Select(rng, population, k, g.evaluator)
	timings.Selection += g.clock.Since(start)
	if err != nil {
		return err
	}

	start = g.clock.Now()
	i1, _, err := TournamentIndex(selected, g.evaluator)
	if err != nil {
		return err
	}
	rest := make([]framework.Partition, 0, len(selected)-1)
	rest = append(rest, selected[:i1]...)
	rest = append(rest, selected[i1+1:]...)
	i2, _, err := TournamentIndex(rest, g.evaluator)
	timings.Tournament += g.clock.Since(start)
	if err != nil {
		return fmt.Errorf("second tournament: %w", err)
	}
	p1, p2 := selected[i1], rest[i2]

	start = g.clock.Now()
	o1, o2 := g.crossover(rng, p1, p2)
	timings.Crossover += g.clock.Since(start)

	start = g.clock.Now()
	out[0] = g.mutator.Mutate(rng, o1)
	out[1] = g.mutator.Mutate(rng, o2)
	timings.Mutation += g.clock.Since(start)
	return nil
}

// generationStats evaluates every individual once and derives the best
// fitness (first wins on ties), the feasible count and the unique count.
func (g *GA) generationStats(generation int, population []framework.Partition) GenerationStats {
	stats := GenerationStats{Generation: generation, Size: len(population), Best: framework.Infeasible}
	unique := make(map[string]bool, len(population))
	for i, p := range population {
		f := g.evaluator.Evaluate(p)
		if i == 0 || f.Less(stats.Best) {
			stats.Best = f
		}
		if f.IsFeasible() {
			stats.Feasible++
		}
		unique[p.Key()] = true
	}
	stats.Unique = len(unique)
	return stats
}
