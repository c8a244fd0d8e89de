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

// Package metrics exposes GA progress as Prometheus metrics.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
)

const namespace = "gapartition"

// Recorder implements algorithms.Observer on top of Prometheus collectors.
// All metrics carry a constant "instance" label.
type Recorder struct {
	generations  prometheus.Counter
	bestFitness  prometheus.Gauge
	feasible     prometheus.Gauge
	unique       prometheus.Gauge
	stagnation   prometheus.Gauge
	phaseSeconds *prometheus.CounterVec
	runs         *prometheus.CounterVec
}

var _ algorithms.Observer = &Recorder{}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer, instanceName string) (*Recorder, error) {
	labels := prometheus.Labels{"instance": instanceName}
	r := &Recorder{
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "generations_total",
			Help:        "Number of generations evolved.",
			ConstLabels: labels,
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "best_fitness_clusters",
			Help:        "Cluster count of the best individual in the current population, +Inf when none is feasible.",
			ConstLabels: labels,
		}),
		feasible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "population_feasible",
			Help:        "Feasible individuals in the current population.",
			ConstLabels: labels,
		}),
		unique: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "population_unique",
			Help:        "Distinct individuals in the current population.",
			ConstLabels: labels,
		}),
		stagnation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "stagnation_generations",
			Help:        "Consecutive generations without improvement of the best fitness.",
			ConstLabels: labels,
		}),
		phaseSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "phase_seconds_total",
			Help:        "Time spent in each phase of the generational pipeline.",
			ConstLabels: labels,
		}, []string{"phase"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "runs_total",
			Help:        "Completed runs by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		r.generations, r.bestFitness, r.feasible, r.unique, r.stagnation, r.phaseSeconds, r.runs,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveGeneration updates the population gauges.
func (r *Recorder) ObserveGeneration(stats algorithms.GenerationStats) {
	r.generations.Inc()
	if clusters, ok := stats.Best.Clusters(); ok {
		r.bestFitness.Set(float64(clusters))
	} else {
		r.bestFitness.Set(math.Inf(1))
	}
	r.feasible.Set(float64(stats.Feasible))
	r.unique.Set(float64(stats.Unique))
	r.stagnation.Set(float64(stats.Stagnation))
}

// ObservePhases adds phase durations.
func (r *Recorder) ObservePhases(t algorithms.PhaseTimings) {
	r.phaseSeconds.WithLabelValues(string(algorithms.PhasePopulate)).Add(t.Populate.Seconds())
	r.phaseSeconds.WithLabelValues(string(algorithms.PhaseSelection)).Add(t.Selection.Seconds())
	r.phaseSeconds.WithLabelValues(string(algorithms.PhaseTournament)).Add(t.Tournament.Seconds())
	r.phaseSeconds.WithLabelValues(string(algorithms.PhaseCrossover)).Add(t.Crossover.Seconds())
	r.phaseSeconds.WithLabelValues(string(algorithms.PhaseMutation)).Add(t.Mutation.Seconds())
}

// RecordRun counts a finished run: "error", "stagnated", "feasible" or
// "infeasible".
func (r *Recorder) RecordRun(result *algorithms.Result, err error) {
	switch {
	case err != nil:
		r.runs.WithLabelValues("error").Inc()
	case result.Stagnated:
		r.runs.WithLabelValues("stagnated").Inc()
	case result.Fitness.IsFeasible():
		r.runs.WithLabelValues("feasible").Inc()
	default:
		r.runs.WithLabelValues("infeasible").Inc()
	}
}
