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

package v1alpha1

import (
	"math"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateGAConfiguration checks a defaulted configuration and reports
// every problem at once.
func ValidateGAConfiguration(cfg *GAConfiguration) error {
	var errs field.ErrorList

	if cfg.APIVersion != "" && cfg.APIVersion != APIVersion {
		errs = append(errs, field.Invalid(field.NewPath("apiVersion"), cfg.APIVersion, "must be "+APIVersion))
	}
	if cfg.Kind != "" && cfg.Kind != Kind {
		errs = append(errs, field.Invalid(field.NewPath("kind"), cfg.Kind, "must be "+Kind))
	}
	if cfg.Generations == nil || *cfg.Generations < 0 {
		errs = append(errs, field.Invalid(field.NewPath("generations"), cfg.Generations, "must be set and non-negative"))
	}
	if cfg.PopulationSize < 2 {
		errs = append(errs, field.Invalid(field.NewPath("populationSize"), cfg.PopulationSize, "must be at least 2"))
	}
	if cfg.SelectionRatio <= 0 || cfg.SelectionRatio > 1 {
		errs = append(errs, field.Invalid(field.NewPath("selectionRatio"), cfg.SelectionRatio, "must be in (0, 1]"))
	} else if k := int(math.Floor(cfg.SelectionRatio * float64(cfg.PopulationSize))); k < 2 {
		errs = append(errs, field.Invalid(field.NewPath("selectionRatio"), cfg.SelectionRatio,
			"selectionRatio * populationSize must select at least 2 individuals"))
	}
	if p := cfg.MutationProbability; p != nil && (*p < 0 || *p > 1) {
		errs = append(errs, field.Invalid(field.NewPath("mutationProbability"), *p, "must be in [0, 1]"))
	}
	switch cfg.MutationStrategy {
	case "", "best", "random":
	default:
		errs = append(errs, field.NotSupported(field.NewPath("mutationStrategy"), cfg.MutationStrategy, []string{"best", "random"}))
	}
	if r := cfg.RepeatLimit; r != nil && *r < 0 {
		errs = append(errs, field.Invalid(field.NewPath("repeatLimit"), *r, "must be non-negative"))
	}
	if cfg.Workers < 0 {
		errs = append(errs, field.Invalid(field.NewPath("workers"), cfg.Workers, "must be non-negative"))
	}

	seeding := field.NewPath("seeding")
	if cfg.Seeding.MinWeight < 0 {
		errs = append(errs, field.Invalid(seeding.Child("minWeight"), cfg.Seeding.MinWeight, "must be non-negative"))
	}
	if cfg.Seeding.MinWeight > cfg.Seeding.MaxWeight {
		errs = append(errs, field.Invalid(seeding.Child("maxWeight"), cfg.Seeding.MaxWeight, "must not be below minWeight"))
	}
	if r := cfg.Seeding.MinClusterRatio; r < 0 || r > 1 {
		errs = append(errs, field.Invalid(seeding.Child("minClusterRatio"), r, "must be in [0, 1]"))
	}

	return errs.ToAggregate()
}
