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
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

// SetDefaults_GAConfiguration fills unset fields with the parameters of the
// reference experiments.
func SetDefaults_GAConfiguration(obj *GAConfiguration) {
	klog.V(5).InfoS("Setting configuration defaults", "kind", Kind)

	if obj.APIVersion == "" {
		obj.APIVersion = APIVersion
	}
	if obj.Kind == "" {
		obj.Kind = Kind
	}
	if obj.Generations == nil {
		obj.Generations = ptr.To[int32](120)
	}
	if obj.PopulationSize == 0 {
		obj.PopulationSize = 300
	}
	if obj.SelectionRatio == 0 {
		obj.SelectionRatio = 0.2
	}
	if obj.MutationProbability == nil {
		obj.MutationProbability = ptr.To(0.25)
	}
	if obj.MutationStrategy == "" {
		obj.MutationStrategy = "best"
	}
	if obj.RepeatLimit == nil {
		obj.RepeatLimit = ptr.To[int32](3)
	}
	if obj.Seeding.MinWeight == 0 && obj.Seeding.MaxWeight == 0 {
		obj.Seeding.MinWeight = 1
		obj.Seeding.MaxWeight = 25
	}
	if obj.Seeding.MinClusterRatio == 0 {
		obj.Seeding.MinClusterRatio = 0.7
	}
}
