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
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Load reads a configuration file, applies defaults and validates it.
// Unknown fields are rejected.
func Load(path string) (*GAConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode is Load for in-memory YAML or JSON.
func Decode(data []byte) (*GAConfiguration, error) {
	cfg := &GAConfiguration{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", Kind, err)
	}
	SetDefaults_GAConfiguration(cfg)
	if err := ValidateGAConfiguration(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a defaulted configuration.
func Default() *GAConfiguration {
	cfg := &GAConfiguration{}
	SetDefaults_GAConfiguration(cfg)
	return cfg
}
