// Copyright 2025 The SocialSim Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/measure"
	"github.com/SocialSim/socialsim/metrics"
)

var (
	ErrUnknownMeasurement = errors.New("unknown measurement")
	ErrVacuousFilter      = errors.New("filter produced empty data")
	ErrEmptyInput         = errors.New("empty input data")
)

// Scale specifies whether a measurement is evaluated per node
// or once for the whole population.
type Scale string

const (
	ScalePopulation Scale = "population"
	ScaleNode       Scale = "node"
)

func (s Scale) Validate() error {
	if s == ScalePopulation || s == ScaleNode {
		return nil
	}
	return fmt.Errorf("invalid scale '%s'", s)
}

// NodeType specifies the kind of entity a measurement is related to.
type NodeType string

const (
	NodeUser NodeType = "user"
	NodeRepo NodeType = "repo"
)

func (nt NodeType) Validate() error {
	if nt == NodeUser || nt == NodeRepo {
		return nil
	}
	return fmt.Errorf("invalid node type '%s'", nt)
}

// Field returns the event field identifying nodes of the type.
func (nt NodeType) Field() events.Field {
	if nt == NodeUser {
		return events.FieldUser
	}
	return events.FieldRepo
}

// ----------------------------

// NamedMetric binds a metric to the key it is reported under.
type NamedMetric struct {
	Name   string
	Metric metrics.Metric
}

// Descriptor specifies how a measurement is computed and scored.
type Descriptor struct {
	Name MeasurementName

	Question  string
	Query     string
	Quantify  string
	Phenomena string

	Scale    Scale
	NodeType NodeType

	// Filters are applied to both collections before anything else.
	// Nil means no filtering.
	Filters events.Filter

	Measurement measure.Measurement

	// Metrics are evaluated and reported in the order of the slice.
	Metrics []NamedMetric
}

func (desc Descriptor) Validate() error {
	if desc.Name == "" {
		return fmt.Errorf("missing measurement name")
	}
	if err := desc.Scale.Validate(); err != nil {
		return fmt.Errorf("measurement %s: %w", desc.Name, err)
	}
	if err := desc.NodeType.Validate(); err != nil {
		return fmt.Errorf("measurement %s: %w", desc.Name, err)
	}
	if err := desc.Filters.Validate(); err != nil {
		return fmt.Errorf("measurement %s: %w", desc.Name, err)
	}
	if desc.Measurement == nil {
		return fmt.Errorf("measurement %s: no measurement function", desc.Name)
	}
	for _, m := range desc.Metrics {
		if m.Metric == nil || m.Name == "" {
			return fmt.Errorf("measurement %s: invalid metric entry '%s'", desc.Name, m.Name)
		}
	}
	return nil
}

// Clone creates a copy not sharing filters and metrics
// with the original.
func (desc Descriptor) Clone() Descriptor {
	desc.Filters = desc.Filters.Clone()
	desc.Metrics = slices.Clone(desc.Metrics)
	return desc
}

func (desc Descriptor) Metadata() Metadata {
	return Metadata{
		Question:  desc.Question,
		Query:     desc.Query,
		Quantify:  desc.Quantify,
		Phenomena: desc.Phenomena,
		Scale:     desc.Scale,
		NodeType:  desc.NodeType,
		Filters:   desc.Filters.Clone(),
		Metrics:   slices.Clone(desc.Metrics),
	}
}

// ----------------------------

// Selection restricts the set of evaluated measurements.
// A nil field means no restriction.
type Selection struct {
	Scale    *Scale
	NodeType *NodeType
}

func (sel Selection) SetScale(v Scale) Selection {
	sel.Scale = &v
	return sel
}

func (sel Selection) SetNodeType(v NodeType) Selection {
	sel.NodeType = &v
	return sel
}

func (sel Selection) Matches(desc Descriptor) bool {
	return (sel.Scale == nil || *sel.Scale == desc.Scale) &&
		(sel.NodeType == nil || *sel.NodeType == desc.NodeType)
}

// ParseSelection creates a selection from textual arguments.
// Empty arguments mean no restriction.
func ParseSelection(scale, nodeType string) (Selection, error) {
	var ans Selection
	if scale != "" {
		s := Scale(scale)
		if err := s.Validate(); err != nil {
			return ans, err
		}
		ans = ans.SetScale(s)
	}
	if nodeType != "" {
		nt := NodeType(nodeType)
		if err := nt.Validate(); err != nil {
			return ans, err
		}
		ans = ans.SetNodeType(nt)
	}
	return ans, nil
}

// ----------------------------

// Registry is an immutable ordered set of measurement descriptors.
type Registry struct {
	entries []Descriptor
	index   map[MeasurementName]int
}

// NewRegistry creates a registry keeping the order of the provided
// descriptors.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	ans := &Registry{
		entries: make([]Descriptor, 0, len(descs)),
		index:   make(map[MeasurementName]int, len(descs)),
	}
	for _, desc := range descs {
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		if _, ok := ans.index[desc.Name]; ok {
			return nil, fmt.Errorf("failed to create registry: duplicate measurement %s", desc.Name)
		}
		ans.index[desc.Name] = len(ans.entries)
		ans.entries = append(ans.entries, desc.Clone())
	}
	return ans, nil
}

func (reg *Registry) Len() int {
	return len(reg.entries)
}

func (reg *Registry) Get(name MeasurementName) (Descriptor, bool) {
	idx, ok := reg.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return reg.entries[idx].Clone(), true
}

func (reg *Registry) Names() []MeasurementName {
	ans := make([]MeasurementName, len(reg.entries))
	for i, desc := range reg.entries {
		ans[i] = desc.Name
	}
	return ans
}

// Select returns descriptors matching the selection in registry order.
func (reg *Registry) Select(sel Selection) []Descriptor {
	ans := make([]Descriptor, 0, len(reg.entries))
	for _, desc := range reg.entries {
		if sel.Matches(desc) {
			ans = append(ans, desc.Clone())
		}
	}
	return ans
}
