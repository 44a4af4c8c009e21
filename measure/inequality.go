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

package measure

import (
	"fmt"

	"github.com/SocialSim/socialsim/events"
)

// Gini measures the Gini coefficient of activity among nodes
// identified by the Node field (user or repo).
type Gini struct {
	Node events.Field
}

func (m Gini) Name() string {
	return fmt.Sprintf("gini_coef(node=%s)", m.Node)
}

func (m Gini) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	counts := data.CountBy(m.Node)
	if len(counts) == 0 {
		return nil, fmt.Errorf("no identified %s found: %w", m.Node, ErrNoData)
	}
	return Scalar(gini(sortedCounts(counts))), nil
}

// ----------------------------

// Palma measures the Palma ratio of activity among nodes
// identified by the Node field (user or repo).
type Palma struct {
	Node events.Field
}

func (m Palma) Name() string {
	return fmt.Sprintf("palma_coef(node=%s)", m.Node)
}

func (m Palma) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	counts := data.CountBy(m.Node)
	if len(counts) == 0 {
		return nil, fmt.Errorf("no identified %s found: %w", m.Node, ErrNoData)
	}
	v, err := palma(sortedCounts(counts))
	if err != nil {
		return nil, err
	}
	return Scalar(v), nil
}
