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

package metrics

import (
	"fmt"
	"math"

	"github.com/SocialSim/socialsim/measure"
)

// DTW is the dynamic time warping distance of two value sequences
// with absolute difference as the local cost.
type DTW struct{}

func (m DTW) Name() string {
	return "dtw"
}

func (m DTW) Compare(gt, sim measure.Result) (any, error) {
	x, y, err := values(gt, sim)
	if err != nil {
		return nil, err
	}
	prev := make([]float64, len(y)+1)
	curr := make([]float64, len(y)+1)
	for j := 1; j <= len(y); j++ {
		prev[j] = math.Inf(1)
	}
	for i := 1; i <= len(x); i++ {
		curr[0] = math.Inf(1)
		for j := 1; j <= len(y); j++ {
			cost := math.Abs(x[i-1] - y[j-1])
			curr[j] = cost + math.Min(prev[j-1], math.Min(prev[j], curr[j-1]))
		}
		prev, curr = curr, prev
	}
	return prev[len(y)], nil
}

// ----------------------------

// RBO is the extrapolated rank-biased overlap of two rankings
// evaluated at the depth of the shorter one. P is the persistence
// parameter (weight of deeper ranks).
type RBO struct {
	P float64
}

func (m RBO) Name() string {
	return fmt.Sprintf("rbo(p=%g)", m.P)
}

func (m RBO) Compare(gt, sim measure.Result) (any, error) {
	if err := checkPair(gt, sim); err != nil {
		return nil, err
	}
	s, ok := gt.(measure.Ranking)
	if !ok {
		return nil, fmt.Errorf("%s: %w", gt.Kind(), ErrUnsupportedResult)
	}
	t := sim.(measure.Ranking)
	if m.P <= 0 || m.P >= 1 {
		return nil, fmt.Errorf("rbo persistence must be within (0, 1), got %g", m.P)
	}
	depth := min(len(s), len(t))
	if depth == 0 {
		return nil, ErrEmptyResult
	}
	seenS := make(map[string]struct{}, depth)
	seenT := make(map[string]struct{}, depth)
	var overlap int
	var sum float64
	weight := 1.0
	for d := 1; d <= depth; d++ {
		a, b := s[d-1], t[d-1]
		if a == b {
			overlap++

		} else {
			if _, ok := seenT[a]; ok {
				overlap++
			}
			if _, ok := seenS[b]; ok {
				overlap++
			}
		}
		seenS[a] = struct{}{}
		seenT[b] = struct{}{}
		weight *= m.P
		sum += float64(overlap) / float64(d) * weight
	}
	agreement := float64(overlap) / float64(depth)
	return agreement*weight + (1-m.P)/m.P*sum, nil
}
