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
	"gonum.org/v1/gonum/stat"
)

// RMSE is the root mean square error between aligned values.
// With the outer join, keys missing on one side count as zero.
type RMSE struct {
	Join Join
}

func (m RMSE) Name() string {
	if m.Join == JoinOuter {
		return "rmse(join=outer)"
	}
	return "rmse"
}

func (m RMSE) Compare(gt, sim measure.Result) (any, error) {
	if err := m.Join.Validate(); err != nil {
		return nil, err
	}
	x, y, err := aligned(gt, sim, m.Join)
	if err != nil {
		return nil, err
	}
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(x))), nil
}

// ----------------------------

// R2 is the coefficient of determination of the simulation values
// as estimates of the ground truth values (inner join). It is NaN
// when the ground truth values have no variance.
type R2 struct{}

func (m R2) Name() string {
	return "r2"
}

func (m R2) Compare(gt, sim measure.Result) (any, error) {
	x, y, err := aligned(gt, sim, JoinInner)
	if err != nil {
		return nil, err
	}
	if stat.Variance(x, nil) == 0 || len(x) < 2 {
		return math.NaN(), nil
	}
	return stat.RSquaredFrom(y, x, nil), nil
}

// ----------------------------

// AbsoluteDifference compares two scalar results.
type AbsoluteDifference struct{}

func (m AbsoluteDifference) Name() string {
	return "absolute_difference"
}

func (m AbsoluteDifference) Compare(gt, sim measure.Result) (any, error) {
	if err := checkPair(gt, sim); err != nil {
		return nil, err
	}
	x, ok := gt.(measure.Scalar)
	if !ok {
		return nil, fmt.Errorf("%s: %w", gt.Kind(), ErrUnsupportedResult)
	}
	return math.Abs(float64(x) - float64(sim.(measure.Scalar))), nil
}
