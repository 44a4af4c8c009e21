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
	"math"
	"slices"

	"github.com/SocialSim/socialsim/measure"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	maxHistogramBins = 100
)

// JSDivergence is the Jensen-Shannon divergence (base 2, i.e. within
// [0, 1]) of the value distributions of both results. Discrete variant
// compares frequencies of distinct values, the continuous one compares
// histograms over a shared range.
type JSDivergence struct {
	Discrete bool
}

func (m JSDivergence) Name() string {
	if m.Discrete {
		return "js_divergence(discrete=true)"
	}
	return "js_divergence(discrete=false)"
}

func (m JSDivergence) Compare(gt, sim measure.Result) (any, error) {
	x, y, err := values(gt, sim)
	if err != nil {
		return nil, err
	}
	var p, q []float64
	if m.Discrete {
		p, q = discreteFreqs(x, y)

	} else {
		p, q = histograms(x, y)
	}
	floats.Scale(1/floats.Sum(p), p)
	floats.Scale(1/floats.Sum(q), q)
	return stat.JensenShannon(p, q) / math.Ln2, nil
}

func discreteFreqs(x, y []float64) ([]float64, []float64) {
	support := slices.Concat(x, y)
	slices.Sort(support)
	support = slices.Compact(support)
	p := make([]float64, len(support))
	q := make([]float64, len(support))
	for _, v := range x {
		i, _ := slices.BinarySearch(support, v)
		p[i]++
	}
	for _, v := range y {
		i, _ := slices.BinarySearch(support, v)
		q[i]++
	}
	return p, q
}

func histograms(x, y []float64) ([]float64, []float64) {
	lo := math.Min(floats.Min(x), floats.Min(y))
	hi := math.Max(floats.Max(x), floats.Max(y))
	numBins := int(math.Ceil(math.Sqrt(float64(max(len(x), len(y))))))
	numBins = max(1, min(numBins, maxHistogramBins))
	p := make([]float64, numBins)
	q := make([]float64, numBins)
	bin := func(v float64) int {
		if hi == lo {
			return 0
		}
		return min(int((v-lo)/(hi-lo)*float64(numBins)), numBins-1)
	}
	for _, v := range x {
		p[bin(v)]++
	}
	for _, v := range y {
		q[bin(v)]++
	}
	return p, q
}

// ----------------------------

// KSTest is the two-sample Kolmogorov-Smirnov test. The score contains
// the statistic and its asymptotic p-value.
type KSTest struct{}

func (m KSTest) Name() string {
	return "ks_test"
}

func (m KSTest) Compare(gt, sim measure.Result) (any, error) {
	x, y, err := values(gt, sim)
	if err != nil {
		return nil, err
	}
	slices.Sort(x)
	slices.Sort(y)
	d := stat.KolmogorovSmirnov(x, nil, y, nil)
	return map[string]float64{
		"statistic": d,
		"pvalue":    ksPValue(d, len(x), len(y)),
	}, nil
}

// ksPValue evaluates the Kolmogorov distribution tail for the effective
// sample size of the two samples.
func ksPValue(d float64, n, m int) float64 {
	ne := float64(n*m) / float64(n+m)
	sqrtNe := math.Sqrt(ne)
	lambda := (sqrtNe + 0.12 + 0.11/sqrtNe) * d
	if lambda < 1e-3 {
		return 1
	}
	var sum, sign float64 = 0, 1
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-10 {
			break
		}
		sign = -sign
	}
	return math.Max(0, math.Min(1, 2*sum))
}
