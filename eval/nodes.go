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
	"cmp"
	"slices"
	"strings"

	"github.com/SocialSim/socialsim/events"
	"github.com/czcorpus/cnc-gokit/collections"
)

// NodeLists contains explicitly selected nodes for node-level
// measurements. A nil list means the nodes are derived from data.
type NodeLists struct {
	Users []string
	Repos []string
}

func (nl NodeLists) For(nt NodeType) []string {
	if nt == NodeUser {
		return nl.Users
	}
	return nl.Repos
}

// ParseNodeList parses a comma separated list of node ids.
// An empty string produces nil (i.e. nodes derived from data).
func ParseNodeList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	items := strings.Split(v, ",")
	ans := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			ans = append(ans, item)
		}
	}
	return ans
}

type nodeActivity struct {
	median    float64
	firstSeen int
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// TopNodes returns up to n most active nodes of the collection.
// The activity of a node is the median of its per-event-type record
// counts. Nodes with equal activity are ordered by their first
// occurrence in the collection. Absent ids are ignored.
func TopNodes(data events.Collection, nt NodeType, n int) []string {
	field := nt.Field()
	typeCounts := make(map[string]map[events.EventType]int)
	firstSeen := data.FirstSeen(field)
	for _, ev := range data {
		node := ev.Value(field)
		if node == events.AbsentID {
			continue
		}
		if _, ok := typeCounts[node]; !ok {
			typeCounts[node] = make(map[events.EventType]int)
		}
		typeCounts[node][ev.Type]++
	}
	activity := make(map[string]nodeActivity, len(typeCounts))
	for node, counts := range typeCounts {
		values := make([]float64, 0, len(counts))
		for _, c := range counts {
			values = append(values, float64(c))
		}
		activity[node] = nodeActivity{median: median(values), firstSeen: firstSeen[node]}
	}
	entries := collections.MapToEntriesSorted(
		activity,
		func(a, b collections.MapEntry[string, nodeActivity]) int {
			if a.V.median != b.V.median {
				return cmp.Compare(b.V.median, a.V.median)
			}
			return cmp.Compare(a.V.firstSeen, b.V.firstSeen)
		},
	)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	ans := make([]string, len(entries))
	for i, e := range entries {
		ans[i] = e.K
	}
	return ans
}
