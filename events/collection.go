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

package events

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Filter maps a record field to the set of allowed values.
// Fields are combined with logical AND.
type Filter map[Field][]string

// Fields returns filtered fields in a stable (sorted) order.
func (filter Filter) Fields() []Field {
	return slices.Sorted(maps.Keys(filter))
}

func (filter Filter) Clone() Filter {
	if filter == nil {
		return nil
	}
	ans := make(Filter, len(filter))
	for k, v := range filter {
		ans[k] = slices.Clone(v)
	}
	return ans
}

func (filter Filter) Validate() error {
	for k := range filter {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}
	return nil
}

func (filter Filter) String() string {
	chunks := make([]string, 0, len(filter))
	for _, f := range filter.Fields() {
		chunks = append(chunks, fmt.Sprintf("%s: [%s]", f, strings.Join(filter[f], ", ")))
	}
	return "{" + strings.Join(chunks, "; ") + "}"
}

// NodeFilter creates a filter selecting a single user or repo.
func NodeFilter(f Field, nodeID string) Filter {
	return Filter{f: {nodeID}}
}

// ----------------------------

// Collection is an ordered multiset of events. Operations on a collection
// never modify the records of the original collection.
type Collection []Event

func (coll Collection) Len() int {
	return len(coll)
}

func (coll Collection) IsEmpty() bool {
	return len(coll) == 0
}

// Filter returns a new collection containing records matching
// all the filter's fields. An empty allowed-values list matches nothing,
// an empty filter matches everything.
func (coll Collection) Filter(filter Filter) Collection {
	ans := slices.Clone(coll)
	if ans == nil {
		ans = Collection{}
	}
	for _, field := range filter.Fields() {
		allowed := make(map[string]struct{}, len(filter[field]))
		for _, v := range filter[field] {
			allowed[v] = struct{}{}
		}
		ans = ans.Where(func(ev Event) bool {
			_, ok := allowed[ev.Value(field)]
			return ok
		})
	}
	return ans
}

// Where returns a new collection with records satisfying the predicate.
func (coll Collection) Where(pred func(Event) bool) Collection {
	ans := make(Collection, 0, len(coll)/2+1)
	for _, ev := range coll {
		if pred(ev) {
			ans = append(ans, ev)
		}
	}
	return ans
}

// CountBy counts records by the value of the provided field. Records with
// an absent value are skipped.
func (coll Collection) CountBy(f Field) map[string]int {
	ans := make(map[string]int)
	for _, ev := range coll {
		v := ev.Value(f)
		if v == AbsentID {
			continue
		}
		ans[v]++
	}
	return ans
}

// FirstSeen returns, for each distinct non-absent value of the field,
// the index of the first record carrying it.
func (coll Collection) FirstSeen(f Field) map[string]int {
	ans := make(map[string]int)
	for i, ev := range coll {
		v := ev.Value(f)
		if v == AbsentID {
			continue
		}
		if _, ok := ans[v]; !ok {
			ans[v] = i
		}
	}
	return ans
}
