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
	"slices"
	"strings"
	"time"

	"github.com/SocialSim/socialsim/events"
)

// RepoDiffusionDelay measures hours elapsed between a repo creation
// and each subsequent event of the specified types. The creation time
// is the time of the first CreateEvent of the repo, or its first
// event if there is no CreateEvent.
type RepoDiffusionDelay struct {
	EventTypes []events.EventType
}

func (m RepoDiffusionDelay) Name() string {
	return fmt.Sprintf(
		"repo_diffusion_delay(events=%s)",
		strings.Join(events.TypeNames(m.EventTypes...), "|"),
	)
}

func (m RepoDiffusionDelay) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	created := make(map[string]time.Time)
	firstEvent := make(map[string]time.Time)
	for _, ev := range data {
		if ev.Repo == events.AbsentID {
			continue
		}
		if t, ok := firstEvent[ev.Repo]; !ok || ev.Time.Before(t) {
			firstEvent[ev.Repo] = ev.Time
		}
		if ev.Type == events.CreateEvent {
			if t, ok := created[ev.Repo]; !ok || ev.Time.Before(t) {
				created[ev.Repo] = ev.Time
			}
		}
	}
	for repo, t := range firstEvent {
		if _, ok := created[repo]; !ok {
			created[repo] = t
		}
	}
	ans := make(Sample, 0, len(data))
	for _, ev := range data {
		if ev.Repo == events.AbsentID || !slices.Contains(m.EventTypes, ev.Type) {
			continue
		}
		ans = append(ans, hoursBetween(created[ev.Repo], ev.Time))
	}
	if len(ans) == 0 {
		return nil, fmt.Errorf("no events of types %v: %w", m.EventTypes, ErrNoData)
	}
	return ans, nil
}

// ----------------------------

// RepoGrowth measures daily number of events (typically of a single repo).
type RepoGrowth struct{}

func (m RepoGrowth) Name() string {
	return "repo_growth"
}

func (m RepoGrowth) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	perDay := make(map[time.Time]float64)
	for _, ev := range data {
		perDay[ev.Day()]++
	}
	return dailySeries(perDay), nil
}

// ----------------------------

// RepoContributors measures daily number of distinct contributing users.
type RepoContributors struct{}

func (m RepoContributors) Name() string {
	return "repo_contributors"
}

func (m RepoContributors) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	users := make(map[time.Time]map[string]struct{})
	for _, ev := range data {
		d := ev.Day()
		if _, ok := users[d]; !ok {
			users[d] = make(map[string]struct{})
		}
		if ev.User != events.AbsentID {
			users[d][ev.User] = struct{}{}
		}
	}
	perDay := make(map[time.Time]float64, len(users))
	for d, us := range users {
		perDay[d] = float64(len(us))
	}
	return dailySeries(perDay), nil
}

// ----------------------------

// EventDistribution measures the number of events per day or,
// with Weekday set, per day of week.
type EventDistribution struct {
	Weekday bool
}

func (m EventDistribution) Name() string {
	if m.Weekday {
		return "event_distribution(by=weekday)"
	}
	return "event_distribution(by=day)"
}

func (m EventDistribution) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	ans := make(Distribution)
	for _, ev := range data {
		if m.Weekday {
			ans[ev.Time.UTC().Weekday().String()]++

		} else {
			ans[ev.Day().Format(time.DateOnly)]++
		}
	}
	return ans, nil
}

// ----------------------------

// EventsByRepo measures the number of events of a given type per repo.
type EventsByRepo struct {
	EventType events.EventType
}

func (m EventsByRepo) Name() string {
	return fmt.Sprintf("events_by_repo(event=%s)", m.EventType)
}

func (m EventsByRepo) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	selected := data.Filter(events.Filter{events.FieldEvent: {string(m.EventType)}})
	if selected.IsEmpty() {
		return nil, fmt.Errorf("no %s found: %w", m.EventType, ErrNoData)
	}
	return countsToDistribution(selected.CountBy(events.FieldRepo)), nil
}

// ----------------------------

// TopKRepos ranks K repos with the highest number of events
// of a given type.
type TopKRepos struct {
	K         int
	EventType events.EventType
}

func (m TopKRepos) Name() string {
	return fmt.Sprintf("top_k_repos(k=%d,event=%s)", m.K, m.EventType)
}

func (m TopKRepos) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	selected := data.Filter(events.Filter{events.FieldEvent: {string(m.EventType)}})
	if selected.IsEmpty() {
		return nil, fmt.Errorf("no %s found: %w", m.EventType, ErrNoData)
	}
	return topK(selected.CountBy(events.FieldRepo), m.K), nil
}
