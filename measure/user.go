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
	"time"

	"github.com/SocialSim/socialsim/events"
)

// UserUniqueRepos measures the number of distinct repos each user
// has been active in.
type UserUniqueRepos struct{}

func (m UserUniqueRepos) Name() string {
	return "user_unique_repos"
}

func (m UserUniqueRepos) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	repos := make(map[string]map[string]struct{})
	for _, ev := range data {
		if ev.User == events.AbsentID || ev.Repo == events.AbsentID {
			continue
		}
		if _, ok := repos[ev.User]; !ok {
			repos[ev.User] = make(map[string]struct{})
		}
		repos[ev.User][ev.Repo] = struct{}{}
	}
	ans := make(Distribution, len(repos))
	for user, rs := range repos {
		ans[user] = float64(len(rs))
	}
	return ans, nil
}

// ----------------------------

// UserActivityTimeline measures daily number of events
// (typically of a single user).
type UserActivityTimeline struct{}

func (m UserActivityTimeline) Name() string {
	return "user_activity_timeline"
}

func (m UserActivityTimeline) Measure(data events.Collection) (Result, error) {
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

// UserActivityDistribution measures the total number of events per user.
type UserActivityDistribution struct{}

func (m UserActivityDistribution) Name() string {
	return "user_activity_distribution"
}

func (m UserActivityDistribution) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	return countsToDistribution(data.CountBy(events.FieldUser)), nil
}

// ----------------------------

// MostActiveUsers ranks K users with the highest number of events.
type MostActiveUsers struct {
	K int
}

func (m MostActiveUsers) Name() string {
	return fmt.Sprintf("most_active_users(k=%d)", m.K)
}

func (m MostActiveUsers) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	return topK(data.CountBy(events.FieldUser), m.K), nil
}

// ----------------------------

// UserPopularity ranks K repo owners by the number of fork and watch
// events their repos received. The owner of a repo is the user who
// performed its first CreateEvent.
type UserPopularity struct {
	K int
}

func (m UserPopularity) Name() string {
	return fmt.Sprintf("user_popularity(k=%d)", m.K)
}

func (m UserPopularity) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	owners := make(map[string]string)
	for _, ev := range data {
		if ev.Type != events.CreateEvent || ev.User == events.AbsentID || ev.Repo == events.AbsentID {
			continue
		}
		if _, ok := owners[ev.Repo]; !ok {
			owners[ev.Repo] = ev.User
		}
	}
	popularity := make(map[string]int)
	for _, owner := range owners {
		popularity[owner] = 0
	}
	for _, ev := range data {
		if ev.Type != events.ForkEvent && ev.Type != events.WatchEvent {
			continue
		}
		if owner, ok := owners[ev.Repo]; ok {
			popularity[owner]++
		}
	}
	return topK(popularity, m.K), nil
}

// ----------------------------

// UserDiffusionDelay measures hours elapsed between each user's event
// and the first event of the same user.
type UserDiffusionDelay struct{}

func (m UserDiffusionDelay) Name() string {
	return "user_diffusion_delay"
}

func (m UserDiffusionDelay) Measure(data events.Collection) (Result, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	firstAct := make(map[string]time.Time)
	for _, ev := range data {
		if ev.User == events.AbsentID {
			continue
		}
		if t, ok := firstAct[ev.User]; !ok || ev.Time.Before(t) {
			firstAct[ev.User] = ev.Time
		}
	}
	ans := make(Sample, 0, len(data))
	for _, ev := range data {
		if ev.User == events.AbsentID {
			continue
		}
		ans = append(ans, hoursBetween(firstAct[ev.User], ev.Time))
	}
	return ans, nil
}
