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
	"github.com/SocialSim/socialsim/events"
	"github.com/SocialSim/socialsim/measure"
	"github.com/SocialSim/socialsim/metrics"
)

const (
	dfltTopK      = 5000
	dfltRBOPersis = 0.95
)

type MeasurementName string

const (
	NameUserUniqueRepos          MeasurementName = "user_unique_repos"
	NameUserActivityTimeline     MeasurementName = "user_activity_timeline"
	NameUserActivityDistribution MeasurementName = "user_activity_distribution"
	NameMostActiveUsers          MeasurementName = "most_active_users"
	NameUserPopularity           MeasurementName = "user_popularity"
	NameUserGiniCoef             MeasurementName = "user_gini_coef"
	NameUserPalmaCoef            MeasurementName = "user_palma_coef"
	NameUserDiffusionDelay       MeasurementName = "user_diffusion_delay"

	NameRepoDiffusionDelay             MeasurementName = "repo_diffusion_delay"
	NameRepoGrowth                     MeasurementName = "repo_growth"
	NameRepoContributors               MeasurementName = "repo_contributors"
	NameRepoEventDistributionDaily     MeasurementName = "repo_event_distribution_daily"
	NameRepoEventDistributionDayOfWeek MeasurementName = "repo_event_distribution_dayofweek"
	NameRepoPopularityDistribution     MeasurementName = "repo_popularity_distribution"
	NameRepoPopularityTopK             MeasurementName = "repo_popularity_topk"
	NameRepoLivelinessDistribution     MeasurementName = "repo_liveliness_distribution"
	NameRepoLivelinessTopK             MeasurementName = "repo_liveliness_topk"
	NameRepoDisparityGiniFork          MeasurementName = "repo_activity_disparity_gini_fork"
	NameRepoDisparityPalmaFork         MeasurementName = "repo_activity_disparity_palma_fork"
	NameRepoDisparityGiniPush          MeasurementName = "repo_activity_disparity_gini_push"
	NameRepoDisparityPalmaPush         MeasurementName = "repo_activity_disparity_palma_push"
	NameRepoDisparityGiniPullRequest   MeasurementName = "repo_activity_disparity_gini_pullrequest"
	NameRepoDisparityPalmaPullRequest  MeasurementName = "repo_activity_disparity_palma_pullrequest"
	NameRepoDisparityGiniIssue         MeasurementName = "repo_activity_disparity_gini_issue"
	NameRepoDisparityPalmaIssue        MeasurementName = "repo_activity_disparity_palma_issue"
)

func eventFilter(types ...events.EventType) events.Filter {
	return events.Filter{events.FieldEvent: events.TypeNames(types...)}
}

func withCreate(types []events.EventType) []events.EventType {
	ans := make([]events.EventType, 0, len(types)+1)
	ans = append(ans, types...)
	return append(ans, events.CreateEvent)
}

func repoDisparity(
	name MeasurementName,
	inequality string,
	evType events.EventType,
	m measure.Measurement,
) Descriptor {
	return Descriptor{
		Name:        name,
		Question:    "14",
		Query:       "How much disparity is there in activity levels across repos?",
		Quantify:    inequality + " for " + string(evType),
		Phenomena:   "Cascade, Persistent minorities",
		Scale:       ScalePopulation,
		NodeType:    NodeRepo,
		Filters:     eventFilter(evType),
		Measurement: m,
		Metrics: []NamedMetric{
			{Name: "absolute_difference", Metric: metrics.AbsoluteDifference{}},
		},
	}
}

// DefaultDescriptors returns the standard battery of GitHub measurements.
func DefaultDescriptors() []Descriptor {
	repoGini := measure.Gini{Node: events.FieldRepo}
	repoPalma := measure.Palma{Node: events.FieldRepo}
	return []Descriptor{
		// user centric measurements
		{
			Name:        NameUserUniqueRepos,
			Question:    "17",
			Query:       "Do users contribute across many repos?",
			Quantify:    "Number of unique repos that a particular set of users contributed too",
			Phenomena:   "Persistent minorities",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.UserUniqueRepos{},
			Metrics: []NamedMetric{
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: false}},
				{Name: "rmse", Metric: metrics.RMSE{}},
				{Name: "r2", Metric: metrics.R2{}},
			},
		},
		{
			Name:        NameUserActivityTimeline,
			Question:    "19",
			Query:       "Do rockstars provide sustained contributions to repos? Can we measure their volume of activity?",
			Quantify:    "Daily contribution counts of the user over time. Number of unique repos contributed to by day",
			Phenomena:   "Persistent minorities, Evolution",
			Scale:       ScaleNode,
			NodeType:    NodeUser,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.UserActivityTimeline{},
			Metrics: []NamedMetric{
				{Name: "rmse", Metric: metrics.RMSE{}},
				{Name: "ks_test", Metric: metrics.KSTest{}},
				{Name: "dtw", Metric: metrics.DTW{}},
			},
		},
		{
			Name:        NameUserActivityDistribution,
			Question:    "24a",
			Query:       "What are the basic characteristics of developers' population?",
			Quantify:    "Distribution over user activity for all users.",
			Phenomena:   "Cascade",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Measurement: measure.UserActivityDistribution{},
			Metrics: []NamedMetric{
				{Name: "rmse", Metric: metrics.RMSE{}},
				{Name: "r2", Metric: metrics.R2{}},
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: true}},
			},
		},
		{
			Name:        NameMostActiveUsers,
			Question:    "24b",
			Query:       "What are the basic characteristics of developers' population?",
			Quantify:    "Top K most active users (total number of actions per user)",
			Phenomena:   "Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Measurement: measure.MostActiveUsers{K: dfltTopK},
			Metrics: []NamedMetric{
				{Name: "rbo", Metric: metrics.RBO{P: dfltRBOPersis}},
			},
		},
		{
			Name:        NameUserPopularity,
			Question:    "25",
			Query:       "Which users are the most popular?",
			Quantify:    "Top K most popular users: #forkEvents + #watchEvents across repos that the users own",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Filters:     eventFilter(withCreate(events.PopularityEvents)...),
			Measurement: measure.UserPopularity{K: dfltTopK},
			Metrics: []NamedMetric{
				{Name: "rbo", Metric: metrics.RBO{P: dfltRBOPersis}},
			},
		},
		{
			Name:        NameUserGiniCoef,
			Question:    "26a",
			Query:       "How much disparity is there among users in the activeness of repo contributions?",
			Quantify:    "Gini coefficient for pullRequestEvents, pushEvents and issueEvents",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.Gini{Node: events.FieldUser},
			Metrics: []NamedMetric{
				{Name: "absolute difference", Metric: metrics.AbsoluteDifference{}},
			},
		},
		{
			Name:        NameUserPalmaCoef,
			Question:    "26b",
			Query:       "How much disparity is there among users in the activeness of repo contributions?",
			Quantify:    "Palma ratio for pullRequestEvents, pushEvents and issueEvents",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.Palma{Node: events.FieldUser},
			Metrics: []NamedMetric{
				{Name: "absolute difference", Metric: metrics.AbsoluteDifference{}},
			},
		},
		{
			Name:        NameUserDiffusionDelay,
			Question:    "27",
			Query:       "How soon do users engage with GitHub over time after joining?",
			Quantify:    "Diffusion delay of user actions (excluding Fork and Watch events) since the creation of the user account",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeUser,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.UserDiffusionDelay{},
			Metrics: []NamedMetric{
				{Name: "ks_test", Metric: metrics.KSTest{}},
			},
		},

		// repo centric measurements
		{
			Name:        NameRepoDiffusionDelay,
			Question:    "1",
			Query:       "How long does it take a new repo to become popular?",
			Quantify:    "Distribution over diffusion delays in days/hours for forkEvent and watchEvent (the time between when a repo created and when the subsequent events happen to the repo)",
			Phenomena:   "Cascade",
			Scale:       ScaleNode,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.PopularityEvents...),
			Measurement: measure.RepoDiffusionDelay{EventTypes: events.PopularityEvents},
			Metrics: []NamedMetric{
				{Name: "ks_test", Metric: metrics.KSTest{}},
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: false}},
			},
		},
		{
			Name:        NameRepoGrowth,
			Question:    "2",
			Query:       "How do activity levels on a repo grow and decline over time?",
			Quantify:    "Repo growth: the number of daily contributions to a repo as a function of time",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScaleNode,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.RepoGrowth{},
			Metrics: []NamedMetric{
				{Name: "rmse", Metric: metrics.RMSE{Join: metrics.JoinOuter}},
				{Name: "dtw", Metric: metrics.DTW{}},
			},
		},
		{
			Name:        NameRepoContributors,
			Question:    "4",
			Query:       "How many users contribute to a specific repo?",
			Quantify:    "Number of daily unique contributors to a repo as a function of time. Percent of unique contributors who have already contributed at time t measured in hours",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScaleNode,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.ContributionEvents...),
			Measurement: measure.RepoContributors{},
			Metrics: []NamedMetric{
				{Name: "rmse", Metric: metrics.RMSE{Join: metrics.JoinOuter}},
				{Name: "dtw", Metric: metrics.DTW{}},
			},
		},
		{
			Name:        NameRepoEventDistributionDaily,
			Question:    "5",
			Query:       "What are typical patterns of activity observed for developers on Github?",
			Quantify:    "Distribution of total events daily",
			Phenomena:   "Recurrence",
			Scale:       ScaleNode,
			NodeType:    NodeRepo,
			Measurement: measure.EventDistribution{},
			Metrics: []NamedMetric{
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: true}},
			},
		},
		{
			Name:        NameRepoEventDistributionDayOfWeek,
			Question:    "5",
			Query:       "Recurrence",
			Quantify:    "Distribution of total events by day of week",
			Phenomena:   "Recurrence",
			Scale:       ScaleNode,
			NodeType:    NodeRepo,
			Measurement: measure.EventDistribution{Weekday: true},
			Metrics: []NamedMetric{
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: true}},
			},
		},
		{
			Name:        NameRepoPopularityDistribution,
			Question:    "12a",
			Query:       "What are the most popular repos in the full population?",
			Quantify:    "Distribution of watchEvents across repos.",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.WatchEvent),
			Measurement: measure.EventsByRepo{EventType: events.WatchEvent},
			Metrics: []NamedMetric{
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: false}},
				{Name: "rmse", Metric: metrics.RMSE{}},
				{Name: "r2", Metric: metrics.R2{}},
			},
		},
		{
			Name:        NameRepoPopularityTopK,
			Question:    "12b",
			Query:       "What are the most popular repos in the full population?",
			Quantify:    "Top K of most watched repos.",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.WatchEvent),
			Measurement: measure.TopKRepos{K: dfltTopK, EventType: events.WatchEvent},
			Metrics: []NamedMetric{
				{Name: "rbo", Metric: metrics.RBO{P: dfltRBOPersis}},
			},
		},
		{
			Name:        NameRepoLivelinessDistribution,
			Question:    "13a",
			Query:       "What repos have the highest liveliness?",
			Quantify:    "Distribution of forkEvents across repos",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.ForkEvent),
			Measurement: measure.EventsByRepo{EventType: events.ForkEvent},
			Metrics: []NamedMetric{
				{Name: "js_divergence", Metric: metrics.JSDivergence{Discrete: false}},
				{Name: "rmse", Metric: metrics.RMSE{}},
				{Name: "r2", Metric: metrics.R2{}},
			},
		},
		{
			Name:        NameRepoLivelinessTopK,
			Question:    "13b",
			Query:       "Are they different from the most popular repos?",
			Quantify:    "Top K most forked repos",
			Phenomena:   "Cascade, Evolution",
			Scale:       ScalePopulation,
			NodeType:    NodeRepo,
			Filters:     eventFilter(events.ForkEvent),
			Measurement: measure.TopKRepos{K: dfltTopK, EventType: events.ForkEvent},
			Metrics: []NamedMetric{
				{Name: "rbo", Metric: metrics.RBO{P: dfltRBOPersis}},
			},
		},
		repoDisparity(NameRepoDisparityGiniFork, "Gini coefficient", events.ForkEvent, repoGini),
		repoDisparity(NameRepoDisparityPalmaFork, "Palma ratio", events.ForkEvent, repoPalma),
		repoDisparity(NameRepoDisparityGiniPush, "Gini coefficient", events.PushEvent, repoGini),
		repoDisparity(NameRepoDisparityPalmaPush, "Palma ratio", events.PushEvent, repoPalma),
		repoDisparity(NameRepoDisparityGiniPullRequest, "Gini coefficient", events.PullRequestEvent, repoGini),
		repoDisparity(NameRepoDisparityPalmaPullRequest, "Palma ratio", events.PullRequestEvent, repoPalma),
		repoDisparity(NameRepoDisparityGiniIssue, "Gini coefficient", events.IssuesEvent, repoGini),
		repoDisparity(NameRepoDisparityPalmaIssue, "Palma ratio", events.IssuesEvent, repoPalma),
	}
}

// DefaultRegistry creates a registry of the standard measurement battery.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultDescriptors()...)
	if err != nil {
		panic(err)
	}
	return reg
}
