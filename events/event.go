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
	"slices"
	"time"
)

// AbsentID marks a missing user or repo identifier
const AbsentID = ""

type EventType string

const (
	PullRequestEvent              EventType = "PullRequestEvent"
	PushEvent                     EventType = "PushEvent"
	IssuesEvent                   EventType = "IssuesEvent"
	IssueCommentEvent             EventType = "IssueCommentEvent"
	PullRequestReviewComment      EventType = "PullRequestReviewComment"
	PullRequestReviewCommentEvent EventType = "PullRequestReviewCommentEvent"
	CommitCommentEvent            EventType = "CommitCommentEvent"
	CreateEvent                   EventType = "CreateEvent"
	DeleteEvent                   EventType = "DeleteEvent"
	WatchEvent                    EventType = "WatchEvent"
	ForkEvent                     EventType = "ForkEvent"
	MemberEvent                   EventType = "MemberEvent"
	PublicEvent                   EventType = "PublicEvent"
	ReleaseEvent                  EventType = "ReleaseEvent"
	GollumEvent                   EventType = "GollumEvent"
)

var knownEventTypes = []EventType{
	PullRequestEvent,
	PushEvent,
	IssuesEvent,
	IssueCommentEvent,
	PullRequestReviewComment,
	PullRequestReviewCommentEvent,
	CommitCommentEvent,
	CreateEvent,
	DeleteEvent,
	WatchEvent,
	ForkEvent,
	MemberEvent,
	PublicEvent,
	ReleaseEvent,
	GollumEvent,
}

// ContributionEvents are the events changing a repository content
// or its issue/PR discussion.
var ContributionEvents = []EventType{
	PullRequestEvent,
	PushEvent,
	IssuesEvent,
	IssueCommentEvent,
	PullRequestReviewComment,
	CommitCommentEvent,
	CreateEvent,
}

// PopularityEvents express interest in a repository without contributing to it.
var PopularityEvents = []EventType{WatchEvent, ForkEvent}

func (et EventType) IsKnown() bool {
	return slices.Contains(knownEventTypes, et)
}

func (et EventType) String() string {
	return string(et)
}

// TypeNames converts event types to plain strings as needed by filters.
func TypeNames(types ...EventType) []string {
	ans := make([]string, len(types))
	for i, t := range types {
		ans[i] = string(t)
	}
	return ans
}

// ----------------------------

// Field identifies one of the four columns of an event record.
// The names match the column names used by measurement filters.
type Field string

const (
	FieldTime  Field = "time"
	FieldEvent Field = "event"
	FieldUser  Field = "user"
	FieldRepo  Field = "repo"
)

func (f Field) Validate() error {
	switch f {
	case FieldTime, FieldEvent, FieldUser, FieldRepo:
		return nil
	}
	return fmt.Errorf("unknown event field '%s'", f)
}

// ----------------------------

// Event is a single (timestamp, event type, user, repo) record.
type Event struct {
	Time time.Time
	Type EventType
	User string
	Repo string
}

// Value returns the textual value of the field as used for filtering.
// The time field is rendered in RFC 3339.
func (ev Event) Value(f Field) string {
	switch f {
	case FieldTime:
		return ev.Time.Format(time.RFC3339)
	case FieldEvent:
		return string(ev.Type)
	case FieldUser:
		return ev.User
	case FieldRepo:
		return ev.Repo
	}
	return ""
}

// Day returns the UTC calendar day the event happened on.
func (ev Event) Day() time.Time {
	t := ev.Time.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
