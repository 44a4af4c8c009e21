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
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollection() Collection {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return Collection{
		{Time: t0, Type: ForkEvent, User: "u1", Repo: "r1"},
		{Time: t0.Add(time.Hour), Type: WatchEvent, User: "u2", Repo: "r1"},
		{Time: t0.Add(2 * time.Hour), Type: PushEvent, User: "u1", Repo: "r2"},
		{Time: t0.Add(3 * time.Hour), Type: ForkEvent, User: "u3", Repo: AbsentID},
	}
}

func TestFilterKeepsOnlyMatchingRecords(t *testing.T) {
	coll := testCollection()
	filter := Filter{
		FieldEvent: TypeNames(ForkEvent, WatchEvent),
		FieldRepo:  {"r1"},
	}
	ans := coll.Filter(filter)
	assert.Len(t, ans, 2)
	for _, ev := range ans {
		for _, f := range filter.Fields() {
			assert.Contains(t, filter[f], ev.Value(f))
		}
	}
}

func TestFilterEmptyIsIdentity(t *testing.T) {
	coll := testCollection()
	assert.Equal(t, coll, coll.Filter(Filter{}))
	assert.Equal(t, coll, coll.Filter(nil))
}

func TestFilterEmptyAllowedSet(t *testing.T) {
	coll := testCollection()
	ans := coll.Filter(Filter{FieldEvent: {}})
	assert.True(t, ans.IsEmpty())
}

func TestFilterDoesNotModifySource(t *testing.T) {
	coll := testCollection()
	orig := make(Collection, len(coll))
	copy(orig, coll)
	ans := coll.Filter(Filter{FieldUser: {"u1"}})
	ans[0].User = "changed"
	assert.Equal(t, orig, coll)
}

func TestCountByIgnoresAbsent(t *testing.T) {
	counts := testCollection().CountBy(FieldRepo)
	assert.Equal(t, map[string]int{"r1": 2, "r2": 1}, counts)
}

func TestFirstSeen(t *testing.T) {
	first := testCollection().FirstSeen(FieldUser)
	assert.Equal(t, map[string]int{"u1": 0, "u2": 1, "u3": 3}, first)
}

func TestFilterString(t *testing.T) {
	f := Filter{FieldRepo: {"r1"}, FieldEvent: {"ForkEvent", "WatchEvent"}}
	assert.Equal(t, "{event: [ForkEvent, WatchEvent]; repo: [r1]}", f.String())
}

func TestReadCSV(t *testing.T) {
	src := "2017-08-17 00:00:01 ,PushEvent,u1,r1\n" +
		"\n" +
		"2017-08-17T02:00:00Z,WatchEvent,None,r2\n" +
		"1503000000,ForkEvent,u2,\n"
	coll, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, coll, 3)
	assert.Equal(t, time.Date(2017, 8, 17, 0, 0, 1, 0, time.UTC), coll[0].Time)
	assert.Equal(t, PushEvent, coll[0].Type)
	assert.Equal(t, AbsentID, coll[1].User)
	assert.Equal(t, "r2", coll[1].Repo)
	assert.Equal(t, AbsentID, coll[2].Repo)
	assert.Equal(t, int64(1503000000), coll[2].Time.Unix())
}

func TestReadCSVInvalidTimestamp(t *testing.T) {
	src := "2017-08-17 00:00:01,PushEvent,u1,r1\nyesterday,PushEvent,u1,r1\n"
	_, err := ReadCSV(strings.NewReader(src))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadCSVWrongNumFields(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("2017-08-17 00:00:01,PushEvent,u1\n"))
	assert.Error(t, err)
}

func TestLoadCSVFixture(t *testing.T) {
	coll, err := LoadCSV(filepath.Join("..", "testdata", "gt_events.csv"))
	require.NoError(t, err)
	assert.Len(t, coll, 12)
	assert.Equal(t, AbsentID, coll[10].Repo)
	assert.Equal(t, AbsentID, coll[11].User)
}

func TestLoadCSVGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("2017-08-17 00:00:01,ForkEvent,u1,r1\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	coll, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, coll, 1)
	assert.Equal(t, ForkEvent, coll[0].Type)
}
