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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	numFields = 4
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

var absentTokens = []string{"", "None", "nan", "NaN", "null"}

func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format '%s'", v)
}

func parseID(v string) string {
	v = strings.TrimSpace(v)
	for _, t := range absentTokens {
		if v == t {
			return AbsentID
		}
	}
	return v
}

// ReadCSV reads headerless four-column event records
// (timestamp, event type, user, repo).
func ReadCSV(src io.Reader) (Collection, error) {
	rdr := csv.NewReader(src)
	rdr.FieldsPerRecord = numFields
	rdr.ReuseRecord = true
	rdr.TrimLeadingSpace = true
	ans := make(Collection, 0, 1000)
	var numUnknown int
	for {
		rec, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break

		} else if err != nil {
			return nil, fmt.Errorf("failed to read events: %w", err)
		}
		line, _ := rdr.FieldPos(0)
		ts, err := parseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read events, line %d: %w", line, err)
		}
		ev := Event{
			Time: ts,
			Type: EventType(strings.TrimSpace(rec[1])),
			User: parseID(rec[2]),
			Repo: parseID(rec[3]),
		}
		if !ev.Type.IsKnown() {
			numUnknown++
		}
		ans = append(ans, ev)
	}
	if numUnknown > 0 {
		log.Warn().
			Int("numRecords", numUnknown).
			Msg("found records with unknown event type")
	}
	return ans, nil
}

// LoadCSV loads events from a file. Files with the .gz suffix
// are decompressed on the fly.
func LoadCSV(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load events from %s: %w", path, err)
	}
	defer f.Close()
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load events from %s: %w", path, err)
		}
		defer gz.Close()
		src = gz
	}
	ans, err := ReadCSV(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load events from %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("numEvents", len(ans)).
		Msg("loaded events")
	return ans, nil
}
