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

package stats

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	dfltMaxRuns = 100
)

// Database archives evaluation runs and their metric scores.
type Database struct {
	db *sql.DB
}

func (database *Database) createRunTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE evaluation_run (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"datetime INTEGER NOT NULL, " +
			"groundTruthPath TEXT NOT NULL, " +
			"simulationPath TEXT NOT NULL, " +
			"numMeasurements INTEGER NOT NULL, " +
			"numFailures INTEGER NOT NULL DEFAULT 0, " +
			"eta TEXT NOT NULL" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `evaluation_run`")
	return nil
}

func (database *Database) createScoreTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE metric_score (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"run_id TEXT NOT NULL REFERENCES evaluation_run(id), " +
			"measurement TEXT NOT NULL, " +
			"node TEXT NOT NULL DEFAULT '', " +
			"metric TEXT NOT NULL, " +
			"value FLOAT, " +
			"detail TEXT" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `metric_score`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", tn)
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

func (database *Database) Init() error {
	ex, err := database.tableExists("evaluation_run")
	if err != nil {
		return fmt.Errorf("failed to init table evaluation_run: %w", err)
	}
	if ex {
		log.Debug().Str("table", "evaluation_run").Msg("table already exists")

	} else {
		if err := database.createRunTable(); err != nil {
			return fmt.Errorf("failed to create table evaluation_run: %w", err)
		}
	}

	ex, err = database.tableExists("metric_score")
	if err != nil {
		return fmt.Errorf("failed to init table metric_score: %w", err)
	}
	if ex {
		log.Debug().Str("table", "metric_score").Msg("table already exists")

	} else {
		if err := database.createScoreTable(); err != nil {
			return fmt.Errorf("failed to create table metric_score: %w", err)
		}
	}
	return nil
}

// AddRun stores a run along with all its scores in a single transaction.
func (database *Database) AddRun(run RunRecord, scores []ScoreRecord) error {
	tx, err := database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to add run: %w", err)
	}
	_, err = tx.Exec(
		"INSERT INTO evaluation_run "+
			"(id, datetime, groundTruthPath, simulationPath, numMeasurements, numFailures, eta) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID,
		run.Datetime,
		run.GroundTruthPath,
		run.SimulationPath,
		run.NumMeasurements,
		run.NumFailures,
		run.ETA,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add run: %w", err)
	}
	for _, score := range scores {
		var value sql.NullFloat64
		if score.Value != nil {
			value.Float64 = *score.Value
			value.Valid = true
		}
		var detail sql.NullString
		if score.Detail != "" {
			detail.String = score.Detail
			detail.Valid = true
		}
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO metric_score "+
				"(id, run_id, measurement, node, metric, value, detail) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?)",
			IdempotentID(run.ID, score.Measurement, score.Node, score.Metric),
			run.ID,
			score.Measurement,
			score.Node,
			score.Metric,
			value,
			detail,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to add score: %w", err)
		}
	}
	err = tx.Commit()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add run: %w", err)
	}
	return nil
}

// GetRuns returns the latest runs, newest first.
func (database *Database) GetRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = dfltMaxRuns
	}
	rows, err := database.db.Query(
		"SELECT id, datetime, groundTruthPath, simulationPath, numMeasurements, numFailures, eta "+
			"FROM evaluation_run ORDER BY datetime DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return []RunRecord{}, fmt.Errorf("failed to fetch runs: %w", err)
	}
	defer rows.Close()
	ans := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Datetime,
			&rec.GroundTruthPath,
			&rec.SimulationPath,
			&rec.NumMeasurements,
			&rec.NumFailures,
			&rec.ETA,
		)
		if err != nil {
			return []RunRecord{}, fmt.Errorf("failed to fetch runs: %w", err)
		}
		ans = append(ans, rec)
	}
	return ans, rows.Err()
}

// GetRun returns a run with the provided ID. If no such run
// exists, nil is returned.
func (database *Database) GetRun(runID string) (*RunRecord, error) {
	row := database.db.QueryRow(
		"SELECT id, datetime, groundTruthPath, simulationPath, numMeasurements, numFailures, eta "+
			"FROM evaluation_run WHERE id = ?",
		runID,
	)
	var rec RunRecord
	err := row.Scan(
		&rec.ID,
		&rec.Datetime,
		&rec.GroundTruthPath,
		&rec.SimulationPath,
		&rec.NumMeasurements,
		&rec.NumFailures,
		&rec.ETA,
	)
	if err == sql.ErrNoRows {
		return nil, nil

	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
	}
	return &rec, nil
}

// GetScores loads scores of a run matching the filter.
func (database *Database) GetScores(runID string, filter ListFilter) ([]ScoreRecord, error) {
	query := "SELECT id, run_id, measurement, node, metric, value, detail " +
		"FROM metric_score WHERE %s ORDER BY measurement, node, metric"
	whereChunks := make([]string, 0, 4)
	args := make([]any, 0, 3)
	whereChunks = append(whereChunks, "run_id = ?")
	args = append(args, runID)
	if filter.Measurement != nil {
		whereChunks = append(whereChunks, "measurement = ?")
		args = append(args, *filter.Measurement)
	}
	if filter.Node != nil {
		whereChunks = append(whereChunks, "node = ?")
		args = append(args, *filter.Node)
	}
	if filter.Computed != nil {
		if *filter.Computed {
			whereChunks = append(whereChunks, "(value IS NOT NULL OR detail IS NOT NULL)")

		} else {
			whereChunks = append(whereChunks, "value IS NULL AND detail IS NULL")
		}
	}

	rows, err := database.db.Query(fmt.Sprintf(query, strings.Join(whereChunks, " AND ")), args...)
	if err != nil {
		return []ScoreRecord{}, fmt.Errorf("failed to fetch scores: %w", err)
	}
	defer rows.Close()
	ans := make([]ScoreRecord, 0, 100)
	for rows.Next() {
		var rec ScoreRecord
		var value sql.NullFloat64
		var detail sql.NullString
		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Measurement,
			&rec.Node,
			&rec.Metric,
			&value,
			&detail,
		)
		if err != nil {
			return []ScoreRecord{}, fmt.Errorf("failed to fetch scores: %w", err)
		}
		if value.Valid {
			v := value.Float64
			rec.Value = &v
		}
		if detail.Valid {
			rec.Detail = detail.String
		}
		ans = append(ans, rec)
	}
	return ans, rows.Err()
}

func (database *Database) Close() error {
	return database.db.Close()
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	return &Database{
		db: dbConn,
	}, nil
}
