// Package storage persists the record half of a store snapshot in SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlasjobs/jobdex/internal/models"
)

// SaveRecords writes jobs and the position map to a fresh SQLite database at
// path. Any existing file is replaced; a snapshot is a whole artifact, not an
// incremental log.
func SaveRecords(path string, jobs []models.JobRecord, posMap []int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear stale snapshot: %w", err)
	}
	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		return fmt.Errorf("open snapshot db: %w", err)
	}
	if err := writeSnapshot(db, jobs, posMap); err != nil {
		_ = db.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close snapshot db: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(db *sql.DB, jobs []models.JobRecord, posMap []int) error {
	schema := `
	CREATE TABLE jobs (
		position INTEGER PRIMARY KEY,
		id TEXT,
		title TEXT NOT NULL,
		company TEXT,
		location TEXT,
		description TEXT,
		salary TEXT,
		salary_min REAL,
		salary_max REAL,
		contract_type TEXT,
		category TEXT,
		skills TEXT,
		remote_friendly INTEGER,
		international INTEGER,
		source_country TEXT,
		created TEXT,
		redirect_url TEXT
	);

	CREATE TABLE position_map (
		vector_pos INTEGER PRIMARY KEY,
		record_pos INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init snapshot schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	jobStmt, err := tx.Prepare(`INSERT INTO jobs (
		position, id, title, company, location, description, salary,
		salary_min, salary_max, contract_type, category, skills,
		remote_friendly, international, source_country, created, redirect_url
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare job insert: %w", err)
	}
	defer jobStmt.Close()

	for i, job := range jobs {
		skillsJSON, err := json.Marshal(job.Skills)
		if err != nil {
			return fmt.Errorf("marshal skills for job %d: %w", i, err)
		}
		if _, err := jobStmt.Exec(
			i, job.ID, job.Title, job.Company, job.Location, job.Description, job.Salary,
			job.SalaryMin, job.SalaryMax, job.ContractType, job.Category, string(skillsJSON),
			boolToInt(job.RemoteFriendly), boolToInt(job.International),
			job.SourceCountry, job.Created, job.RedirectURL,
		); err != nil {
			return fmt.Errorf("insert job %d: %w", i, err)
		}
	}

	mapStmt, err := tx.Prepare(`INSERT INTO position_map (vector_pos, record_pos) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare position map insert: %w", err)
	}
	defer mapStmt.Close()
	for i, pos := range posMap {
		if _, err := mapStmt.Exec(i, pos); err != nil {
			return fmt.Errorf("insert position map entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadRecords reads jobs and the position map back from a snapshot database.
// A missing or unreadable file returns an error; the caller decides whether
// that degrades to an empty store or aborts a load.
func LoadRecords(path string) ([]models.JobRecord, []int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("stat snapshot db: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, title, company, location, description, salary,
		salary_min, salary_max, contract_type, category, skills,
		remote_friendly, international, source_country, created, redirect_url
		FROM jobs ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobRecord
	for rows.Next() {
		var job models.JobRecord
		var skillsJSON string
		var remote, international int
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Company, &job.Location, &job.Description, &job.Salary,
			&job.SalaryMin, &job.SalaryMax, &job.ContractType, &job.Category, &skillsJSON,
			&remote, &international, &job.SourceCountry, &job.Created, &job.RedirectURL,
		); err != nil {
			return nil, nil, fmt.Errorf("scan job: %w", err)
		}
		if skillsJSON != "" {
			if err := json.Unmarshal([]byte(skillsJSON), &job.Skills); err != nil {
				return nil, nil, fmt.Errorf("unmarshal skills: %w", err)
			}
		}
		job.RemoteFriendly = remote != 0
		job.International = international != 0
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate jobs: %w", err)
	}

	mapRows, err := db.Query(`SELECT record_pos FROM position_map ORDER BY vector_pos`)
	if err != nil {
		return nil, nil, fmt.Errorf("query position map: %w", err)
	}
	defer mapRows.Close()

	var posMap []int
	for mapRows.Next() {
		var pos int
		if err := mapRows.Scan(&pos); err != nil {
			return nil, nil, fmt.Errorf("scan position map entry: %w", err)
		}
		posMap = append(posMap, pos)
	}
	if err := mapRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate position map: %w", err)
	}

	return jobs, posMap, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
