// Package ingest loads job record batches from CSV and XLSX drops into the store.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlasjobs/jobdex/internal/models"
	"github.com/atlasjobs/jobdex/internal/store"
)

// ReadCSV parses a CSV file with a header row into job records. Column names
// are matched case-insensitively with the aliases the upstream scrapers use.
// Rows without a title are skipped; malformed numeric and boolean fields
// default to their zero values; records missing an ID are assigned one.
func ReadCSV(path string) ([]models.JobRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return recordsFromRows(rows[0], rows[1:]), nil
}

// recordsFromRows maps tabular rows to job records using header for column
// lookup. Shared by the CSV and XLSX readers.
func recordsFromRows(header []string, rows [][]string) []models.JobRecord {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var jobs []models.JobRecord
	for _, row := range rows {
		title := field(row, "title")
		if title == "" {
			continue
		}
		job := models.JobRecord{
			ID:             field(row, "id"),
			Title:          title,
			Company:        field(row, "company"),
			Location:       field(row, "location"),
			Description:    field(row, "description"),
			Salary:         field(row, "salary"),
			SalaryMin:      parseFloat(field(row, "salary_min", "salarymin")),
			SalaryMax:      parseFloat(field(row, "salary_max", "salarymax")),
			ContractType:   field(row, "contract_type", "job_type"),
			Category:       field(row, "category", "specialty"),
			RemoteFriendly: parseBool(field(row, "remote_friendly", "remote")),
			International:  parseBool(field(row, "international")),
			SourceCountry:  field(row, "source_country"),
			Created:        field(row, "created"),
			RedirectURL:    field(row, "redirect_url", "url"),
		}
		if skills := field(row, "skills"); skills != "" {
			job.Skills = splitSkills(skills)
		}
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// SupportedFile reports whether path has an extension the ingester can read.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// AddFromFile reads one data file and adds its records to the store.
func AddFromFile(ctx context.Context, st *store.Store, path string, logger *zap.Logger) (int, error) {
	var jobs []models.JobRecord
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		jobs, err = ReadCSV(path)
	case ".xlsx":
		jobs, err = ReadXLSX(path)
	default:
		return 0, fmt.Errorf("unsupported data file: %s", path)
	}
	if err != nil {
		return 0, err
	}
	added := st.AddBatch(ctx, jobs)
	logger.Info("file ingested", zap.String("path", path), zap.Int("rows", len(jobs)), zap.Int("added", added))
	return added, nil
}

// AddFromDir ingests every supported data file in dir, in name order. Files
// that fail to parse are logged and skipped; a scraper half-writing one file
// should not block the rest of the batch.
func AddFromDir(ctx context.Context, st *store.Store, dir string, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read data dir: %w", err)
	}
	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !SupportedFile(entry.Name()) {
			continue
		}
		added, err := AddFromFile(ctx, st, filepath.Join(dir, entry.Name()), logger)
		if err != nil {
			logger.Warn("skipping data file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		total += added
	}
	return total, nil
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func splitSkills(s string) []string {
	parts := strings.Split(s, ";")
	if len(parts) == 1 {
		parts = strings.Split(s, ",")
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
