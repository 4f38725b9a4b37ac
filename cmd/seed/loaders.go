package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_records (
	id                 BIGSERIAL PRIMARY KEY,
	record_date        DATE           NOT NULL,
	category           TEXT,
	revenue            NUMERIC(15, 2) NOT NULL DEFAULT 0,
	completed_revenue  NUMERIC(15, 2) NOT NULL DEFAULT 0,
	non_job_revenue    NUMERIC(15, 2) NOT NULL DEFAULT 0,
	adjustment_revenue NUMERIC(15, 2) NOT NULL DEFAULT 0,
	sales              NUMERIC(15, 2) NOT NULL DEFAULT 0,
	updated_at         TIMESTAMPTZ    NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS daily_records_date_category_idx
	ON daily_records (record_date, COALESCE(category, ''));

CREATE TABLE IF NOT EXISTS targets (
	id           BIGSERIAL PRIMARY KEY,
	scope        TEXT           NOT NULL,
	period_type  TEXT           NOT NULL DEFAULT 'monthly',
	target_year  INT            NOT NULL,
	target_month INT            NOT NULL,
	target_value NUMERIC(15, 2) NOT NULL,
	UNIQUE (scope, period_type, target_year, target_month)
);

CREATE TABLE IF NOT EXISTS holidays (
	id           BIGSERIAL PRIMARY KEY,
	holiday_date DATE NOT NULL UNIQUE,
	name         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS business_days_overrides (
	id             BIGSERIAL PRIMARY KEY,
	override_year  INT NOT NULL,
	override_month INT NOT NULL,
	business_days  INT NOT NULL CHECK (business_days >= 0),
	UNIQUE (override_year, override_month)
);
`

func runInit(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(c.Context, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("schema created")
	return nil
}

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	return reader, f, nil
}

// readRows streams CSV rows, skipping a header row when the first cell is
// not parseable as data.
func readRows(reader *csv.Reader, handle func(row []string) error) (int, error) {
	count := 0
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed reading CSV: %w", err)
		}

		if first {
			first = false
			if looksLikeHeader(row) {
				continue
			}
		}

		if err := handle(row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, dateErr := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	_, numErr := strconv.Atoi(strings.TrimSpace(row[0]))
	return dateErr != nil && numErr != nil && !strings.EqualFold(strings.TrimSpace(row[0]), "TOTAL")
}

func runLoadHolidays(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	reader, f, err := openCSV(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := readRows(reader, func(row []string) error {
		if len(row) < 1 {
			return fmt.Errorf("holiday row needs at least a date")
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return fmt.Errorf("invalid holiday date %q: %w", row[0], err)
		}
		name := ""
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}

		_, err = db.ExecContext(c.Context, `
			INSERT INTO holidays (holiday_date, name)
			VALUES ($1, $2)
			ON CONFLICT (holiday_date) DO UPDATE SET name = EXCLUDED.name
		`, date, name)
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("loaded %d holidays", count)
	return nil
}

func runLoadTargets(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	reader, f, err := openCSV(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := readRows(reader, func(row []string) error {
		if len(row) < 4 {
			return fmt.Errorf("target row needs scope,year,month,value")
		}
		scope := strings.ToUpper(strings.TrimSpace(row[0]))
		year, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return fmt.Errorf("invalid target year %q: %w", row[1], err)
		}
		month, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || month < 1 || month > 12 {
			return fmt.Errorf("invalid target month %q", row[2])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return fmt.Errorf("invalid target value %q: %w", row[3], err)
		}

		_, err = db.ExecContext(c.Context, `
			INSERT INTO targets (scope, period_type, target_year, target_month, target_value)
			VALUES ($1, 'monthly', $2, $3, $4)
			ON CONFLICT (scope, period_type, target_year, target_month)
			DO UPDATE SET target_value = EXCLUDED.target_value
		`, scope, year, month, value)
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("loaded %d targets", count)
	return nil
}

func runLoadSnapshots(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	reader, f, err := openCSV(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	parseAmount := func(raw string) (float64, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseFloat(raw, 64)
	}

	count, err := readRows(reader, func(row []string) error {
		if len(row) < 7 {
			return fmt.Errorf("snapshot row needs date,category,revenue,completed,non_job,adjustment,sales")
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return fmt.Errorf("invalid snapshot date %q: %w", row[0], err)
		}

		var category *string
		if trimmed := strings.TrimSpace(row[1]); trimmed != "" {
			category = &trimmed
		}

		amounts := make([]float64, 5)
		for i := 0; i < 5; i++ {
			amounts[i], err = parseAmount(row[2+i])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", row[2+i], err)
			}
		}

		_, err = db.ExecContext(c.Context, `
			INSERT INTO daily_records
				(record_date, category, revenue, completed_revenue,
				 non_job_revenue, adjustment_revenue, sales, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (record_date, COALESCE(category, '')) DO UPDATE SET
				revenue            = EXCLUDED.revenue,
				completed_revenue  = EXCLUDED.completed_revenue,
				non_job_revenue    = EXCLUDED.non_job_revenue,
				adjustment_revenue = EXCLUDED.adjustment_revenue,
				sales              = EXCLUDED.sales,
				updated_at         = NOW()
		`, date, category, amounts[0], amounts[1], amounts[2], amounts[3], amounts[4])
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("loaded %d snapshots", count)
	return nil
}
