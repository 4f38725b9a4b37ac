package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/storage"
	"github.com/urfave/cli/v2"
)

// runArchive exports one month of daily snapshot rows as a CSV object. The
// export is a flat dump in the same column order the snapshots loader
// accepts, so an archive can be replayed straight back in.
func runArchive(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	year := c.Int("year")
	month := c.Int("month")
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}

	cfg := config.Load()
	store, err := storage.NewMinioClient(cfg.Archive)
	if err != nil {
		return err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	rows, err := db.QueryContext(c.Context, `
		SELECT record_date, COALESCE(category, ''), revenue, completed_revenue,
		       non_job_revenue, adjustment_revenue, sales
		FROM daily_records
		WHERE record_date >= $1 AND record_date <= $2
		ORDER BY record_date, category
	`, start, end)
	if err != nil {
		return fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"date", "category", "revenue", "completed", "non_job", "adjustment", "sales"}); err != nil {
		return err
	}

	count := 0
	for rows.Next() {
		var (
			date                                              time.Time
			category                                          string
			revenue, completed, nonJob, adjustment, salesText string
		)
		if err := rows.Scan(&date, &category, &revenue, &completed, &nonJob, &adjustment, &salesText); err != nil {
			return fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		record := []string{date.Format("2006-01-02"), category, revenue, completed, nonJob, adjustment, salesText}
		if err := writer.Write(record); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed iterating snapshot rows: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	key := fmt.Sprintf("snapshots/%04d/%02d.csv", year, month)
	if err := store.UploadObject(c.Context, key, buf.Bytes()); err != nil {
		return err
	}

	log.Printf("archived %d rows to %s", count, key)
	return nil
}

// runListArchives prints the snapshot exports already in object storage.
func runListArchives(c *cli.Context) error {
	cfg := config.Load()
	store, err := storage.NewMinioClient(cfg.Archive)
	if err != nil {
		return err
	}

	objects, err := store.ListObjects(c.Context, "snapshots/")
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		log.Println("no archives found")
		return nil
	}

	for _, object := range objects {
		log.Printf("%s (%d bytes)", object.Key, object.Size)
	}
	return nil
}
