package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	// Initialize database connection
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	// Close the database connection when done
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "Load pacing reference data and snapshots into the database",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create the pacing tables if they do not exist",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runInit,
			},
			{
				Name:  "holidays",
				Usage: "Load holidays from a CSV file (date,name)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "file", Usage: "CSV file path", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runLoadHolidays,
			},
			{
				Name:  "targets",
				Usage: "Load monthly targets from a CSV file (scope,year,month,value)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "file", Usage: "CSV file path", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runLoadTargets,
			},
			{
				Name:  "snapshots",
				Usage: "Load daily snapshots from a CSV file (date,category,revenue,completed,non_job,adjustment,sales)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "file", Usage: "CSV file path", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runLoadSnapshots,
			},
			{
				Name:  "archive",
				Usage: "Export one month of daily snapshots as CSV to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{Name: "year", Usage: "Year to archive", Required: true},
					&cli.IntFlag{Name: "month", Usage: "Month to archive (1-12)", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runArchive,
			},
			{
				Name:   "archives",
				Usage:  "List archived snapshot exports in object storage",
				Action: runListArchives,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
