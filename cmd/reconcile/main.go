package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/npratama/bucketops/internal/config"
	"github.com/npratama/bucketops/internal/database"
	"github.com/npratama/bucketops/internal/reconcile"
	"github.com/npratama/bucketops/internal/storage"
	"github.com/npratama/bucketops/pkg/logger"
)

func main() {
	// Flags resolve env vars before config.Load runs, so .env loads here.
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug().Msg("no .env file found")
	}

	app := &cli.App{
		Name:  "reconcile",
		Usage: "Diff a CSV inventory against a bucket folder and upload the gap",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "Bucket name",
				Required: true,
				EnvVars:  []string{"STORAGE_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "folder",
				Usage:   "Folder (key prefix) inside the bucket",
				Value:   "contents",
				EnvVars: []string{"STORAGE_FOLDER"},
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "CSV file with an id column",
				Value: "input.csv",
			},
			&cli.StringFlag{
				Name:  "ext",
				Usage: "File extension expected for each id",
				Value: "txt",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Optional source filter for the database cleanup option",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("reconcile failed")
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    c.String("bucket"),
	})
	if err != nil {
		return err
	}

	folder := c.String("folder")
	ext := c.String("ext")

	listing, err := reconcile.FetchListing(c.Context, store, folder)
	if err != nil {
		return err
	}

	missing, err := reconcile.MissingFromCSV(c.String("csv"), ext, listing)
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		pterm.Success.Println("All IDs have corresponding files in the bucket.")
		return nil
	}

	pterm.DefaultSection.Println("IDs with no corresponding file in the bucket")
	for _, id := range missing {
		pterm.Println("  " + id)
	}
	pterm.Info.Printfln("missing file count: %d", len(missing))

	scanner := bufio.NewScanner(os.Stdin)
	pterm.Println("Choose an option:")
	pterm.Println("  1. Retry uploading the missing files.")
	pterm.Println("  2. Remove the missing ID rows from the database.")
	pterm.Println("  3. Do nothing.")

	switch promptLine(scanner, "Enter your choice (1/2/3): ") {
	case "1":
		return retryUpload(c, scanner, store, missing, folder, ext)
	case "2":
		return cleanupDatabase(c, scanner, cfg, missing)
	default:
		pterm.Info.Println("No action selected. Exiting.")
		return nil
	}
}

func retryUpload(c *cli.Context, scanner *bufio.Scanner, store storage.ObjectStorage, missing []string, folder, ext string) error {
	dir := promptLine(scanner, "Enter the directory path to retry uploading from: ")

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("invalid directory path: %s", dir)
	}

	sum := reconcile.UploadMissing(c.Context, store, missing, dir, folder, ext)
	if sum.Failed > 0 {
		pterm.Warning.Printfln("upload finished: %d uploaded, %d failed", sum.Uploaded, sum.Failed)
	} else {
		pterm.Success.Printfln("upload finished: %d uploaded", sum.Uploaded)
	}
	return nil
}

func cleanupDatabase(c *cli.Context, scanner *bufio.Scanner, cfg *config.Config, missing []string) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not configured")
	}

	table := promptLine(scanner, "Enter the table name: ")
	column := promptLine(scanner, "Enter the column name: ")

	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := database.DeleteMissingIDs(c.Context, db, table, column, c.String("source"), missing)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("removed %d rows from %s", n, table)
	return nil
}

func promptLine(scanner *bufio.Scanner, label string) string {
	pterm.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
