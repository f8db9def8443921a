package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/npratama/bucketops/internal/config"
	"github.com/npratama/bucketops/internal/purge"
	"github.com/npratama/bucketops/internal/storage"
	"github.com/npratama/bucketops/pkg/logger"
)

func main() {
	// Flags resolve env vars before config.Load runs, so .env loads here.
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug().Msg("no .env file found")
	}

	app := &cli.App{
		Name:  "purge",
		Usage: "Delete every object under a bucket folder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "Bucket name",
				Required: true,
				EnvVars:  []string{"STORAGE_BUCKET"},
			},
			&cli.StringFlag{
				Name:     "folder",
				Usage:    "Folder (key prefix) inside the bucket",
				Required: true,
				EnvVars:  []string{"STORAGE_FOLDER"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("purge failed")
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
	sum, err := purge.DeleteFolder(c.Context, store, folder)
	if err != nil {
		return err
	}

	if len(sum.Results) == 0 {
		pterm.Info.Printfln("Folder '%s' is empty or does not exist.", folder)
		return nil
	}

	for _, r := range sum.Results {
		if r.Err != nil {
			pterm.Error.Printfln("failed:  %s (%v)", r.Key, r.Err)
			continue
		}
		pterm.Success.Println("deleted: " + r.Key)
	}
	pterm.Info.Printfln("%d deleted, %d failed", sum.Deleted, sum.Failed)
	return nil
}
