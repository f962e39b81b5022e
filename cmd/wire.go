package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/avrel/mediapack/internal/adapters/transport/httpmedia"
	"github.com/avrel/mediapack/internal/application"
	"github.com/avrel/mediapack/internal/config"
	"github.com/avrel/mediapack/internal/ports"
	"github.com/avrel/mediapack/internal/workspace"
)

// app bundles the wired agent: the pipeline, the ingest HTTP server and
// the listen address it should bind.
type app struct {
	pipeline *application.Pipeline
	server   *httpmedia.Server
	listen   string
	logger   *slog.Logger
}

func wireApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	workDir := cfg.Pipeline.WorkDir
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "mediapack")
	}
	workRoot, err := workspace.New(workDir)
	if err != nil {
		return nil, fmt.Errorf("wire workspace: %w", err)
	}

	transport := httpmedia.NewClient(http.DefaultClient, httpmedia.Options{
		MediaBaseURL:    cfg.Media.BaseURL,
		MediaToken:      cfg.Media.AuthToken,
		DeliveryBaseURL: cfg.Delivery.BaseURL,
		DeliveryToken:   cfg.Delivery.AuthToken,
		RatePerSecond:   cfg.Media.RatePerSecond,
		RateBurst:       cfg.Media.RateBurst,
		RetryAttempts:   cfg.Media.RetryAttempts,
		RetryBackoff:    cfg.Media.RetryBackoff,
	}, logger)

	pipeline := application.NewPipeline(transport, ports.SystemClock{}, workRoot, application.Options{
		QuietPeriod:     cfg.Pipeline.QuietPeriod,
		DownloadTimeout: cfg.Pipeline.DownloadTimeout,
		MaxDrainWait:    cfg.Pipeline.MaxDrainWait,
		DrainPoll:       cfg.Pipeline.DrainPoll,
		VolumeLimit:     cfg.Pipeline.VolumeLimitBytes,
		ArchiveName:     cfg.Pipeline.ArchiveName,
	}, logger)

	return &app{
		pipeline: pipeline,
		server:   httpmedia.NewServer(pipeline, cfg.Server.AuthToken, logger),
		listen:   cfg.Server.Listen,
		logger:   logger,
	}, nil
}
