package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/room-matcher/backend/internal/api"
	"github.com/room-matcher/backend/internal/config"
	"github.com/room-matcher/backend/internal/matcher"
	"github.com/room-matcher/backend/internal/pipeline"
	"github.com/room-matcher/backend/internal/record"
	"github.com/room-matcher/backend/internal/session"
	"github.com/room-matcher/backend/internal/storage"
	"github.com/room-matcher/backend/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg := config.Load()

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		return
	}

	// Fixtures hold the sample profiles and fallback result sets. A broken
	// fixtures file falls back to the built-in defaults instead of blocking
	// startup.
	fallbacks, err := matcher.LoadFallbacks(cfg.Matching.FixturesFile)
	if err != nil {
		fmt.Printf("Warning: failed to load fixtures, using built-in defaults: %v\n", err)
		fallbacks = matcher.DefaultFallbacks()
	}

	// Content store: remote bucket when configured, local filesystem
	// otherwise.
	var store storage.Store
	storeMode := "local"
	if cfg.UseRemoteBucket() {
		store = storage.NewBucketStore(cfg.Remote.BucketURL, cfg.Remote.BucketName, cfg.Remote.BucketKey, nil)
		storeMode = "bucket"
	} else {
		localStore, lerr := storage.NewLocalStore(cfg.Storage.UploadDirectory)
		if lerr != nil {
			fmt.Printf("Failed to initialize storage: %v\n", lerr)
			return
		}
		store = localStore
	}

	// Metadata record store. An unopenable record database degrades to the
	// in-memory store; metadata failures never block uploads.
	var recorder record.Recorder
	duckStore, err := record.NewDuckStore(cfg.Storage.RecordDB)
	if err != nil {
		fmt.Printf("Warning: record database unavailable, using in-memory records: %v\n", err)
		recorder = record.NewMemoryStore()
	} else {
		recorder = duckStore
		defer duckStore.Close()
	}

	pipeClient := pipeline.NewClient(cfg.Remote.APIServer, nil)

	coordinator := upload.NewCoordinator(store, recorder, pipeClient, upload.Options{
		ForceParseError: cfg.Matching.QAForceParseError,
	})

	sessionMgr := session.NewManager(pipeClient, fallbacks, matcher.Options{
		ForceFallback: cfg.Matching.QAFallbackScoring,
		WingmanLive:   cfg.Matching.WingmanLive,
	})

	// Background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Processing.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	handlers := api.NewHandlers(&api.Dependencies{
		Coordinator: coordinator,
		SessionMgr:  sessionMgr,
		Recorder:    recorder,
		Fallbacks:   fallbacks,
		AutoRun:     cfg.Matching.AutoRun,
		Version:     Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Polling and streaming endpoints would flood the log.
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/run") ||
				strings.Contains(path, "/progress") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	pipelineState := cfg.Remote.APIServer
	if pipelineState == "" {
		pipelineState = "(not configured)"
	}

	fmt.Printf("\nRoom Matcher backend\n")
	fmt.Printf("  Version:   %s (%s)\n", Version, BuildTime)
	fmt.Printf("  Listen:    http://%s\n", cfg.GetServerAddr())
	fmt.Printf("  Store:     %s\n", storeMode)
	fmt.Printf("  Pipeline:  %s\n", pipelineState)
	fmt.Printf("  Auto-run:  %t  Wingman live: %t\n\n", cfg.Matching.AutoRun, cfg.Matching.WingmanLive)

	e.Logger.Fatal(e.StartServer(s))
}
