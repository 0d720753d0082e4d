package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sitegauge/sitegauge/internal/adapters/browser"
	httpadapter "github.com/sitegauge/sitegauge/internal/adapters/http"
	"github.com/sitegauge/sitegauge/internal/adapters/lemondb"
	"github.com/sitegauge/sitegauge/internal/adapters/openai"
	"github.com/sitegauge/sitegauge/internal/config"
	"github.com/sitegauge/sitegauge/internal/core/service"
	"github.com/sitegauge/sitegauge/internal/logger"
)

// applyWorkerCount pins GOMAXPROCS to the requested worker count.
// Fiber's prefork master spawns one child per GOMAXPROCS, so without
// this WORKERS=4 would start one worker per CPU core instead of 4.
func applyWorkerCount(cfg *config.Config) {
	if cfg.Prefork() {
		runtime.GOMAXPROCS(cfg.Workers)
	}
}

func main() {
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// 1. Initialize Adapters (Infrastructure)
	browserAdapter, err := browser.NewAdapter(cfg.BrowserExecPath, cfg.NavTimeout)
	if err != nil {
		logger.Fatalf("Failed to initialize browser adapter: %v", err)
	}
	defer browserAdapter.Close()

	modelClient, err := openai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		logger.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	// Prefork workers must not share one lemon file; it has no
	// cross-process lock.
	storePath := cfg.StorePath
	if cfg.Prefork() && fiber.IsChild() {
		storePath = config.WorkerStorePath(cfg.StorePath, os.Getpid())
	}
	store, err := lemondb.New(storePath)
	if err != nil {
		logger.Fatalf("Failed to open verdict store: %v", err)
	}
	defer store.Close()

	// 2. Initialize Core Service and HTTP Handlers
	classifier := service.NewClassifier(browserAdapter, modelClient, store, cfg.CacheTTL)
	handler := httpadapter.NewClassifyHandler(classifier)

	// 3. Setup Framework (Fiber)
	applyWorkerCount(cfg)
	app := fiber.New(fiber.Config{
		AppName: "sitegauge",
		Prefork: cfg.Prefork(),
	})
	app.Use(httpadapter.RequestLogger())

	// 4. Define Routes
	app.Get("/classify-url", handler.ClassifyURL)
	app.Get("/verdicts", handler.RecentVerdicts)
	app.Get("/healthz", handler.Healthz)

	// 5. Start Server
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("Shutdown did not complete cleanly: %v", err)
		}
	}()

	logger.Infof("Server starting on %s (workers: %d)", cfg.Addr(), cfg.Workers)
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
