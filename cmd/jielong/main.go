// Package main is the entry point for the verse-chaining battle engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/battle"
	"github.com/luofeng-dev/jielong-engine/internal/config"
	"github.com/luofeng-dev/jielong-engine/internal/corpus"
	"github.com/luofeng-dev/jielong-engine/internal/generator"
	"github.com/luofeng-dev/jielong-engine/internal/ipc"
	"github.com/luofeng-dev/jielong-engine/internal/store"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to configuration JSON file")
	devLog := flag.Bool("dev", false, "use development (human-readable) logging")
	flag.Parse()

	if *showVersion {
		fmt.Printf("jielong %s (commit=%s, built=%s)\n", version, commit, date)
		os.Exit(0)
	}

	logger, err := newLogger(*devLog)
	if err != nil {
		fatal(fmt.Sprintf("init logger: %v", err))
	}
	defer logger.Sync()

	// Resolve config path: --config flag > JIELONG_CONFIG env > auto-discover next to exe.
	path := *configPath
	if path == "" {
		path = os.Getenv("JIELONG_CONFIG")
	}
	if path == "" {
		path = discoverConfig()
	}
	if path == "" {
		fatal("no config found. Place config.json next to the exe, use --config <path>, or set JIELONG_CONFIG.")
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load config: %v", err))
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		fatal(fmt.Sprintf("open database: %v", err))
	}
	defer db.Close()

	if cfg.SeedCorpus {
		poems := &store.PoemRepo{}
		if err := poems.Seed(context.Background(), db, corpus.StarterPoems); err != nil {
			fatal(fmt.Sprintf("seed corpus: %v", err))
		}
	}

	// Wire verse components.
	phonetic := verse.NewPhoneticIndex()
	chain := verse.NewChainValidator(phonetic)

	// Wire corpus components.
	oracle := corpus.NewOracle(db, logger)
	selector := corpus.NewSelector(db, logger)
	selector.Difficulty = cfg.PoemDifficulty

	// Wire the generator client and negotiator.
	client := generator.NewOpenAIClient(generator.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	negotiator := generator.NewNegotiator(client, phonetic, oracle, generator.NegotiatorConfig{
		MaxAttempts: cfg.MaxAttempts,
		CallTimeout: time.Duration(cfg.CallTimeoutSec) * time.Second,
		MinLen:      cfg.MinVerseLen,
		MaxLen:      cfg.MaxVerseLen,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, logger)

	// Wire the battle engine.
	scoring := battle.Scoring{
		PointsCorrect:   cfg.Scoring.PointsCorrect,
		PointsWrong:     cfg.Scoring.PointsWrong,
		WinOnExhaustion: *cfg.Scoring.WinOnExhaustion,
	}
	engine := battle.NewEngine(db, selector, oracle, chain, negotiator, scoring, logger)

	handler := &ipc.Handler{
		Engine: engine,
		Chain:  chain,
	}
	srv := ipc.NewServer(handler, cfg.ListenAddr)

	// Graceful shutdown on interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("jielong engine listening", zap.String("addr", cfg.ListenAddr))

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		fatal(fmt.Sprintf("server error: %v", err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// discoverConfig looks for config.json next to the executable, then in the cwd.
func discoverConfig() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}
	return ""
}

func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
