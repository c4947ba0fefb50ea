package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomscullin/dictionary-logger/pkg/config"
	"github.com/tomscullin/dictionary-logger/pkg/db"
	"github.com/tomscullin/dictionary-logger/pkg/dictionary"
	"github.com/tomscullin/dictionary-logger/pkg/jisho"
	"github.com/tomscullin/dictionary-logger/pkg/logbook"
	"github.com/tomscullin/dictionary-logger/pkg/reference"
	"github.com/tomscullin/dictionary-logger/pkg/shell"
	"github.com/tomscullin/dictionary-logger/pkg/tatoeba"
	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file (default $WORDLOG_CONFIG or ./wordlog.yaml)")
	dbFlag := flag.String("db", "", "Path to SQLite database (overrides storage.db_path)")
	logFlag := flag.String("log", "", "Path to JSON log file (overrides storage.json_path)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dbFlag != "" {
		cfg.Storage.DBPath = *dbFlag
	}
	if *logFlag != "" {
		cfg.Storage.JSONPath = *logFlag
	}

	// Setup context for graceful shutdown. The shell blocks on stdin, so an
	// interrupt exits directly once in-flight requests are cancelled.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	stopExit := context.AfterFunc(ctx, func() {
		fmt.Fprintln(os.Stderr, "\nInterrupted.")
		os.Exit(130)
	})
	defer stopExit()

	var logger *log.Logger
	if cfg.Log.Verbose {
		logger = log.New(os.Stderr, "wordlog: ", log.LstdFlags)
	}

	// Initialize DB
	conn, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := db.InitDB(ctx, conn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	fmt.Printf("Database initialized at %s\n", cfg.Storage.DBPath)

	// Bring entries that only exist in the JSON log into the table reads use.
	book := logbook.New(conn, cfg.Storage.JSONPath)
	imported, err := book.Import(ctx)
	if err != nil {
		log.Fatalf("Failed to import %s: %v", cfg.Storage.JSONPath, err)
	}
	if imported > 0 {
		fmt.Printf("Imported %d entries from %s\n", imported, cfg.Storage.JSONPath)
	}

	online := jisho.NewClient()
	online.BaseURL = cfg.Jisho.BaseURL
	online.Logger = logger
	if cfg.Jisho.Timeout > 0 {
		online.HTTPClient = &http.Client{Timeout: cfg.Jisho.Timeout}
	}

	sentences := tatoeba.NewClient()
	sentences.BaseURL = cfg.Tatoeba.BaseURL
	sentences.From = cfg.Tatoeba.From
	sentences.To = cfg.Tatoeba.To
	sentences.Logger = logger
	if cfg.Tatoeba.Timeout > 0 {
		sentences.HTTPClient = &http.Client{Timeout: cfg.Tatoeba.Timeout}
	}

	sh := shell.New(os.Stdin, os.Stdout)
	sh.Dictionary = buildDictionary(ctx, cfg, online, logger)
	sh.Sentences = sentences
	sh.Log = book
	sh.Reference = reference.New(cfg.Reference.URLTemplate)
	sh.Searcher = online
	sh.MaxExamples = cfg.Tatoeba.MaxExamples
	sh.ExportPath = cfg.Storage.ExportPath
	sh.Search = cfg.Shell.Search
	sh.SearchLimit = cfg.Shell.SearchLimit
	sh.Preview = cfg.Reference.Preview

	if err := sh.Run(ctx); err != nil {
		log.Fatalf("Shell stopped: %v", err)
	}
}

// buildDictionary puts the offline JMdict index behind the online client
// and wraps the chain with the lemma retry when enabled. Problems with the
// optional pieces are warnings, not fatal errors.
func buildDictionary(ctx context.Context, cfg *config.Config, online *jisho.Client, logger *log.Logger) wordlog.Dictionary {
	chain := wordlog.Chain{online}

	if path := cfg.Dictionary.Path; path != "" {
		if cfg.Dictionary.AutoDownload {
			d := dictionary.NewDownloader()
			d.Logger = logger
			if err := d.Ensure(ctx, path); err != nil {
				log.Printf("Warning: Failed to ensure dictionary at %s: %v. Continuing without it.", path, err)
			}
		}

		// Only load if file exists
		if _, err := os.Stat(path); err == nil {
			fmt.Println("Loading dictionary into memory...")
			start := time.Now()
			ix, err := dictionary.Open(path)
			if err != nil {
				log.Printf("Warning: Failed to load dictionary: %v", err)
			} else {
				chain = append(chain, ix)
				fmt.Printf("Dictionary loaded (%d forms) in %v\n", ix.Len(), time.Since(start))
			}
		} else {
			fmt.Println("Skipping offline dictionary (file missing).")
		}
	}

	if !cfg.Dictionary.Lemma {
		return chain
	}
	analyzer, err := wordlog.NewAnalyzer()
	if err != nil {
		log.Printf("Warning: Failed to create analyzer: %v", err)
		return chain
	}
	return wordlog.LemmaDictionary{Dictionary: chain, Analyzer: analyzer}
}
