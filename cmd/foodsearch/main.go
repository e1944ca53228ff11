// Package main is the foodsearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealgrid/foodsearch/internal/cli"
	"github.com/mealgrid/foodsearch/internal/config"
	"github.com/mealgrid/foodsearch/internal/models"
	"github.com/mealgrid/foodsearch/internal/search"
	"github.com/mealgrid/foodsearch/internal/server"
	"github.com/mealgrid/foodsearch/internal/source"
	"github.com/mealgrid/foodsearch/internal/storage"
	"github.com/mealgrid/foodsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/foodsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "foodsearch server" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "import":
		runImport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("foodsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (per-request queries, provider calls, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Store, &cfg.Server, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: foodsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  foodsearch search chicken breast
  foodsearch search "chicken breast"          # same as above
  foodsearch search --country US porridge
  foodsearch search --limit 20 --offset 20 beans
  foodsearch search --output json yogurt      # structured JSON for other apps
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "foodsearch search beans -limit 20"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local components when server is not running)")
	limit := fs.Int("limit", 0, "number of results (0 = config default)")
	offset := fs.Int("offset", 0, "pagination offset")
	country := fs.String("country", "", "country scope (empty = config default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	case "compact":
		format = cli.OutputCompact
	default:
		fmt.Printf("Unknown output format %q; use text, compact, or json\n", *outputFormat)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:   queryStr,
		Country: *country,
		Limit:   *limit,
		Offset:  *offset,
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids SQLite lock conflict).
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Local components (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Search(context.Background(), searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath             string `json:"database_path,omitempty"`
	DefaultCountry           string `json:"default_country,omitempty"`
	DefaultLimit             int    `json:"default_limit,omitempty"`
	MaxLimit                 int    `json:"max_limit,omitempty"`
	BrandedFallbackThreshold int    `json:"branded_fallback_threshold,omitempty"`
	ProviderTimeoutMS        int    `json:"provider_timeout_ms,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Foods  int64                 `json:"foods"`
	Config *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		count, err := store.CountFoods(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count foods failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Foods: count,
			Config: &statusConfigResponse{
				DatabasePath:             cfg.Storage.DatabasePath,
				DefaultCountry:           cfg.Search.DefaultCountry,
				DefaultLimit:             cfg.Search.DefaultLimit,
				MaxLimit:                 cfg.Search.MaxLimit,
				BrandedFallbackThreshold: cfg.Search.BrandedFallbackThreshold,
				ProviderTimeoutMS:        cfg.Providers.TimeoutMS,
			},
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("foods:              %d   # count of mirrored food records\n", status.Foods)
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:      %s\n", status.Config.DatabasePath)
			}
			if status.Config.DefaultCountry != "" {
				fmt.Printf("default_country:    %s\n", status.Config.DefaultCountry)
			}
			if status.Config.DefaultLimit > 0 {
				fmt.Printf("default_limit:      %d\n", status.Config.DefaultLimit)
			}
			if status.Config.MaxLimit > 0 {
				fmt.Printf("max_limit:          %d\n", status.Config.MaxLimit)
			}
			if status.Config.BrandedFallbackThreshold > 0 {
				fmt.Printf("branded_threshold:  %d\n", status.Config.BrandedFallbackThreshold)
			}
			if status.Config.ProviderTimeoutMS > 0 {
				fmt.Printf("provider_timeout:   %dms\n", status.Config.ProviderTimeoutMS)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	country := fs.String("country", "", "country scope for imported records (empty = config default)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: foodsearch import [flags] <file.json>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *country == "" {
		*country = cfg.Search.DefaultCountry
	}

	records, err := readImportFile(path)
	if err != nil {
		fmt.Printf("Failed to read import file: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No records to import")
		return
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.UpsertFoods(context.Background(), records, *country); err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d record(s) into %s (%s)\n", len(records), cfg.Storage.DatabasePath, *country)
}

// readImportFile parses a JSON array of food records. Records without an
// external ID get a generated one so re-imports of the same file stay
// idempotent only for records that carry stable IDs.
func readImportFile(path string) ([]*models.FoodRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []*models.FoodRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	kept := records[:0]
	for _, rec := range records {
		if rec == nil || strings.TrimSpace(rec.Name) == "" {
			continue
		}
		if rec.ExternalID == "" {
			rec.ExternalID = uuid.New().String()
		}
		if rec.FoodType != models.FoodTypeGeneric && rec.FoodType != models.FoodTypeBranded {
			rec.FoodType = models.FoodTypeGeneric
		}
		rec.Source = models.SourceCache
		kept = append(kept, rec)
	}
	return kept, nil
}

// Components holds initialized services.
type Components struct {
	Store  storage.FoodStore
	Engine *search.Engine
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	timeout := cfg.Providers.Timeout()
	cache := source.NewGuard(source.NewCacheSource(store), timeout, logger)
	generic := source.NewGuard(source.NewGenericAPISource(
		cfg.Providers.Generic.BaseURL,
		cfg.Providers.Generic.APIKey,
		timeout,
	), timeout, logger)
	branded := source.NewGuard(source.NewBrandedDBSource(
		cfg.Providers.Branded.BaseURL,
		cfg.Providers.Branded.Endpoints,
		cfg.Providers.Branded.APIKey,
		timeout,
	), timeout, logger)

	engine := search.NewEngine(cache, generic, branded, &cfg.Search, logger)
	return &Components{Store: store, Engine: engine}, nil
}

func printUsage() {
	fmt.Println(`foodsearch - Multi-provider food search service

Usage:
  foodsearch server [flags]           Start the HTTP server
  foodsearch search [flags] <query>   Search for foods
  foodsearch import [flags] <file>    Import food records into the local mirror
  foodsearch status [flags]           Show mirror/config status
  foodsearch version                  Show version
  foodsearch help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/foodsearch/config.yaml)
  --debug            Enable debug logging (per-request queries, provider calls, etc.)

Search Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local components.
  --limit int        Number of results (default from config)
  --offset int       Pagination offset (pages past the first are served from the mirror only)
  --country string   Country scope (default from config)
  --output string    Output format: text, compact, or json (default: text)

Import Flags:
  --config string    Config file path
  --country string   Country scope for imported records (default from config)

Status Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local storage.
  --output string    Output format: text or json (default: text)

Examples:
  foodsearch server
  foodsearch search "chicken breast"
  foodsearch search --country US --limit 20 porridge
  foodsearch search --output json yogurt   # structured JSON for other apps
  foodsearch import --country GB foods.json
  foodsearch status
  foodsearch status --output json`)
}
