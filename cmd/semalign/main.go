// Command semalign runs the taxonomy assistant and alignment pipeline.
//
// Usage:
//
//	semalign chat --config config.yaml "what is an airport?"
//	semalign align --config config.yaml --input concepts.json --filter transport
//	semalign version
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/agent"
	"github.com/taxotools/semalign/align"
	"github.com/taxotools/semalign/config"
	"github.com/taxotools/semalign/export"
	"github.com/taxotools/semalign/internal/cache"
	"github.com/taxotools/semalign/internal/metrics"
	"github.com/taxotools/semalign/internal/telemetry"
	"github.com/taxotools/semalign/llm"
	"github.com/taxotools/semalign/providers"
	"github.com/taxotools/semalign/providers/azure"
	"github.com/taxotools/semalign/search"
	"github.com/taxotools/semalign/skos"
	"github.com/taxotools/semalign/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "align":
		runAlign(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runtime bundles the shared collaborators built from configuration.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	providers *telemetry.Providers
	oracle    llm.Oracle
	index     search.Index
	collector *metrics.Collector
	cache     *cache.RetrievalCache
}

func newRuntime(configPath string) (*runtime, error) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	collector := metrics.NewCollector("semalign", nil, logger)

	oracle := azure.New(providers.AzureOpenAIConfig{
		APIKey:            cfg.Oracle.APIKey,
		Endpoint:          cfg.Oracle.Endpoint,
		Deployment:        cfg.Oracle.Deployment,
		APIVersion:        cfg.Oracle.APIVersion,
		Timeout:           cfg.Oracle.Timeout,
		RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
		Burst:             cfg.Oracle.Burst,
	}, logger)

	index := search.NewAzureIndex(search.AzureConfig{
		Endpoint:   cfg.Search.Endpoint,
		IndexName:  cfg.Search.IndexName,
		APIKey:     cfg.Search.APIKey,
		APIVersion: cfg.Search.APIVersion,
	}, logger)

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		providers: otelProviders,
		oracle:    oracle,
		index:     index,
		collector: collector,
	}

	if cfg.Redis.Enabled {
		rt.cache, err = cache.NewRetrievalCache(cache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			KeyPrefix:    "semalign:retrieval:",
			DefaultTTL:   cache.DefaultConfig().DefaultTTL,
		}, collector, logger)
		if err != nil {
			logger.Warn("retrieval cache unavailable, continuing without it", zap.Error(err))
			rt.cache = nil
		}
	}
	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	if rt.cache != nil {
		_ = rt.cache.Close()
	}
	_ = rt.providers.Shutdown(ctx)
	_ = rt.logger.Sync()
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (YAML)")
	_ = fs.Parse(args)

	rt, err := newRuntime(*configPath)
	if err != nil {
		fail(err)
	}
	ctx := context.Background()
	defer rt.close(ctx)

	cfg := rt.cfg
	store := skos.NewStore(rt.logger)
	tokenizer := llm.NewTiktokenTokenizer(cfg.Orchestrator.Model)

	workers := []agent.Worker{
		agent.NewSearchWorker(rt.index, cfg.Align.TopK, rt.logger),
		agent.NewChatWorker(rt.oracle, cfg.Orchestrator.Model, rt.logger),
		agent.NewEditorWorker(rt.oracle, store, cfg.Orchestrator.Model, cfg.Orchestrator.Language, rt.logger),
	}
	roster := make([]agent.WorkerDescriptor, 0, len(workers))
	for _, w := range workers {
		roster = append(roster, w.Descriptor())
	}

	supervisor := agent.NewSupervisor(rt.oracle, roster, tokenizer, agent.SupervisorConfig{
		Model:            cfg.Orchestrator.Model,
		Temperature:      float32(cfg.Orchestrator.Temperature),
		MaxHistoryTokens: cfg.Orchestrator.MaxHistoryTokens,
	}, rt.logger)

	loop := agent.NewLoop(supervisor, workers, rt.logger,
		agent.WithStepBudget(cfg.Orchestrator.StepBudget),
		agent.WithMetrics(rt.collector))

	state := types.ConversationState{}
	if question := strings.TrimSpace(strings.Join(fs.Args(), " ")); question != "" {
		answer, err := ask(ctx, loop, &state, question)
		if err != nil {
			fail(err)
		}
		fmt.Println(answer)
		return
	}

	// interactive session: history accumulates across turns
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "exit" || question == "quit" {
			break
		}
		answer, err := ask(ctx, loop, &state, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Println(answer)
		}
		fmt.Print("> ")
	}
}

func ask(ctx context.Context, loop *agent.Loop, state *types.ConversationState, question string) (string, error) {
	next, err := loop.Run(ctx, state.Append(types.NewUserMessage(question)))
	if err != nil {
		return "", err
	}
	*state = next
	msg, ok := next.Last()
	if !ok {
		return "", fmt.Errorf("turn produced no answer")
	}
	return msg.Content, nil
}

// inputConcept is one row of the align command's input file.
type inputConcept struct {
	URI        string `json:"uri"`
	Label      string `json:"label"`
	Definition string `json:"definition"`
}

func runAlign(args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file (YAML)")
	inputPath := fs.String("input", "", "JSON file with the source concepts to align")
	filter := fs.String("filter", "", "Restrict candidates to one taxonomy")
	_ = fs.Parse(args)

	if *inputPath == "" {
		fail(fmt.Errorf("align requires --input"))
	}

	rt, err := newRuntime(*configPath)
	if err != nil {
		fail(err)
	}
	ctx := context.Background()
	defer rt.close(ctx)

	cfg := rt.cfg
	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fail(fmt.Errorf("failed to read input: %w", err))
	}
	var input []inputConcept
	if err := json.Unmarshal(data, &input); err != nil {
		fail(fmt.Errorf("failed to parse input: %w", err))
	}
	concepts := make([]align.SourceConcept, 0, len(input))
	for _, c := range input {
		concepts = append(concepts, align.SourceConcept{URI: c.URI, Label: c.Label, Definition: c.Definition})
	}

	taxonomyFilter := *filter
	if taxonomyFilter == "" {
		taxonomyFilter = cfg.Align.TaxonomyFilter
	}

	retrieverOpts := []align.RetrieverOption{align.WithTopK(cfg.Align.TopK)}
	if rt.cache != nil {
		retrieverOpts = append(retrieverOpts, align.WithCache(rt.cache))
	}
	aligner := align.NewAligner(
		align.NewRetriever(rt.index, rt.logger, retrieverOpts...),
		align.NewClassifier(rt.oracle, rt.logger),
		align.NewCounter(1),
		rt.logger,
		align.WithConcurrency(cfg.Align.Concurrency),
	)

	results := aligner.Run(ctx, concepts, taxonomyFilter)

	store, err := export.Open(cfg.Export.Path, rt.logger)
	if err != nil {
		fail(err)
	}
	run, err := store.SaveRun(ctx, taxonomyFilter, results)
	if err != nil {
		fail(err)
	}

	records := 0
	for _, res := range results {
		records += len(res.Records)
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "skipped %s: %v\n", res.Source.URI, res.Err)
		}
	}
	fmt.Printf("run %s: %d concepts, %d records, %d failed\n",
		run.ID, run.Concepts, records, run.Failed)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printVersion() {
	fmt.Printf("semalign %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`semalign - taxonomy assistant and alignment engine

Usage:
  semalign <command> [options]

Commands:
  chat      Ask the taxonomy assistant (one-shot or interactive)
  align     Align source concepts against the reference index
  version   Show version information
  help      Show this help message

Options for 'chat':
  --config <path>   Path to configuration file (YAML)

Options for 'align':
  --config <path>   Path to configuration file (YAML)
  --input <path>    JSON file: [{"uri", "label", "definition"}, ...]
  --filter <name>   Restrict candidates to one taxonomy

Examples:
  semalign chat "what is an airport?"
  semalign chat --config /etc/semalign/config.yaml
  semalign align --input concepts.json --filter transport
  semalign version`)
}
