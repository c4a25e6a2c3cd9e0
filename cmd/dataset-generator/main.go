// cmd/dataset-generator/main.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"command-generator/internal/common/config"
	"command-generator/internal/common/logger"
	"command-generator/internal/common/observability"
	"command-generator/internal/generator"
	"command-generator/internal/grammar"
	"command-generator/internal/knowledge"
	"command-generator/internal/models"
	"command-generator/internal/pipeline"
	"command-generator/internal/serializer"
	"command-generator/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to configs/config.yaml lookup)")
	outputPath := flag.String("output", "", "output file for utterance<TAB>logicalForm lines (defaults to stdout)")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dataset generator...")

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level/format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		zapLog.Info("metrics endpoint up", zap.String("address", cfg.Metrics.ListenAddress))
	}

	grammarFile, knowledgeFile, startCategory, err := resolveInputs(cfg)
	if err != nil {
		zapLog.Fatal("input resolution failed", zap.Error(err))
	}

	model, err := grammar.LoadFile(grammarFile)
	if err != nil {
		zapLog.Fatal("grammar load failed", zap.Error(err))
	}

	var kbOpts []knowledge.Option
	if cfg.Grammar.WeightedEntities {
		kbOpts = append(kbOpts, knowledge.WithWeightedSampling())
	}
	kb, err := knowledge.Load(knowledgeFile, kbOpts...)
	if err != nil {
		zapLog.Fatal("knowledge base load failed", zap.Error(err))
	}

	// All grammar/knowledge consistency defects surface here, before any
	// generation starts.
	if err := model.Validate(kb); err != nil {
		zapLog.Fatal("grammar validation failed", zap.Error(err))
	}

	if startCategory == "" {
		startCategory = model.Start()
	}

	zapLog.Info("model loaded",
		zap.String("grammar", grammarFile),
		zap.String("knowledgeBase", knowledgeFile),
		zap.String("startCategory", startCategory),
		zap.Int("categories", len(model.Categories())),
	)

	gen := generator.New(model, kb,
		generator.WithPolicy(generator.PolicyByName(cfg.Generation.Policy)),
		generator.WithLogger(log),
	)
	ser := serializer.New(serializer.Options{
		Lowercase:           cfg.Serializer.Lowercase,
		TrailingPunctuation: cfg.Serializer.TrailingPunctuation,
	})
	runner := pipeline.NewRunner(gen, ser, log, pipeline.WithObservability(obs))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Generation.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(cfg.Generation.TimeoutMs))
		defer cancel()
	}

	result, err := runner.Run(ctx, models.BatchRequest{
		StartCategory: startCategory,
		Count:         cfg.Generation.Count,
		Seed:          cfg.Generation.Seed,
		MaxDepth:      cfg.Generation.MaxDepth,
		MaxRetries:    cfg.Generation.MaxRetries,
		Unique:        cfg.Generation.Unique,
		Policy:        cfg.Generation.Policy,
		Workers:       cfg.Generation.Workers,
	})
	if err != nil {
		zapLog.Fatal("batch generation failed", zap.Error(err))
	}

	if err := writePairs(*outputPath, result); err != nil {
		zapLog.Fatal("output write failed", zap.Error(err))
	}

	zapLog.Info("done",
		zap.Int("generated", len(result.Examples)),
		zap.Int("skipped", len(result.Failures)),
		zap.Duration("duration", result.Duration),
	)
}

// resolveInputs picks the grammar/knowledge files either from a registry
// bundle or from direct config paths.
func resolveInputs(cfg *config.Config) (grammarFile, knowledgeFile, startCategory string, err error) {
	startCategory = cfg.Generation.StartCategory

	if cfg.Grammar.RegistryFile != "" && cfg.Grammar.Bundle != "" {
		reg, err := registry.LoadRegistry(cfg.Grammar.RegistryFile)
		if err != nil {
			return "", "", "", err
		}
		bundle, err := reg.Find(cfg.Grammar.Bundle)
		if err != nil {
			return "", "", "", err
		}
		if startCategory == "" {
			startCategory = bundle.StartCategory
		}
		return bundle.GrammarFile, bundle.KnowledgeFile, startCategory, nil
	}

	return cfg.Grammar.GrammarFile, cfg.Grammar.KnowledgeFile, startCategory, nil
}

// writePairs hands each example off as one utterance<TAB>logicalForm line.
func writePairs(path string, result *models.BatchResult) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	for _, ex := range result.Examples {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", ex.Utterance, ex.LogicalForm); err != nil {
			return err
		}
	}
	return w.Flush()
}
