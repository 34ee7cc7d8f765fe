package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/luminastro/influence-engine/internal/logging"
	"github.com/luminastro/influence-engine/internal/observability"
	"github.com/luminastro/influence-engine/scout"
)

func main() {
	linesPath := flag.String("lines", "", "Path to a JSON file of influence lines (required)")
	candidatesPath := flag.String("candidates", "", "Path to a JSON file of candidate locations")
	rulesPath := flag.String("rules", "", "Path to a YAML category rules file")
	configPath := flag.String("config", "", "Path to a YAML scan config file")
	gridRes := flag.Float64("grid", 0, "Generate a candidate grid at this resolution in degrees instead of loading candidates")
	workers := flag.Int("workers", 0, "Worker pool size; overrides the config file when > 0")
	benchmark := flag.Bool("benchmark", false, "Run both strategies back-to-back and report timings instead of results")
	byCountry := flag.Bool("by-country", false, "Group ranked results by country")
	topN := flag.Int("top", 0, "Emit only the top N results (0 = all)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables the endpoint")
	outPath := flag.String("out", "", "Write JSON output to this file instead of stdout")
	flag.Parse()

	// A missing .env is fine; it only layers optional environment.
	_ = godotenv.Load()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewScoutCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)
	defer closeMetrics(metricsSrv)

	cfg := scout.DefaultConfig()
	if *configPath != "" {
		cfg, err = scout.LoadConfig(*configPath)
		if err != nil {
			log.Error(ctx, "failed to load config", logging.String("path", *configPath), logging.Err(err))
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	req, err := buildRequest(*linesPath, *candidatesPath, *rulesPath, *gridRes)
	if err != nil {
		log.Error(ctx, "failed to load scan inputs", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "scan inputs loaded",
		logging.Int("candidates", len(req.Candidates)),
		logging.Int("lines", len(req.Lines)),
		logging.Int("rules", req.Rules.Len()))

	// Ctrl-C cancels the scan; the contract discards all partial work.
	scanCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	scanner := scout.NewScanner(cfg, log, collector)
	req.Progress = progressPrinter(log)

	var output any
	if *benchmark {
		output, err = scanner.Benchmark(scanCtx, req)
	} else {
		output, err = runScan(scanCtx, scanner, req, *byCountry, *topN)
	}
	if err != nil {
		if errors.Is(err, scout.ErrScanCancelled) {
			log.Info(ctx, "scan cancelled, no results written")
			return
		}
		log.Error(ctx, "scan failed", logging.Err(err))
		os.Exit(1)
	}

	if err := writeOutput(*outPath, output); err != nil {
		log.Error(ctx, "failed to write output", logging.Err(err))
		os.Exit(1)
	}
}

func buildRequest(linesPath, candidatesPath, rulesPath string, gridRes float64) (scout.Request, error) {
	var req scout.Request

	if linesPath == "" {
		return req, fmt.Errorf("-lines is required")
	}
	lines, err := scout.LoadLines(linesPath)
	if err != nil {
		return req, err
	}
	req.Lines = lines

	switch {
	case gridRes > 0:
		req.Candidates = scout.GenerateGridCandidates(gridRes)
	case candidatesPath != "":
		req.Candidates, err = scout.LoadCandidates(candidatesPath)
		if err != nil {
			return req, err
		}
	default:
		return req, fmt.Errorf("either -candidates or -grid is required")
	}

	if rulesPath != "" {
		req.Rules, err = scout.LoadRules(rulesPath)
		if err != nil {
			return req, err
		}
	} else {
		req.Rules, _ = scout.NewRuleSet(nil)
	}
	return req, nil
}

func runScan(ctx context.Context, scanner *scout.Scanner, req scout.Request, byCountry bool, topN int) (any, error) {
	results, err := scanner.Scan(ctx, req)
	if err != nil {
		return nil, err
	}
	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	if byCountry {
		return scout.GroupByCountry(results), nil
	}
	return results, nil
}

// progressPrinter logs computing progress at most every 10%, plus every
// phase change.
func progressPrinter(log logging.Logger) scout.ProgressFunc {
	lastDecile := -1
	return func(p scout.ScanProgress) {
		if p.Phase != scout.PhaseComputing {
			log.Info(context.Background(), "scan phase", logging.String("phase", string(p.Phase)))
			return
		}
		decile := int(p.PercentComplete) / 10
		if decile > lastDecile {
			lastDecile = decile
			log.Info(context.Background(), "scan progress",
				logging.Int("processed", p.Processed),
				logging.Int("total", p.Total),
				logging.Float64("percent", p.PercentComplete))
		}
	}
}

func writeOutput(path string, output any) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func serveMetrics(addr string, collector *observability.ScoutCollector, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()
	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func closeMetrics(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
