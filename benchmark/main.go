// Package main provides a performance benchmarking tool for the Fragility CLI.
// It measures execution times of the assessment commands, running each test
// multiple times, treating the first successful run as cold and averaging the
// rest as warm, and generates CSV output for performance analysis.
//
// Prerequisites:
// - fragility binary installed and available in PATH
// - Network access when the live suites are enabled
//
// Usage: go run benchmark/main.go [live]
//
//	live: also benchmark --live-weather with and without the weather cache
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Suite       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkSuite is one command line to benchmark.
type BenchmarkSuite struct {
	Name    string
	Command string
	Args    []string
	Done    string // phrase printed on success
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Suites      []BenchmarkSuite
}

func main() {
	live := len(os.Args) == 2 && os.Args[1] == "live"

	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		Workers:     4,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Suites: []BenchmarkSuite{
			{"table", "assess", []string{"region_1", "region_2", "region_3"}, "Assessed 3 region(s) in"},
			{"table", "compare", []string{"region_1", "region_3"}, "Compared 2 regions in"},
			{"table", "check", []string{"region_1", "region_2", "region_3", "--max-risk", "100"}, "Checked 3 regions in"},
		},
	}
	if live {
		config.Suites = append(config.Suites,
			BenchmarkSuite{"live", "assess", []string{"region_1", "region_2", "region_3", "--live-weather"}, "Assessed 3 region(s) in"},
		)
	}

	if _, err := exec.LookPath("fragility"); err != nil {
		fmt.Printf("Prerequisites check failed: fragility binary not found in PATH\n")
		os.Exit(1)
	}

	// Clear the cache using fragility cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("fragility", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark suites
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d suites, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Suites), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, suite := range config.Suites {
		results = append(results, runBenchmarkSuite(config, suite))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a suite
func runBenchmarkSuite(config BenchmarkConfig, suite BenchmarkSuite) BenchmarkResult {
	fmt.Printf("Running %s %s\n", suite.Name, suite.Command)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, suite, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Suite:       suite.Name,
		Command:     suite.Command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a fragility command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, suite BenchmarkSuite, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{suite.Command}, suite.Args...)
	args = append(args, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers), "--live-fallback")

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("fragility", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), suite.Done) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/fragility_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"suite", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Suite, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-6s %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Suite, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
