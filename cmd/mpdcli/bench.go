package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/mpd"
	"github.com/pior/mpd/internal/strpool"
	"github.com/spf13/cobra"
)

type benchOperation string

const (
	benchPing     benchOperation = "ping"
	benchOutputs  benchOperation = "outputs"
	benchPlaylist benchOperation = "playlist"
	benchCurrent  benchOperation = "current"
	benchAll      benchOperation = "all"
)

var benchOperations = []benchOperation{benchPing, benchOutputs, benchPlaylist, benchCurrent}

type benchResult struct {
	Operation    benchOperation
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	Entities     int64
	AvgLatency   time.Duration
	OpsPerSecond float64
	LeakedValues int
	ErrorMessage string
}

func newBenchCommand(ctx *commandContext) *cobra.Command {
	var (
		operation   string
		duration    time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure command round trips and decoding throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				return fmt.Errorf("invalid concurrency %d", concurrency)
			}

			ops := benchOperations
			if benchOperation(operation) != benchAll {
				if benchFunc(benchOperation(operation)) == nil {
					return fmt.Errorf("unknown operation %q", operation)
				}
				ops = []benchOperation{benchOperation(operation)}
			}

			client, err := mpd.NewClient(cfg.address(), mpd.Config{
				MaxSize: int32(concurrency),
				Logger:  newLogger(cfg.logLevel),
			})
			if err != nil {
				return err
			}
			defer client.Close()

			pingCtx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
			defer cancel()
			if err := client.Ping(pingCtx); err != nil {
				return wrapDialError(err, cfg.address())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Benchmarking %s for %v with %d workers\n", cfg.address(), duration, concurrency)

			results := make([]*benchResult, 0, len(ops))
			for _, op := range ops {
				results = append(results, runBench(cmd.Context(), client, op, duration, concurrency))
			}

			printBenchResults(out, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&operation, "operation", string(benchAll), "Operation: ping, outputs, playlist, current or all")
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "Duration of each benchmark")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of concurrent workers")

	return cmd
}

// benchFunc returns the operation run by the workers; it reports how many
// entities were decoded.
func benchFunc(op benchOperation) func(ctx context.Context, client *mpd.Client) (int, error) {
	switch op {
	case benchPing:
		return func(ctx context.Context, client *mpd.Client) (int, error) {
			return 0, client.Ping(ctx)
		}
	case benchOutputs:
		return func(ctx context.Context, client *mpd.Client) (int, error) {
			outputs, err := client.Outputs(ctx)
			return len(outputs), err
		}
	case benchPlaylist:
		return func(ctx context.Context, client *mpd.Client) (int, error) {
			songs, err := client.PlaylistInfo(ctx)
			releaseSongs(songs)
			return len(songs), err
		}
	case benchCurrent:
		return func(ctx context.Context, client *mpd.Client) (int, error) {
			song, err := client.CurrentSong(ctx)
			if song == nil {
				return 0, err
			}
			song.Release()
			return 1, err
		}
	default:
		return nil
	}
}

func runBench(ctx context.Context, client *mpd.Client, op benchOperation, duration time.Duration, concurrency int) *benchResult {
	fn := benchFunc(op)
	result := &benchResult{Operation: op}

	var totalOps, successes, failures, entities, totalLatency atomic.Int64
	var lastErr atomic.Value

	internedBefore := strpool.Len()
	startTime := time.Now()

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for time.Since(startTime) < duration && ctx.Err() == nil {
				opStart := time.Now()
				n, err := fn(ctx, client)
				latency := time.Since(opStart)

				totalOps.Add(1)
				totalLatency.Add(int64(latency))

				if err != nil {
					failures.Add(1)
					lastErr.Store(err.Error())
					continue
				}
				successes.Add(1)
				entities.Add(int64(n))
			}
		}()
	}
	wg.Wait()

	result.Duration = time.Since(startTime)
	result.TotalOps = totalOps.Load()
	result.Successes = successes.Load()
	result.Failures = failures.Load()
	result.Entities = entities.Load()
	result.LeakedValues = strpool.Len() - internedBefore
	if msg, ok := lastErr.Load().(string); ok {
		result.ErrorMessage = msg
	}

	if result.TotalOps > 0 {
		result.AvgLatency = time.Duration(totalLatency.Load() / result.TotalOps)
		result.OpsPerSecond = float64(result.TotalOps) / result.Duration.Seconds()
	}

	return result
}

func printBenchResults(w io.Writer, results []*benchResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rate := "-"
		if r.TotalOps > 0 {
			rate = fmt.Sprintf("%.2f%%", float64(r.Successes)/float64(r.TotalOps)*100)
		}
		rows = append(rows, []string{
			string(r.Operation),
			strconv.FormatInt(r.TotalOps, 10),
			rate,
			fmt.Sprintf("%.2f", r.OpsPerSecond),
			r.AvgLatency.String(),
			strconv.FormatInt(r.Entities, 10),
			strconv.Itoa(r.LeakedValues),
		})
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Operation", "Ops", "Success", "Ops/sec", "Avg latency", "Entities", "Leaked values"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	for _, r := range results {
		if r.ErrorMessage != "" {
			fmt.Fprintf(w, "%s: last error: %s\n", r.Operation, r.ErrorMessage)
		}
	}
}
