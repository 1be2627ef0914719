package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

type loadtestOptions struct {
	baseURL     string
	concurrency int
	duration    time.Duration
}

// samplePairs rotate through the workers. Repeats hit the result cache when
// the service runs with Redis.
var samplePairs = [][2]string{
	{"Experienced Python developer with React and SQL skills", "Looking for Python, React, and Node.js experience, problem-solving skills required."},
	{"Java and C++ engineer, database administration, strong communication", "Seeking Java developer with SQL and communication skills"},
	{"Primary school educator with classroom management and computer literacy", "Classroom management, communication and project management tools required"},
	{"Web design, wireframe creation and design thinking portfolio", "Front end coding, web design and JavaScript for an ad-serving platform"},
	{"Backend tech lead: Node.js, SQL, C#", "Senior backend tech engineer with Node.js and C# experience"},
}

// loadStats is shared by all workers.
type loadStats struct {
	mu        sync.Mutex
	total     int64
	success   int64
	failed    int64
	latencies []time.Duration
	codes     map[int]int64
}

func newLoadStats() *loadStats {
	return &loadStats{
		latencies: make([]time.Duration, 0, 4096),
		codes:     make(map[int]int64),
	}
}

func (s *loadStats) record(d time.Duration, status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if err != nil {
		s.failed++
		return
	}
	if status >= 200 && status < 300 {
		s.success++
	} else {
		s.failed++
	}
	s.latencies = append(s.latencies, d)
	s.codes[status]++
}

func newLoadtestCmd() *cobra.Command {
	opts := &loadtestOptions{}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive the score endpoint of a running match service",
		Long:  "Sends sample resume/job-description pairs to POST /api/v1/score from concurrent workers for a fixed duration, then prints throughput, latency percentiles, and status codes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.concurrency <= 0 {
				return errors.New("--concurrency must be positive")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Target:      %s\nConcurrency: %d\nDuration:    %s\n\n", opts.baseURL, opts.concurrency, opts.duration)

			stats := runLoadtest(cmd.Context(), opts)
			printLoadReport(out, stats, opts.duration)
			if stats.success == 0 {
				return errors.New("no request succeeded, is the service running?")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the match service")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 10, "Number of concurrent workers")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 30*time.Second, "Test duration")
	return cmd
}

func runLoadtest(parent context.Context, opts *loadtestOptions) *loadStats {
	if parent == nil {
		parent = context.Background()
	}
	stats := newLoadStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        opts.concurrency * 2,
			MaxIdleConnsPerHost: opts.concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	defer client.CloseIdleConnections()

	bodies := make([][]byte, len(samplePairs))
	for i, p := range samplePairs {
		bodies[i], _ = json.Marshal(map[string]string{"resume_text": p[0], "job_description": p[1]})
	}
	endpoint := strings.TrimRight(opts.baseURL, "/") + "/api/v1/score"

	ctx, cancel := context.WithTimeout(parent, opts.duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func(next int) {
			defer wg.Done()
			for ctx.Err() == nil {
				body := bodies[next%len(bodies)]
				next++

				req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
				if err != nil {
					stats.record(0, 0, err)
					return
				}
				req.Header.Set("Content-Type", "application/json")

				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					stats.record(elapsed, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.record(elapsed, resp.StatusCode, nil)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func printLoadReport(w io.Writer, s *loadStats, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", s.total)
	fmt.Fprintf(w, "Successful:      %d\n", s.success)
	fmt.Fprintf(w, "Errors:          %d\n", s.failed)
	if s.total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(s.failed)/float64(s.total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(s.total)/duration.Seconds())
	}

	if len(s.latencies) > 0 {
		sorted := slices.Clone(s.latencies)
		slices.Sort(sorted)
		var sum time.Duration
		for _, l := range sorted {
			sum += l
		}
		fmt.Fprintln(w, "\n=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", sorted[0])
		fmt.Fprintf(w, "Avg:    %s\n", sum/time.Duration(len(sorted)))
		for _, p := range []float64{50, 90, 95, 99} {
			fmt.Fprintf(w, "P%-2.0f:    %s\n", p, latencyPercentile(sorted, p))
		}
		fmt.Fprintf(w, "Max:    %s\n", sorted[len(sorted)-1])
	}

	fmt.Fprintln(w, "\n=== Status Codes ===")
	codes := make([]int, 0, len(s.codes))
	for code := range s.codes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, s.codes[code])
	}
}

// latencyPercentile uses the nearest-rank method on an ascending slice.
func latencyPercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
