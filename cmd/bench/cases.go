// README: Smoke cases for the itinerary API plus DB, Redis, concurrency and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	// sessionID is set by the session create case and reused by later cases.
	sessionID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

var tripForm = map[string]any{
	"travelers":     2,
	"budget":        "40000-80000",
	"start_date":    "2025-06-01",
	"end_date":      "2025-06-03",
	"destination":   "Goa",
	"travel_type":   "leisure",
	"flight_option": "withFlight",
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},

		httpCase("API: health", http.MethodGet, fixed("/health"), nil, 200),
		httpCase("API: form options", http.MethodGet, fixed("/api/options"), nil, 200),
		httpCase("API: travel links", http.MethodGet, fixed("/api/links"), nil, 200),
		httpCase("API: accommodations", http.MethodGet, fixed("/api/accommodations?destination=Goa"), nil, 200),

		{
			Name: "Session: create",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				status, body, err := r.do(ctx, http.MethodPost, "/api/sessions", map[string]any{})
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", status)}
				}
				var resp struct {
					SessionID string `json:"session_id"`
				}
				if err := json.Unmarshal(body, &resp); err != nil || resp.SessionID == "" {
					return Result{Status: "FAIL", Note: "no session_id in response"}
				}
				r.sessionID = resp.SessionID
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},
		httpCase("Session: get", http.MethodGet, inSession(""), nil, 200),
		httpCase("Session: invalid id -> 400", http.MethodGet, fixed("/api/sessions/bad-id!"), nil, 400),
		httpCase("Session: unknown id -> 404", http.MethodGet, fixed("/api/sessions/00000000000000000000000000000000"), nil, 404),
		httpCase("Itinerary: none yet -> 404", http.MethodGet, inSession("/itinerary"), nil, 404),
		httpCase("Itinerary: missing fields -> 400", http.MethodPost, inSession("/itinerary"), map[string]any{"destination": "Goa"}, 400),
		httpCase("Itinerary: end before start -> 400", http.MethodPost, inSession("/itinerary"), withField(tripForm, "end_date", "2025-05-30"), 400),
		httpCase("Itinerary: adjust before generate -> 400", http.MethodPost, inSession("/itinerary/adjust"), map[string]any{"instruction": "more beaches"}, 400),

		liveCase("Itinerary: generate", httpCase("", http.MethodPost, inSession("/itinerary"), tripForm, 200)),
		liveCase("Itinerary: adjust", httpCase("", http.MethodPost, inSession("/itinerary/adjust"), map[string]any{"instruction": "Add a spice plantation tour on day 2"}, 200)),
		liveCase("Itinerary: pdf", httpCase("", http.MethodGet, inSession("/itinerary.pdf"), nil, 200)),
		liveCase("Concurrency: one in-flight call per session", TestCase{Run: concurrentGenerate}),

		httpCase("Session: abandon", http.MethodDelete, inSession(""), nil, 204),
		httpCase("Session: gone after abandon -> 404", http.MethodGet, inSession(""), nil, 404),

		{
			Name: "Perf: options throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, "/api/options")
			},
		},
	}
}

func fixed(path string) func(r *Runner) string {
	return func(*Runner) string { return path }
}

func inSession(suffix string) func(r *Runner) string {
	return func(r *Runner) string { return "/api/sessions/" + r.sessionID + suffix }
}

func withField(form map[string]any, key string, v any) map[string]any {
	out := make(map[string]any, len(form))
	for k, val := range form {
		out[k] = val
	}
	out[key] = v
	return out
}

func (r *Runner) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, err
}

func httpCase(name, method string, path func(r *Runner) string, body any, okStatuses ...int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, _, err := r.do(ctx, method, path(r), body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			latency := time.Since(start)
			if contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

// liveCase skips tc unless -live is set, since it spends provider quota.
func liveCase(name string, tc TestCase) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.Live {
				return Result{Status: "SKIP", Note: "live=false"}
			}
			return tc.Run(ctx, r)
		},
	}
}

// concurrentGenerate fires parallel generates at one session; all but one must get 409.
func concurrentGenerate(ctx context.Context, r *Runner) Result {
	const parallel = 4
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, busy int
	)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, err := r.do(ctx, http.MethodPost, inSession("/itinerary")(r), tripForm)
			if err != nil {
				return
			}
			mu.Lock()
			switch status {
			case http.StatusOK:
				ok++
			case http.StatusConflict:
				busy++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if ok <= 1 && ok+busy == parallel {
		return Result{Status: "PASS", Note: fmt.Sprintf("ok=%d busy=%d", ok, busy)}
	}
	return Result{Status: "FAIL", Note: fmt.Sprintf("ok=%d busy=%d", ok, busy)}
}

func perfLoad(ctx context.Context, r *Runner, path string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				_, _, err := r.do(ctx, http.MethodGet, path, nil)
				mu.Lock()
				if err != nil {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
