// README: Smoke checks: environment, schema, every API route, consistency of totals and light load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"carwash/internal/infra"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

// Writes go to a fixed date far in the past so real shifts are untouched.
const smokeDate = "2000-01-03"

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	vehicle string
	base    string
	orderID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = infra.NewRedis(r.cfg.RedisAddr)
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
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

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "catalog cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migrations/*.sql",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				if err := infra.Migrate(ctx, r.db, r.cfg.MigrationDir); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "every table in migrations/ exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationDir)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},

		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK, nil),

		httpCase("Catalog: list vehicles", http.MethodGet, base+"/api/vehicles", nil, http.StatusOK,
			func(r *Runner, body []byte) error {
				var profiles []struct {
					Name  string                     `json:"vehicle_name"`
					Bases map[string]json.RawMessage `json:"bases"`
				}
				if err := json.Unmarshal(body, &profiles); err != nil {
					return err
				}
				for _, p := range profiles {
					for b := range p.Bases {
						r.vehicle, r.base = p.Name, b
						return nil
					}
				}
				return fmt.Errorf("catalog is empty")
			}),

		{
			Name:  "Pricing: quote shares balance",
			Focus: "business + worker + fees == after deduction + add-ons",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.do(ctx, http.MethodPost, base+"/api/pricing/quote", map[string]any{
					"vehicle_type": r.vehicle,
					"base_service": r.base,
					"addons":       []string{"Wax", "Not On Menu"},
				}, http.StatusOK, checkQuoteBalance)
			},
		},

		httpCase("Pricing: unknown vehicle -> 422", http.MethodPost, base+"/api/pricing/quote", map[string]any{
			"vehicle_type": "Spaceship",
			"base_service": "Bodywash",
		}, http.StatusUnprocessableEntity, nil),

		{
			Name:  "Order: record (valid)",
			Focus: "POST /api/orders",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.do(ctx, http.MethodPost, base+"/api/orders", r.orderBody("SMK "+uuid.NewString()[:4]), http.StatusCreated,
					func(r *Runner, body []byte) error {
						var o struct {
							ID string `json:"id"`
						}
						if err := json.Unmarshal(body, &o); err != nil {
							return err
						}
						r.orderID = o.ID
						return nil
					})
			},
		},

		httpCase("Order: missing plate -> 400", http.MethodPost, base+"/api/orders", map[string]any{
			"vehicle_type": "Car",
			"base_service": "Bodywash",
		}, http.StatusBadRequest, nil),

		{
			Name:  "Order: listed in its shift",
			Focus: "GET /api/orders?date=&shift=",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.do(ctx, http.MethodGet, base+"/api/orders?date="+smokeDate+"&shift=AM", nil, http.StatusOK,
					func(r *Runner, body []byte) error {
						var orders []struct {
							ID string `json:"id"`
						}
						if err := json.Unmarshal(body, &orders); err != nil {
							return err
						}
						for _, o := range orders {
							if o.ID == r.orderID {
								return nil
							}
						}
						return fmt.Errorf("order %s not listed", r.orderID)
					})
			},
		},

		httpCase("Shift: save record", http.MethodPost, base+"/api/update_summary", map[string]any{
			"date":         smokeDate,
			"shift":        "AM",
			"other_income": []map[string]any{{"name": "Tips", "description": "smoke", "amount": 100}},
			"expenses":     []map[string]any{{"name": "Soap", "amount": "25.50"}, {"name": "", "amount": 99}},
			"gcash":        10,
		}, http.StatusOK, checkSummaryFormula),

		httpCase("Shift: summary formula", http.MethodGet, base+"/api/shift_summary/"+smokeDate+"/AM", nil, http.StatusOK, checkSummaryFormula),

		httpCase("Shift: window", http.MethodGet, base+"/api/shift_window", nil, http.StatusOK, nil),

		httpCase("Report: monthly", http.MethodGet, base+"/api/monthly_sales?month=1&year=2000", nil, http.StatusOK,
			func(r *Runner, body []byte) error {
				var m struct {
					Days []json.RawMessage `json:"days"`
				}
				if err := json.Unmarshal(body, &m); err != nil {
					return err
				}
				if len(m.Days) != 31 {
					return fmt.Errorf("days=%d", len(m.Days))
				}
				return nil
			}),

		httpCase("Report: yearly", http.MethodGet, base+"/api/yearly_sales?year=2000", nil, http.StatusOK, nil),

		httpCase("Report: bad month -> 400", http.MethodGet, base+"/api/monthly_sales?month=13&year=2000", nil, http.StatusBadRequest, nil),

		httpCase("Users: list", http.MethodGet, base+"/api/users", nil, http.StatusOK, nil),

		httpCase("Users: invalid role -> 400", http.MethodPost, base+"/api/users", map[string]any{
			"username":  "smoke-" + uuid.NewString()[:8],
			"full_name": "Smoke",
			"role":      "owner",
			"password":  "secret123",
		}, http.StatusBadRequest, nil),

		{
			Name:  "Concurrency: parallel orders all counted",
			Focus: "summary order_count grows by exactly N",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentOrders(ctx, r)
			},
		},

		manualCase("Error: DB down -> 500", "stop postgres and watch responses"),
		manualCase("Error: Redis down -> catalog from postgres", "stop redis and watch catalog reads"),

		{
			Name:  "Perf: quote throughput",
			Focus: "pricing under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/pricing/quote", map[string]any{
					"vehicle_type": r.vehicle,
					"base_service": r.base,
				})
			},
		},
	}
}

func (r *Runner) orderBody(plate string) map[string]any {
	return map[string]any{
		"vehicle_type": r.vehicle,
		"base_service": r.base,
		"addons":       []string{"Wax"},
		"plate_number": plate,
		"washer_name":  "smoke",
		"shift":        "AM",
		"date":         smokeDate,
	}
}

type bodyCheck func(r *Runner, body []byte) error

func httpCase(name, method, url string, body any, want int, check bodyCheck) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			return r.do(ctx, method, url, body, want, check)
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url string, body any, want int, check bodyCheck) Result {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	payload, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != want {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", resp.StatusCode, want)}
	}
	if check != nil {
		if err := check(r, payload); err != nil {
			return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
		}
	}
	return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: StatusSkip, Note: note}
		},
	}
}

func checkQuoteBalance(_ *Runner, body []byte) error {
	var q struct {
		AfterDeduction decimal.Decimal `json:"after_deduction"`
		AddonTotal     decimal.Decimal `json:"addon_total"`
		BusinessShare  decimal.Decimal `json:"business_share"`
		WorkerShare    decimal.Decimal `json:"worker_share"`
		SSS            decimal.Decimal `json:"sss"`
		Vac            decimal.Decimal `json:"vac"`
	}
	if err := json.Unmarshal(body, &q); err != nil {
		return err
	}
	left := q.BusinessShare.Add(q.WorkerShare).Add(q.SSS).Add(q.Vac)
	right := q.AfterDeduction.Add(q.AddonTotal)
	if left.Sub(right).Abs().GreaterThan(decimal.RequireFromString("0.02")) {
		return fmt.Errorf("shares %s != %s", left, right)
	}
	return nil
}

type summaryView struct {
	Summary struct {
		OrderCount       int             `json:"order_count"`
		GrossSales       decimal.Decimal `json:"gross_sales"`
		FortyX           decimal.Decimal `json:"forty_x"`
		AddonSales       decimal.Decimal `json:"addon_sales"`
		POSPayment       decimal.Decimal `json:"pos_payment"`
		VacTotal         decimal.Decimal `json:"vac_total"`
		TotalOtherIncome decimal.Decimal `json:"total_other_income"`
		TotalExpenses    decimal.Decimal `json:"total_expenses"`
		Wages            decimal.Decimal `json:"wages"`
		CashTransfer     decimal.Decimal `json:"gcash"`
		GrandTotal       decimal.Decimal `json:"grand_total"`
	} `json:"summary"`
}

func checkSummaryFormula(_ *Runner, body []byte) error {
	var v summaryView
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	s := v.Summary
	want := s.GrossSales.Add(s.FortyX).Add(s.AddonSales).Add(s.TotalOtherIncome).
		Sub(s.TotalExpenses).Sub(s.Wages).Sub(s.POSPayment).Sub(s.VacTotal).Sub(s.CashTransfer)
	if !want.Equal(s.GrandTotal) {
		return fmt.Errorf("grand_total=%s recomputed=%s", s.GrandTotal, want)
	}
	if !s.TotalExpenses.Equal(decimal.RequireFromString("25.5")) {
		return fmt.Errorf("total_expenses=%s", s.TotalExpenses)
	}
	return nil
}

func (r *Runner) orderCount(ctx context.Context) (int, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/api/shift_summary/"+smokeDate+"/AM", nil)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	var v summaryView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return 0, err
	}
	return v.Summary.OrderCount, nil
}

func concurrentOrders(ctx context.Context, r *Runner) Result {
	before, err := r.orderCount(ctx)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		succ int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _ := json.Marshal(r.orderBody(fmt.Sprintf("CON %03d", i)))
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/api/orders", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				mu.Lock()
				succ++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	after, err := r.orderCount(ctx)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if succ != r.cfg.Concurrency || after-before != succ {
		return Result{Status: StatusFail, Note: fmt.Sprintf("created=%d counted=%d", succ, after-before)}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("created=%d", succ)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var (
		count, errCount int64
		mu              sync.Mutex
		wg              sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
			tables = append(tables, m[1])
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no CREATE TABLE statements under %s", dir)
	}
	return tables, nil
}
