package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash/internal/clock"
	"carwash/internal/modules/catalog"
	"carwash/internal/modules/order"
	"carwash/internal/modules/pricing"
	"carwash/internal/modules/report"
	"carwash/internal/modules/shift"
	"carwash/internal/modules/user"
	"carwash/internal/types"
)

type fakeCatalog struct {
	cat     catalog.Catalog
	saved   []catalog.VehicleProfile
	deleted []string
}

func (f *fakeCatalog) Catalog(context.Context) (catalog.Catalog, error) { return f.cat, nil }

func (f *fakeCatalog) Save(_ context.Context, p catalog.VehicleProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeCatalog) Delete(_ context.Context, name string) error {
	if _, ok := f.cat[name]; !ok {
		return catalog.ErrNotFound
	}
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeOrders struct {
	cat       catalog.Catalog
	created   []order.CreateCommand
	listDate  time.Time
	listShift types.Shift
}

func (f *fakeOrders) Create(_ context.Context, cmd order.CreateCommand) (order.Priced, error) {
	o := order.Order{ID: types.NewID(), VehicleType: cmd.VehicleType, BaseService: cmd.BaseService, Addons: cmd.Addons, Vacuum: cmd.Vacuum, PlateNumber: cmd.PlateNumber, Shift: types.ShiftAM}
	res, err := pricing.ComputeOrderPricing(f.cat, o.PricingInput())
	if err != nil {
		return order.Priced{}, err
	}
	f.created = append(f.created, cmd)
	return order.Priced{Order: o, Pricing: res}, nil
}

func (f *fakeOrders) Get(_ context.Context, id types.ID) (order.Priced, error) {
	return order.Priced{}, order.ErrNotFound
}

func (f *fakeOrders) ListByShift(_ context.Context, date time.Time, s types.Shift) ([]order.Priced, error) {
	f.listDate, f.listShift = date, s
	o := order.Order{ID: types.NewID(), VehicleType: "Car", BaseService: "Bodywash", Date: date, Shift: s}
	res, err := pricing.ComputeOrderPricing(f.cat, o.PricingInput())
	if err != nil {
		return nil, err
	}
	return []order.Priced{{Order: o, Pricing: res}}, nil
}

type fakeShift struct {
	saved []shift.SaveCommand
	clock clock.Clock
}

func (f *fakeShift) Summary(_ context.Context, date time.Time, s types.Shift) (shift.View, error) {
	return shift.View{Date: date, Shift: s, Orders: []order.Priced{}, Summary: shift.ComputeShiftSummary(nil, nil, nil, types.Amount{})}, nil
}

func (f *fakeShift) SaveRecord(_ context.Context, cmd shift.SaveCommand) (shift.View, error) {
	f.saved = append(f.saved, cmd)
	income := shift.SanitizeLineItems(cmd.OtherIncome)
	expenses := shift.SanitizeLineItems(cmd.Expenses)
	return shift.View{
		Date:    cmd.Date,
		Shift:   cmd.Shift,
		Record:  shift.Record{OtherIncome: income, Expenses: expenses, CashTransfer: cmd.CashTransfer},
		Summary: shift.ComputeShiftSummary(nil, income, expenses, cmd.CashTransfer),
	}, nil
}

func (f *fakeShift) Window(s types.Shift) (shift.Window, error) {
	if s == "" {
		s = shift.CurrentShift(f.clock)
	}
	return shift.WindowFor(f.clock, s), nil
}

type fakeReports struct{}

func (fakeReports) Monthly(_ context.Context, year, month int) (report.Monthly, error) {
	if month < 1 || month > 12 {
		return report.Monthly{}, report.ErrBadRequest
	}
	return report.MonthlySales(year, time.Month(month), map[string]decimal.Decimal{"2024-03-02": decimal.NewFromInt(250)}), nil
}

func (fakeReports) Yearly(_ context.Context, year int) (report.Yearly, error) {
	return report.YearlySales(year, nil), nil
}

type fakeUsers struct {
	users []user.User
}

func (f *fakeUsers) List(context.Context) ([]user.User, error) { return f.users, nil }

func (f *fakeUsers) Create(_ context.Context, cmd user.CreateCommand) (user.User, error) {
	for _, u := range f.users {
		if u.Username == cmd.Username {
			return user.User{}, user.ErrDuplicate
		}
	}
	r, ok := user.ParseRole(cmd.Role)
	if !ok {
		return user.User{}, user.ErrBadRequest
	}
	u := user.User{ID: types.NewID(), Username: cmd.Username, FullName: cmd.FullName, Role: r, PasswordHash: "hash"}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, cmd user.UpdateCommand) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) Delete(_ context.Context, id types.ID) error { return nil }

type testEnv struct {
	router  *gin.Engine
	catalog *fakeCatalog
	orders  *fakeOrders
	shift   *fakeShift
	users   *fakeUsers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := clock.NewFixed(time.Date(2024, 3, 10, 2, 0, 0, 0, time.FixedZone("PHT", 8*3600)))

	env := &testEnv{
		catalog: &fakeCatalog{cat: catalog.Default()},
		orders:  &fakeOrders{cat: catalog.Default()},
		shift:   &fakeShift{clock: clk},
		users:   &fakeUsers{},
	}
	env.router = NewRouter(RouterDeps{
		Catalog:     env.catalog,
		Pricing:     pricing.NewService(env.catalog),
		Order:       env.orders,
		Shift:       env.shift,
		Report:      fakeReports{},
		User:        env.users,
		Clock:       clk,
		Log:         log,
		CORSOrigins: []string{"http://pos.local"},
	})
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	w := newTestEnv(t).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestVehicles(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/vehicles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profiles []catalog.VehicleProfile
	decode(t, w, &profiles)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Car", profiles[0].Name)

	w = env.do(http.MethodPost, "/api/vehicles", `{"vehicle_name":"Van","bases":{"Bodywash":{"price":300,"vac":false}},"addons":{"Wax":"120"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, env.catalog.saved, 1)
	assert.True(t, env.catalog.saved[0].Addons["Wax"].Equal(decimal.NewFromInt(120)))

	w = env.do(http.MethodPost, "/api/vehicles", `{"vehicle_name":"","bases":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/vehicles/Truck", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(http.MethodDelete, "/api/vehicles/SUV", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/pricing/quote", map[string]any{
		"vehicle_type": "Car",
		"base_service": "Bodywash",
		"addons":       []string{"Wax"},
		"w_vac":        true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res pricing.Result
	decode(t, w, &res)
	assert.True(t, res.TotalPrice.Equal(decimal.NewFromInt(280)))
	assert.True(t, res.WorkerShare.Equal(decimal.NewFromInt(89)))
	assert.True(t, res.HasVacuum)

	w = env.do(http.MethodPost, "/api/pricing/quote", map[string]any{"vehicle_type": "Tricycle", "base_service": "Bodywash"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "unknown vehicle type")

	w = env.do(http.MethodPost, "/api/pricing/quote", `{"vehicle_type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/pricing/rules", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Seat Cover")
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/orders", map[string]any{
		"vehicle_type": "SUV",
		"base_service": "Bodywash",
		"plate_number": "ABC 123",
		"shift":        "pm",
		"date":         "2024-03-09",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID      string          `json:"id"`
		Addons  []string        `json:"addons"`
		Pricing *pricing.Result `json:"pricing"`
	}
	decode(t, w, &resp)
	assert.True(t, types.IsValidID(resp.ID))
	assert.NotNil(t, resp.Addons)
	require.NotNil(t, resp.Pricing)
	assert.True(t, resp.Pricing.BusinessShare.Equal(decimal.NewFromInt(147)))

	require.Len(t, env.orders.created, 1)
	assert.Equal(t, types.ShiftPM, env.orders.created[0].Shift)
	require.NotNil(t, env.orders.created[0].Date)
	assert.Equal(t, "2024-03-09", env.orders.created[0].Date.Format(types.DateLayout))

	w = env.do(http.MethodPost, "/api/orders", map[string]any{"vehicle_type": "Car", "base_service": "Polish", "plate_number": "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/api/orders", map[string]any{"vehicle_type": "Car", "base_service": "Bodywash", "plate_number": "X", "date": "09/03/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersDefaultsToCurrentShift(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.ShiftPM, env.orders.listShift)
	assert.Equal(t, "2024-03-09", env.orders.listDate.Format(types.DateLayout))

	var resp []map[string]any
	decode(t, w, &resp)
	require.Len(t, resp, 1)
	pr, ok := resp[0]["pricing"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 200.0, pr["total_price"])
	assert.Equal(t, 112.0, pr["business_share"])

	w = env.do(http.MethodGet, "/api/orders?date=2024-03-01&shift=AM", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.ShiftAM, env.orders.listShift)

	w = env.do(http.MethodGet, "/api/orders?shift=noon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/orders/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/orders/"+string(types.NewID()), nil).Code)
}

func TestShiftSummaryRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/shift_summary/2024-03-09/AM", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Date    string `json:"date"`
		Summary struct {
			GrandTotal decimal.Decimal `json:"grand_total"`
		} `json:"summary"`
	}
	decode(t, w, &view)
	assert.Equal(t, "2024-03-09", view.Date)
	assert.True(t, view.Summary.GrandTotal.Equal(decimal.NewFromInt(-400)))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/shift_summary/2024-03-09/XX", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/shift_summary/yesterday/AM", nil).Code)

	w = env.do(http.MethodPost, "/api/update_summary", `{
		"date": "2024-03-09",
		"shift": "PM",
		"other_income": [{"name": "Tips", "amount": "150"}, {"name": "", "amount": 20}],
		"expenses": [{"name": "Soap", "description": "refill", "amount": 50}, {"name": "Bad", "amount": "n/a"}],
		"gcash": "100"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &view)
	// 150 - 50 - 400 - 100
	assert.True(t, view.Summary.GrandTotal.Equal(decimal.NewFromInt(-400)))
	require.Len(t, env.shift.saved, 1)
	assert.Len(t, env.shift.saved[0].OtherIncome, 2)

	var raw map[string]any
	decode(t, w, &raw)
	assert.Len(t, raw["other_income"], 1)
	assert.Len(t, raw["expenses"], 1)

	w = env.do(http.MethodPost, "/api/update_summary", `{"date":"2024-03-09","shift":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShiftWindow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/shift_window", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var win shift.Window
	decode(t, w, &win)
	assert.Equal(t, types.ShiftPM, win.Shift)
	assert.Equal(t, 180, win.MinutesUntilEnd)
	assert.Equal(t, "2024-03-09", win.BusinessDate)

	w = env.do(http.MethodGet, "/api/shift_window?shift=AM", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &win)
	assert.True(t, win.Ended)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/shift_window?shift=ZZ", nil).Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/monthly_sales?month=3&year=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var monthly report.Monthly
	decode(t, w, &monthly)
	assert.Len(t, monthly.Days, 31)
	assert.True(t, monthly.Total.Equal(decimal.NewFromInt(250)))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/monthly_sales?month=13&year=2024", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/monthly_sales?month=march", nil).Code)

	w = env.do(http.MethodGet, "/api/yearly_sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var yearly report.Yearly
	decode(t, w, &yearly)
	assert.Equal(t, 2024, yearly.Year)
	assert.Len(t, yearly.Months, 12)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/users", map[string]any{"username": "maria", "full_name": "Maria", "role": "admin", "shift": nil, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hash")
	var created map[string]any
	decode(t, w, &created)
	assert.Equal(t, float64(user.LevelAdmin), created["permission_level"])
	assert.Nil(t, created["shift"])

	w = env.do(http.MethodPost, "/api/users", map[string]any{"username": "maria", "full_name": "Maria", "role": "admin", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	decode(t, w, &list)
	assert.Len(t, list, 1)

	id := string(types.NewID())
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/users/"+id, map[string]any{"username": "x"}).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/users/"+id, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodDelete, "/api/users/abc", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://pos.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://pos.local", w.Header().Get("Access-Control-Allow-Origin"))
}
