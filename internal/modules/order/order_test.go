// README: Order service tests (create, recorded prices, invalid requests).
package order

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carwash/internal/clock"
	"carwash/internal/modules/catalog"
	"carwash/internal/testutil"
	"carwash/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id types.ID) (*Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]Order, error) {
	args := m.Called(ctx, date, shift)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Error(1)
}

func (m *MockRepository) ListBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	args := m.Called(ctx, from, to)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Error(1)
}

type staticCatalog struct {
	cat catalog.Catalog
	err error
}

func (s staticCatalog) Catalog(context.Context) (catalog.Catalog, error) { return s.cat, s.err }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var manila = time.FixedZone("PHT", 8*3600)

func newTestService(repo Repository, now time.Time) *Service {
	return NewService(repo, staticCatalog{cat: catalog.Default()}, clock.NewFixed(now), quietLogger())
}

func TestCreatePricesAndStores(t *testing.T) {
	repo := new(MockRepository)
	now := time.Date(2024, 3, 9, 10, 15, 0, 0, manila)
	svc := newTestService(repo, now)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *Order) bool {
		return o.PlateNumber == "ABC 123" && o.Shift == types.ShiftAM &&
			o.Date.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) &&
			len(o.Addons) == 1 && types.IsValidID(string(o.ID)) &&
			o.BasePrice.Equal(decimal.NewFromInt(200)) && !o.BaseVacuum &&
			len(o.AddonPrices) == 1 && o.AddonPrices["Wax"].Equal(decimal.NewFromInt(80))
	})).Return(nil).Once()

	got, err := svc.Create(context.Background(), CreateCommand{
		VehicleType: "Car",
		BaseService: "Bodywash",
		Addons:      []string{"Wax", " Wax ", ""},
		PlateNumber: " abc 123 ",
		WasherName:  "Jun",
	})
	require.NoError(t, err)
	assert.True(t, got.Pricing.TotalPrice.Equal(decimal.NewFromInt(280)))
	assert.True(t, got.Pricing.BusinessShare.Equal(decimal.NewFromInt(144)))
	assert.True(t, got.Pricing.WorkerShare.Equal(decimal.NewFromInt(94)))
	repo.AssertExpectations(t)
}

func TestCreateAfterMidnightBelongsToPreviousPMShift(t *testing.T) {
	repo := new(MockRepository)
	now := time.Date(2024, 3, 10, 2, 30, 0, 0, manila)
	svc := newTestService(repo, now)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	got, err := svc.Create(context.Background(), CreateCommand{
		VehicleType: "SUV",
		BaseService: "Spray Only",
		PlateNumber: "XYZ 789",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ShiftPM, got.Shift)
	assert.Equal(t, "2024-03-09", got.Date.Format(types.DateLayout))
}

func TestCreateExplicitShiftAndDate(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.Date(2024, 3, 10, 9, 0, 0, 0, manila))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	date := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	got, err := svc.Create(context.Background(), CreateCommand{
		VehicleType: "Car",
		BaseService: "Vacuum Only",
		PlateNumber: "LMN 456",
		Shift:       types.ShiftPM,
		Date:        &date,
	})
	require.NoError(t, err)
	assert.Equal(t, types.ShiftPM, got.Shift)
	assert.Equal(t, "2024-02-29", got.Date.Format(types.DateLayout))
	assert.True(t, got.Pricing.HasVacuum)
}

func TestCreateRejectsInvalidRequests(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, manila)
	cases := []struct {
		name string
		cmd  CreateCommand
		want error
	}{
		{"missing plate", CreateCommand{VehicleType: "Car", BaseService: "Bodywash"}, ErrBadRequest},
		{"missing vehicle", CreateCommand{BaseService: "Bodywash", PlateNumber: "A"}, ErrBadRequest},
		{"bad shift", CreateCommand{VehicleType: "Car", BaseService: "Bodywash", PlateNumber: "A", Shift: "NIGHT"}, ErrBadRequest},
		{"unknown vehicle", CreateCommand{VehicleType: "Truck", BaseService: "Bodywash", PlateNumber: "A"}, catalog.ErrUnknownVehicleType},
		{"unknown base", CreateCommand{VehicleType: "Car", BaseService: "Polish", PlateNumber: "A"}, catalog.ErrUnknownService},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, now)
			_, err := svc.Create(context.Background(), tc.cmd)
			assert.ErrorIs(t, err, tc.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.Date(2024, 3, 9, 10, 0, 0, 0, manila))
	boom := errors.New("boom")
	repo.On("Create", mock.Anything, mock.Anything).Return(boom).Once()

	_, err := svc.Create(context.Background(), CreateCommand{VehicleType: "Car", BaseService: "Bodywash", PlateNumber: "A"})
	assert.ErrorIs(t, err, boom)
}

func TestListByShiftPricesFromRecordedPrices(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, staticCatalog{err: errors.New("catalog down")}, clock.NewFixed(time.Now()), quietLogger())
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	repo.On("ListByShift", mock.Anything, date, types.ShiftAM).Return([]Order{
		{
			ID: "1", VehicleType: "Jeepney", BaseService: "Bodywash", Addons: []string{"Wax", "Perfume"}, PlateNumber: "A",
			BasePrice: decimal.NewFromInt(180), BaseVacuum: true,
			AddonPrices: map[string]decimal.Decimal{"Wax": decimal.NewFromInt(100)},
		},
	}, nil).Once()

	got, err := svc.ListByShift(context.Background(), date, types.ShiftAM)
	require.NoError(t, err)
	require.Len(t, got, 1)
	p := got[0].Pricing
	assert.True(t, p.TotalPrice.Equal(decimal.NewFromInt(280)))
	assert.True(t, p.HasVacuum)
	// 140*0.7 + 100*0.4
	assert.True(t, p.BusinessShare.Equal(decimal.NewFromInt(138)), "business %s", p.BusinessShare)
	// 140*0.3 + 100*0.6 - 2 - 5
	assert.True(t, p.WorkerShare.Equal(decimal.NewFromInt(95)), "worker %s", p.WorkerShare)
	require.Len(t, p.Addons, 2)
	assert.False(t, p.Addons[1].Known)
}

// editableCatalog lets a test change prices after orders are recorded.
type editableCatalog struct {
	cat catalog.Catalog
}

func (e *editableCatalog) Catalog(context.Context) (catalog.Catalog, error) { return e.cat, nil }

// memRepository keeps orders in insertion order.
type memRepository struct {
	orders []Order
}

func (m *memRepository) Create(_ context.Context, o *Order) error {
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memRepository) Get(_ context.Context, id types.ID) (*Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepository) ListByShift(_ context.Context, date time.Time, shift types.Shift) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.Date.Equal(date) && o.Shift == shift {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepository) ListBetween(_ context.Context, from, to time.Time) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func TestRecordedOrderKeepsPricesAfterCatalogChanges(t *testing.T) {
	ctx := context.Background()
	cat := &editableCatalog{cat: catalog.Default()}
	svc := NewService(&memRepository{}, cat, clock.NewFixed(time.Date(2024, 3, 9, 10, 0, 0, 0, manila)), quietLogger())

	created, err := svc.Create(ctx, CreateCommand{
		VehicleType: "Car",
		BaseService: "Bodywash with Vacuum",
		Addons:      []string{"Wax"},
		PlateNumber: "ABC 123",
	})
	require.NoError(t, err)
	require.True(t, created.Pricing.HasVacuum)

	edited := catalog.Default()
	car := edited["Car"]
	car.Bases = map[string]catalog.BaseService{"Bodywash with Vacuum": {Price: decimal.NewFromInt(400)}}
	car.Addons = map[string]decimal.Decimal{"Wax": decimal.NewFromInt(150)}
	edited["Car"] = car
	cat.cat = edited

	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	got, err := svc.ListByShift(ctx, date, types.ShiftAM)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.Pricing, got[0].Pricing)

	delete(cat.cat, "Car")
	one, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Pricing, one.Pricing)
	assert.True(t, one.Pricing.Vac.Equal(decimal.NewFromInt(5)))
}

func TestListByShiftEmptySkipsCatalog(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, staticCatalog{err: errors.New("catalog down")}, clock.NewFixed(time.Now()), quietLogger())
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	repo.On("ListByShift", mock.Anything, date, types.ShiftPM).Return(nil, nil).Once()

	got, err := svc.ListByShift(context.Background(), date, types.ShiftPM)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByShiftInvalidShift(t *testing.T) {
	svc := newTestService(new(MockRepository), time.Now())
	_, err := svc.ListByShift(context.Background(), time.Now(), "X")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestListBetweenRejectsReversedRange(t *testing.T) {
	svc := newTestService(new(MockRepository), time.Now())
	from := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListBetween(context.Background(), from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestGetNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.Now())
	repo.On("Get", mock.Anything, types.ID("missing")).Return(nil, ErrNotFound).Once()

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(testutil.OpenDB(t, "orders"))
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2024, 3, 9, 18, 0, 0, 0, manila))
	svc := NewService(store, staticCatalog{cat: catalog.Default()}, clk, quietLogger())

	vac := false
	first, err := svc.Create(ctx, CreateCommand{VehicleType: "Car", BaseService: "Bodywash with Vacuum", Vacuum: &vac, Addons: []string{"Wax"}, PlateNumber: "AAA 111"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Create(ctx, CreateCommand{VehicleType: "SUV", BaseService: "Bodywash", PlateNumber: "BBB 222"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wax"}, got.Addons)
	require.NotNil(t, got.Vacuum)
	assert.False(t, *got.Vacuum)
	assert.False(t, got.Pricing.HasVacuum)

	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	list, err := svc.ListByShift(ctx, date, types.ShiftPM)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	list, err = svc.ListBetween(ctx, date, date)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = store.Get(ctx, types.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}
