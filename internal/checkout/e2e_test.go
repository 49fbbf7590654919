package checkout

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdeenko/orderdesk/internal/catalog"
	"github.com/avdeenko/orderdesk/internal/httpserver"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/orderform"
	"github.com/avdeenko/orderdesk/internal/ratelimit"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/service"
)

// startStore runs the real store stack on an in-memory database, seeded
// with the standard catalog.
func startStore(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}))

	gormRepo := &repo.GormRepo{DB: db}
	seed := make([]models.Product, 0, 4)
	for _, p := range catalog.Seed() {
		seed = append(seed, models.Product{Name: p.Name, Price: p.Price, Stock: p.Stock})
	}
	require.NoError(t, gormRepo.SeedProducts(context.Background(), seed))

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Repo: gormRepo},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: gormRepo}, Repo: gormRepo},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, db
}

func TestOrderEntryEndToEnd(t *testing.T) {
	srv, db := startStore(t)
	ctx := context.Background()

	products := catalog.NewClient(srv.URL).Fetch(ctx)
	require.Len(t, products, 4)

	checker := ratelimit.NewChecker(srv.URL)
	form := orderform.New(products, checker)
	form.SetCustomerName("Ana")
	form.SetCustomerEmail("ana@x.com")
	i := form.AddLine()
	require.NoError(t, form.SelectProduct(i, "Tablet Air"))
	require.NoError(t, form.SetQuantity(i, 2))

	form.RefreshOrderLimit(ctx)
	require.Eventually(t, form.CanSubmit, time.Second, 5*time.Millisecond)

	stored, err := NewFinalizer(srv.URL).Submit(ctx, form)
	require.NoError(t, err)
	require.Equal(t, 899.98, stored.Total)
	require.NotEmpty(t, stored.ID)
	require.Contains(t, stored.OrderCode, "A")
	require.False(t, stored.Timestamp.IsZero())

	// Persisted exactly once.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestOrderEntryRateLimitedAfterThreeOrders(t *testing.T) {
	srv, _ := startStore(t)
	ctx := context.Background()

	products := catalog.NewClient(srv.URL).Fetch(ctx)
	finalizer := NewFinalizer(srv.URL)

	submit := func(product string) (*orderform.Form, error) {
		form := orderform.New(products, nil)
		form.SetCustomerName("Ana")
		form.SetCustomerEmail("ana@x.com")
		i := form.AddLine()
		require.NoError(t, form.SelectProduct(i, product))
		require.NoError(t, form.SetQuantity(i, 1))
		_, err := finalizer.Submit(ctx, form)
		return form, err
	}

	for _, p := range []string{"Laptop Gaming Pro", "Tablet Air", "Monitor 4K"} {
		_, err := submit(p)
		require.NoError(t, err)
	}

	// A fourth attempt fails once the resolved history check lands on the
	// form.
	checker := ratelimit.NewChecker(srv.URL)
	form := orderform.New(products, checker)
	form.SetCustomerName("Ana")
	form.SetCustomerEmail("ana@x.com")
	i := form.AddLine()
	require.NoError(t, form.SelectProduct(i, "Smartphone X"))
	require.NoError(t, form.SetQuantity(i, 1))

	form.RefreshOrderLimit(ctx)
	require.Eventually(t, func() bool { return !form.OrderLimitOK() }, time.Second, 5*time.Millisecond)

	_, err := finalizer.Submit(ctx, form)
	require.ErrorIs(t, err, ErrNotSubmittable)
	require.ErrorIs(t, err, ratelimit.ErrOrderLimitExceeded)
}
