package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdeenko/orderdesk/internal/catalog"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/service"
)

type testEnv struct {
	T    *testing.T
	DB   *gorm.DB
	Repo *repo.GormRepo
	Srv  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
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
	Register(e, &Deps{
		ProductHandler: &ProductHTTP{Repo: gormRepo},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: gormRepo}, Repo: gormRepo},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &testEnv{T: t, DB: db, Repo: gormRepo, Srv: srv}
}

func (env *testEnv) doJSON(method, path string, body any) (*http.Response, []byte) {
	env.T.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.Srv.URL+path, rd)
	require.NoError(env.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.Srv.Client().Do(req)
	require.NoError(env.T, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(env.T, err)
	return resp, data
}
