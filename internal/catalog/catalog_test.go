package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avdeenko/orderdesk/internal/transport"
)

func TestFetchFromStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"7","name":"Keyboard","price":49.99,"stock":5}]`))
	}))
	defer srv.Close()

	products := NewClient(srv.URL).Fetch(context.Background())
	require.Len(t, products, 1)
	require.Equal(t, "Keyboard", products[0].Name)
	require.Equal(t, 49.99, products[0].Price)
}

func TestFetchFallsBackOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	products := NewClient(srv.URL).Fetch(context.Background())
	require.Len(t, products, 4)

	p, ok := FindByName(products, "Laptop Gaming Pro")
	require.True(t, ok)
	require.Equal(t, 999.99, p.Price)
	require.Equal(t, 50, p.Stock)
}

func TestFetchFallsBackOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	require.Equal(t, Seed(), NewClient(srv.URL).Fetch(context.Background()))
}

func TestFetchFallsBackOnDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	require.Equal(t, Seed(), NewClient(srv.URL).Fetch(context.Background()))
}

func TestFindByNameIsCaseSensitive(t *testing.T) {
	products := []transport.Product{{ID: "3", Name: "Tablet Air", Price: 449.99, Stock: 25}}

	_, ok := FindByName(products, "tablet air")
	require.False(t, ok)

	p, ok := FindByName(products, "Tablet Air")
	require.True(t, ok)
	require.Equal(t, "3", p.ID)
}
