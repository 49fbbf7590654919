package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/transport"
)

type ProductHTTP struct {
	Repo *repo.GormRepo
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Repo.ListProducts(ctx)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "reason", "cannot read products from db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read products")
	}

	out := make([]transport.Product, len(items))
	for i, p := range items {
		out[i] = toTransportProduct(p)
	}

	l.Info("get_products_success", "count", len(out))
	return c.JSON(http.StatusOK, out)
}

func toTransportProduct(p models.Product) transport.Product {
	return transport.Product{
		ID:    strconv.FormatUint(uint64(p.ID), 10),
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
}
