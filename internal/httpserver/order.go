package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/search"
	"github.com/avdeenko/orderdesk/internal/service"
	"github.com/avdeenko/orderdesk/internal/transport"
	"github.com/avdeenko/orderdesk/internal/util"
)

type OrderHTTP struct {
	Svc    *service.OrderService
	Repo   *repo.GormRepo
	Search *search.OrderSearch
}

// GetOrders serves two views from one route: with ?email= it returns the
// slim history records the rate-limit checker consumes, without it the full
// orders for display.
func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	if email := c.QueryParam("email"); email != "" {
		orders, err := h.Repo.ListOrdersByEmail(ctx, email)
		if err != nil {
			l.Error("get_orders_failed", "status", 500, "reason", "cannot read order history", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot read orders")
		}

		records := make([]transport.OrderHistoryRecord, len(orders))
		for i, o := range orders {
			records[i] = transport.OrderHistoryRecord{
				ID:        o.ID,
				Email:     o.Email,
				Timestamp: o.Timestamp,
			}
		}
		l.Info("get_order_history_success", "count", len(records))
		return c.JSON(http.StatusOK, records)
	}

	orders, err := h.Repo.ListOrders(ctx)
	if err != nil {
		l.Error("get_orders_failed", "status", 500, "reason", "cannot read orders from db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read orders")
	}

	out := make([]transport.Order, len(orders))
	for i, o := range orders {
		out[i] = toTransportOrder(o)
	}
	l.Info("get_orders_success", "count", len(out))
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.Order
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	stored, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_order_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_order_failed", "status", 500, "reason", "cannot persist order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot persist order")
	}

	l.Info("create_order_success", "orderID", stored.ID, "orderCode", stored.OrderCode)
	return c.JSON(http.StatusCreated, toTransportOrder(*stored))
}

// SearchOrders prefers elasticsearch and quietly falls back to the database
// when it is unconfigured or unhappy.
func (h *OrderHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search_orders")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	if h.Search != nil {
		total, docs, err := h.Search.Search(ctx, q, offset, limit)
		if err == nil {
			l.Info("search_orders_success", "source", "es", "total", total)
			return c.JSON(http.StatusOK, map[string]any{
				"data": docs,
				"meta": map[string]any{"page": page, "size": limit, "total": total},
			})
		}
		l.Warn("search_orders_es_failed", "reason", "falling back to db", "error", err)
	}

	orders, err := h.Repo.SearchOrders(ctx, q)
	if err != nil {
		l.Error("search_orders_failed", "status", 500, "reason", "cannot search orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search orders")
	}

	out := make([]transport.Order, len(orders))
	for i, o := range orders {
		out[i] = toTransportOrder(o)
	}
	l.Info("search_orders_success", "source", "db", "total", len(out))
	return c.JSON(http.StatusOK, map[string]any{
		"data": out,
		"meta": map[string]any{"page": page, "size": limit, "total": len(out)},
	})
}

func toTransportOrder(o models.Order) transport.Order {
	lines := make([]transport.OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = transport.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Stock:     it.Stock,
		}
	}
	return transport.Order{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Lines:        lines,
		Total:        o.Total,
		OrderCode:    o.OrderCode,
		Timestamp:    o.Timestamp,
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
