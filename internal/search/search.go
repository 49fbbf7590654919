package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avdeenko/orderdesk/internal/models"
)

const OrderIndex = "order"

// OrderDoc is the elasticsearch projection of a persisted order; items are
// not indexed, only the fields the orders view searches on.
type OrderDoc struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
	OrderCode    string    `json:"order_code"`
	Total        float64   `json:"total"`
	Timestamp    time.Time `json:"timestamp"`
}

type OrderSearch struct {
	ES    *elasticsearch.Client
	Index string
}

// NewClient connects to elasticsearch and verifies the cluster responds
// before handing the client out.
func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func (s *OrderSearch) IndexOrder(ctx context.Context, order models.Order) error {
	doc := OrderDoc{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		OrderCode:    order.OrderCode,
		Total:        order.Total,
		Timestamp:    order.Timestamp,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode order doc: %w", err)
	}

	res, err := s.ES.Index(
		s.Index,
		&buf,
		s.ES.Index.WithDocumentID(order.ID),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index order: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy match over customer name, email and order code, name
// weighted highest.
func (s *OrderSearch) Search(ctx context.Context, query string, from, size int) (int64, []OrderDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"customer_name^2", "email", "order_code"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search orders: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source OrderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]OrderDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
