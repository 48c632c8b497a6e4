package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crime-case-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// IndexDocument writes doc under id and waits for it to become searchable.
func (c *ElasticsearchClient) IndexDocument(ctx context.Context, index, id string, doc map[string]interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document %s: %s", id, res.Status())
	}
	return nil
}

// EnsureIndex creates index with body (settings and mappings) unless it
// already exists. An existing index is left untouched.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index string, body map[string]interface{}) (bool, error) {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		return false, fmt.Errorf("index exists request failed: %w", err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case 200:
		return false, nil
	case 404:
	default:
		return false, fmt.Errorf("index exists %s: %s", index, exists.Status())
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("marshal index body: %w", err)
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  bytes.NewReader(payload),
	}.Do(ctx, c.Client)
	if err != nil {
		return false, fmt.Errorf("index create request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		// another worker manager may have won the race
		if res.StatusCode == 400 && bytes.Contains(readAll(res), []byte("resource_already_exists_exception")) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return true, nil
}

func readAll(res *esapi.Response) []byte {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	return buf.Bytes()
}
