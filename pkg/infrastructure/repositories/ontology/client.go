// Package ontology reads supply-chain objects from the knowledge-network query API.
package ontology

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/infrastructure/cache"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
)

const (
	queryPathFormat = "%s/api/ontology-query/v1/knowledge-networks/%s/object-types/%s"
	defaultPageSize = 1000
	maxErrorBody    = 512
	// maxPages guards against a server that keeps returning the same cursor
	maxPages = 1000
)

// ErrNotFound is returned when the network or object type does not exist
var ErrNotFound = errors.New("ontology object type not found")

// APIError is a non-2xx response from the query API
type APIError struct {
	StatusCode int
	ObjectType string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ontology query %s failed with status %d: %s", e.ObjectType, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Condition filters object instances
type Condition struct {
	Operation     string      `json:"operation"`
	Field         string      `json:"field,omitempty"`
	Value         interface{} `json:"value,omitempty"`
	ValueFrom     string      `json:"value_from,omitempty"`
	SubConditions []Condition `json:"sub_conditions,omitempty"`
}

// In matches records whose field is one of values
func In(field string, values []string) Condition {
	return Condition{Operation: "in", Field: field, Value: values, ValueFrom: "const"}
}

// Eq matches records whose field equals value
func Eq(field string, value string) Condition {
	return Condition{Operation: "==", Field: field, Value: value, ValueFrom: "const"}
}

// Record is one object instance as returned by the API
type Record map[string]interface{}

type queryRequest struct {
	Condition   *Condition    `json:"condition,omitempty"`
	Limit       int           `json:"limit"`
	SearchAfter []interface{} `json:"search_after,omitempty"`
	NeedTotal   bool          `json:"need_total"`
}

type queryResponse struct {
	Entries     []Record      `json:"entries"`
	SearchAfter []interface{} `json:"search_after"`
}

// ClientConfig configures a Client
type ClientConfig struct {
	BaseURL  string
	Token    string
	Network  string
	PageSize int
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client issues paginated object queries
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	cache      cache.Cache
	logger     *zap.Logger
}

// NewClient creates a query client. A nil cache disables response caching.
func NewClient(cfg ClientConfig, c cache.Cache, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if c == nil {
		c = cache.Nop{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      c,
		logger:     logging.OrNop(logger),
	}
}

// QueryAll follows search_after pagination until an empty page, a missing
// cursor or a short page, and returns every record matched.
func (c *Client) QueryAll(ctx context.Context, objectType string, cond Condition) ([]Record, error) {
	var (
		records []Record
		cursor  []interface{}
	)

	for page := 1; page <= maxPages; page++ {
		resp, err := c.queryPage(ctx, objectType, cond, cursor)
		if err != nil {
			return nil, err
		}
		if len(resp.Entries) == 0 {
			break
		}

		records = append(records, resp.Entries...)
		c.logger.Debug("Ontology page loaded",
			zap.String("object_type", objectType),
			zap.Int("page", page),
			zap.Int("entries", len(resp.Entries)),
			zap.Int("total", len(records)),
		)

		if len(resp.SearchAfter) == 0 || len(resp.Entries) < c.cfg.PageSize {
			break
		}
		cursor = resp.SearchAfter
	}

	return records, nil
}

func (c *Client) queryPage(ctx context.Context, objectType string, cond Condition, cursor []interface{}) (*queryResponse, error) {
	body, err := json.Marshal(queryRequest{
		Condition:   &cond,
		Limit:       c.cfg.PageSize,
		SearchAfter: cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ontology query: %w", err)
	}

	key := cache.Key("ontology", c.cfg.Network, objectType, string(body))
	if cached, ok, err := c.cache.Get(ctx, key, c.cfg.CacheTTL); err != nil {
		c.logger.Warn("Cache read failed, querying upstream", zap.String("object_type", objectType), zap.Error(err))
	} else if ok {
		return decodeResponse(cached)
	}

	raw, err := c.post(ctx, objectType, body)
	if err != nil {
		return nil, err
	}
	resp, err := decodeResponse(raw)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.Warn("Cache write failed", zap.String("object_type", objectType), zap.Error(err))
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, objectType string, body []byte) ([]byte, error) {
	url := fmt.Sprintf(queryPathFormat, c.cfg.BaseURL, c.cfg.Network, objectType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ontology request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-HTTP-Method-Override", http.MethodGet)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query ontology %s: %w", objectType, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read ontology response %s: %w", objectType, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		excerpt := string(raw)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: res.StatusCode, ObjectType: objectType, Body: excerpt}
	}
	return raw, nil
}

func decodeResponse(raw []byte) (*queryResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var resp queryResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode ontology response: %w", err)
	}
	return &resp, nil
}
