// Package catalog fetches set part lists from the Rebrickable parts catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/metrics"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Vincent-alt-spec/lego-builder-generator/internal/catalog")

var (
	// ErrFetchFailed is returned for any catalog failure. No partial data accompanies it.
	ErrFetchFailed = errors.New("catalog fetch failed")
	// ErrSetNotFound is a FetchFailed for an unknown set number.
	ErrSetNotFound = fmt.Errorf("%w: set not found", ErrFetchFailed)
)

// DefaultBaseURL is the Rebrickable LEGO API root
const DefaultBaseURL = "https://rebrickable.com/api/v3/lego"

// NormalizeSetNumber appends the standard "-1" variant suffix when missing
func NormalizeSetNumber(setNumber string) string {
	setNumber = strings.TrimSpace(setNumber)
	if setNumber == "" || strings.Contains(setNumber, "-") {
		return setNumber
	}
	return setNumber + "-1"
}

// Options configures a Client
type Options struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client reads paginated part lists
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	logger     *zap.Logger
}

// NewClient creates a catalog client
func NewClient(opts Options, logger *zap.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		pageSize:   opts.PageSize,
		logger:     logger,
	}
}

// Page is one decoded page of a set's part list
type Page struct {
	Number  int
	Records []models.PartRecord
	Next    string
}

type partsResponse struct {
	Count   int           `json:"count"`
	Next    *string       `json:"next"`
	Results []partsResult `json:"results"`
}

type partsResult struct {
	Quantity int `json:"quantity"`
	Part     struct {
		Name    string `json:"name"`
		PartCat *struct {
			Name string `json:"name"`
		} `json:"part_cat"`
	} `json:"part"`
	Color struct {
		Name string `json:"name"`
	} `json:"color"`
}

func (r partsResult) record() models.PartRecord {
	category := models.UnknownCategory
	if r.Part.PartCat != nil && r.Part.PartCat.Name != "" {
		category = r.Part.PartCat.Name
	}
	return models.PartRecord{
		Quantity:  r.Quantity,
		PartName:  r.Part.Name,
		Category:  category,
		ColorName: r.Color.Name,
	}
}

// PartsURL returns the first-page address for a set
func (c *Client) PartsURL(setNumber string) string {
	u := fmt.Sprintf("%s/sets/%s/parts/", c.baseURL, url.PathEscape(NormalizeSetNumber(setNumber)))
	if c.pageSize > 0 {
		u += "?page_size=" + strconv.Itoa(c.pageSize)
	}
	return u
}

// Walk requests pages one at a time, handing each to fn, until the catalog
// reports no next page. The first error stops the walk.
func (c *Client) Walk(ctx context.Context, setNumber string, fn func(Page) error) error {
	ctx, span := tracer.Start(ctx, "catalog.Walk")
	defer span.End()
	span.SetAttributes(attribute.String("set_number", setNumber))

	next := c.PartsURL(setNumber)
	pageNum := 0
	for next != "" {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		pageNum++

		page, err := c.fetchPage(ctx, next)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Warn("catalog page failed",
				zap.String("set_number", setNumber),
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			return err
		}
		page.Number = pageNum

		if err := fn(page); err != nil {
			return err
		}
		next = page.Next
	}

	span.SetAttributes(attribute.Int("pages", pageNum))
	c.logger.Debug("catalog walk finished", zap.String("set_number", setNumber), zap.Int("pages", pageNum))
	return nil
}

// FetchParts returns every record of a set's part list, or an error and nothing
func (c *Client) FetchParts(ctx context.Context, setNumber string) ([]models.PartRecord, error) {
	var records []models.PartRecord
	err := c.Walk(ctx, setNumber, func(p Page) error {
		records = append(records, p.Records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "key "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogRequests.WithLabelValues("transport_error").Inc()
		return Page{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.CatalogRequests.WithLabelValues("http_error").Inc()
		return Page{}, fmt.Errorf("%w: %s", ErrSetNotFound, pageURL)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.CatalogRequests.WithLabelValues("http_error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed partsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.CatalogRequests.WithLabelValues("decode_error").Inc()
		return Page{}, fmt.Errorf("%w: decode page: %v", ErrFetchFailed, err)
	}
	metrics.CatalogRequests.WithLabelValues("ok").Inc()

	page := Page{Records: make([]models.PartRecord, 0, len(parsed.Results))}
	for _, r := range parsed.Results {
		page.Records = append(page.Records, r.record())
	}
	if parsed.Next != nil && *parsed.Next != "" {
		next, err := resolveNext(pageURL, *parsed.Next)
		if err != nil {
			return Page{}, fmt.Errorf("%w: bad next link: %v", ErrFetchFailed, err)
		}
		page.Next = next
	}
	return page, nil
}

// resolveNext makes a possibly relative "next" link absolute
func resolveNext(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Ping checks that the catalog answers with the configured key
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/colors/?page_size=1", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	return nil
}
