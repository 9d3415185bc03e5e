package lookup

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

	"github.com/aretw0/larder/pkg/nutrient"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "larder/1.0 (+https://github.com/aretw0/larder)"
	// DefaultLimit is the page size used when the caller passes limit <= 0.
	DefaultLimit = 10
)

// ErrNoResults is returned when a lookup finds nothing usable.
var ErrNoResults = errors.New("no foods found")

// Searcher finds foods by free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Food, error)
}

// Client talks to the Open Food Facts API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

var _ Searcher = (*Client)(nil)

// Search runs a full-text product search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.baseURL(), url.QueryEscape(query), limit)

	var parsed offSearchResponse
	if err := c.getJSON(ctx, u, &parsed); err != nil {
		return nil, err
	}

	out := make([]Food, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		food, ok := p.food()
		if !ok {
			continue
		}
		out = append(out, food)
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNoResults, query)
	}
	return out, nil
}

// Product fetches a single product by barcode.
func (c *Client) Product(ctx context.Context, code string) (Food, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Food{}, errors.New("barcode cannot be empty")
	}
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL(), url.PathEscape(code))

	var parsed offProductResponse
	if err := c.getJSON(ctx, u, &parsed); err != nil {
		return Food{}, err
	}
	food, ok := parsed.Product.food()
	if parsed.Status != 1 || !ok {
		return Food{}, fmt.Errorf("%w for barcode %q", ErrNoResults, code)
	}
	if food.Code == "" {
		food.Code = code
	}
	return food, nil
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create openfoodfacts request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	return nil
}

type offProductResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	Nutriments  map[string]any `json:"nutriments"`
}

// offKeys maps fields to nutriment keys. Only the per-100 variants are read
// since records are normalized to the reference serving.
var offKeys = map[nutrient.Field]string{
	nutrient.Energy:  "energy-kcal",
	nutrient.Fat:     "fat",
	nutrient.Protein: "proteins",
	nutrient.Carbs:   "carbohydrates",
	nutrient.Fiber:   "fiber",
	nutrient.Sugar:   "sugars",
	nutrient.Sodium:  "sodium",
}

const kcalPerKJ = 1 / 4.184

func (p offProduct) food() (Food, bool) {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		return Food{}, false
	}
	f := Food{
		Code:   strings.TrimSpace(p.Code),
		Name:   name,
		Brand:  firstBrand(p.Brands),
		Values: make(map[nutrient.Field]float64),
	}
	for _, field := range nutrient.Fields {
		v, ok := parseFloatAny(p.Nutriments[offKeys[field]+"_100g"])
		if !ok && field == nutrient.Energy {
			// Some products only carry kJ.
			if kj, kjOK := parseFloatAny(p.Nutriments["energy_100g"]); kjOK {
				v, ok = kj*kcalPerKJ, true
			}
		}
		if !ok || v < 0 {
			continue
		}
		if field == nutrient.Sodium {
			v *= 1000 // g → mg
		}
		f.Values[field] = v
	}
	return f, true
}

func firstBrand(brands string) string {
	if i := strings.IndexByte(brands, ','); i >= 0 {
		brands = brands[:i]
	}
	return strings.TrimSpace(brands)
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
