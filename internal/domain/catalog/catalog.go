package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/go-playground/validator/v10"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("duplicate product id")
)

// Catalog is the read-only product lookup used by the cart and the API.
type Catalog interface {
	Product(id int) (Product, bool)
	List(filter Filter) []Product
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Category string
	Query    string
}

// MemoryCatalog keeps products in insertion order with an id index.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []Product
	byID     map[int]int
	validate *validator.Validate
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID:     make(map[int]int),
		validate: validator.New(),
	}
}

// Add validates and appends a product. It returns warnings for carbon
// attributes the model does not know; those fall back to defaults.
func (c *MemoryCatalog) Add(p Product) ([]string, error) {
	if err := c.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid product %d: %w", p.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[p.ID]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
	}
	c.byID[p.ID] = len(c.products)
	c.products = append(c.products, p)

	var warnings []string
	if !carbon.KnownZone(p.DeliveryDistance) {
		warnings = append(warnings, fmt.Sprintf("product %d: unknown delivery distance %q", p.ID, p.DeliveryDistance))
	}
	if !carbon.KnownPackaging(p.Packaging) {
		warnings = append(warnings, fmt.Sprintf("product %d: unknown packaging %q", p.ID, p.Packaging))
	}
	return warnings, nil
}

// Load reads a JSON array of products.
func (c *MemoryCatalog) Load(r io.Reader) ([]string, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	var warnings []string
	for _, p := range products {
		w, err := c.Add(p)
		if err != nil {
			return warnings, err
		}
		warnings = append(warnings, w...)
	}
	return warnings, nil
}

func (c *MemoryCatalog) LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

func (c *MemoryCatalog) Product(id int) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

func (c *MemoryCatalog) List(filter Filter) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if !p.Matches(filter.Query) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Categories returns the distinct category names, sorted.
func (c *MemoryCatalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range c.products {
		seen[p.Category] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
