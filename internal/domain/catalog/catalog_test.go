package catalog

import (
	"strings"
	"testing"

	"github.com/example/ecolife-shop/internal/domain/carbon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

const sampleCatalog = `[
  {"id": 1, "name": "Бамбуковая зубная щётка", "price": 150, "category": "bath",
   "weight": 0.2, "productionCoef": 1.0, "deliveryDistance": "regional", "packaging": "paper"},
  {"id": 2, "name": "Стеклянная бутылка", "price": 420, "category": "kitchen",
   "deliveryDistance": "far", "packaging": "glass"},
  {"id": 3, "name": "Мешочек для хлеба", "price": 99, "category": "kitchen",
   "weight": 0.05, "deliveryDistance": "local", "packaging": "none"}
]`

func loadSample(t *testing.T) *MemoryCatalog {
	t.Helper()
	c := NewMemoryCatalog()
	warnings, err := c.Load(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Empty(t, warnings)
	return c
}

// ============================================
// Product Tests
// ============================================

func TestProduct_CarbonAttributesDefaults(t *testing.T) {
	p := Product{ID: 7, DeliveryDistance: carbon.ZoneLocal, Packaging: carbon.PackagingNone}

	a := p.CarbonAttributes()

	assert.Equal(t, carbon.DefaultWeight, a.Weight)
	assert.Equal(t, carbon.DefaultProductionCoef, a.ProductionCoef)
}

func TestProduct_CarbonAttributesExplicitZeroWeight(t *testing.T) {
	p := Product{ID: 7, Weight: ptr(0), ProductionCoef: ptr(2)}

	a := p.CarbonAttributes()

	assert.Equal(t, 0.0, a.Weight)
	assert.Equal(t, 2.0, a.ProductionCoef)
}

func TestProduct_Carbon(t *testing.T) {
	p := Product{ID: 1, Weight: ptr(0.2), ProductionCoef: ptr(1), DeliveryDistance: carbon.ZoneRegional, Packaging: carbon.PackagingPaper}
	assert.InDelta(t, 0.4525, p.Carbon(), 1e-9)
}

func TestProduct_Matches(t *testing.T) {
	p := Product{Name: "Бамбуковая зубная щётка"}

	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("зубная"))
	assert.True(t, p.Matches("  БАМБУК "))
	assert.False(t, p.Matches("бутылка"))
}

// ============================================
// MemoryCatalog Tests
// ============================================

func TestMemoryCatalog_Load(t *testing.T) {
	c := loadSample(t)

	p, ok := c.Product(2)
	require.True(t, ok)
	assert.Equal(t, "Стеклянная бутылка", p.Name)
	assert.Nil(t, p.Weight)

	_, ok = c.Product(99)
	assert.False(t, ok)
}

func TestMemoryCatalog_ListKeepsOrder(t *testing.T) {
	c := loadSample(t)

	products := c.List(Filter{})

	require.Len(t, products, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{products[0].ID, products[1].ID, products[2].ID})
}

func TestMemoryCatalog_ListFilters(t *testing.T) {
	c := loadSample(t)

	tests := []struct {
		name     string
		filter   Filter
		expected []int
	}{
		{"by category", Filter{Category: "kitchen"}, []int{2, 3}},
		{"by query", Filter{Query: "хлеб"}, []int{3}},
		{"category and query", Filter{Category: "bath", Query: "бутылка"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []int
			for _, p := range c.List(tt.filter) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestMemoryCatalog_Categories(t *testing.T) {
	c := loadSample(t)
	assert.Equal(t, []string{"bath", "kitchen"}, c.Categories())
}

func TestMemoryCatalog_AddDuplicate(t *testing.T) {
	c := loadSample(t)

	_, err := c.Add(Product{ID: 1, Name: "dup", Category: "bath"})

	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestMemoryCatalog_AddInvalid(t *testing.T) {
	c := NewMemoryCatalog()

	tests := []struct {
		name    string
		product Product
	}{
		{"missing id", Product{Name: "x", Category: "bath"}},
		{"missing name", Product{ID: 1, Category: "bath"}},
		{"negative price", Product{ID: 1, Name: "x", Category: "bath", Price: -1}},
		{"negative weight", Product{ID: 1, Name: "x", Category: "bath", Weight: ptr(-0.1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Add(tt.product)
			assert.Error(t, err)
		})
	}
}

func TestMemoryCatalog_AddWarnsOnUnknownAttributes(t *testing.T) {
	c := NewMemoryCatalog()

	warnings, err := c.Add(Product{ID: 5, Name: "x", Category: "bath", DeliveryDistance: "moon", Packaging: "foil"})

	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	_, ok := c.Product(5)
	assert.True(t, ok)
}

func TestMemoryCatalog_LoadMalformed(t *testing.T) {
	c := NewMemoryCatalog()
	_, err := c.Load(strings.NewReader(`{"id": 1}`))
	assert.Error(t, err)
}
