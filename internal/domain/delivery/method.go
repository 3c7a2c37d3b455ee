package delivery

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMethod = errors.New("unknown delivery method")

// Method identifies how an order is delivered to the customer
type Method string

const (
	MethodBike     Method = "bike"
	MethodElectric Method = "electric"
	MethodStandard Method = "standard"
)

// Default is the method selected for a fresh cart and after every order
const Default = MethodBike

// Option describes the price surcharge and carbon multiplier of a method
type Option struct {
	Method      Method  `json:"method"`
	Name        string  `json:"name"`
	Price       int     `json:"price"`
	CarbonCoef  float64 `json:"carbon_coef"`
	Description string  `json:"description"`
}

var options = map[Method]Option{
	MethodBike: {
		Method:      MethodBike,
		Name:        "Велокурьер",
		Price:       0,
		CarbonCoef:  0.95,
		Description: "Бесплатно, -5% к углеродному следу",
	},
	MethodElectric: {
		Method:      MethodElectric,
		Name:        "Электромобиль",
		Price:       5,
		CarbonCoef:  1.0,
		Description: "+5 руб., стандартный след",
	},
	MethodStandard: {
		Method:      MethodStandard,
		Name:        "Обычная доставка",
		Price:       10,
		CarbonCoef:  1.1,
		Description: "+10 руб., +10% к следу",
	},
}

// Parse converts user input into a Method
func Parse(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}

func (m Method) Valid() bool {
	_, ok := options[m]
	return ok
}

// Option returns the option for m. Unknown methods resolve to the default
// so that pricing and carbon stay total over their input.
func (m Method) Option() Option {
	if opt, ok := options[m]; ok {
		return opt
	}
	return options[Default]
}

func (m Method) CarbonCoef() float64 { return m.Option().CarbonCoef }
func (m Method) Price() int          { return m.Option().Price }

// Options lists every method in display order
func Options() []Option {
	return []Option{options[MethodBike], options[MethodElectric], options[MethodStandard]}
}
