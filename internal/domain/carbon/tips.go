package carbon

import "github.com/example/ecolife-shop/internal/domain/delivery"

type TipCode string

const (
	TipLocalGoods     TipCode = "local_goods"
	TipLightPackaging TipCode = "light_packaging"
	TipBikeCourier    TipCode = "bike_courier"
)

type Tip struct {
	Code    TipCode `json:"code"`
	Message string  `json:"message"`
}

// Tips suggests how the cart footprint could be reduced.
func Tips(lines []Line, m delivery.Method) []Tip {
	var far, heavyPackaging bool
	for _, l := range lines {
		if l.DeliveryDistance == ZoneFar {
			far = true
		}
		if l.Packaging == PackagingPlastic || l.Packaging == PackagingGlass {
			heavyPackaging = true
		}
	}

	tips := make([]Tip, 0, 3)
	if far {
		tips = append(tips, Tip{Code: TipLocalGoods, Message: "Выбирайте местные товары для снижения транспортного следа"})
	}
	if heavyPackaging {
		tips = append(tips, Tip{Code: TipLightPackaging, Message: "Отдавайте предпочтение товарам без упаковки или в бумаге"})
	}
	if m != delivery.MethodBike {
		tips = append(tips, Tip{Code: TipBikeCourier, Message: "Используйте велокурьера для экономии 5% CO₂"})
	}
	return tips
}
