package domain

// Shop — снимок магазина: каталог товаров и флаг активности.
// Отдельный агрегат; заказу нужен только для валидации при создании.
type Shop struct {
	ID       ShopID    `json:"id"`
	Products []Product `json:"products"`
	Active   bool      `json:"active"`
}

// ProductByID — товар каталога по идентификатору; (Product{}, false), если не найден.
func (s *Shop) ProductByID(id ProductID) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
