package domain

// Product — факт каталога магазина: идентификатор, название, цена.
// Только для чтения; источником выступает снимок Shop.
type Product struct {
	ID    ProductID `json:"id"`
	Name  string    `json:"name"`
	Price Money     `json:"price"`
}
