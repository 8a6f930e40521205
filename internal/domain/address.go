package domain

// DeliveryAddress — адрес доставки заказа.
type DeliveryAddress struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}
