package domain

// OrderItem — позиция заказа: товар, количество, цена за единицу и подытог.
// ID и ссылка на заказ присваиваются агрегатом при инициализации.
type OrderItem struct {
	ID       OrderItemID `json:"id"`
	OrderID  OrderID     `json:"order_id"`
	Product  Product     `json:"product"`
	Quantity int64       `json:"quantity"`
	Price    Money       `json:"price"`
	SubTotal Money       `json:"sub_total"`
}

// initialize — проставляет позиции её номер и идентификатор родительского заказа.
func (i *OrderItem) initialize(orderID OrderID, itemID OrderItemID) {
	i.OrderID = orderID
	i.ID = itemID
}

// priceIsValid — цена позиции положительна и подытог равен цене × количество.
func (i *OrderItem) priceIsValid() bool {
	return i.Price.GreaterThanZero() && i.SubTotal.Equal(i.Price.Multiply(i.Quantity))
}
