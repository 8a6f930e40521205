package domain

import "github.com/google/uuid"

// Идентификаторы — обёртки над UUID. Равенство — по значению,
// нулевое значение означает "ещё не присвоен".

type OrderID struct{ uuid.UUID }

type CustomerID struct{ uuid.UUID }

type ShopID struct{ uuid.UUID }

type ProductID struct{ uuid.UUID }

// TrackingID — клиентский идентификатор заказа; присваивается один раз
// при инициализации и не совпадает с внутренним OrderID.
type TrackingID struct{ uuid.UUID }

// OrderItemID — последовательный номер позиции внутри заказа (с единицы).
type OrderItemID int64

func NewOrderID() OrderID       { return OrderID{uuid.New()} }
func NewTrackingID() TrackingID { return TrackingID{uuid.New()} }

func (id OrderID) IsZero() bool    { return id.UUID == uuid.Nil }
func (id CustomerID) IsZero() bool { return id.UUID == uuid.Nil }
func (id ShopID) IsZero() bool     { return id.UUID == uuid.Nil }
func (id ProductID) IsZero() bool  { return id.UUID == uuid.Nil }
func (id TrackingID) IsZero() bool { return id.UUID == uuid.Nil }

// Парсеры для внешних слоёв (HTTP, Kafka, БД).

func ParseOrderID(s string) (OrderID, error) {
	u, err := uuid.Parse(s)
	return OrderID{u}, err
}

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := uuid.Parse(s)
	return CustomerID{u}, err
}

func ParseShopID(s string) (ShopID, error) {
	u, err := uuid.Parse(s)
	return ShopID{u}, err
}

func ParseProductID(s string) (ProductID, error) {
	u, err := uuid.Parse(s)
	return ProductID{u}, err
}

func ParseTrackingID(s string) (TrackingID, error) {
	u, err := uuid.Parse(s)
	return TrackingID{u}, err
}
