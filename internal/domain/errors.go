package domain

import "errors"

// ErrBusinessRule — базовая (sentinel error) ошибка доменного правила.
// Все нарушения (невалидная цена, недопустимый переход, неактивный магазин
// и т.д.) оборачивают её через fmt.Errorf("%w: ...").
var ErrBusinessRule = errors.New("order business rule violated")
