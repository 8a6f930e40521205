package domain

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Money — точная денежная сумма. Сравнение и сложение без дрейфа
// плавающей точки: проверки равенства цен определяют валидность заказа.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney — нулевая сумма (нейтральный элемент для Add).
var ZeroMoney = Money{}

// NewMoneyFromString — парсит сумму из десятичной строки ("12.50").
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d}, nil
}

// MustMoney — как NewMoneyFromString, но паникует на невалидном литерале.
// Только для тестов и констант.
func MustMoney(s string) Money {
	m, err := NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add — сумма двух значений.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Multiply — произведение суммы на количество.
func (m Money) Multiply(quantity int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(quantity))}
}

// GreaterThanZero — строго больше нуля.
func (m Money) GreaterThanZero() bool { return m.amount.IsPositive() }

// Equal — точное равенство сумм (12.5 == 12.50).
func (m Money) Equal(other Money) bool { return m.amount.Equal(other.amount) }

// IsZero — сумма не задана либо равна нулю.
func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) String() string { return m.amount.String() }

// MarshalJSON / UnmarshalJSON — сумма в JSON как десятичная строка.
func (m Money) MarshalJSON() ([]byte, error) { return m.amount.MarshalJSON() }

func (m *Money) UnmarshalJSON(data []byte) error { return m.amount.UnmarshalJSON(data) }

// Scan / Value — хранение в Postgres как NUMERIC.
func (m *Money) Scan(src any) error { return m.amount.Scan(src) }

func (m Money) Value() (driver.Value, error) { return m.amount.Value() }
