package domain

// OrderStatus — состояние заказа в жизненном цикле.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusPaid       OrderStatus = "PAID"
	StatusApproved   OrderStatus = "APPROVED"
	StatusCancelling OrderStatus = "CANCELLING"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Таблица допустимых переходов:
//
//	PENDING --pay--> PAID --approve--> APPROVED (терминальное)
//	PENDING --cancel--> CANCELLED (терминальное)
//	PAID --initCancel--> CANCELLING --cancel--> CANCELLED (терминальное)
var transitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusPaid: true, StatusCancelled: true},
	StatusPaid:       {StatusApproved: true, StatusCancelling: true},
	StatusCancelling: {StatusCancelled: true},
}

// CanTransitionTo — разрешён ли переход из s в target.
// Любая пара вне таблицы запрещена; терминальные состояния переходов не имеют.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return transitions[s][target]
}

// IsTerminal — терминальное состояние (APPROVED или CANCELLED).
func (s OrderStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusCancelled
}

// IsZero — статус ещё не присвоен (заказ не инициализирован).
func (s OrderStatus) IsZero() bool { return s == "" }
