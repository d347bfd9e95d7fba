package enum

// OrderStatus 订单状态
// @Omit(OpenOrderStatus {OrderStatusClosed, OrderStatusRefunded})
// @Derive(Stringer)
// @Pick(unexport finalOrderStatus {OrderStatusClosed, OrderStatusRefunded})
type OrderStatus uint8

const (
	OrderStatusCreated OrderStatus = iota + 1
	OrderStatusPaid
	OrderStatusShipped
	OrderStatusClosed
	OrderStatusRefunded
)
