// Package queue publishes and consumes domain events over RabbitMQ.
package queue

// Queue name for finalized invoices. Publisher and consumer both
// declare it durable so either side may start first.
const OrderPaidQueue = "order.paid"

// OrderPaidLine is one invoice line inside an OrderPaidEvent.
type OrderPaidLine struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Total    int64  `json:"total"`
}

// OrderPaidEvent is published whenever an invoice is finalized, from a
// checkout or a counter sale. It carries everything a downstream
// consumer needs to print a receipt or feed revenue reports without
// touching the primary database.
type OrderPaidEvent struct {
	OrderID      uint64          `json:"order_id"`
	CashierID    uint64          `json:"cashier_id"`
	CashierName  string          `json:"cashier_name"`
	CustomerName string          `json:"customer_name,omitempty"`
	TableName    string          `json:"table_name,omitempty"`
	StartTime    string          `json:"start_time,omitempty"`
	EndTime      string          `json:"end_time,omitempty"`
	TableCharge  int64           `json:"table_charge"`
	Lines        []OrderPaidLine `json:"lines"`
	TotalAmount  int64           `json:"total_amount"`
	PaidAt       string          `json:"paid_at"`
}
