package payment

import "time"

// Method used to settle an order
type Method string

const (
	MethodCard         Method = "card"
	MethodCash         Method = "cash"
	MethodUPI          Method = "upi"
	MethodBankTransfer Method = "bank_transfer"
)

// Methods lists every accepted payment method
func Methods() []Method {
	return []Method{MethodCard, MethodCash, MethodUPI, MethodBankTransfer}
}

// Payment settles exactly one paid order
type Payment struct {
	PaymentID     string    `bson:"payment_id" json:"payment_id"`
	OrderID       string    `bson:"order_id" json:"order_id"`
	ClientID      string    `bson:"client_id" json:"client_id"`
	Amount        float64   `bson:"amount" json:"amount"`
	PaymentDate   time.Time `bson:"payment_date" json:"payment_date"`
	PaymentMethod Method    `bson:"payment_method" json:"payment_method"`
	TransactionID string    `bson:"transaction_id" json:"transaction_id"`
}
