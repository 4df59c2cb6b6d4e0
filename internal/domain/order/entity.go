package order

import "time"

// Status of an order's payment
type Status string

const (
	StatusPaid      Status = "paid"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// ServiceType tells which collection ServiceID points into
type ServiceType string

const (
	ServiceCourse ServiceType = "course"
	ServiceClass  ServiceType = "class"
)

func (t ServiceType) IsValid() bool {
	return t == ServiceCourse || t == ServiceClass
}

// Order is a purchase of one course or class by a client.
// ClientID and ServiceID are soft references; ServiceName is a denormalized copy.
type Order struct {
	OrderID     string      `bson:"order_id" json:"order_id"`
	ClientID    string      `bson:"client_id" json:"client_id"`
	ServiceID   string      `bson:"service_id" json:"service_id"`
	ServiceType ServiceType `bson:"service_type" json:"service_type"`
	ServiceName string      `bson:"service_name" json:"service_name"`
	Amount      float64     `bson:"amount" json:"amount"`
	Status      Status      `bson:"status" json:"status"`
	OrderDate   time.Time   `bson:"order_date" json:"order_date"`
	DueDate     time.Time   `bson:"due_date" json:"due_date"`
}

// ServiceCount is one bucket of the enrollment-trend aggregation
type ServiceCount struct {
	ServiceName string `bson:"_id" json:"service_name"`
	Count       int64  `bson:"count" json:"count"`
}

// ServiceRevenue is one bucket of the top-services aggregation
type ServiceRevenue struct {
	ServiceName string  `bson:"_id" json:"service_name"`
	Total       float64 `bson:"total" json:"total_revenue"`
}
