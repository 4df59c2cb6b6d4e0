package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/internal/events"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

const (
	// LookupLimit caps every list returned to the support agent
	LookupLimit = 20

	// maxIDAttempts bounds retries when a generated id collides with an existing one
	maxIDAttempts = 3
)

// Service answers support questions about clients, orders, payments and classes,
// and records new enquiries and orders.
type Service struct {
	clients   client.Repository
	courses   course.Repository
	classes   class.Repository
	orders    order.Repository
	payments  payment.Repository
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
	log       *logger.Logger
}

// Deps holds the collaborators of the support service
type Deps struct {
	Clients   client.Repository
	Courses   course.Repository
	Classes   class.Repository
	Orders    order.Repository
	Payments  payment.Repository
	Publisher events.Publisher

	// Now defaults to time.Now
	Now func() time.Time
	// IDSuffix returns the random part of generated ids. Defaults to 8 uppercase hex characters of a UUID.
	IDSuffix func() string
}

// NewService creates a new support service
func NewService(deps Deps, log *logger.Logger) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.IDSuffix == nil {
		deps.IDSuffix = RandomIDSuffix
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}

	return &Service{
		clients:   deps.Clients,
		courses:   deps.Courses,
		classes:   deps.Classes,
		orders:    deps.Orders,
		payments:  deps.Payments,
		publisher: deps.Publisher,
		now:       deps.Now,
		newID:     deps.IDSuffix,
		log:       log.With("service", "support"),
	}
}

// RandomIDSuffix returns the first 8 hex characters of a random UUID, upper-cased
func RandomIDSuffix() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// SearchClients matches every non-empty filter field as a case-insensitive substring
func (s *Service) SearchClients(ctx context.Context, filter client.Filter) ([]*client.Client, error) {
	return s.clients.Search(ctx, filter, LookupLimit)
}

// GetOrdersByClient lists up to 20 orders of the client
func (s *Service) GetOrdersByClient(ctx context.Context, clientID string) ([]*order.Order, error) {
	return s.orders.ListByClient(ctx, clientID, LookupLimit)
}

// GetOrderByID returns errors.ErrNotFound when the order does not exist
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*order.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// FilterOrdersByStatus lists up to 20 orders with the given status. Unknown statuses match nothing.
func (s *Service) FilterOrdersByStatus(ctx context.Context, status string) ([]*order.Order, error) {
	return s.orders.ListByStatus(ctx, order.Status(status), LookupLimit)
}

// GetPaymentDetails returns the payment that settled the order
func (s *Service) GetPaymentDetails(ctx context.Context, orderID string) (*payment.Payment, error) {
	return s.payments.GetByOrderID(ctx, orderID)
}

// ListUpcomingClasses lists up to 20 classes dated now or later, earliest first
func (s *Service) ListUpcomingClasses(ctx context.Context) ([]*class.Class, error) {
	return s.classes.ListFrom(ctx, s.now().UTC(), LookupLimit)
}

// FilterClassesByInstructor lists up to 20 classes whose instructor contains name
func (s *Service) FilterClassesByInstructor(ctx context.Context, instructor string) ([]*class.Class, error) {
	return s.classes.ListByInstructor(ctx, instructor, LookupLimit)
}

// PendingDues is the outstanding balance of one client
type PendingDues struct {
	ClientID string  `json:"client_id"`
	Amount   float64 `json:"pending_dues"`
}

// CalculatePendingDues sums the client's pending orders. Zero when there are none.
func (s *Service) CalculatePendingDues(ctx context.Context, clientID string) (PendingDues, error) {
	pending, err := s.orders.ListByClientAndStatus(ctx, clientID, order.StatusPending)
	if err != nil {
		return PendingDues{}, err
	}

	total := decimal.Zero
	for _, o := range pending {
		total = total.Add(decimal.NewFromFloat(o.Amount))
	}

	return PendingDues{ClientID: clientID, Amount: total.InexactFloat64()}, nil
}

// EnquiryInput is a prospective client's contact details
type EnquiryInput struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Address  string     `json:"address,omitempty"`

	EnrolledServices []string `json:"enrolled_services,omitempty"`
}

// Validate requires name, email and phone
func (in EnquiryInput) Validate() error {
	var errs errors.MultiError
	if strings.TrimSpace(in.Name) == "" {
		errs.Add(errors.NewValidationError("name", "is required", in.Name))
	}
	if strings.TrimSpace(in.Email) == "" {
		errs.Add(errors.NewValidationError("email", "is required", in.Email))
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs.Add(errors.NewValidationError("phone", "is required", in.Phone))
	}
	return errs.ToError()
}

// CreateClientEnquiry stores a new active client and returns its id
func (s *Service) CreateClientEnquiry(ctx context.Context, in EnquiryInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	c := &client.Client{
		Name:             strings.TrimSpace(in.Name),
		Email:            strings.TrimSpace(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		Status:           client.StatusActive,
		RegistrationDate: s.now().UTC(),
		Birthday:         in.Birthday,
		Address:          in.Address,
		EnrolledServices: in.EnrolledServices,
	}
	if c.EnrolledServices == nil {
		c.EnrolledServices = []string{}
	}

	err := s.withFreshID("CLIENT_", func(id string) error {
		c.ClientID = id
		return s.clients.Create(ctx, c)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create client enquiry")
	}

	s.log.Infow("Client enquiry created", "client_id", c.ClientID)
	events.Emit(ctx, s.publisher, s.log, events.TypeClientEnquiryCreated, c.ClientID, events.ClientEnquiryCreated{
		ClientID: c.ClientID,
		Name:     c.Name,
		Email:    c.Email,
	})

	return c.ClientID, nil
}

// ServiceInfo names the course or class being ordered
type ServiceInfo struct {
	ServiceID   string   `json:"service_id"`
	ServiceType string   `json:"service_type"`
	ServiceName string   `json:"service_name"`
	Amount      *float64 `json:"amount"`
}

// Validate checks required fields, the service type and a non-negative amount
func (in ServiceInfo) Validate() error {
	var errs errors.MultiError
	if in.ServiceID == "" {
		errs.Add(errors.NewValidationError("service_id", "is required", in.ServiceID))
	}
	if !order.ServiceType(in.ServiceType).IsValid() {
		errs.Add(errors.NewValidationError("service_type", "must be course or class", in.ServiceType))
	}
	if in.ServiceName == "" {
		errs.Add(errors.NewValidationError("service_name", "is required", in.ServiceName))
	}
	if in.Amount == nil {
		errs.Add(errors.NewValidationError("amount", "is required", nil))
	} else if *in.Amount < 0 {
		errs.Add(errors.NewValidationError("amount", "must not be negative", *in.Amount))
	}
	return errs.ToError()
}

// CreateOrder stores a pending order for an existing client and service and returns its id.
// The due date equals the order date.
func (s *Service) CreateOrder(ctx context.Context, clientID string, info ServiceInfo) (string, error) {
	if clientID == "" {
		return "", errors.NewValidationError("client_id", "is required", clientID)
	}
	if err := info.Validate(); err != nil {
		return "", err
	}
	if err := s.checkReferences(ctx, clientID, info); err != nil {
		return "", err
	}

	now := s.now().UTC()
	o := &order.Order{
		ClientID:    clientID,
		ServiceID:   info.ServiceID,
		ServiceType: order.ServiceType(info.ServiceType),
		ServiceName: info.ServiceName,
		Amount:      *info.Amount,
		Status:      order.StatusPending,
		OrderDate:   now,
		DueDate:     now,
	}

	err := s.withFreshID("ORDER_", func(id string) error {
		o.OrderID = id
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create order")
	}

	s.log.Infow("Order created",
		"order_id", o.OrderID,
		"client_id", o.ClientID,
		"service_id", o.ServiceID,
	)
	events.Emit(ctx, s.publisher, s.log, events.TypeOrderCreated, o.ClientID, events.OrderCreated{
		OrderID:     o.OrderID,
		ClientID:    o.ClientID,
		ServiceID:   o.ServiceID,
		ServiceType: string(o.ServiceType),
		Amount:      o.Amount,
	})

	return o.OrderID, nil
}

func (s *Service) checkReferences(ctx context.Context, clientID string, info ServiceInfo) error {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.Wrapf(errors.ErrInvalidReference, "client %s does not exist", clientID)
		}
		return err
	}

	var err error
	switch order.ServiceType(info.ServiceType) {
	case order.ServiceCourse:
		_, err = s.courses.GetByID(ctx, info.ServiceID)
	case order.ServiceClass:
		_, err = s.classes.GetByID(ctx, info.ServiceID)
	}
	if errors.Is(err, errors.ErrNotFound) {
		return errors.Wrapf(errors.ErrInvalidReference, "%s %s does not exist", info.ServiceType, info.ServiceID)
	}
	return err
}

// withFreshID calls insert with prefix+suffix ids until one is not taken
func (s *Service) withFreshID(prefix string, insert func(id string) error) error {
	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := prefix + s.newID()
		err = insert(id)
		if !errors.Is(err, errors.ErrAlreadyExists) {
			return err
		}
		s.log.Warnf("Generated id %s already exists (attempt %d/%d)", id, attempt, maxIDAttempts)
	}
	return err
}
