package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"studiodesk/internal/domain/attendance"
	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// TopServicesLimit caps the revenue ranking
const TopServicesLimit = 5

// Service computes business metrics for studio owners
type Service struct {
	clients    client.Repository
	courses    course.Repository
	classes    class.Repository
	orders     order.Repository
	payments   payment.Repository
	attendance attendance.Repository
	now        func() time.Time
	log        *logger.Logger
}

// Deps holds the collaborators of the dashboard service
type Deps struct {
	Clients    client.Repository
	Courses    course.Repository
	Classes    class.Repository
	Orders     order.Repository
	Payments   payment.Repository
	Attendance attendance.Repository
	Now        func() time.Time
}

// NewService creates a new dashboard service
func NewService(deps Deps, log *logger.Logger) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		clients:    deps.Clients,
		courses:    deps.Courses,
		classes:    deps.Classes,
		orders:     deps.Orders,
		payments:   deps.Payments,
		attendance: deps.Attendance,
		now:        deps.Now,
		log:        log.With("service", "dashboard"),
	}
}

// TotalRevenue sums every payment
func (s *Service) TotalRevenue(ctx context.Context) (float64, error) {
	return s.payments.SumAmount(ctx)
}

// OutstandingPayments sums the amounts of pending orders
func (s *Service) OutstandingPayments(ctx context.Context) (float64, error) {
	return s.orders.SumAmountByStatus(ctx, order.StatusPending)
}

// ClientCounts always carries both keys, even when a count is zero
type ClientCounts struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// ClientCounts counts active and inactive clients
func (s *Service) ClientCounts(ctx context.Context) (ClientCounts, error) {
	active, err := s.clients.CountByStatus(ctx, client.StatusActive)
	if err != nil {
		return ClientCounts{}, err
	}
	inactive, err := s.clients.CountByStatus(ctx, client.StatusInactive)
	if err != nil {
		return ClientCounts{}, err
	}
	return ClientCounts{Active: active, Inactive: inactive}, nil
}

// MonthStart returns the first instant of t's month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NewClientsThisMonth counts clients registered since the start of the current UTC month
func (s *Service) NewClientsThisMonth(ctx context.Context) (int64, error) {
	return s.clients.CountRegisteredSince(ctx, MonthStart(s.now()))
}

// EnrollmentTrends counts orders per service, most ordered first. Every service is returned.
func (s *Service) EnrollmentTrends(ctx context.Context) ([]order.ServiceCount, error) {
	return s.orders.CountByService(ctx, 0)
}

// TopServices ranks up to five services by summed order amount
func (s *Service) TopServices(ctx context.Context) ([]order.ServiceRevenue, error) {
	return s.orders.RevenueByService(ctx, TopServicesLimit)
}

// CourseCompletionRates counts courses per status
func (s *Service) CourseCompletionRates(ctx context.Context) ([]course.StatusCount, error) {
	return s.courses.CountByStatus(ctx)
}

// AttendanceRate is the share of attended records of one class, in percent
type AttendanceRate struct {
	Class      string  `json:"class"`
	Percentage float64 `json:"attendance_percentage"`
}

// AttendancePercentage resolves the class by exact name. errors.ErrNotFound when no class has it.
// A class without records reports 0.
func (s *Service) AttendancePercentage(ctx context.Context, className string) (AttendanceRate, error) {
	c, err := s.classes.FindByName(ctx, className)
	if err != nil {
		return AttendanceRate{}, err
	}

	tally, err := s.attendance.TallyByClass(ctx, c.ClassID)
	if err != nil {
		return AttendanceRate{}, errors.Wrapf(err, "tally attendance for %s", className)
	}

	return AttendanceRate{Class: className, Percentage: Percentage(tally)}, nil
}

// Percentage returns attended/total*100 rounded half away from zero to two decimals
func Percentage(t attendance.Tally) float64 {
	if t.Total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(t.Attended).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(t.Total)).
		Round(2)
	return pct.InexactFloat64()
}
