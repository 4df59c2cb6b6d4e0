package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/domain/attendance"
	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/internal/testsupport/memstore"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

func newService(studio *memstore.Studio, now time.Time) *Service {
	return NewService(Deps{
		Clients:    studio.Clients,
		Courses:    studio.Courses,
		Classes:    studio.Classes,
		Orders:     studio.Orders,
		Payments:   studio.Payments,
		Attendance: studio.Attendance,
		Now:        func() time.Time { return now },
	}, logger.Nop())
}

func TestRevenueTotals_EmptyIsZero(t *testing.T) {
	svc := newService(memstore.New(), time.Now())

	revenue, err := svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, revenue)

	outstanding, err := svc.OutstandingPayments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, outstanding)
}

func TestRevenueTotals(t *testing.T) {
	studio := memstore.New()
	studio.Payments.Add(&payment.Payment{PaymentID: "P1", Amount: 1000}, &payment.Payment{PaymentID: "P2", Amount: 250.5})
	studio.Orders.Add(
		&order.Order{OrderID: "O1", Amount: 300, Status: order.StatusPending},
		&order.Order{OrderID: "O2", Amount: 700, Status: order.StatusPending},
		&order.Order{OrderID: "O3", Amount: 900, Status: order.StatusCancelled},
	)
	svc := newService(studio, time.Now())

	revenue, err := svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1250.5, revenue)

	outstanding, err := svc.OutstandingPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, outstanding)
}

func TestClientCounts_SumToTotal(t *testing.T) {
	studio := memstore.New()
	for i := 0; i < 7; i++ {
		status := client.StatusActive
		if i%3 == 0 {
			status = client.StatusInactive
		}
		studio.Clients.Add(&client.Client{ClientID: fmt.Sprintf("C%d", i), Status: status})
	}
	svc := newService(studio, time.Now())

	counts, err := svc.ClientCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts.Active)
	assert.Equal(t, int64(3), counts.Inactive)
	assert.Equal(t, int64(7), counts.Active+counts.Inactive)

	empty, err := newService(memstore.New(), time.Now()).ClientCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ClientCounts{}, empty)
}

func TestNewClientsThisMonth_Boundary(t *testing.T) {
	now := time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC)
	studio := memstore.New()
	studio.Clients.Add(
		&client.Client{ClientID: "last-instant-of-march", RegistrationDate: time.Date(2025, 3, 31, 23, 59, 59, 999, time.UTC)},
		&client.Client{ClientID: "first-instant-of-april", RegistrationDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		&client.Client{ClientID: "mid-april", RegistrationDate: time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)},
	)
	svc := newService(studio, now)

	n, err := svc.NewClientsThisMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMonthStart_NormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2025, 5, 1, 2, 0, 0, 0, ist) // still April 30 in UTC

	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), MonthStart(local))
}

func TestEnrollmentTrends_ReturnsEveryService(t *testing.T) {
	studio := memstore.New()
	for i, name := range []string{"Yoga", "Yoga", "Yoga", "Pilates", "Pilates", "Zumba", "HIIT", "Spin", "Barre", "Boxing"} {
		studio.Orders.Add(&order.Order{OrderID: fmt.Sprintf("O%d", i), ServiceName: name})
	}
	svc := newService(studio, time.Now())

	trends, err := svc.EnrollmentTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 7)
	assert.Equal(t, order.ServiceCount{ServiceName: "Yoga", Count: 3}, trends[0])
	assert.Equal(t, order.ServiceCount{ServiceName: "Pilates", Count: 2}, trends[1])
}

func TestTopServices_TiesOrderedByName(t *testing.T) {
	studio := memstore.New()
	for i, name := range []string{"Zumba", "Barre", "Pilates", "Yoga"} {
		amount := 400.0
		if name == "Yoga" {
			amount = 900
		}
		studio.Orders.Add(&order.Order{OrderID: fmt.Sprintf("O%d", i), ServiceName: name, Amount: amount})
	}
	svc := newService(studio, time.Now())

	top, err := svc.TopServices(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(top))
	for _, s := range top {
		names = append(names, s.ServiceName)
	}
	assert.Equal(t, []string{"Yoga", "Barre", "Pilates", "Zumba"}, names)

	trends, err := svc.EnrollmentTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 4)
	assert.Equal(t, "Barre", trends[0].ServiceName)
	assert.Equal(t, "Zumba", trends[3].ServiceName)
}

func TestTopServices_CappedAndSorted(t *testing.T) {
	studio := memstore.New()
	amounts := map[string]float64{"A": 100, "B": 700, "C": 300, "D": 500, "E": 900, "F": 200, "G": 50}
	i := 0
	for name, amount := range amounts {
		studio.Orders.Add(&order.Order{OrderID: fmt.Sprintf("O%d", i), ServiceName: name, Amount: amount})
		i++
	}
	svc := newService(studio, time.Now())

	top, err := svc.TopServices(context.Background())
	require.NoError(t, err)
	require.Len(t, top, TopServicesLimit)

	names := make([]string, 0, len(top))
	for i, s := range top {
		names = append(names, s.ServiceName)
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].Total, s.Total)
		}
	}
	assert.Equal(t, []string{"E", "B", "D", "C", "F"}, names)
}

func TestCourseCompletionRates(t *testing.T) {
	studio := memstore.New()
	studio.Courses.Add(
		&course.Course{CourseID: "1", Status: course.StatusActive},
		&course.Course{CourseID: "2", Status: course.StatusActive},
		&course.Course{CourseID: "3", Status: course.StatusCompleted},
	)
	svc := newService(studio, time.Now())

	rates, err := svc.CourseCompletionRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []course.StatusCount{{Status: "active", Count: 2}, {Status: "completed", Count: 1}}, rates)
}

func TestAttendancePercentage(t *testing.T) {
	studio := memstore.New()
	studio.Classes.Add(
		&class.Class{ClassID: "CLASS_001", Name: "Morning Yoga Flow"},
		&class.Class{ClassID: "CLASS_002", Name: "Evening Pilates"},
	)
	for i, attended := range []bool{true, true, true, false} {
		studio.Attendance.Add(&attendance.Record{AttendanceID: fmt.Sprintf("A%d", i), ClassID: "CLASS_001", Attended: attended})
	}
	svc := newService(studio, time.Now())

	rate, err := svc.AttendancePercentage(context.Background(), "Morning Yoga Flow")
	require.NoError(t, err)
	assert.Equal(t, AttendanceRate{Class: "Morning Yoga Flow", Percentage: 75.0}, rate)

	noRecords, err := svc.AttendancePercentage(context.Background(), "Evening Pilates")
	require.NoError(t, err)
	assert.Zero(t, noRecords.Percentage)

	_, err = svc.AttendancePercentage(context.Background(), "Underwater Basket Weaving")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPercentage_RoundsToTwoDecimals(t *testing.T) {
	assert.Equal(t, 66.67, Percentage(attendance.Tally{Total: 3, Attended: 2}))
	assert.Equal(t, 33.33, Percentage(attendance.Tally{Total: 3, Attended: 1}))
	assert.Equal(t, 100.0, Percentage(attendance.Tally{Total: 8, Attended: 8}))
	assert.Equal(t, 0.0, Percentage(attendance.Tally{}))
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	studio := memstore.New()
	studio.FailWith(errors.ErrTimeout)
	svc := newService(studio, time.Now())

	_, err := svc.ClientCounts(context.Background())
	assert.True(t, errors.Is(err, errors.ErrTimeout))

	_, err = svc.TopServices(context.Background())
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}
