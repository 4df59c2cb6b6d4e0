// Package studiotest wires the query services over in-memory fakes with a small
// fixed data set, for tests of the layers above them.
package studiotest

import (
	"testing"
	"time"

	"studiodesk/internal/domain/attendance"
	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/internal/events"
	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/internal/testsupport/memstore"
	"studiodesk/internal/tools"
	"studiodesk/pkg/logger"
)

// Now is the fixed clock of every Env
var Now = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

// Env bundles fakes and the services built on them
type Env struct {
	Studio    *memstore.Studio
	Publisher *events.RecordingPublisher
	Support   *support.Service
	Dashboard *dashboard.Service
}

// New builds an empty Env
func New(t testing.TB) *Env {
	t.Helper()

	studio := memstore.New()
	publisher := &events.RecordingPublisher{}
	now := func() time.Time { return Now }
	log := logger.Nop()

	return &Env{
		Studio:    studio,
		Publisher: publisher,
		Support: support.NewService(support.Deps{
			Clients:   studio.Clients,
			Courses:   studio.Courses,
			Classes:   studio.Classes,
			Orders:    studio.Orders,
			Payments:  studio.Payments,
			Publisher: publisher,
			Now:       now,
		}, log),
		Dashboard: dashboard.NewService(dashboard.Deps{
			Clients:    studio.Clients,
			Courses:    studio.Courses,
			Classes:    studio.Classes,
			Orders:     studio.Orders,
			Payments:   studio.Payments,
			Attendance: studio.Attendance,
			Now:        now,
		}, log),
	}
}

// Seeded builds an Env holding the fixture data below
func Seeded(t testing.TB) *Env {
	env := New(t)
	env.Seed()
	return env
}

// ToolDeps returns tool dependencies over the Env services
func (e *Env) ToolDeps() tools.Deps {
	return tools.Deps{Support: e.Support, Dashboard: e.Dashboard, Log: logger.Nop()}
}

// Catalog builds the full tool registry over the Env services
func (e *Env) Catalog(t testing.TB) *tools.Registry {
	t.Helper()
	registry, err := tools.NewCatalog(e.ToolDeps())
	if err != nil {
		t.Fatalf("build tool catalog: %v", err)
	}
	return registry
}

// Seed adds:
//   - clients CLIENT_A (active, Priya Sharma), CLIENT_B (active, registered this month), CLIENT_C (inactive)
//   - course COURSE_001 "Yoga Beginner" and class CLASS_001 "Morning Yoga" (completed) and CLASS_002 (upcoming)
//   - orders ORDER_1 (paid 2500), ORDER_2 (pending 1200.50), ORDER_3 (pending 300) for CLIENT_A
//   - payment for ORDER_1
//   - four attendance records for CLASS_001, three attended
func (e *Env) Seed() {
	s := e.Studio

	s.Clients.Add(
		&client.Client{ClientID: "CLIENT_A", Name: "Priya Sharma", Email: "priya@example.com", Phone: "+91 98765 43210",
			Status: client.StatusActive, RegistrationDate: Now.AddDate(0, -3, 0), EnrolledServices: []string{"COURSE_001"}},
		&client.Client{ClientID: "CLIENT_B", Name: "Arjun Mehta", Email: "arjun@example.com", Phone: "+91 91234 56789",
			Status: client.StatusActive, RegistrationDate: Now.AddDate(0, 0, -2), EnrolledServices: []string{}},
		&client.Client{ClientID: "CLIENT_C", Name: "Meera Iyer", Email: "meera@example.com", Phone: "+91 99887 66554",
			Status: client.StatusInactive, RegistrationDate: Now.AddDate(-1, 0, 0), EnrolledServices: []string{}},
	)

	s.Courses.Add(&course.Course{
		CourseID: "COURSE_001", Name: "Yoga Beginner", Instructor: "Anita Rao", DurationWeeks: 8, Price: 2500,
		MaxCapacity: 20, EnrolledCount: 12, StartDate: Now.AddDate(0, -1, 0), EndDate: Now.AddDate(0, 1, 0), Status: course.StatusActive,
	})

	s.Classes.Add(
		&class.Class{ClassID: "CLASS_001", Name: "Morning Yoga", Instructor: "Anita Rao", Date: Now.AddDate(0, 0, -7),
			DurationMinutes: 60, MaxCapacity: 15, EnrolledStudents: []string{"CLIENT_A", "CLIENT_B"}, Status: class.StatusCompleted, Price: 300},
		&class.Class{ClassID: "CLASS_002", Name: "Evening HIIT", Instructor: "Rahul Verma", Date: Now.AddDate(0, 0, 3),
			DurationMinutes: 45, MaxCapacity: 12, EnrolledStudents: []string{}, Status: class.StatusScheduled, Price: 350},
	)

	s.Orders.Add(
		&order.Order{OrderID: "ORDER_1", ClientID: "CLIENT_A", ServiceID: "COURSE_001", ServiceType: order.ServiceCourse,
			ServiceName: "Yoga Beginner", Amount: 2500, Status: order.StatusPaid, OrderDate: Now.AddDate(0, -1, 0), DueDate: Now.AddDate(0, -1, 7)},
		&order.Order{OrderID: "ORDER_2", ClientID: "CLIENT_A", ServiceID: "CLASS_002", ServiceType: order.ServiceClass,
			ServiceName: "Evening HIIT", Amount: 1200.50, Status: order.StatusPending, OrderDate: Now.AddDate(0, 0, -5), DueDate: Now.AddDate(0, 0, 2)},
		&order.Order{OrderID: "ORDER_3", ClientID: "CLIENT_A", ServiceID: "CLASS_001", ServiceType: order.ServiceClass,
			ServiceName: "Morning Yoga", Amount: 300, Status: order.StatusPending, OrderDate: Now.AddDate(0, 0, -9), DueDate: Now.AddDate(0, 0, -2)},
	)

	s.Payments.Add(&payment.Payment{
		PaymentID: "PAY_1", OrderID: "ORDER_1", ClientID: "CLIENT_A", Amount: 2500,
		PaymentDate: Now.AddDate(0, -1, 1), PaymentMethod: payment.MethodUPI, TransactionID: "TXN_1",
	})

	for i, attended := range []bool{true, true, true, false} {
		s.Attendance.Add(&attendance.Record{
			AttendanceID: "ATT_" + string(rune('1'+i)),
			ClassID:      "CLASS_001",
			ClientID:     "CLIENT_A",
			Date:         Now.AddDate(0, 0, -7),
			Attended:     attended,
		})
	}
}
