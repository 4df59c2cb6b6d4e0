// Package seeds generates mock studio data and loads it into the business collections.
package seeds

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiodesk/internal/domain/attendance"
	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/pkg/errors"
)

// Counts sizes a generated data set
type Counts struct {
	Clients int
	Courses int
	Classes int
	Orders  int
}

// ProfileFor returns the data set size of an environment
func ProfileFor(env string) (Counts, error) {
	switch env {
	case "dev", "":
		return Counts{Clients: 50, Courses: 5, Classes: 25, Orders: 100}, nil
	case "staging":
		return Counts{Clients: 100, Courses: 10, Classes: 50, Orders: 200}, nil
	case "test":
		return Counts{Clients: 10, Courses: 3, Classes: 8, Orders: 20}, nil
	default:
		return Counts{}, errors.Wrapf(errors.ErrInvalidInput, "unknown seed environment %q", env)
	}
}

// Dataset is one generated snapshot of every business collection
type Dataset struct {
	Clients    []*client.Client
	Courses    []*course.Course
	Classes    []*class.Class
	Orders     []*order.Order
	Payments   []*payment.Payment
	Attendance []*attendance.Record
}

var (
	courseNames = []string{
		"Yoga Beginner", "Yoga Advanced", "Pilates Fundamentals",
		"HIIT Training", "Strength Training", "Cardio Blast",
		"Meditation & Mindfulness", "Dance Fitness", "CrossFit", "Zumba",
	}

	classNames = []string{
		"Morning Yoga", "Evening Pilates", "HIIT Workout", "Strength Session",
		"Cardio Burn", "Meditation Class", "Dance Party", "CrossFit WOD",
	}

	instructors = []string{
		"Sarah Johnson", "Mike Chen", "Priya Sharma", "David Wilson",
		"Lisa Rodriguez", "James Kumar", "Emily Davis", "Alex Thompson",
	}

	firstNames = []string{
		"Aarav", "Ananya", "Rohan", "Isha", "Vikram", "Neha", "Karan", "Pooja",
		"Daniel", "Olivia", "Ethan", "Sophia", "Lucas", "Mia", "Noah", "Ava",
	}

	lastNames = []string{
		"Sharma", "Patel", "Reddy", "Iyer", "Gupta", "Nair", "Singh", "Das",
		"Miller", "Brown", "Garcia", "Martinez", "Lee", "Walker", "Young", "King",
	}

	streets = []string{"MG Road", "Park Street", "Linking Road", "Brigade Road", "Anna Salai", "FC Road"}
	cities  = []string{"Mumbai", "Bengaluru", "Chennai", "Pune", "Hyderabad", "Kolkata"}

	attendanceNotes = []string{
		"Arrived late.", "Left early for work.", "Asked about private sessions.",
		"Recovering from a knee injury.", "Brought a friend for a trial.",
	}

	classDurations = []int{45, 60, 90}
)

// Generator builds pseudo-random but internally consistent data sets.
// Equal seeds and clocks yield equal data sets.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator seeds the generator. A zero seed draws one from the clock.
func NewGenerator(seed int64, now time.Time) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		now: now.UTC(),
	}
}

// Generate builds a data set of the given size
func (g *Generator) Generate(c Counts) *Dataset {
	ds := &Dataset{}
	ds.Clients = g.clients(c.Clients)
	ds.Courses = g.courses(c.Courses)
	ds.Classes = g.classes(c.Classes, ds.Clients)
	ds.Orders = g.orders(c.Orders, ds.Clients, ds.Courses, ds.Classes)
	ds.Payments = g.payments(ds.Orders)
	ds.Attendance = g.attendance(ds.Classes)
	return ds
}

func (g *Generator) clients(n int) []*client.Client {
	out := make([]*client.Client, 0, n)
	for i := 0; i < n; i++ {
		first, last := pick(g, firstNames), pick(g, lastNames)
		birthday := g.between(g.now.AddDate(-80, 0, 0), g.now.AddDate(-18, 0, 0))

		out = append(out, &client.Client{
			ClientID:         fmt.Sprintf("CLIENT_%04d", i+1),
			Name:             first + " " + last,
			Email:            fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Phone:            fmt.Sprintf("+91 9%04d %05d", g.rng.IntN(10000), g.rng.IntN(100000)),
			Status:           pick(g, []client.Status{client.StatusActive, client.StatusInactive}),
			RegistrationDate: g.between(g.now.AddDate(-2, 0, 0), g.now),
			Birthday:         &birthday,
			Address:          fmt.Sprintf("%d %s, %s", 1+g.rng.IntN(400), pick(g, streets), pick(g, cities)),
			EnrolledServices: []string{},
		})
	}
	return out
}

func (g *Generator) courses(n int) []*course.Course {
	if n > len(courseNames) {
		n = len(courseNames)
	}
	out := make([]*course.Course, 0, n)
	for i := 0; i < n; i++ {
		start := g.between(g.now.AddDate(-1, 0, 0), g.now.AddDate(0, 3, 0))
		status := course.StatusActive
		if start.After(g.now) {
			status = course.StatusUpcoming
		}

		out = append(out, &course.Course{
			CourseID:      fmt.Sprintf("COURSE_%03d", i+1),
			Name:          courseNames[i],
			Instructor:    pick(g, instructors),
			DurationWeeks: g.intBetween(4, 12),
			Price:         float64(g.intBetween(2000, 8000)),
			MaxCapacity:   g.intBetween(10, 25),
			EnrolledCount: g.intBetween(5, 20),
			StartDate:     start,
			EndDate:       g.between(g.now.AddDate(0, 3, 0), g.now.AddDate(1, 0, 0)),
			Status:        status,
		})
	}
	return out
}

func (g *Generator) classes(n int, clients []*client.Client) []*class.Class {
	out := make([]*class.Class, 0, n)
	for i := 0; i < n; i++ {
		students := []string{}
		if len(clients) > 0 {
			for j := g.intBetween(3, 15); j > 0; j-- {
				students = append(students, pick(g, clients).ClientID)
			}
		}

		out = append(out, &class.Class{
			ClassID:          fmt.Sprintf("CLASS_%04d", i+1),
			Name:             pick(g, classNames),
			Instructor:       pick(g, instructors),
			Date:             g.between(g.now.AddDate(0, 0, -30), g.now.AddDate(0, 0, 30)),
			DurationMinutes:  pick(g, classDurations),
			MaxCapacity:      g.intBetween(8, 20),
			EnrolledStudents: students,
			Status:           pick(g, []class.Status{class.StatusScheduled, class.StatusOngoing, class.StatusCompleted}),
			Price:            float64(g.intBetween(500, 1500)),
		})
	}
	return out
}

type service struct {
	id    string
	name  string
	kind  order.ServiceType
	price float64
}

func (g *Generator) orders(n int, clients []*client.Client, courses []*course.Course, classes []*class.Class) []*order.Order {
	services := make([]service, 0, len(courses)+len(classes))
	for _, c := range courses {
		services = append(services, service{c.CourseID, c.Name, order.ServiceCourse, c.Price})
	}
	for _, c := range classes {
		services = append(services, service{c.ClassID, c.Name, order.ServiceClass, c.Price})
	}
	if len(clients) == 0 || len(services) == 0 {
		return []*order.Order{}
	}

	out := make([]*order.Order, 0, n)
	for i := 0; i < n; i++ {
		svc := pick(g, services)
		date := g.between(g.now.AddDate(0, -6, 0), g.now)

		out = append(out, &order.Order{
			OrderID:     fmt.Sprintf("ORDER_%05d", i+1),
			ClientID:    pick(g, clients).ClientID,
			ServiceID:   svc.id,
			ServiceType: svc.kind,
			ServiceName: svc.name,
			Amount:      svc.price,
			Status:      pick(g, []order.Status{order.StatusPaid, order.StatusPending, order.StatusCancelled}),
			OrderDate:   date,
			DueDate:     date.AddDate(0, 0, 7),
		})
	}
	return out
}

func (g *Generator) payments(orders []*order.Order) []*payment.Payment {
	out := []*payment.Payment{}
	for _, o := range orders {
		if o.Status != order.StatusPaid {
			continue
		}
		out = append(out, &payment.Payment{
			PaymentID:     fmt.Sprintf("PAY_%05d", len(out)+1),
			OrderID:       o.OrderID,
			ClientID:      o.ClientID,
			Amount:        o.Amount,
			PaymentDate:   o.OrderDate.AddDate(0, 0, g.rng.IntN(6)),
			PaymentMethod: pick(g, payment.Methods()),
			TransactionID: g.transactionID(),
		})
	}
	return out
}

// attendance records every enrolled student of completed classes, three in four attended
func (g *Generator) attendance(classes []*class.Class) []*attendance.Record {
	out := []*attendance.Record{}
	for _, c := range classes {
		if c.Status != class.StatusCompleted {
			continue
		}
		for _, student := range c.EnrolledStudents {
			rec := &attendance.Record{
				AttendanceID: fmt.Sprintf("ATT_%05d", len(out)+1),
				ClassID:      c.ClassID,
				ClientID:     student,
				Date:         c.Date,
				Attended:     g.rng.IntN(4) != 0,
			}
			if g.rng.Float64() < 0.1 {
				note := pick(g, attendanceNotes)
				rec.Notes = &note
			}
			out = append(out, rec)
		}
	}
	return out
}

// transactionID draws its uuid from the generator so seeded runs repeat
func (g *Generator) transactionID() string {
	id, err := uuid.NewRandomFromReader(rngReader{g.rng})
	if err != nil {
		id = uuid.New()
	}
	return "TXN_" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}

func (g *Generator) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.rng.Int64N(int64(span)))).Truncate(time.Second)
}

// intBetween returns an int in [lo, hi]
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.IntN(len(items))]
}

type rngReader struct {
	r *rand.Rand
}

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.Uint32())
	}
	return len(p), nil
}
