// Package memstore implements the studio repositories in process memory with the
// same filtering, grouping and ordering rules as the MongoDB repositories.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"studiodesk/internal/domain/attendance"
	"studiodesk/internal/domain/class"
	"studiodesk/internal/domain/client"
	"studiodesk/internal/domain/course"
	"studiodesk/internal/domain/order"
	"studiodesk/internal/domain/payment"
	"studiodesk/pkg/errors"
)

// Studio bundles one fake per collection
type Studio struct {
	Clients    *Clients
	Courses    *Courses
	Classes    *Classes
	Orders     *Orders
	Payments   *Payments
	Attendance *Attendance
}

// New returns an empty studio
func New() *Studio {
	return &Studio{
		Clients:    &Clients{},
		Courses:    &Courses{},
		Classes:    &Classes{},
		Orders:     &Orders{},
		Payments:   &Payments{},
		Attendance: &Attendance{},
	}
}

// FailWith makes every repository return err until cleared with nil
func (s *Studio) FailWith(err error) {
	s.Clients.Err = err
	s.Courses.Err = err
	s.Classes.Err = err
	s.Orders.Err = err
	s.Payments.Err = err
	s.Attendance.Err = err
}

func containsFold(value, sub string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(sub))
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Clients implements client.Repository
type Clients struct {
	mu    sync.Mutex
	items []*client.Client
	Err   error
}

func (r *Clients) Add(items ...*client.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Clients) Search(_ context.Context, f client.Filter, limit int) ([]*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*client.Client, 0)
	for _, c := range r.items {
		if f.Name != "" && !containsFold(c.Name, f.Name) {
			continue
		}
		if f.Email != "" && !containsFold(c.Email, f.Email) {
			continue
		}
		if f.Phone != "" && !containsFold(c.Phone, f.Phone) {
			continue
		}
		out = append(out, c)
	}
	return capped(out, limit), nil
}

func (r *Clients) GetByID(_ context.Context, id string) (*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, c := range r.items {
		if c.ClientID == id {
			return c, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "client %s", id)
}

func (r *Clients) CountByStatus(_ context.Context, status client.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for _, c := range r.items {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *Clients) CountRegisteredSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for _, c := range r.items {
		if !c.RegistrationDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Clients) Create(_ context.Context, c *client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.items {
		if existing.ClientID == c.ClientID {
			return errors.Wrapf(errors.ErrAlreadyExists, "client %s", c.ClientID)
		}
	}
	copied := *c
	r.items = append(r.items, &copied)
	return nil
}

// Courses implements course.Repository
type Courses struct {
	mu    sync.Mutex
	items []*course.Course
	Err   error
}

func (r *Courses) Add(items ...*course.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Courses) GetByID(_ context.Context, id string) (*course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, c := range r.items {
		if c.CourseID == id {
			return c, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "course %s", id)
}

func (r *Courses) CountByStatus(_ context.Context) ([]course.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	counts := map[string]int64{}
	for _, c := range r.items {
		counts[string(c.Status)]++
	}
	out := make([]course.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, course.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

// Classes implements class.Repository
type Classes struct {
	mu    sync.Mutex
	items []*class.Class
	Err   error
}

func (r *Classes) Add(items ...*class.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Classes) GetByID(_ context.Context, id string) (*class.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, c := range r.items {
		if c.ClassID == id {
			return c, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "class %s", id)
}

func (r *Classes) FindByName(_ context.Context, name string) (*class.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, c := range r.items {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "class %s", name)
}

func (r *Classes) ListFrom(_ context.Context, from time.Time, limit int) ([]*class.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*class.Class, 0)
	for _, c := range r.items {
		if !c.Date.Before(from) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return capped(out, limit), nil
}

func (r *Classes) ListByInstructor(_ context.Context, instructor string, limit int) ([]*class.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*class.Class, 0)
	for _, c := range r.items {
		if containsFold(c.Instructor, instructor) {
			out = append(out, c)
		}
	}
	return capped(out, limit), nil
}

// Orders implements order.Repository
type Orders struct {
	mu    sync.Mutex
	items []*order.Order
	Err   error
}

func (r *Orders) Add(items ...*order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Orders) filter(keep func(*order.Order) bool) []*order.Order {
	out := make([]*order.Order, 0)
	for _, o := range r.items {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (r *Orders) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, o := range r.items {
		if o.OrderID == id {
			return o, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "order %s", id)
}

func (r *Orders) ListByClient(_ context.Context, clientID string, limit int) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return capped(r.filter(func(o *order.Order) bool { return o.ClientID == clientID }), limit), nil
}

func (r *Orders) ListByStatus(_ context.Context, status order.Status, limit int) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return capped(r.filter(func(o *order.Order) bool { return o.Status == status }), limit), nil
}

func (r *Orders) ListByClientAndStatus(_ context.Context, clientID string, status order.Status) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(o *order.Order) bool { return o.ClientID == clientID && o.Status == status }), nil
}

func (r *Orders) SumAmountByStatus(_ context.Context, status order.Status) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var total float64
	for _, o := range r.items {
		if o.Status == status {
			total += o.Amount
		}
	}
	return total, nil
}

func (r *Orders) CountByService(_ context.Context, limit int) ([]order.ServiceCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	counts := map[string]int64{}
	for _, o := range r.items {
		counts[o.ServiceName]++
	}
	out := make([]order.ServiceCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, order.ServiceCount{ServiceName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ServiceName < out[j].ServiceName
	})
	return capped(out, limit), nil
}

func (r *Orders) RevenueByService(_ context.Context, limit int) ([]order.ServiceRevenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	totals := map[string]float64{}
	for _, o := range r.items {
		totals[o.ServiceName] += o.Amount
	}
	out := make([]order.ServiceRevenue, 0, len(totals))
	for name, total := range totals {
		out = append(out, order.ServiceRevenue{ServiceName: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ServiceName < out[j].ServiceName
	})
	return capped(out, limit), nil
}

func (r *Orders) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.items {
		if existing.OrderID == o.OrderID {
			return errors.Wrapf(errors.ErrAlreadyExists, "order %s", o.OrderID)
		}
	}
	copied := *o
	r.items = append(r.items, &copied)
	return nil
}

// Payments implements payment.Repository
type Payments struct {
	mu    sync.Mutex
	items []*payment.Payment
	Err   error
}

func (r *Payments) Add(items ...*payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Payments) GetByOrderID(_ context.Context, orderID string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, p := range r.items {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "payment for order %s", orderID)
}

func (r *Payments) SumAmount(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var total float64
	for _, p := range r.items {
		total += p.Amount
	}
	return total, nil
}

// Attendance implements attendance.Repository
type Attendance struct {
	mu    sync.Mutex
	items []*attendance.Record
	Err   error
}

func (r *Attendance) Add(items ...*attendance.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Attendance) TallyByClass(_ context.Context, classID string) (attendance.Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return attendance.Tally{}, r.Err
	}
	var tally attendance.Tally
	for _, a := range r.items {
		if a.ClassID != classID {
			continue
		}
		tally.Total++
		if a.Attended {
			tally.Attended++
		}
	}
	return tally, nil
}

var (
	_ client.Repository     = (*Clients)(nil)
	_ course.Repository     = (*Courses)(nil)
	_ class.Repository      = (*Classes)(nil)
	_ order.Repository      = (*Orders)(nil)
	_ payment.Repository    = (*Payments)(nil)
	_ attendance.Repository = (*Attendance)(nil)
)
