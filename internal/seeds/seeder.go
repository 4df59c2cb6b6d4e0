package seeds

import (
	"context"

	"github.com/dustin/go-humanize"

	"studiodesk/internal/adapters/mongo"
	"studiodesk/internal/domain/order"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

// Sink replaces the whole content of one collection
type Sink interface {
	Replace(ctx context.Context, collection string, docs []interface{}) (int, error)
}

// CollectionCount is how many documents went into one collection
type CollectionCount struct {
	Collection string
	Count      int
}

// Seeder loads generated data sets into a Sink
type Seeder struct {
	sink   Sink
	log    *logger.Logger
	dryRun bool
}

// New creates a seeder. In dry-run mode the sink is never called and may be nil.
func New(sink Sink, dryRun bool, log *logger.Logger) *Seeder {
	return &Seeder{sink: sink, log: log.With("component", "seeder"), dryRun: dryRun}
}

// Log returns the seeder logger
func (s *Seeder) Log() *logger.Logger {
	return s.log
}

// Seed clears each collection and inserts its documents, in dependency order.
// Empty collections are left untouched.
func (s *Seeder) Seed(ctx context.Context, ds *Dataset) ([]CollectionCount, error) {
	batches := []struct {
		name string
		docs []interface{}
	}{
		{mongo.CollectionClients, docs(ds.Clients)},
		{mongo.CollectionCourses, docs(ds.Courses)},
		{mongo.CollectionClasses, docs(ds.Classes)},
		{mongo.CollectionOrders, docs(ds.Orders)},
		{mongo.CollectionPayments, docs(ds.Payments)},
		{mongo.CollectionAttendance, docs(ds.Attendance)},
	}

	counts := make([]CollectionCount, 0, len(batches))
	for _, b := range batches {
		if len(b.docs) == 0 {
			s.log.Infow("Skipping empty collection", "collection", b.name)
			continue
		}
		if s.dryRun {
			s.log.Infow("Dry run: would insert records", "collection", b.name, "count", len(b.docs))
			counts = append(counts, CollectionCount{Collection: b.name, Count: len(b.docs)})
			continue
		}

		n, err := s.sink.Replace(ctx, b.name, b.docs)
		if err != nil {
			return counts, errors.Wrapf(err, "seed %s", b.name)
		}
		s.log.Infof("Inserted %s records into %s", humanize.Comma(int64(n)), b.name)
		counts = append(counts, CollectionCount{Collection: b.name, Count: n})
	}

	s.logSummary(ds)
	return counts, nil
}

func (s *Seeder) logSummary(ds *Dataset) {
	var paid, pending float64
	for _, o := range ds.Orders {
		switch o.Status {
		case order.StatusPaid:
			paid += o.Amount
		case order.StatusPending:
			pending += o.Amount
		}
	}

	attended := 0
	for _, r := range ds.Attendance {
		if r.Attended {
			attended++
		}
	}

	s.log.Infow("Seed summary",
		"clients", len(ds.Clients),
		"orders", len(ds.Orders),
		"revenue", humanize.CommafWithDigits(paid, 2),
		"outstanding", humanize.CommafWithDigits(pending, 2),
		"attendance", humanize.Comma(int64(attended))+"/"+humanize.Comma(int64(len(ds.Attendance))),
	)
}

func docs[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
