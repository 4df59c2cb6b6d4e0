package class

import "time"

// Status of a single scheduled class
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Class is one scheduled session, e.g. a morning yoga flow on a given date
type Class struct {
	ClassID          string    `bson:"class_id" json:"class_id"`
	Name             string    `bson:"name" json:"name"`
	Instructor       string    `bson:"instructor" json:"instructor"`
	Date             time.Time `bson:"date" json:"date"`
	DurationMinutes  int       `bson:"duration_minutes" json:"duration_minutes"`
	MaxCapacity      int       `bson:"max_capacity" json:"max_capacity"`
	EnrolledStudents []string  `bson:"enrolled_students" json:"enrolled_students"`
	Status           Status    `bson:"status" json:"status"`
	Price            float64   `bson:"price" json:"price"`
}
