package course

import "time"

// Status of a multi-week course
type Status string

const (
	StatusActive    Status = "active"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusUpcoming, StatusCompleted:
		return true
	}
	return false
}

// Course is a multi-week programme sold as one service
type Course struct {
	CourseID      string    `bson:"course_id" json:"course_id"`
	Name          string    `bson:"name" json:"name"`
	Instructor    string    `bson:"instructor" json:"instructor"`
	DurationWeeks int       `bson:"duration_weeks" json:"duration_weeks"`
	Price         float64   `bson:"price" json:"price"`
	MaxCapacity   int       `bson:"max_capacity" json:"max_capacity"`
	EnrolledCount int       `bson:"enrolled_count" json:"enrolled_count"`
	StartDate     time.Time `bson:"start_date" json:"start_date"`
	EndDate       time.Time `bson:"end_date" json:"end_date"`
	Status        Status    `bson:"status" json:"status"`
}

// StatusCount is one bucket of the completion-rate aggregation
type StatusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}
