package attendance

import "time"

// Record marks whether one enrolled client attended one class
type Record struct {
	AttendanceID string    `bson:"attendance_id" json:"attendance_id"`
	ClassID      string    `bson:"class_id" json:"class_id"`
	ClientID     string    `bson:"client_id" json:"client_id"`
	Date         time.Time `bson:"date" json:"date"`
	Attended     bool      `bson:"attended" json:"attended"`
	Notes        *string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Tally counts attendance records of one class
type Tally struct {
	Total    int64
	Attended int64
}
