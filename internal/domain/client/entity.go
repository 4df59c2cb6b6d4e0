package client

import "time"

// Status is the lifecycle state of a client
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Client is a studio member or prospective member
type Client struct {
	ClientID         string     `bson:"client_id" json:"client_id"`
	Name             string     `bson:"name" json:"name"`
	Email            string     `bson:"email" json:"email"`
	Phone            string     `bson:"phone" json:"phone"`
	Status           Status     `bson:"status" json:"status"`
	RegistrationDate time.Time  `bson:"registration_date" json:"registration_date"`
	Birthday         *time.Time `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Address          string     `bson:"address,omitempty" json:"address,omitempty"`
	EnrolledServices []string   `bson:"enrolled_services" json:"enrolled_services"`
}

// Filter narrows a client search. Empty fields impose no constraint.
type Filter struct {
	Name  string
	Email string
	Phone string
}

// IsEmpty reports whether no field is set
func (f Filter) IsEmpty() bool {
	return f.Name == "" && f.Email == "" && f.Phone == ""
}
