package domain

import "time"

type Doctor struct {
	ID             string
	Name           string
	Specialization string
	AuthSubjectID  string
	CreatedAt      time.Time
}
