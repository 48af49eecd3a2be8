package domain

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

type Review struct {
	ID               string
	PropertyID       string
	Name             string
	Email            string
	Rating           int
	Comment          string
	BookingReference string
	Status           ReviewStatus
	IsVerifiedStay   bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ReviewFilter struct {
	PropertyID string
	Status     ReviewStatus
	Limit      int
}
