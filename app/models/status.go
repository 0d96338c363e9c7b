package models

import "strings"

// Status is the review state of a Request.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected}
}

// ParseStatus accepts any casing ("approved", "APPROVED") of a known status.
func ParseStatus(s string) (Status, error) {
	candidate := strings.TrimSpace(s)
	for _, st := range Statuses() {
		if strings.EqualFold(candidate, string(st)) {
			return st, nil
		}
	}
	return "", &InvalidStatusError{Value: s}
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Lower is the status as it reads inside a sentence ("has been approved").
func (s Status) Lower() string { return strings.ToLower(string(s)) }

func (s Status) String() string { return string(s) }
