package enums

import "fmt"

// ReleaseStatus tracks the lifecycle of a release from draft to takedown.
type ReleaseStatus string

const (
	ReleaseStatusDraft      ReleaseStatus = "DRAFT"
	ReleaseStatusInReview   ReleaseStatus = "IN_REVIEW"
	ReleaseStatusApproved   ReleaseStatus = "APPROVED"
	ReleaseStatusRejected   ReleaseStatus = "REJECTED"
	ReleaseStatusDelivering ReleaseStatus = "DELIVERING"
	ReleaseStatusDelivered  ReleaseStatus = "DELIVERED"
	ReleaseStatusTakedown   ReleaseStatus = "TAKEDOWN"
)

var validReleaseStatuses = []ReleaseStatus{
	ReleaseStatusDraft,
	ReleaseStatusInReview,
	ReleaseStatusApproved,
	ReleaseStatusRejected,
	ReleaseStatusDelivering,
	ReleaseStatusDelivered,
	ReleaseStatusTakedown,
}

// String implements fmt.Stringer.
func (s ReleaseStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReleaseStatus.
func (s ReleaseStatus) IsValid() bool {
	for _, candidate := range validReleaseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReleaseStatus converts raw input into a ReleaseStatus.
func ParseReleaseStatus(value string) (ReleaseStatus, error) {
	for _, candidate := range validReleaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid release status %q", value)
}
