package enums

import "fmt"

// EstimateStatus tracks where an estimate is in its lifecycle.
type EstimateStatus string

const (
	EstimateStatusDraft      EstimateStatus = "draft"
	EstimateStatusCreated    EstimateStatus = "created"
	EstimateStatusAccepted   EstimateStatus = "accepted"
	EstimateStatusSent       EstimateStatus = "sent"
	EstimateStatusNoResponse EstimateStatus = "no-response"
	EstimateStatusCancelled  EstimateStatus = "cancelled"
	EstimateStatusRejected   EstimateStatus = "rejected"
)

var validEstimateStatuses = []EstimateStatus{
	EstimateStatusDraft,
	EstimateStatusCreated,
	EstimateStatusAccepted,
	EstimateStatusSent,
	EstimateStatusNoResponse,
	EstimateStatusCancelled,
	EstimateStatusRejected,
}

// EstimateStatuses returns the statuses in declaration order.
func EstimateStatuses() []EstimateStatus {
	out := make([]EstimateStatus, len(validEstimateStatuses))
	copy(out, validEstimateStatuses)
	return out
}

// String implements fmt.Stringer.
func (s EstimateStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EstimateStatus.
func (s EstimateStatus) IsValid() bool {
	for _, candidate := range validEstimateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEstimateStatus converts a raw string into an EstimateStatus.
func ParseEstimateStatus(value string) (EstimateStatus, error) {
	for _, candidate := range validEstimateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid estimate status %q", value)
}
