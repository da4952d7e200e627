package enums

// TrackStatus tracks a single track's readiness for delivery.
type TrackStatus string

const (
	TrackStatusDraft     TrackStatus = "DRAFT"
	TrackStatusReady     TrackStatus = "READY"
	TrackStatusDelivered TrackStatus = "DELIVERED"
)

// String implements fmt.Stringer.
func (s TrackStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TrackStatus.
func (s TrackStatus) IsValid() bool {
	switch s {
	case TrackStatusDraft, TrackStatusReady, TrackStatusDelivered:
		return true
	default:
		return false
	}
}
