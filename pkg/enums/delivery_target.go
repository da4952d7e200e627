package enums

// DeliveryTarget names an external platform a release is delivered to.
type DeliveryTarget string

const (
	DeliveryTargetSpotify DeliveryTarget = "SPOTIFY"
	DeliveryTargetApple   DeliveryTarget = "APPLE"
	DeliveryTargetYTMusic DeliveryTarget = "YT_MUSIC"
)

// DeliveryTargets returns the fixed platform list a fresh approval fans out to.
// Order is stable so approval always produces the same job set.
func DeliveryTargets() []DeliveryTarget {
	return []DeliveryTarget{
		DeliveryTargetSpotify,
		DeliveryTargetApple,
		DeliveryTargetYTMusic,
	}
}

// String implements fmt.Stringer.
func (t DeliveryTarget) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DeliveryTarget.
func (t DeliveryTarget) IsValid() bool {
	for _, candidate := range DeliveryTargets() {
		if candidate == t {
			return true
		}
	}
	return false
}
