package enums

import "fmt"

// MediaKind distinguishes the two upload surfaces the platform signs URLs for.
type MediaKind string

const (
	MediaKindArtwork MediaKind = "ARTWORK"
	MediaKindAudio   MediaKind = "AUDIO"
)

var validMediaKinds = []MediaKind{
	MediaKindArtwork,
	MediaKindAudio,
}

// String implements fmt.Stringer.
func (k MediaKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known MediaKind.
func (k MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
