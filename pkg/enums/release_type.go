package enums

import "fmt"

// ReleaseType distinguishes singles, EPs, and albums.
type ReleaseType string

const (
	ReleaseTypeSingle ReleaseType = "SINGLE"
	ReleaseTypeEP     ReleaseType = "EP"
	ReleaseTypeAlbum  ReleaseType = "ALBUM"
)

var validReleaseTypes = []ReleaseType{
	ReleaseTypeSingle,
	ReleaseTypeEP,
	ReleaseTypeAlbum,
}

// String implements fmt.Stringer.
func (t ReleaseType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ReleaseType.
func (t ReleaseType) IsValid() bool {
	for _, candidate := range validReleaseTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseReleaseType converts raw input into a ReleaseType.
func ParseReleaseType(value string) (ReleaseType, error) {
	for _, candidate := range validReleaseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid release type %q", value)
}

// ReleaseTypeForTrackCount infers the release type from the number of tracks,
// matching the wizard's default: 1 track is a single, up to 6 an EP.
func ReleaseTypeForTrackCount(count int) ReleaseType {
	switch {
	case count <= 1:
		return ReleaseTypeSingle
	case count <= 6:
		return ReleaseTypeEP
	default:
		return ReleaseTypeAlbum
	}
}
