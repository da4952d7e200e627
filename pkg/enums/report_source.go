package enums

import "fmt"

// ReportSource names the platform a revenue report row came from.
type ReportSource string

const (
	ReportSourceSpotify ReportSource = "SPOTIFY"
	ReportSourceApple   ReportSource = "APPLE"
	ReportSourceYTMusic ReportSource = "YT_MUSIC"
	ReportSourceDeezer  ReportSource = "DEEZER"
	ReportSourceTikTok  ReportSource = "TIKTOK"
	ReportSourceIG      ReportSource = "IG"
	ReportSourceShorts  ReportSource = "SHORTS"
	ReportSourceOther   ReportSource = "OTHER"
)

var validReportSources = []ReportSource{
	ReportSourceSpotify,
	ReportSourceApple,
	ReportSourceYTMusic,
	ReportSourceDeezer,
	ReportSourceTikTok,
	ReportSourceIG,
	ReportSourceShorts,
	ReportSourceOther,
}

// String implements fmt.Stringer.
func (s ReportSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReportSource.
func (s ReportSource) IsValid() bool {
	for _, candidate := range validReportSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReportSource converts raw input into a ReportSource.
func ParseReportSource(value string) (ReportSource, error) {
	for _, candidate := range validReportSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report source %q", value)
}
