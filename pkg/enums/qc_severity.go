package enums

import "fmt"

// QCSeverity grades a quality-control finding.
type QCSeverity string

const (
	QCSeverityInfo  QCSeverity = "INFO"
	QCSeverityWarn  QCSeverity = "WARN"
	QCSeverityError QCSeverity = "ERROR"
)

var validQCSeverities = []QCSeverity{
	QCSeverityInfo,
	QCSeverityWarn,
	QCSeverityError,
}

// String implements fmt.Stringer.
func (s QCSeverity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QCSeverity.
func (s QCSeverity) IsValid() bool {
	for _, candidate := range validQCSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQCSeverity converts raw input into a QCSeverity.
func ParseQCSeverity(value string) (QCSeverity, error) {
	for _, candidate := range validQCSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid qc severity %q", value)
}
