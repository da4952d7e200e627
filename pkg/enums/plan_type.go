package enums

// PlanType bounds an organization's monthly release volume.
type PlanType string

const (
	PlanTypeFree PlanType = "FREE"
	PlanTypePro  PlanType = "PRO"
)

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanType.
func (p PlanType) IsValid() bool {
	return p == PlanTypeFree || p == PlanTypePro
}

// DefaultMonthlyReleaseLimit returns the release quota attached to the plan.
func (p PlanType) DefaultMonthlyReleaseLimit() int {
	if p == PlanTypePro {
		return 50
	}
	return 2
}
