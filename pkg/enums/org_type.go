package enums

// OrgType distinguishes single-artist organizations from labels.
type OrgType string

const (
	OrgTypeArtist OrgType = "ARTIST_ORG"
	OrgTypeLabel  OrgType = "LABEL"
)

// String implements fmt.Stringer.
func (t OrgType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrgType.
func (t OrgType) IsValid() bool {
	return t == OrgTypeArtist || t == OrgTypeLabel
}
