package enums

// PolicyStatus represents the lifecycle state of an issued policy as
// reported by the upstream platform.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusPending   PolicyStatus = "pending"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
)

var validPolicyStatuses = []PolicyStatus{
	PolicyStatusActive,
	PolicyStatusPending,
	PolicyStatusExpired,
	PolicyStatusCancelled,
}

// String implements fmt.Stringer.
func (p PolicyStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PolicyStatus.
func (p PolicyStatus) IsValid() bool {
	for _, candidate := range validPolicyStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}
