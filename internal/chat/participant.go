package chat

// Role is a participant's function in the support system.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSupport  Role = "SUPPORT"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole maps a wire string to a Role. Returns false for unknown values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleSupport, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Status is a participant's presence state.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
	StatusAway    Status = "AWAY"
	StatusBusy    Status = "BUSY"
)

// ParseStatus maps a wire string to a Status. Returns false for unknown values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return Status(s), true
	}
	return "", false
}

// Participant is a uniquely named chat actor known to the registry. Records
// live for the process lifetime once created; they are mutated in place by
// role and presence updates and never explicitly destroyed.
type Participant struct {
	Username    string
	DisplayName string
	Role        Role
	Status      Status
	CurrentRoom string
	SessionID   string
}
