package shared

// Role identifies a participant's position in the supply chain
type Role string

const (
	RoleFarmer      Role = "FARMER"
	RoleDistributor Role = "DISTRIBUTOR"
	RoleRetailer    Role = "RETAILER"
	RoleAdmin       Role = "ADMIN"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleDistributor, RoleRetailer, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}
