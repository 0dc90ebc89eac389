package domain

// Role identifies what an authenticated actor is allowed to do.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTecnico Role = "TECNICO"
	RoleCliente Role = "CLIENTE"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTecnico, RoleCliente:
		return true
	}
	return false
}

// Principal is the authenticated actor behind every operation. It is supplied
// by the authentication collaborator (JWT claims) and never persisted here.
// CompanyID is empty for ADMIN and required for TECNICO and CLIENTE.
type Principal struct {
	ID        string
	Role      Role
	CompanyID string
}
