package domain

// Company owns a fleet of equipment. Requests and maintenance are scoped to it.
type Company struct {
	ID   string
	Name string
}

// User is a persisted account. Principals reference users by ID; the core only
// needs users for technician and client role checks.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CompanyID string
}
