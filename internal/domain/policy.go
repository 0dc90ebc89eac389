package domain

// Tenancy and role policy: pure predicates deciding what a principal may see
// and mutate. Applied as a pre-filter on every read and as a guard before the
// state machines on every mutation.

// CanListRequests reports whether the principal may read the request
// collection at all. Technicians are excluded from the request workflow.
func CanListRequests(p Principal) bool {
	return p.Role == RoleAdmin || p.Role == RoleCliente
}

// CanViewRequest reports whether the principal may read a specific request.
func CanViewRequest(p Principal, r ServiceRequest) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCliente:
		return r.ClientID == p.ID
	}
	return false
}

// CanSubmitRequest reports whether the principal may create requests.
func CanSubmitRequest(p Principal) bool {
	return p.Role == RoleCliente
}

// CanReviewRequests reports whether the principal may run review transitions.
func CanReviewRequests(p Principal) bool {
	return p.Role == RoleAdmin
}

// CanCancelRequest reports whether the principal may self-cancel a request.
// Ownership only; the PENDIENTE precondition belongs to the state machine.
func CanCancelRequest(p Principal, r ServiceRequest) bool {
	return p.Role == RoleCliente && r.ClientID == p.ID
}

// CanDeleteRequests reports whether the principal may hard-delete requests.
func CanDeleteRequests(p Principal) bool {
	return p.Role == RoleAdmin
}

// NarrowRequestFilter restricts a listing filter to what the principal may
// see: clients are pinned to their own requests.
func NarrowRequestFilter(p Principal, f RequestFilter) RequestFilter {
	if p.Role == RoleCliente {
		f.ClientID = p.ID
	}
	return f
}

// CanCreateMaintenance reports whether the principal may create maintenance
// records. Technicians never create their own work orders.
func CanCreateMaintenance(p Principal) bool {
	return p.Role == RoleAdmin || p.Role == RoleCliente
}

// companyScopeNone is the company id pinned into a filter when a
// company-scoped principal carries no company claim. It can never match a
// real company, so a malformed principal matches nothing instead of
// everything.
const companyScopeNone = "\x00"

func companyScope(p Principal) string {
	if p.CompanyID == "" {
		return companyScopeNone
	}
	return p.CompanyID
}

// CanViewMaintenance reports whether the principal may read a maintenance
// record. The owning equipment is needed for the client company check.
func CanViewMaintenance(p Principal, rec MaintenanceRecord, eq Equipment) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleTecnico:
		return rec.TechnicianID == p.ID
	case RoleCliente:
		return p.CompanyID != "" && eq.CompanyID == p.CompanyID
	}
	return false
}

// CanTransitionMaintenance reports whether the principal may change a
// maintenance record's status. Clients are read-only.
func CanTransitionMaintenance(p Principal, rec MaintenanceRecord) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleTecnico:
		return rec.TechnicianID == p.ID
	}
	return false
}

// NarrowMaintenanceFilter restricts a listing filter to what the principal
// may see: technicians to their assigned work, clients to their company's
// equipment. Admin-only filters (empresaId) are dropped for everyone else.
func NarrowMaintenanceFilter(p Principal, f MaintenanceFilter) MaintenanceFilter {
	switch p.Role {
	case RoleTecnico:
		f.TechnicianID = p.ID
		f.CompanyID = ""
	case RoleCliente:
		f.CompanyID = companyScope(p)
	}
	return f
}

// NarrowEquipmentFilter restricts an equipment listing to the principal's
// company for clients. Admins and technicians see the whole fleet.
func NarrowEquipmentFilter(p Principal, f EquipmentFilter) EquipmentFilter {
	if p.Role == RoleCliente {
		f.CompanyID = companyScope(p)
	}
	return f
}
