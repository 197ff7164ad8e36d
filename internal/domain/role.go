package domain

// Role is a Role Catalog entry. The supervisor reference is prompt context
// only; the org chart edges are authoritative for hierarchy.
type Role struct {
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction,omitempty"`
	Supervisor        string `json:"supervisor,omitempty"`
}

// Edge is a directed "source reports to target" relationship between
// two role names.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// OrgChart holds the declared reporting structure. Nodes duplicate the
// role catalog keys for the stored document shape.
type OrgChart struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// Catalog is the whole config collection: staff roles plus org chart.
type Catalog struct {
	StaffRoles map[string]Role `json:"staff_roles"`
	OrgChart   OrgChart        `json:"org_chart"`
}

// EmptyCatalog returns the default for an absent or corrupt config document.
func EmptyCatalog() Catalog {
	return Catalog{
		StaffRoles: map[string]Role{},
		OrgChart:   OrgChart{Nodes: []string{}, Edges: []Edge{}},
	}
}

// RoleNames returns the catalog role names in unspecified order.
func (c Catalog) RoleNames() []string {
	names := make([]string, 0, len(c.StaffRoles))
	for name := range c.StaffRoles {
		names = append(names, name)
	}
	return names
}

// HasEdge reports whether the exact edge is already declared.
func (c Catalog) HasEdge(e Edge) bool {
	for _, existing := range c.OrgChart.Edges {
		if existing == e {
			return true
		}
	}
	return false
}
