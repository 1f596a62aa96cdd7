package auth

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // HR / line manager - approvals and payroll
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Claims is the identity carried by an access token issued by the identity provider.
type Claims struct {
	UserID     string
	CompanyID  string
	EmployeeID string
	Role       Role
}

// ClaimsFromMap reads the token claims set. company_id and role are required.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if tokenType, _ := m["type"].(string); tokenType != "access" {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	c.UserID, _ = m["user_id"].(string)
	c.CompanyID, _ = m["company_id"].(string)
	c.EmployeeID, _ = m["employee_id"].(string)
	role, _ := m["role"].(string)
	c.Role = Role(role)

	if c.UserID == "" || !c.Role.IsValid() {
		return Claims{}, ErrInvalidToken
	}
	if c.CompanyID == "" {
		return Claims{}, ErrCompanyIDRequired
	}
	return c, nil
}

// ToMap is the inverse of ClaimsFromMap.
func (c Claims) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"user_id":    c.UserID,
		"company_id": c.CompanyID,
		"role":       string(c.Role),
		"type":       "access",
	}
	if c.EmployeeID != "" {
		m["employee_id"] = c.EmployeeID
	}
	return m
}
