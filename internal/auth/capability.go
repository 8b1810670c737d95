package auth

import "strings"

// CapabilityChecker answers department-derived capability questions.
type CapabilityChecker interface {
	IsSecurityTeam(department string) bool
	SameDepartment(a, b string) bool
}

// DepartmentCapabilityChecker grants the security capability to any
// department whose name contains the keyword, case-insensitively.
type DepartmentCapabilityChecker struct {
	keyword string
}

func NewCapabilityChecker(keyword string) *DepartmentCapabilityChecker {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		keyword = "security"
	}
	return &DepartmentCapabilityChecker{keyword: keyword}
}

func (c *DepartmentCapabilityChecker) IsSecurityTeam(department string) bool {
	return strings.Contains(strings.ToLower(department), c.keyword)
}

// SameDepartment compares department names exactly, ignoring surrounding space.
func (c *DepartmentCapabilityChecker) SameDepartment(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && a == b
}
