package domain

import "time"

// StaffRecord models a staff member's place in the department hierarchy.
// The record id doubles as the user id across the system. An empty
// AdminDepartment means the person holds no department role.
type StaffRecord struct {
	ID              string
	FullName        string
	AdminDepartment string
	IsDeptAdmin     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasDepartmentRole reports whether the record carries any department role.
func (s *StaffRecord) HasDepartmentRole() bool {
	return s.AdminDepartment != ""
}

// AdminStatus summarizes a caller's authority for role-gated views.
type AdminStatus struct {
	IsAdmin         bool     `json:"is_admin"`
	IsDeptAdmin     bool     `json:"is_dept_admin"`
	Departments     []string `json:"departments"`
	AdminDepartment string   `json:"admin_department"`
}
