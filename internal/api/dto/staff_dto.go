package dto

import "time"

// StaffResponse is the public view of a staff directory record.
type StaffResponse struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	AdminDepartment string    `json:"admin_department,omitempty"`
	IsDeptAdmin     bool      `json:"is_dept_admin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PromoteRequest payload. The effect depends on who asks: the master admin
// promotes to department head, a department admin adds a team member.
type PromoteRequest struct {
	StaffID    string `json:"staff_id"`
	Department string `json:"department"`
}

// DemoteResponse reports the cascade size alongside the cleared record.
type DemoteResponse struct {
	StaffID                string `json:"staff_id"`
	ModifiedGrievanceCount int64  `json:"modified_grievance_count"`
}
