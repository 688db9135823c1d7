package people

import (
	"time"

	"hrdesk/internal/domain/auth"
)

// Kind names a staff profile table.
type Kind string

const (
	KindManager  Kind = "manager"
	KindEmployee Kind = "employee"
)

func (k Kind) UserType() int {
	if k == KindManager {
		return auth.UserTypeManager
	}
	return auth.UserTypeEmployee
}

func (k Kind) idLabel() string {
	if k == KindManager {
		return "Manager ID"
	}
	return "Employee ID"
}

func (k Kind) idField() string {
	if k == KindManager {
		return "manager_id"
	}
	return "employee_id"
}

// Account is a row of users.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Gender      string    `json:"gender"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phoneNumber"`
	ProfilePic  string    `json:"profilePic"`
	UserType    int       `json:"userType"`
	Role        string    `json:"role"`
	SecondShift bool      `json:"isSecondShift"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

type Admin struct {
	ID   string  `json:"id"`
	User Account `json:"user"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// Staff is a manager or employee profile with its account.
type Staff struct {
	ID            string           `json:"id"`
	Kind          Kind             `json:"kind"`
	StaffID       string           `json:"staffId"`
	User          Account          `json:"user"`
	DivisionID    *string          `json:"divisionId"`
	DepartmentID  *string          `json:"departmentId"`
	Designation   string           `json:"designation,omitempty"`
	TeamLeadID    *string          `json:"teamLeadId,omitempty"`
	Emergency     EmergencyContact `json:"emergencyContact"`
	DateOfJoining string           `json:"dateOfJoining"`
	AadharCard    string           `json:"aadharCard"`
	PanCard       string           `json:"panCard"`
	BondStart     string           `json:"bondStart"`
	BondEnd       string           `json:"bondEnd"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Profile is what a signed-in user sees about themselves.
type Profile struct {
	User  Account `json:"user"`
	Staff *Staff  `json:"staff,omitempty"`
}

// UserInput is the shared account form used by every role form and by the
// self-service edit forms.
type UserInput struct {
	Email       string `json:"email"`
	Gender      string `json:"gender"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	SecondShift bool   `json:"is_second_shift"`
}

// StaffInput is the manager and employee form.
type StaffInput struct {
	UserInput
	EmployeeID            string `json:"employee_id"`
	ManagerID             string `json:"manager_id"`
	EmergencyName         string `json:"emergency_name"`
	EmergencyRelationship string `json:"emergency_relationship"`
	EmergencyPhone        string `json:"emergency_phone"`
	EmergencyAddress      string `json:"emergency_address"`
	DateOfJoining         string `json:"date_of_joining"`
	AadharCard            string `json:"aadhar_card"`
	PanCard               string `json:"pan_card"`
	BondStart             string `json:"bond_start"`
	BondEnd               string `json:"bond_end"`
	TeamLead              string `json:"team_lead"`
	Division              string `json:"division"`
	Department            string `json:"department"`
	Designation           string `json:"designation"`
}

func (in StaffInput) staffID(kind Kind) string {
	if kind == KindManager {
		return in.ManagerID
	}
	return in.EmployeeID
}

// UserDraft is a validated UserInput.
type UserDraft struct {
	Email       string
	Gender      string
	FirstName   string
	LastName    string
	Address     string
	Password    string
	PhoneNumber string
	SecondShift bool
}

// StaffDraft is a validated StaffInput.
type StaffDraft struct {
	User          UserDraft
	StaffID       string
	Emergency     EmergencyContact
	DateOfJoining time.Time
	AadharCard    string
	PanCard       string
	BondStart     time.Time
	BondEnd       time.Time
	TeamLeadID    *string
	DivisionID    *string
	DepartmentID  *string
	Designation   string
}

type Filter struct {
	DepartmentID string
	TeamLeadID   string
}
