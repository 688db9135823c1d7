package people

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/form"
)

func issueMap(t *testing.T, err error) map[string]string {
	t.Helper()
	var fe *form.Errors
	require.True(t, errors.As(err, &fe), "expected form errors, got %v", err)
	out := map[string]string{}
	for _, issue := range fe.Issues() {
		out[issue.Field] = issue.Reason
	}
	return out
}

func validEmployee() StaffInput {
	return StaffInput{
		UserInput: UserInput{
			Email:       "Asha.Rao@Example.com",
			Gender:      "F",
			FirstName:   "Asha",
			LastName:    "Rao",
			Address:     "12 MG Road",
			Password:    "s3cret!",
			PhoneNumber: "9876543210",
		},
		EmployeeID:     "EMP001",
		EmergencyName:  "Ravi Rao",
		EmergencyPhone: "8765432109",
		DateOfJoining:  "2024-01-15",
		AadharCard:     "123456789012",
		PanCard:        "ABCDE1234F",
		BondStart:      "2024-01-15",
		BondEnd:        "2026-01-14",
		TeamLead:       "mgr-1",
		Department:     "dept-1",
		Designation:    "Engineer",
	}
}

func TestValidateStaffEmployee(t *testing.T) {
	d, err := ValidateStaff(KindEmployee, validEmployee())
	require.NoError(t, err)
	assert.Equal(t, "asha.rao@example.com", d.User.Email)
	assert.Equal(t, "EMP001", d.StaffID)
	require.NotNil(t, d.TeamLeadID)
	assert.Equal(t, "mgr-1", *d.TeamLeadID)
	assert.Nil(t, d.DivisionID)
	assert.Equal(t, "Ravi Rao", d.Emergency.Name)
}

func TestValidateStaffManagerIgnoresEmployeeFields(t *testing.T) {
	in := validEmployee()
	in.ManagerID = "MGR01"
	in.TeamLead = ""
	d, err := ValidateStaff(KindManager, in)
	require.NoError(t, err)
	assert.Equal(t, "MGR01", d.StaffID)
	assert.Nil(t, d.TeamLeadID)
	assert.Empty(t, d.Designation)
}

func TestValidateStaffRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*StaffInput)
		field  string
		want   string
	}{
		{"bad email", func(in *StaffInput) { in.Email = "not-an-email" }, "email", "Enter a valid email address."},
		{"bad gender", func(in *StaffInput) { in.Gender = "X" }, "gender", "Select a valid choice. X is not one of the available choices."},
		{"missing first name", func(in *StaffInput) { in.FirstName = " " }, "first_name", "This field is required."},
		{"long employee id", func(in *StaffInput) { in.EmployeeID = "EMP00000001" }, "employee_id", "Employee ID must be between 1 and 10 characters long."},
		{"aadhar letters", func(in *StaffInput) { in.AadharCard = "12345678901A" }, "aadhar_card", "Aadhar Card number must contain only digits."},
		{"aadhar short", func(in *StaffInput) { in.AadharCard = "12345" }, "aadhar_card", "Aadhar Card number must be exactly 12 digits."},
		{"pan symbol", func(in *StaffInput) { in.PanCard = "ABCDE-234F" }, "pan_card", "PAN Card number must be alphanumeric."},
		{"pan short", func(in *StaffInput) { in.PanCard = "ABCDE1234" }, "pan_card", "PAN Card number must be exactly 10 characters."},
		{"pan pattern", func(in *StaffInput) { in.PanCard = "ABCD12345F" }, "pan_card", "PAN Card number must follow the format: 5 letters, 4 digits, 1 letter."},
		{"bond reversed", func(in *StaffInput) { in.BondEnd = "2023-12-31" }, "bond_end", "Bond end date cannot be before bond start date."},
		{"missing joining date", func(in *StaffInput) { in.DateOfJoining = "" }, "date_of_joining", "Date of Joining is required."},
		{"blank joining date", func(in *StaffInput) { in.DateOfJoining = "  " }, "date_of_joining", "Date of Joining is required."},
		{"malformed joining date", func(in *StaffInput) { in.DateOfJoining = "15/01/2024" }, "date_of_joining", "Enter a valid date."},
		{"phone letters", func(in *StaffInput) { in.PhoneNumber = "98765abcde" }, "phone_number", "Phone number must contain only digits."},
		{"phone length", func(in *StaffInput) { in.PhoneNumber = "98765" }, "phone_number", "Phone number must be exactly 10 digits."},
		{"phone prefix", func(in *StaffInput) { in.PhoneNumber = "3876543210" }, "phone_number", "Phone number cannot start with 1, 2, 3, or 4"},
		{"emergency same", func(in *StaffInput) { in.EmergencyPhone = in.PhoneNumber }, "emergency_phone", "Emergency contact phone number cannot be the same as the primary phone number."},
		{"emergency prefix", func(in *StaffInput) { in.EmergencyPhone = "1876543210" }, "emergency_phone", "Emergency contact phone number cannot start with 1, 2, 3, or 4"},
		{"missing team lead", func(in *StaffInput) { in.TeamLead = "" }, "team_lead", "This field is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validEmployee()
			tc.mutate(&in)
			_, err := ValidateStaff(KindEmployee, in)
			issues := issueMap(t, err)
			assert.Equal(t, tc.want, issues[tc.field], "issues: %v", issues)
		})
	}
}

func TestValidateStaffManagerIDLabel(t *testing.T) {
	in := validEmployee()
	in.ManagerID = ""
	_, err := ValidateStaff(KindManager, in)
	assert.Equal(t, "This field is required.", issueMap(t, err)["manager_id"])
}

func TestBlankPhonesAreOptional(t *testing.T) {
	assert.Empty(t, PhoneReason(""))
	assert.Empty(t, EmergencyPhoneReason("", ""))
	assert.Empty(t, PhoneReason("9876543210"))
}
