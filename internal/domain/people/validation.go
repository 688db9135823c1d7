package people

import (
	"net/mail"
	"strings"

	"hrdesk/internal/domain/form"
)

const (
	requiredReason        = "This field is required."
	joiningRequiredReason = "Date of Joining is required."
)

var genders = []string{"M", "F"}

// ValidateUser checks the account fields shared by every form. Email is
// lowercased; uniqueness is checked by the service.
func ValidateUser(in UserInput, errs *form.Errors) UserDraft {
	d := UserDraft{
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Gender:      strings.TrimSpace(in.Gender),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Address:     strings.TrimSpace(in.Address),
		Password:    in.Password,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		SecondShift: in.SecondShift,
	}
	if errs.Required("email", d.Email, requiredReason) && !validEmail(d.Email) {
		errs.Add("email", "Enter a valid email address.")
	}
	if errs.Required("gender", d.Gender, requiredReason) {
		errs.Enum("gender", d.Gender, genders, "Select a valid choice. "+d.Gender+" is not one of the available choices.")
	}
	errs.Required("first_name", d.FirstName, requiredReason)
	errs.Required("last_name", d.LastName, requiredReason)
	errs.Required("address", d.Address, requiredReason)
	if reason := PhoneReason(d.PhoneNumber); reason != "" {
		errs.Add("phone_number", reason)
	}
	return d
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// ValidateStaff checks the manager or employee form.
func ValidateStaff(kind Kind, in StaffInput) (StaffDraft, error) {
	errs := form.New()
	d := validateStaff(kind, in, errs)
	if err := errs.Err(); err != nil {
		return StaffDraft{}, err
	}
	return d, nil
}

func validateStaff(kind Kind, in StaffInput, errs *form.Errors) StaffDraft {
	d := StaffDraft{
		User:        ValidateUser(in.UserInput, errs),
		StaffID:     strings.TrimSpace(in.staffID(kind)),
		AadharCard:  strings.TrimSpace(in.AadharCard),
		PanCard:     strings.TrimSpace(in.PanCard),
		Designation: strings.TrimSpace(in.Designation),
		Emergency: EmergencyContact{
			Name:         strings.TrimSpace(in.EmergencyName),
			Relationship: strings.TrimSpace(in.EmergencyRelationship),
			Phone:        strings.TrimSpace(in.EmergencyPhone),
			Address:      strings.TrimSpace(in.EmergencyAddress),
		},
		DivisionID:   optional(in.Division),
		DepartmentID: optional(in.Department),
	}

	field := kind.idField()
	if errs.Required(field, d.StaffID, requiredReason) && len(d.StaffID) > 10 {
		errs.Add(field, kind.idLabel()+" must be between 1 and 10 characters long.")
	}
	if errs.Required("aadhar_card", d.AadharCard, requiredReason) {
		if reason := AadharReason(d.AadharCard); reason != "" {
			errs.Add("aadhar_card", reason)
		}
	}
	if errs.Required("pan_card", d.PanCard, requiredReason) {
		if reason := PANReason(d.PanCard); reason != "" {
			errs.Add("pan_card", reason)
		}
	}
	if reason := EmergencyPhoneReason(d.Emergency.Phone, d.User.PhoneNumber); reason != "" {
		errs.Add("emergency_phone", reason)
	}

	if errs.Required("date_of_joining", in.DateOfJoining, joiningRequiredReason) {
		d.DateOfJoining, _ = errs.Date("date_of_joining", in.DateOfJoining)
	}
	start, okStart := errs.Date("bond_start", in.BondStart)
	end, okEnd := errs.Date("bond_end", in.BondEnd)
	if okStart && okEnd && end.Before(start) {
		errs.Add("bond_end", "Bond end date cannot be before bond start date.")
	}
	d.BondStart, d.BondEnd = start, end

	if kind == KindEmployee {
		d.TeamLeadID = optional(in.TeamLead)
		if d.TeamLeadID == nil {
			errs.Add("team_lead", requiredReason)
		}
	} else {
		d.Designation = ""
	}
	return d
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func AadharReason(value string) string {
	if !form.AllDigits(value) {
		return "Aadhar Card number must contain only digits."
	}
	if len(value) != 12 {
		return "Aadhar Card number must be exactly 12 digits."
	}
	return ""
}

func PANReason(value string) string {
	if !form.Alphanumeric(value) {
		return "PAN Card number must be alphanumeric."
	}
	if len(value) != 10 {
		return "PAN Card number must be exactly 10 characters."
	}
	if !allLetters(value[:5]) || !form.AllDigits(value[5:9]) || !allLetters(value[9:]) {
		return "PAN Card number must follow the format: 5 letters, 4 digits, 1 letter."
	}
	return ""
}

// PhoneReason returns "" for blank numbers; the phone is optional.
func PhoneReason(value string) string {
	if value == "" {
		return ""
	}
	if !form.AllDigits(value) {
		return "Phone number must contain only digits."
	}
	if len(value) != 10 {
		return "Phone number must be exactly 10 digits."
	}
	if strings.ContainsRune("1234", rune(value[0])) {
		return "Phone number cannot start with 1, 2, 3, or 4"
	}
	return ""
}

func EmergencyPhoneReason(value, phone string) string {
	if value == "" {
		return ""
	}
	if !form.AllDigits(value) {
		return "Emergency contact phone number must contain only digits."
	}
	if len(value) != 10 {
		return "Emergency contact phone number must be exactly 10 digits."
	}
	if value == phone {
		return "Emergency contact phone number cannot be the same as the primary phone number."
	}
	if strings.ContainsRune("1234", rune(value[0])) {
		return "Emergency contact phone number cannot start with 1, 2, 3, or 4"
	}
	return ""
}

func allLetters(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
