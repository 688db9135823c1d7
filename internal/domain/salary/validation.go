package salary

import (
	"strings"

	"hrdesk/internal/domain/form"
)

const (
	requiredReason = "This field is required."
	minReason      = "Ensure this value is greater than or equal to 0."
	ctcReason      = "CTC cannot be less than base salary."
	choiceReason   = "Select a valid choice. That choice is not one of the available choices."
	memberReason   = "Employee does not belong to the selected department."
)

func validate(in Input, errs *form.Errors) Draft {
	d := Draft{
		DepartmentID: strings.TrimSpace(in.Department),
		EmployeeID:   strings.TrimSpace(in.Employee),
	}
	errs.Required("department", d.DepartmentID, requiredReason)
	errs.Required("employee", d.EmployeeID, requiredReason)
	d.Base = amount(errs, "base", in.Base)
	d.CTC = amount(errs, "ctc", in.CTC)
	if !errs.Has("base") && !errs.Has("ctc") && d.CTC < d.Base {
		errs.Add("ctc", ctcReason)
	}
	return d
}

func amount(errs *form.Errors, field string, v *float64) float64 {
	if v == nil {
		errs.Add(field, requiredReason)
		return 0
	}
	if *v < 0 {
		errs.Add(field, minReason)
	}
	return *v
}
