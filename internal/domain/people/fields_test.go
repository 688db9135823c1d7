package people

import (
	"testing"

	"hrdesk/internal/domain/auth"
)

func sampleStaff() *Staff {
	return &Staff{AadharCard: "123456789012", PanCard: "ABCDE1234F"}
}

func TestFilterSensitiveAdmin(t *testing.T) {
	st := sampleStaff()
	FilterSensitive(st, auth.UserContext{UserType: auth.UserTypeAdmin})

	if st.AadharCard != "123456789012" || st.PanCard != "ABCDE1234F" {
		t.Fatal("admin should see identity numbers")
	}
}

func TestFilterSensitiveManager(t *testing.T) {
	st := sampleStaff()
	FilterSensitive(st, auth.UserContext{UserType: auth.UserTypeManager})

	if st.AadharCard != "********9012" {
		t.Fatalf("unexpected aadhar %q", st.AadharCard)
	}
	if st.PanCard != "******234F" {
		t.Fatalf("unexpected pan %q", st.PanCard)
	}
}

func TestFilterSensitiveEmployeeSelf(t *testing.T) {
	st := sampleStaff()
	FilterSensitive(st, auth.UserContext{UserType: auth.UserTypeEmployee})

	if st.AadharCard == "123456789012" || st.PanCard == "ABCDE1234F" {
		t.Fatal("employee should see masked identity numbers")
	}
}
