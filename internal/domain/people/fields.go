package people

import (
	"hrdesk/internal/domain/auth"
	cryptoutil "hrdesk/internal/platform/crypto"
)

// FilterSensitive masks identity numbers for everyone except admins.
func FilterSensitive(st *Staff, viewer auth.UserContext) {
	if viewer.IsAdmin() {
		return
	}
	st.AadharCard = cryptoutil.Mask(st.AadharCard)
	st.PanCard = cryptoutil.Mask(st.PanCard)
}
