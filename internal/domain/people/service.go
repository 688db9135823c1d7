package people

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/skip2/go-qrcode"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/form"
)

const (
	// unusablePassword never matches a bcrypt comparison.
	unusablePassword = "!"
	profilePicFolder = "profile_pics"
	badgeSize        = 256
)

var (
	ErrStaffNotFound = form.NotFound("not_found", "Staff member not found.")
	ErrAdminNotFound = form.NotFound("not_found", "Admin not found.")
	ErrForbidden     = form.Forbidden("forbidden", "You cannot access this profile.")
	ErrLeadsTeam     = form.Conflict("manager_has_team", "Reassign this manager's employees before deleting the manager.")
	ErrDeleteSelf    = form.Conflict("cannot_delete_self", "You cannot delete your own account.")
)

// MediaStore keeps uploaded images.
type MediaStore interface {
	SaveImage(folder string, r io.Reader) (string, error)
	Remove(rel string) error
}

type Service struct {
	store StoreAPI
	media MediaStore
}

func NewService(store StoreAPI, media MediaStore) *Service {
	return &Service{store: store, media: media}
}

// KindFor maps a user type to its staff profile kind.
func KindFor(userType int) (Kind, bool) {
	switch userType {
	case auth.UserTypeManager:
		return KindManager, true
	case auth.UserTypeEmployee:
		return KindEmployee, true
	default:
		return "", false
	}
}

func hashFor(password string, create bool) (*string, error) {
	if strings.TrimSpace(password) == "" {
		if create {
			unusable := unusablePassword
			return &unusable, nil
		}
		return nil, nil
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &hashed, nil
}

func (s *Service) checkEmail(ctx context.Context, errs *form.Errors, email, excludeUserID string) error {
	if email == "" || errs.Has("email") {
		return nil
	}
	taken, err := s.store.EmailTaken(ctx, email, excludeUserID)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("email", "This email is already registered.")
	}
	return nil
}

func (s *Service) checkStaff(ctx context.Context, errs *form.Errors, kind Kind, d StaffDraft, excludeID string) error {
	field := kind.idField()
	if d.StaffID != "" && !errs.Has(field) {
		taken, err := s.store.StaffIDTaken(ctx, kind, d.StaffID, excludeID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add(field, kind.idLabel()+" already exists.")
		}
	}
	if kind == KindEmployee && d.TeamLeadID != nil {
		exists, err := s.store.ManagerExists(ctx, *d.TeamLeadID)
		if err != nil {
			return err
		}
		if !exists {
			errs.Add("team_lead", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	return nil
}

func (s *Service) CreateAdmin(ctx context.Context, in UserInput) (Admin, error) {
	errs := form.New()
	d := ValidateUser(in, errs)
	if err := s.checkEmail(ctx, errs, d.Email, ""); err != nil {
		return Admin{}, err
	}
	if err := errs.Err(); err != nil {
		return Admin{}, err
	}
	hash, err := hashFor(d.Password, true)
	if err != nil {
		return Admin{}, err
	}
	return s.store.CreateAdmin(ctx, d, auth.UserTypeAdmin, *hash)
}

func (s *Service) GetAdmin(ctx context.Context, id string) (Admin, error) {
	a, err := s.store.GetAdmin(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, ErrAdminNotFound
	}
	return a, err
}

func (s *Service) ListAdmins(ctx context.Context, limit, offset int) ([]Admin, int, error) {
	return s.store.ListAdmins(ctx, limit, offset)
}

func (s *Service) UpdateAdmin(ctx context.Context, id string, in UserInput) (Admin, error) {
	current, err := s.GetAdmin(ctx, id)
	if err != nil {
		return Admin{}, err
	}
	errs := form.New()
	d := ValidateUser(in, errs)
	if err := s.checkEmail(ctx, errs, d.Email, current.User.ID); err != nil {
		return Admin{}, err
	}
	if err := errs.Err(); err != nil {
		return Admin{}, err
	}
	hash, err := hashFor(d.Password, false)
	if err != nil {
		return Admin{}, err
	}
	if err := s.store.UpdateUser(ctx, current.User.ID, d, hash); err != nil {
		return Admin{}, err
	}
	return s.GetAdmin(ctx, id)
}

func (s *Service) DeleteAdmin(ctx context.Context, actor auth.UserContext, id string) error {
	current, err := s.GetAdmin(ctx, id)
	if err != nil {
		return err
	}
	if current.User.ID == actor.UserID {
		return ErrDeleteSelf
	}
	return s.deleteAccount(ctx, current.User)
}

func (s *Service) deleteAccount(ctx context.Context, account Account) error {
	if _, err := s.store.DeleteUser(ctx, account.ID); err != nil {
		return err
	}
	if account.ProfilePic != "" && s.media != nil {
		if err := s.media.Remove(account.ProfilePic); err != nil {
			slog.Warn("remove profile picture failed", "user", account.ID, "err", err)
		}
	}
	return nil
}

func (s *Service) CreateStaff(ctx context.Context, kind Kind, in StaffInput) (Staff, error) {
	errs := form.New()
	d := validateStaff(kind, in, errs)
	if err := s.checkEmail(ctx, errs, d.User.Email, ""); err != nil {
		return Staff{}, err
	}
	if err := s.checkStaff(ctx, errs, kind, d, ""); err != nil {
		return Staff{}, err
	}
	if err := errs.Err(); err != nil {
		return Staff{}, err
	}
	hash, err := hashFor(d.User.Password, true)
	if err != nil {
		return Staff{}, err
	}
	return s.store.CreateStaff(ctx, kind, d, *hash)
}

func (s *Service) UpdateStaff(ctx context.Context, kind Kind, id string, in StaffInput) (Staff, error) {
	current, err := s.getStaff(ctx, kind, id)
	if err != nil {
		return Staff{}, err
	}
	errs := form.New()
	d := validateStaff(kind, in, errs)
	if err := s.checkEmail(ctx, errs, d.User.Email, current.User.ID); err != nil {
		return Staff{}, err
	}
	if err := s.checkStaff(ctx, errs, kind, d, current.ID); err != nil {
		return Staff{}, err
	}
	if err := errs.Err(); err != nil {
		return Staff{}, err
	}
	hash, err := hashFor(d.User.Password, false)
	if err != nil {
		return Staff{}, err
	}
	return s.store.UpdateStaff(ctx, kind, id, current.User.ID, d, hash)
}

func (s *Service) getStaff(ctx context.Context, kind Kind, id string) (Staff, error) {
	st, err := s.store.GetStaff(ctx, kind, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, ErrStaffNotFound
	}
	return st, err
}

// canView allows admins, the profile owner, and a manager looking at one of
// their own employees.
func (s *Service) canView(ctx context.Context, viewer auth.UserContext, st Staff) error {
	if viewer.IsAdmin() || st.User.ID == viewer.UserID {
		return nil
	}
	if viewer.UserType == auth.UserTypeManager && st.Kind == KindEmployee && st.TeamLeadID != nil {
		lead, err := s.store.StaffByUser(ctx, KindManager, viewer.UserID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil && lead.ID == *st.TeamLeadID {
			return nil
		}
	}
	return ErrForbidden
}

func (s *Service) GetStaff(ctx context.Context, viewer auth.UserContext, kind Kind, id string) (Staff, error) {
	st, err := s.getStaff(ctx, kind, id)
	if err != nil {
		return Staff{}, err
	}
	if err := s.canView(ctx, viewer, st); err != nil {
		return Staff{}, err
	}
	FilterSensitive(&st, viewer)
	return st, nil
}

// ListStaff returns every profile to admins and a manager's own team to
// that manager.
func (s *Service) ListStaff(ctx context.Context, viewer auth.UserContext, kind Kind, filter Filter, limit, offset int) ([]Staff, int, error) {
	if !viewer.IsAdmin() {
		if viewer.UserType != auth.UserTypeManager || kind != KindEmployee {
			return nil, 0, ErrForbidden
		}
		lead, err := s.store.StaffByUser(ctx, KindManager, viewer.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrForbidden
		}
		if err != nil {
			return nil, 0, err
		}
		filter.TeamLeadID = lead.ID
	}
	items, total, err := s.store.ListStaff(ctx, kind, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		FilterSensitive(&items[i], viewer)
	}
	return items, total, nil
}

func (s *Service) DeleteStaff(ctx context.Context, kind Kind, id string) error {
	st, err := s.getStaff(ctx, kind, id)
	if err != nil {
		return err
	}
	if kind == KindManager {
		n, err := s.store.TeamSize(ctx, st.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrLeadsTeam
		}
	}
	return s.deleteAccount(ctx, st.User)
}

func (s *Service) Me(ctx context.Context, user auth.UserContext) (Profile, error) {
	account, err := s.store.GetAccount(ctx, user.UserID)
	if err != nil {
		return Profile{}, err
	}
	profile := Profile{User: account}
	if kind, ok := KindFor(account.UserType); ok {
		st, err := s.store.StaffByUser(ctx, kind, user.UserID)
		switch {
		case err == nil:
			FilterSensitive(&st, user)
			profile.Staff = &st
		case !errors.Is(err, pgx.ErrNoRows):
			return Profile{}, err
		}
	}
	return profile, nil
}

// UpdateMe applies the self-service edit form. A blank password or phone
// keeps the stored value.
func (s *Service) UpdateMe(ctx context.Context, user auth.UserContext, in UserInput) (Profile, error) {
	account, err := s.store.GetAccount(ctx, user.UserID)
	if err != nil {
		return Profile{}, err
	}
	errs := form.New()
	d := ValidateUser(in, errs)
	if err := s.checkEmail(ctx, errs, d.Email, account.ID); err != nil {
		return Profile{}, err
	}
	if err := errs.Err(); err != nil {
		return Profile{}, err
	}
	if d.PhoneNumber == "" {
		d.PhoneNumber = account.PhoneNumber
	}
	hash, err := hashFor(d.Password, false)
	if err != nil {
		return Profile{}, err
	}
	if err := s.store.UpdateUser(ctx, account.ID, d, hash); err != nil {
		return Profile{}, err
	}
	return s.Me(ctx, user)
}

// SetProfilePic stores the image and replaces the user's picture.
func (s *Service) SetProfilePic(ctx context.Context, userID string, r io.Reader) (Account, error) {
	rel, err := s.media.SaveImage(profilePicFolder, r)
	if err != nil {
		return Account{}, err
	}
	previous, err := s.store.SetProfilePic(ctx, userID, rel)
	if err != nil {
		_ = s.media.Remove(rel)
		return Account{}, err
	}
	if previous != "" {
		if err := s.media.Remove(previous); err != nil {
			slog.Warn("remove previous profile picture failed", "user", userID, "err", err)
		}
	}
	return s.store.GetAccount(ctx, userID)
}

// Badge renders a PNG QR code of the staff ID.
func (s *Service) Badge(ctx context.Context, viewer auth.UserContext, kind Kind, id string) ([]byte, error) {
	st, err := s.getStaff(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, viewer, st); err != nil {
		return nil, err
	}
	return qrcode.Encode(st.StaffID, qrcode.Medium, badgeSize)
}

// StaffUserID resolves the account behind a profile.
func (s *Service) StaffUserID(ctx context.Context, kind Kind, id string) (string, error) {
	st, err := s.getStaff(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return st.User.ID, nil
}
