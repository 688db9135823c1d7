package people

import "context"

type StoreAPI interface {
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	StaffIDTaken(ctx context.Context, kind Kind, staffID, excludeID string) (bool, error)
	ManagerExists(ctx context.Context, id string) (bool, error)
	TeamSize(ctx context.Context, managerID string) (int, error)

	GetAccount(ctx context.Context, userID string) (Account, error)
	UpdateUser(ctx context.Context, userID string, d UserDraft, hash *string) error
	DeleteUser(ctx context.Context, userID string) (bool, error)
	SetProfilePic(ctx context.Context, userID, rel string) (string, error)

	CreateAdmin(ctx context.Context, d UserDraft, userType int, hash string) (Admin, error)
	GetAdmin(ctx context.Context, id string) (Admin, error)
	ListAdmins(ctx context.Context, limit, offset int) ([]Admin, int, error)

	CreateStaff(ctx context.Context, kind Kind, d StaffDraft, hash string) (Staff, error)
	UpdateStaff(ctx context.Context, kind Kind, id, userID string, d StaffDraft, hash *string) (Staff, error)
	GetStaff(ctx context.Context, kind Kind, id string) (Staff, error)
	StaffByUser(ctx context.Context, kind Kind, userID string) (Staff, error)
	ListStaff(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]Staff, int, error)
}
