package auth

// User types as stored in users.user_type.
const (
	UserTypeAdmin    = 1
	UserTypeManager  = 2
	UserTypeEmployee = 3
)

const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

func RoleForUserType(userType int) string {
	switch userType {
	case UserTypeAdmin:
		return RoleAdmin
	case UserTypeManager:
		return RoleManager
	case UserTypeEmployee:
		return RoleEmployee
	default:
		return ""
	}
}

func UserTypeForRole(role string) int {
	switch role {
	case RoleAdmin:
		return UserTypeAdmin
	case RoleManager:
		return UserTypeManager
	case RoleEmployee:
		return UserTypeEmployee
	default:
		return 0
	}
}

type UserContext struct {
	UserID   string
	UserType int
	RoleName string
}

func (u UserContext) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
