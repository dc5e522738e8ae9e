package domain

// UserRoleType represents an application role carried in the JWT roles claim
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleLogistics  UserRoleType = "logistics"
	RoleFinance    UserRoleType = "finance"
	RoleSales      UserRoleType = "sales"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// IsValidUserRole checks if the given string is a known role
func IsValidUserRole(s string) bool {
	switch UserRoleType(s) {
	case RoleAdmin, RoleLogistics, RoleFinance, RoleSales, RoleViewer, RoleAPIService:
		return true
	}
	return false
}
