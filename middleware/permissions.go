package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Role constants to avoid string typos
const (
	RoleSuperAdmin  = "superadmin"
	RoleEstateAdmin = "estateadmin"
	RoleResident    = "resident"
	RoleSecurity    = "security"
)

// AccessContext stores user access information resolved during authentication.
type AccessContext struct {
	UserID         uint
	RoleName       string
	EstateID       *uint  // DB id of the estate the user is bound to
	PermissionType string // "full" or "readonly"
}

// CanWrite returns true if the user has write permissions.
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == "full"
}

// CanAccessEstate checks if the user can act on a specific estate.
func (ac *AccessContext) CanAccessEstate(estateID uint) bool {
	if ac.RoleName == RoleSuperAdmin {
		return true
	}
	return ac.EstateID != nil && *ac.EstateID == estateID
}

// GetAccessContext pulls the access context placed by AuthMiddleware.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	raw, exists := c.Get("access_context")
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := raw.(AccessContext)
	return ac, ok
}

// ExtractEstateIDFromContext reads the X-Estate-ID header if present.
func ExtractEstateIDFromContext(c *gin.Context) *uint {
	raw := c.GetHeader("X-Estate-ID")
	if raw == "" {
		return nil
	}
	id64, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(id64)
	return &id
}
