// Package rbac resolves what an admin role may do with a resource.
package rbac

import (
	"net/http"
	"strings"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Role names an admin persona.
type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleAdmin             Role = "admin"
	RoleOperationsManager Role = "operations_manager"
	RoleMarketingManager  Role = "marketing_manager"
	RoleFinanceManager    Role = "finance_manager"
	RoleRiskOfficer       Role = "risk_officer"
	RoleSupplier          Role = "supplier"
	RoleViewOnlyAnalyst   Role = "view_only_analyst"
	RoleCustomer          Role = "customer"
)

// Action is an operation on a resource.
type Action string

const (
	ActionView   Action = "VIEW"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
	ActionExport Action = "EXPORT"
)

// Resources checked by Can.
const (
	ResourceSettings  = "settings"
	ResourceFinance   = "finance"
	ResourceRiskRules = "risk_rules"
	ResourceCatalog   = "catalog"
	ResourceOrders    = "orders"
	ResourceAIStudio  = "ai_studio"
	ResourceAuditLogs = "audit_logs"
)

var knownRoles = map[Role]struct{}{
	RoleSuperAdmin: {}, RoleAdmin: {}, RoleOperationsManager: {}, RoleMarketingManager: {},
	RoleFinanceManager: {}, RoleRiskOfficer: {}, RoleSupplier: {}, RoleViewOnlyAnalyst: {}, RoleCustomer: {},
}

// ParseRole normalises a role name. Unknown names report false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownRoles[r]
	return r, ok
}

// Can reports whether role may perform action on resource.
func Can(role Role, resource string, action Action) bool {
	if _, ok := knownRoles[role]; !ok {
		return false
	}
	if role == RoleSuperAdmin {
		return true
	}
	if role == RoleViewOnlyAnalyst {
		return action == ActionView
	}
	switch resource {
	case ResourceSettings:
		return false
	case ResourceFinance:
		return role == RoleFinanceManager
	case ResourceRiskRules:
		return role == RoleRiskOfficer
	case ResourceCatalog:
		return role == RoleMarketingManager || role == RoleOperationsManager || role == RoleAdmin
	case ResourceOrders:
		return !(role == RoleSupplier && action == ActionDelete)
	case ResourceAIStudio:
		return role == RoleMarketingManager
	default:
		return false
	}
}

// Require rejects requests whose actor may not perform action on resource.
// The actor is read from the context populated by common.ActorMiddleware.
func Require(resource string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := common.ActorFrom(r.Context())
			if !ok {
				common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "actor role required", nil)
				return
			}
			role, _ := ParseRole(actor.Role)
			if !Can(role, resource, action) {
				common.JSONError(w, http.StatusForbidden, common.CodeForbidden, "insufficient permissions", map[string]string{
					"resource": resource,
					"action":   string(action),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
