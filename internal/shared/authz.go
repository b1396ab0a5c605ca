package shared

import "net/http"

// Permissions checked by route guards.
const (
	PermProductsView = "products.view"
	PermProductsEdit = "products.edit"
	PermStockAdjust  = "stock.adjust"

	PermMasterView = "master.view"
	PermMasterEdit = "master.edit"

	PermSuppliesView = "supplies.view"
	PermSuppliesEdit = "supplies.edit"

	PermFinanceView = "finance.view"
	PermFinanceEdit = "finance.edit"

	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"
)

// AllPermissions lists every permission known to the application.
func AllPermissions() []string {
	return []string{
		PermProductsView, PermProductsEdit, PermStockAdjust,
		PermMasterView, PermMasterEdit,
		PermSuppliesView, PermSuppliesEdit,
		PermFinanceView, PermFinanceEdit,
		PermUsersView, PermUsersEdit,
	}
}

var rolePermissions = map[string][]string{
	RoleAdmin:      AllPermissions(),
	RoleAccountant: {PermProductsView, PermMasterView, PermFinanceView, PermFinanceEdit},
	RoleWarehouse: {
		PermProductsView, PermStockAdjust, PermMasterView,
		PermSuppliesView, PermSuppliesEdit,
	},
}

// PermissionsFor returns the permissions granted to role.
func PermissionsFor(role string) []string {
	return append([]string(nil), rolePermissions[role]...)
}

// Can reports whether the actor's role grants perm.
func (a Actor) Can(perm string) bool {
	for _, p := range rolePermissions[a.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Guard produces middleware gating routes on permissions.
type Guard interface {
	RequireAny(perms ...string) func(http.Handler) http.Handler
}
