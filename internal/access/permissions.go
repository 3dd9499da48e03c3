// Package access defines who may do what, for the API and for client navigation.
package access

import "canteen/internal/domain"

type Permission string

const (
	PlaceOrder    Permission = "place_order"
	ViewOwnOrders Permission = "view_own_orders"
	ViewAllOrders Permission = "view_all_orders"
	ManageOrders  Permission = "manage_orders"
	AdjustStock   Permission = "adjust_stock"
	ManageMenu    Permission = "manage_menu"
	ManageUsers   Permission = "manage_users"
	ViewReports   Permission = "view_reports"
)

var matrix = map[domain.Role]map[Permission]bool{
	domain.RoleCustomer: {
		PlaceOrder:    true,
		ViewOwnOrders: true,
	},
	domain.RoleStaff: {
		PlaceOrder:    true,
		ViewOwnOrders: true,
		ViewAllOrders: true,
		ManageOrders:  true,
		AdjustStock:   true,
	},
	domain.RoleAdmin: {
		PlaceOrder:    true,
		ViewOwnOrders: true,
		ViewAllOrders: true,
		ManageOrders:  true,
		AdjustStock:   true,
		ManageMenu:    true,
		ManageUsers:   true,
		ViewReports:   true,
	},
}

func Allowed(role domain.Role, p Permission) bool {
	return matrix[role][p]
}
