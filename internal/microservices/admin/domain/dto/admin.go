package dto

type RoleRequest struct {
	Role string `json:"role"`
}
