package dto

type StatusUpdateRequest struct {
	Status           string  `json:"status"`
	PaymentStatus    *string `json:"payment_status"`
	PaymentReference *string `json:"payment_reference"`
}
