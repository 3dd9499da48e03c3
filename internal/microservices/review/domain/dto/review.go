package dto

type ReviewRequest struct {
	OrderID *int64 `json:"order_id"`
	Name    string `json:"name"`
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// Reviewer is the signed-in author, if any.
type Reviewer struct {
	UserID   int64
	Username string
}
