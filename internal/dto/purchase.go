package dto

// BuyClassRequest records a single-lesson purchase.
type BuyClassRequest struct {
	CustomerID string  `json:"customer_id" validate:"required"`
	LessonType string  `json:"lesson_type" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
}

// BuySubscriptionRequest records a bundle purchase.
type BuySubscriptionRequest struct {
	CustomerID string  `json:"customer_id" validate:"required"`
	ProductID  string  `json:"product_id" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
}

// UpdateSubscriptionRequest toggles a subscription's active flag.
type UpdateSubscriptionRequest struct {
	Active *bool `json:"active" validate:"required"`
}
