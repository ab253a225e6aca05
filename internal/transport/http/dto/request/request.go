package request

type PageRequest struct {
	Step int `json:"step" validate:"required,oneof=-1 1"`
}

type CheckoutRequest struct {
	PlanID string `json:"planId" validate:"required"`
	Region string `json:"region,omitempty" validate:"omitempty,oneof=US IN GB"`
}
