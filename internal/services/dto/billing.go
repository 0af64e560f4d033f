package dto

import (
	"time"

	"saaskit_backend/internal/models"
)

type PlanResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
}

func NewPlanResponse(plan *models.Plan) *PlanResponse {
	if plan == nil {
		return nil
	}
	return &PlanResponse{
		ID:           plan.ID,
		Code:         plan.Code,
		Name:         plan.Name,
		Price:        plan.Price,
		DurationDays: plan.DurationDays,
	}
}

type CheckoutRequest struct {
	PlanCode string `json:"plan_code" validate:"required"`
}

type CheckoutResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

// PaymentCallbackRequest mirrors the merchant provider's result webhook.
type PaymentCallbackRequest struct {
	OutSum         string `form:"OutSum" validate:"required"`
	InvID          string `form:"InvId" validate:"required"`
	SignatureValue string `form:"SignatureValue" validate:"required"`
}

type SubscriptionResponse struct {
	PlanCode  string                    `json:"plan_code"`
	Status    models.SubscriptionStatus `json:"status"`
	StartDate time.Time                 `json:"start_date"`
	EndDate   time.Time                 `json:"end_date"`
}
