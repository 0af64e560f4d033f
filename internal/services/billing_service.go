package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

type BillingService interface {
	ListPlans(db *gorm.DB) ([]dto.PlanResponse, error)

	// Checkout creates a pending payment and returns the hosted payment
	// URL. Caller must be owner/admin of the organization.
	Checkout(db *gorm.DB, organizationID, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)

	// HandleResultCallback verifies the provider signature and activates
	// the subscription. Returns the acknowledgement body the provider
	// expects.
	HandleResultCallback(db *gorm.DB, req *dto.PaymentCallbackRequest) (string, error)

	GetSubscription(db *gorm.DB, organizationID, userID string) (*dto.SubscriptionResponse, error)
}

type BillingServiceImpl struct {
	billingRepo repositories.BillingRepository
	orgRepo     repositories.OrganizationRepository
	userRepo    repositories.UserRepository
	provider    *PaymentProvider
}

func NewBillingService(
	billingRepo repositories.BillingRepository,
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	provider *PaymentProvider,
) BillingService {
	return &BillingServiceImpl{
		billingRepo: billingRepo,
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		provider:    provider,
	}
}

func (s *BillingServiceImpl) requireManager(db *gorm.DB, organizationID, userID string) error {
	membership, err := s.orgRepo.FindMembership(db, organizationID, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if membership == nil {
		return apperrors.ErrNotAMember
	}
	if membership.Role != models.MembershipRoleOwner && membership.Role != models.MembershipRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func (s *BillingServiceImpl) ListPlans(db *gorm.DB) ([]dto.PlanResponse, error) {
	plans, err := s.billingRepo.ListPlans(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	responses := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, *dto.NewPlanResponse(&plans[i]))
	}
	return responses, nil
}

func (s *BillingServiceImpl) Checkout(db *gorm.DB, organizationID, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := s.requireManager(db, organizationID, userID); err != nil {
		return nil, err
	}

	plan, err := s.billingRepo.FindPlanByCode(db, req.PlanCode)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if plan == nil {
		return nil, apperrors.ErrNotFound(nil)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	// First checkout assigns the merchant-side customer id.
	if user.BillingCustomerID == nil {
		if err := s.userRepo.UpdateBillingCustomerID(db, user.ID, uuid.NewString()); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	// The order id doubles as the merchant-side idempotency key.
	orderID := uuid.NewString()

	if err := s.billingRepo.CreatePayment(db, &models.Payment{
		OrganizationID: organizationID,
		PlanID:         plan.ID,
		OrderID:        orderID,
		Amount:         plan.Price,
		Status:         models.PaymentStatusPending,
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	paymentURL := s.provider.GeneratePaymentURL(
		orderID,
		plan.Price,
		fmt.Sprintf("%s plan", plan.Name),
		user.Email,
	)

	return &dto.CheckoutResponse{
		OrderID:    orderID,
		PaymentURL: paymentURL,
	}, nil
}

func (s *BillingServiceImpl) HandleResultCallback(db *gorm.DB, req *dto.PaymentCallbackRequest) (string, error) {
	amount, err := strconv.ParseFloat(req.OutSum, 64)
	if err != nil {
		return "", apperrors.NewBadRequestError("Invalid OutSum")
	}

	if !s.provider.VerifyResultSignature(amount, req.InvID, req.SignatureValue) {
		return "", apperrors.NewForbiddenError("Invalid payment signature")
	}

	payment, err := s.billingRepo.FindPaymentByOrderID(db, req.InvID)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if payment == nil {
		return "", apperrors.ErrNotFound(nil)
	}
	if payment.Status == models.PaymentStatusCompleted {
		// Duplicate callback; acknowledge without double-activating.
		return fmt.Sprintf("OK%s", req.InvID), nil
	}

	plan, err := s.billingRepo.FindPlanByID(db, payment.PlanID)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	if plan == nil {
		return "", apperrors.ErrNotFound(nil)
	}

	payload := datatypes.JSON(fmt.Sprintf(
		`{"out_sum":%q,"inv_id":%q,"received_at":%q}`,
		req.OutSum, req.InvID, time.Now().Format(time.RFC3339),
	))

	err = db.Transaction(func(tx *gorm.DB) error {
		payment.Status = models.PaymentStatusCompleted
		payment.Payload = payload
		if err := s.billingRepo.UpdatePayment(tx, payment); err != nil {
			return err
		}
		now := time.Now()
		return s.billingRepo.CreateSubscription(tx, &models.Subscription{
			OrganizationID: payment.OrganizationID,
			PlanID:         plan.ID,
			Status:         models.SubscriptionStatusActive,
			StartDate:      now,
			EndDate:        now.AddDate(0, 0, plan.DurationDays),
		})
	})
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	return fmt.Sprintf("OK%s", req.InvID), nil
}

func (s *BillingServiceImpl) GetSubscription(db *gorm.DB, organizationID, userID string) (*dto.SubscriptionResponse, error) {
	membership, err := s.orgRepo.FindMembership(db, organizationID, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if membership == nil {
		return nil, apperrors.ErrNotAMember
	}

	sub, err := s.billingRepo.FindActiveSubscription(db, organizationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if sub == nil {
		return nil, apperrors.ErrNotFound(nil)
	}

	plan, err := s.billingRepo.FindPlanByID(db, sub.PlanID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.SubscriptionResponse{
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}
	if plan != nil {
		resp.PlanCode = plan.Code
	}
	return resp, nil
}
