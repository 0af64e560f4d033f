package services

import (
	"crypto/md5"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"saaskit_backend/internal/models"
	"saaskit_backend/internal/repositories"
	"saaskit_backend/internal/services/dto"
	"saaskit_backend/pkg/apperrors"
)

func seedPlan(t *testing.T, db *gorm.DB) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Code:         fmt.Sprintf("pro_%d", time.Now().UnixNano()),
		Name:         "Pro",
		Price:        4990,
		DurationDays: 30,
	}
	require.NoError(t, repositories.NewBillingRepository().CreatePlan(db, plan))
	return plan
}

// resultSignature builds the signature the provider sends on its result
// webhook, using the password from testConfig.
func resultSignature(amount float64, orderID string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%.2f:%s:pass-two", amount, orderID)))
	return fmt.Sprintf("%X", sum)
}

func TestCheckoutAndCallbackActivatesSubscription(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})
	svc := container.BillingService

	owner := createVerifiedUser(t, db, uniqueEmail("payer"), "password-123")
	org, err := container.OrganizationService.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Paying"})
	require.NoError(t, err)
	plan := seedPlan(t, db)

	checkout, err := svc.Checkout(db, org.ID, owner.ID, &dto.CheckoutRequest{PlanCode: plan.Code})
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.OrderID)
	assert.Contains(t, checkout.PaymentURL, "InvId="+checkout.OrderID)

	ack, err := svc.HandleResultCallback(db, &dto.PaymentCallbackRequest{
		OutSum:         "4990.00",
		InvID:          checkout.OrderID,
		SignatureValue: resultSignature(4990, checkout.OrderID),
	})
	require.NoError(t, err)
	assert.Equal(t, "OK"+checkout.OrderID, ack)

	sub, err := svc.GetSubscription(db, org.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Code, sub.PlanCode)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)

	// A replayed callback acknowledges without a second subscription.
	ack, err = svc.HandleResultCallback(db, &dto.PaymentCallbackRequest{
		OutSum:         "4990.00",
		InvID:          checkout.OrderID,
		SignatureValue: resultSignature(4990, checkout.OrderID),
	})
	require.NoError(t, err)
	assert.Equal(t, "OK"+checkout.OrderID, ack)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("organization_id = ?", org.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCallbackRejectsBadSignature(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})
	svc := container.BillingService

	owner := createVerifiedUser(t, db, uniqueEmail("fraud"), "password-123")
	org, err := container.OrganizationService.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Target"})
	require.NoError(t, err)
	plan := seedPlan(t, db)

	checkout, err := svc.Checkout(db, org.ID, owner.ID, &dto.CheckoutRequest{PlanCode: plan.Code})
	require.NoError(t, err)

	_, err = svc.HandleResultCallback(db, &dto.PaymentCallbackRequest{
		OutSum:         "4990.00",
		InvID:          checkout.OrderID,
		SignatureValue: "DEADBEEFDEADBEEFDEADBEEFDEADBEEF",
	})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 403, appErr.HTTPCode)

	// Tampered amounts fail too, even with a self-consistent signature.
	_, err = svc.HandleResultCallback(db, &dto.PaymentCallbackRequest{
		OutSum:         "1.00",
		InvID:          checkout.OrderID,
		SignatureValue: resultSignature(4990, checkout.OrderID),
	})
	assert.Error(t, err)
}

func TestCheckoutRequiresManager(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})
	svc := container.BillingService

	owner := createVerifiedUser(t, db, uniqueEmail("bowner"), "password-123")
	member := createVerifiedUser(t, db, uniqueEmail("bmember"), "password-123")
	org, err := container.OrganizationService.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Tight"})
	require.NoError(t, err)
	require.NoError(t, repositories.NewOrganizationRepository().CreateMembership(db, &models.Membership{
		OrganizationID: org.ID,
		UserID:         member.ID,
		Role:           models.MembershipRoleMember,
	}))
	plan := seedPlan(t, db)

	_, err = svc.Checkout(db, org.ID, member.ID, &dto.CheckoutRequest{PlanCode: plan.Code})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestGetSubscriptionNoneActive(t *testing.T) {
	db := testDB(t)
	container := newTestContainer(&recordingProvider{})

	owner := createVerifiedUser(t, db, uniqueEmail("free"), "password-123")
	org, err := container.OrganizationService.Create(db, owner.ID, &dto.CreateOrganizationRequest{Name: "Freeloader"})
	require.NoError(t, err)

	_, err = container.BillingService.GetSubscription(db, org.ID, owner.ID)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
