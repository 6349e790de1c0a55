package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/db"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	partnerRepo := repository.NewPartnerRepository(testDB)
	orderService := NewOrderService(orderRepo, partnerRepo, codegen.NewKeyedMutex(), nil, testDB)

	return orderService, testDB
}

func createTestBuyer(t *testing.T, testDB *gorm.DB, bpCode, name string) *model.BusinessPartner {
	partner := &model.BusinessPartner{
		BPCode:       bpCode,
		BusinessName: name,
		Role:         model.PartnerRoleBuyer,
		Mobile:       "91000000" + bpCode[len(bpCode)-2:],
		Status:       model.PartnerStatusApproved,
	}
	require.NoError(t, testDB.Create(partner).Error)
	return partner
}

func createTestCraftsman(t *testing.T, testDB *gorm.DB, bpCode, name string) *model.BusinessPartner {
	partner := &model.BusinessPartner{
		BPCode:       bpCode,
		BusinessName: name,
		Role:         model.PartnerRoleCraftsman,
		Mobile:       "82000000" + bpCode[len(bpCode)-2:],
		Status:       model.PartnerStatusApproved,
	}
	require.NoError(t, testDB.Create(partner).Error)
	return partner
}

func placeTestOrder(t *testing.T, orderService OrderService, buyer *model.BusinessPartner) *model.Order {
	due := time.Now().AddDate(0, 0, 7)
	order, err := orderService.PlaceOrder(PlaceOrderInput{
		PartnerRef:  buyer.CodeName(),
		ItemName:    "Bridal necklace",
		MetalType:   "gold",
		Purity:      "22K",
		WeightGrams: 42.5,
		Quantity:    2,
		DueDate:     &due,
	}, nil)
	require.NoError(t, err)
	return order
}

func TestOrderService_PlaceOrder(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")

	order := placeTestOrder(t, orderService, buyer)
	assert.Equal(t, "001", order.OrderNo)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, buyer.ID, order.PartnerID)
	assert.Equal(t, 2, order.Quantity)

	// Numbers increase globally
	second := placeTestOrder(t, orderService, buyer)
	assert.Equal(t, "002", second.OrderNo)

	// Placement is recorded in the audit trail
	events, err := orderService.GetOrderHistory(order.OrderNo)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.OrderStatusPending, events[0].To)
}

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")

	pending := &model.BusinessPartner{
		BPCode:       "BP002",
		BusinessName: "Pending Jewels",
		Role:         model.PartnerRoleBuyer,
		Mobile:       "9111111111",
		Status:       model.PartnerStatusPending,
	}
	require.NoError(t, testDB.Create(pending).Error)

	yesterday := time.Now().AddDate(0, 0, -1)
	today := time.Now()

	tests := []struct {
		name    string
		input   PlaceOrderInput
		wantErr error
	}{
		{
			name:    "Unknown partner reference",
			input:   PlaceOrderInput{PartnerRef: "BX999-Nobody", ItemName: "Ring"},
			wantErr: ErrPartnerNotFound,
		},
		{
			name:    "Malformed partner reference",
			input:   PlaceOrderInput{PartnerRef: "-Golden House", ItemName: "Ring"},
			wantErr: ErrPartnerNotFound,
		},
		{
			name:    "Partner not approved",
			input:   PlaceOrderInput{PartnerRef: pending.CodeName(), ItemName: "Ring"},
			wantErr: ErrPartnerNotApproved,
		},
		{
			name:    "Due date yesterday",
			input:   PlaceOrderInput{PartnerRef: buyer.CodeName(), ItemName: "Ring", DueDate: &yesterday},
			wantErr: ErrInvalidDueDate,
		},
		{
			name:    "Due date today",
			input:   PlaceOrderInput{PartnerRef: buyer.CodeName(), ItemName: "Ring", DueDate: &today},
			wantErr: ErrInvalidDueDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := orderService.PlaceOrder(tt.input, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
		})
	}
}

func TestOrderService_PlaceOrder_KYCBlocked(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")

	kyc := &model.PartnerKYC{PartnerID: buyer.ID, Freezed: true}
	require.NoError(t, testDB.Create(kyc).Error)

	order, err := orderService.PlaceOrder(PlaceOrderInput{
		PartnerRef: buyer.CodeName(),
		ItemName:   "Ring",
	}, nil)
	assert.ErrorIs(t, err, ErrKYCBlocked)
	assert.Nil(t, order)
}

func TestOrderService_KeyUserReview(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")

	approved := placeTestOrder(t, orderService, buyer)
	result, err := orderService.KeyUserReview(approved.OrderNo, true, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProcess, result.Status)

	// Only pending orders can be reviewed
	_, err = orderService.KeyUserReview(approved.OrderNo, true, nil)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, approved.OrderNo, stateErr.OrderNo)
	assert.Equal(t, model.OrderStatusInProcess, stateErr.Actual)
	assert.Contains(t, stateErr.Error(), "expected pending")

	// Rejection removes the order but keeps its number reserved
	rejected := placeTestOrder(t, orderService, buyer)
	require.Equal(t, "002", rejected.OrderNo)
	_, err = orderService.KeyUserReview(rejected.OrderNo, false, nil)
	require.NoError(t, err)

	_, err = orderService.GetOrder(rejected.OrderNo)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	next := placeTestOrder(t, orderService, buyer)
	assert.Equal(t, "003", next.OrderNo)
}

func TestOrderService_AdminVerify(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")

	order := placeTestOrder(t, orderService, buyer)

	// Pending orders cannot be verified
	_, err := orderService.AdminVerify(order.OrderNo, true, 10, "", nil)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusInProcess}, stateErr.Expected)

	_, err = orderService.KeyUserReview(order.OrderNo, true, nil)
	require.NoError(t, err)

	accepted, err := orderService.AdminVerify(order.OrderNo, true, 14, "rush job", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProcess, accepted.Status)
	assert.Equal(t, 14, accepted.EstimatedDays)
	assert.Equal(t, "rush job", accepted.AdminNotes)

	// Rejection parks the order
	second := placeTestOrder(t, orderService, buyer)
	_, err = orderService.KeyUserReview(second.OrderNo, true, nil)
	require.NoError(t, err)
	rejected, err := orderService.AdminVerify(second.OrderNo, false, 0, "specs incomplete", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAdminRejected, rejected.Status)
	assert.Equal(t, "specs incomplete", rejected.AdminNotes)
}

func TestOrderService_Assign(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")
	craftsman := createTestCraftsman(t, testDB, "AS001", "Silver Works")

	order := placeTestOrder(t, orderService, buyer)
	_, err := orderService.KeyUserReview(order.OrderNo, true, nil)
	require.NoError(t, err)

	// Buyers cannot be assigned
	_, err = orderService.Assign(order.OrderNo, buyer.CodeName(), nil)
	assert.ErrorIs(t, err, ErrNotACraftsman)

	// Reference must match code and name exactly
	_, err = orderService.Assign(order.OrderNo, craftsman.BPCode+"-Wrong Name", nil)
	assert.ErrorIs(t, err, ErrCraftsmanNotFound)

	assigned, err := orderService.Assign(order.OrderNo, craftsman.CodeName(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.CraftsmanID)
	assert.Equal(t, craftsman.ID, *assigned.CraftsmanID)
}

func TestOrderService_CraftsmanRespond(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")
	craftsman := createTestCraftsman(t, testDB, "AS001", "Silver Works")

	order := placeTestOrder(t, orderService, buyer)
	_, err := orderService.KeyUserReview(order.OrderNo, true, nil)
	require.NoError(t, err)
	_, err = orderService.Assign(order.OrderNo, craftsman.CodeName(), nil)
	require.NoError(t, err)

	// Reason must come from the taxonomy
	_, err = orderService.CraftsmanRespond(order.OrderNo, false, "did_not_feel_like_it", "", nil)
	assert.ErrorIs(t, err, ErrInvalidReason)

	// "other" needs notes
	_, err = orderService.CraftsmanRespond(order.OrderNo, false, model.RejectionReasonOther, "  ", nil)
	assert.ErrorIs(t, err, ErrReasonNotesRequired)

	rejected, err := orderService.CraftsmanRespond(order.OrderNo, false, "overbooked", "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRejected, rejected.Status)
	assert.Equal(t, "overbooked", rejected.RejectionReason)
	assert.Equal(t, craftsman.CodeName(), rejected.RejectedBy)
	assert.Nil(t, rejected.CraftsmanID)

	// Rejected orders can be reassigned; assignment clears the rejection
	reassigned, err := orderService.Assign(order.OrderNo, craftsman.CodeName(), nil)
	require.NoError(t, err)
	assert.Empty(t, reassigned.RejectionReason)
	assert.Empty(t, reassigned.RejectedBy)

	accepted, err := orderService.CraftsmanRespond(order.OrderNo, true, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProcess, accepted.Status)
	require.NotNil(t, accepted.CraftsmanID)
}

func TestOrderService_CompletionFlow(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")
	craftsman := createTestCraftsman(t, testDB, "AS001", "Silver Works")

	order := placeTestOrder(t, orderService, buyer)
	_, err := orderService.KeyUserReview(order.OrderNo, true, nil)
	require.NoError(t, err)

	// Completion needs an attached craftsman
	_, err = orderService.ClaimCompletion(order.OrderNo, nil)
	assert.ErrorIs(t, err, ErrCraftsmanNotFound)

	_, err = orderService.Assign(order.OrderNo, craftsman.CodeName(), nil)
	require.NoError(t, err)
	_, err = orderService.CraftsmanRespond(order.OrderNo, true, "", "", nil)
	require.NoError(t, err)

	claimed, err := orderService.ClaimCompletion(order.OrderNo, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAwaitingApproval, claimed.Status)

	completed, err := orderService.FinalApprove(order.OrderNo, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusComplete, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.WithinDuration(t, time.Now(), *completed.CompletedAt, 5*time.Second)

	// Complete is terminal
	_, err = orderService.FinalApprove(order.OrderNo, nil)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, model.OrderStatusComplete, stateErr.Actual)
	_, err = orderService.Assign(order.OrderNo, craftsman.CodeName(), nil)
	require.ErrorAs(t, err, &stateErr)
}

func TestOrderService_AuditTrail(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")
	craftsman := createTestCraftsman(t, testDB, "AS001", "Silver Works")

	actorID := uint(7)
	order := placeTestOrder(t, orderService, buyer)
	_, err := orderService.KeyUserReview(order.OrderNo, true, &actorID)
	require.NoError(t, err)
	_, err = orderService.Assign(order.OrderNo, craftsman.CodeName(), &actorID)
	require.NoError(t, err)
	_, err = orderService.CraftsmanRespond(order.OrderNo, true, "", "", &actorID)
	require.NoError(t, err)
	_, err = orderService.ClaimCompletion(order.OrderNo, &actorID)
	require.NoError(t, err)
	_, err = orderService.FinalApprove(order.OrderNo, &actorID)
	require.NoError(t, err)

	events, err := orderService.GetOrderHistory(order.OrderNo)
	require.NoError(t, err)
	require.Len(t, events, 6)

	assert.Equal(t, model.OrderStatusPending, events[0].To)
	assert.Equal(t, model.OrderStatusInProcess, events[1].To)
	assert.Equal(t, model.OrderStatusAssigned, events[2].To)
	assert.Equal(t, model.OrderStatusInProcess, events[3].To)
	assert.Equal(t, model.OrderStatusAwaitingApproval, events[4].To)
	assert.Equal(t, model.OrderStatusComplete, events[5].To)

	for _, event := range events[1:] {
		require.NotNil(t, event.ActorID)
		assert.Equal(t, actorID, *event.ActorID)
	}
}

func TestOrderService_PartnerAndAssignedListings(t *testing.T) {
	orderService, testDB := setupOrderServiceTest(t)
	buyer := createTestBuyer(t, testDB, "BG001", "Golden House")
	other := createTestBuyer(t, testDB, "BP002", "Pearl House")
	craftsman := createTestCraftsman(t, testDB, "AS001", "Silver Works")

	first := placeTestOrder(t, orderService, buyer)
	placeTestOrder(t, orderService, other)

	orders, err := orderService.GetPartnerOrders(buyer.CodeName())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.OrderNo, orders[0].OrderNo)

	_, err = orderService.KeyUserReview(first.OrderNo, true, nil)
	require.NoError(t, err)
	_, err = orderService.Assign(first.OrderNo, craftsman.CodeName(), nil)
	require.NoError(t, err)

	assigned, err := orderService.GetAssignedOrders(craftsman.CodeName(), "")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, first.OrderNo, assigned[0].OrderNo)

	assigned, err = orderService.GetAssignedOrders(craftsman.CodeName(), model.OrderStatusComplete)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}
