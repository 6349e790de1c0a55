package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidDueDate      = errors.New("due date must be tomorrow or later")
	ErrCraftsmanNotFound   = errors.New("craftsman not found")
	ErrNotACraftsman       = errors.New("partner is not a craftsman")
	ErrInvalidReason       = errors.New("rejection reason is not recognized")
	ErrReasonNotesRequired = errors.New("rejection notes are required for reason \"other\"")
	ErrPartnerNotApproved  = errors.New("partner is not approved for ordering")
	ErrKYCBlocked          = errors.New("partner KYC is freezed or revoked")
)

// InvalidStateError reports a transition attempted from the wrong state.
type InvalidStateError struct {
	OrderNo  string
	Expected []model.OrderStatus
	Actual   model.OrderStatus
}

func (e *InvalidStateError) Error() string {
	expected := make([]string, len(e.Expected))
	for i, s := range e.Expected {
		expected[i] = string(s)
	}
	return fmt.Sprintf("order %s is %s, expected %s", e.OrderNo, e.Actual, strings.Join(expected, " or "))
}

// PlaceOrderInput carries the fields of a new manufacturing order.
type PlaceOrderInput struct {
	PartnerRef  string // "<bp_code>-<business_name>"
	ItemName    string
	MetalType   string
	Purity      string
	WeightGrams float64
	Size        string
	Quantity    int
	DesignNotes string
	Attachment  string
	DueDate     *time.Time
}

type OrderService interface {
	PlaceOrder(input PlaceOrderInput, actorID *uint) (*model.Order, error)
	GetOrder(orderNo string) (*model.Order, error)
	ListOrders(status model.OrderStatus) ([]model.Order, error)
	GetPartnerOrders(partnerRef string) ([]model.Order, error)
	GetAssignedOrders(craftsmanRef string, status model.OrderStatus) ([]model.Order, error)
	GetOrderHistory(orderNo string) ([]model.OrderEvent, error)
	KeyUserReview(orderNo string, approve bool, actorID *uint) (*model.Order, error)
	AdminVerify(orderNo string, accept bool, estimatedDays int, notes string, actorID *uint) (*model.Order, error)
	Assign(orderNo, craftsmanRef string, actorID *uint) (*model.Order, error)
	CraftsmanRespond(orderNo string, accept bool, reason, notes string, actorID *uint) (*model.Order, error)
	ClaimCompletion(orderNo string, actorID *uint) (*model.Order, error)
	FinalApprove(orderNo string, actorID *uint) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	partnerRepo repository.PartnerRepository
	locks       *codegen.KeyedMutex
	notifier    NotificationService
	db          *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	partnerRepo repository.PartnerRepository,
	locks *codegen.KeyedMutex,
	notifier NotificationService,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		partnerRepo: partnerRepo,
		locks:       locks,
		notifier:    notifier,
		db:          db,
	}
}

// orderNoScope is the keyed mutex scope serializing order number issuance.
const orderNoScope = "order_no"

func (s *orderService) PlaceOrder(input PlaceOrderInput, actorID *uint) (*model.Order, error) {
	logger.Info("Placing order", map[string]interface{}{
		"partner_ref": input.PartnerRef,
		"item_name":   input.ItemName,
	})

	partner, err := s.resolvePartner(input.PartnerRef, model.PartnerRoleBuyer)
	if err != nil {
		return nil, err
	}

	if partner.Status != model.PartnerStatusApproved {
		logger.Warn("Order rejected: partner not approved", map[string]interface{}{
			"bp_code": partner.BPCode,
			"status":  partner.Status,
		})
		return nil, ErrPartnerNotApproved
	}
	if partner.KYC != nil && (partner.KYC.Freezed || partner.KYC.Revoked) {
		logger.Warn("Order rejected: partner KYC blocked", map[string]interface{}{
			"bp_code":    partner.BPCode,
			"kyc_status": partner.KYC.Status,
		})
		return nil, ErrKYCBlocked
	}

	if input.DueDate != nil && !dueDateValid(*input.DueDate) {
		logger.Warn("Order rejected: due date too early", map[string]interface{}{
			"bp_code":  partner.BPCode,
			"due_date": input.DueDate,
		})
		return nil, ErrInvalidDueDate
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	// Serialize number issuance; the unique constraint backs this up
	// across processes.
	unlock := s.locks.Lock(orderNoScope)
	defer unlock()

	orderNo, err := s.nextOrderNo()
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNo:     orderNo,
		PartnerID:   partner.ID,
		ItemName:    input.ItemName,
		MetalType:   input.MetalType,
		Purity:      input.Purity,
		WeightGrams: input.WeightGrams,
		Size:        input.Size,
		Quantity:    quantity,
		DesignNotes: input.DesignNotes,
		Attachment:  input.Attachment,
		DueDate:     input.DueDate,
		Status:      model.OrderStatusPending,
		CreatedByID: actorID,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.recordEvent(order, "", model.OrderStatusPending, actorID, "order placed")

	logger.Info("Order placed successfully", map[string]interface{}{
		"order_no": order.OrderNo,
		"bp_code":  partner.BPCode,
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetOrder(orderNo string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderNo(orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(status model.OrderStatus) ([]model.Order, error) {
	return s.orderRepo.List(status)
}

func (s *orderService) GetPartnerOrders(partnerRef string) ([]model.Order, error) {
	partner, err := s.resolvePartner(partnerRef, "")
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByPartnerID(partner.ID)
}

func (s *orderService) GetAssignedOrders(craftsmanRef string, status model.OrderStatus) ([]model.Order, error) {
	craftsman, err := s.resolvePartner(craftsmanRef, model.PartnerRoleCraftsman)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByCraftsmanID(craftsman.ID, status)
}

func (s *orderService) GetOrderHistory(orderNo string) ([]model.OrderEvent, error) {
	order, err := s.GetOrder(orderNo)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.EventsByOrderID(order.ID)
}

// KeyUserReview moves a pending order forward or removes it. Approval
// sends the order into processing; rejection soft-deletes it, keeping
// the number reserved.
func (s *orderService) KeyUserReview(orderNo string, approve bool, actorID *uint) (*model.Order, error) {
	if approve {
		return s.transition(orderNo, []model.OrderStatus{model.OrderStatusPending}, actorID, "approved by key user",
			func(tx *gorm.DB, order *model.Order) error {
				order.Status = model.OrderStatusInProcess
				return nil
			})
	}

	unlock := s.locks.Lock("order:" + orderNo)
	defer unlock()

	order, err := s.GetOrder(orderNo)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, &InvalidStateError{
			OrderNo:  orderNo,
			Expected: []model.OrderStatus{model.OrderStatusPending},
			Actual:   order.Status,
		}
	}

	s.recordEvent(order, order.Status, order.Status, actorID, "rejected by key user, order removed")
	if err := s.orderRepo.Delete(order.ID); err != nil {
		return nil, err
	}

	logger.Info("Order removed after key user rejection", map[string]interface{}{
		"order_no": orderNo,
	})
	s.notifyCreator(order, model.NotificationTypeOrderRejected, "Your order was rejected during review")
	return order, nil
}

// AdminVerify records the verification outcome for an in-process order.
// Acceptance keeps the order in process with the admin's estimate;
// rejection parks it in the admin-rejected state.
func (s *orderService) AdminVerify(orderNo string, accept bool, estimatedDays int, notes string, actorID *uint) (*model.Order, error) {
	expected := []model.OrderStatus{model.OrderStatusInProcess}

	if accept {
		order, err := s.transition(orderNo, expected, actorID, "accepted by admin",
			func(tx *gorm.DB, order *model.Order) error {
				order.EstimatedDays = estimatedDays
				order.AdminNotes = notes
				return nil
			})
		if err != nil {
			return nil, err
		}
		s.notifyCreator(order, model.NotificationTypeOrderApproved, "Your order passed admin verification")
		return order, nil
	}

	order, err := s.transition(orderNo, expected, actorID, "rejected by admin",
		func(tx *gorm.DB, order *model.Order) error {
			order.Status = model.OrderStatusAdminRejected
			order.AdminNotes = notes
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.notifyCreator(order, model.NotificationTypeOrderRejected, "Your order was rejected during admin verification")
	return order, nil
}

// Assign hands an in-process or craftsman-rejected order to a craftsman.
// The craftsman reference must match bp_code and business name exactly.
func (s *orderService) Assign(orderNo, craftsmanRef string, actorID *uint) (*model.Order, error) {
	craftsman, err := s.resolvePartner(craftsmanRef, model.PartnerRoleCraftsman)
	if err != nil {
		return nil, err
	}

	expected := []model.OrderStatus{model.OrderStatusInProcess, model.OrderStatusRejected}
	order, err := s.transition(orderNo, expected, actorID, fmt.Sprintf("assigned to %s", craftsman.BPCode),
		func(tx *gorm.DB, order *model.Order) error {
			order.Status = model.OrderStatusAssigned
			order.CraftsmanID = &craftsman.ID
			order.RejectionReason = ""
			order.RejectionNotes = ""
			order.RejectedBy = ""
			return nil
		})
	if err != nil {
		return nil, err
	}

	logger.Info("Order assigned to craftsman", map[string]interface{}{
		"order_no": orderNo,
		"bp_code":  craftsman.BPCode,
	})
	s.notifyCreator(order, model.NotificationTypeOrderAssigned, fmt.Sprintf("Your order was assigned to %s", craftsman.BusinessName))
	return order, nil
}

// CraftsmanRespond records the craftsman's answer on an assigned order.
// Acceptance puts it back in process for manufacturing; rejection needs
// a reason from the taxonomy, with notes mandatory for "other", and
// detaches the craftsman so the order can be reassigned.
func (s *orderService) CraftsmanRespond(orderNo string, accept bool, reason, notes string, actorID *uint) (*model.Order, error) {
	expected := []model.OrderStatus{model.OrderStatusAssigned}

	if accept {
		return s.transition(orderNo, expected, actorID, "accepted by craftsman",
			func(tx *gorm.DB, order *model.Order) error {
				order.Status = model.OrderStatusInProcess
				return nil
			})
	}

	if !model.ValidRejectionReason(reason) {
		logger.Warn("Craftsman rejection with unknown reason", map[string]interface{}{
			"order_no": orderNo,
			"reason":   reason,
		})
		return nil, ErrInvalidReason
	}
	if reason == model.RejectionReasonOther && strings.TrimSpace(notes) == "" {
		return nil, ErrReasonNotesRequired
	}

	order, err := s.transition(orderNo, expected, actorID, fmt.Sprintf("rejected by craftsman: %s", reason),
		func(tx *gorm.DB, order *model.Order) error {
			rejectedBy := ""
			if order.CraftsmanID != nil {
				var craftsman model.BusinessPartner
				if err := tx.First(&craftsman, *order.CraftsmanID).Error; err == nil {
					rejectedBy = craftsman.CodeName()
				}
			}
			order.Status = model.OrderStatusRejected
			order.RejectionReason = reason
			order.RejectionNotes = notes
			order.RejectedBy = rejectedBy
			order.CraftsmanID = nil
			return nil
		})
	if err != nil {
		return nil, err
	}

	logger.Info("Order rejected by craftsman", map[string]interface{}{
		"order_no": orderNo,
		"reason":   reason,
	})
	s.notifyCreator(order, model.NotificationTypeOrderRejected, fmt.Sprintf("The craftsman declined your order (%s)", reason))
	return order, nil
}

// ClaimCompletion moves an in-process order with a craftsman attached to
// awaiting-approval.
func (s *orderService) ClaimCompletion(orderNo string, actorID *uint) (*model.Order, error) {
	expected := []model.OrderStatus{model.OrderStatusInProcess}
	return s.transition(orderNo, expected, actorID, "completion claimed",
		func(tx *gorm.DB, order *model.Order) error {
			if order.CraftsmanID == nil {
				return ErrCraftsmanNotFound
			}
			order.Status = model.OrderStatusAwaitingApproval
			return nil
		})
}

// FinalApprove closes the order. Complete is terminal.
func (s *orderService) FinalApprove(orderNo string, actorID *uint) (*model.Order, error) {
	expected := []model.OrderStatus{model.OrderStatusAwaitingApproval}
	order, err := s.transition(orderNo, expected, actorID, "final approval",
		func(tx *gorm.DB, order *model.Order) error {
			now := time.Now()
			order.Status = model.OrderStatusComplete
			order.CompletedAt = &now
			return nil
		})
	if err != nil {
		return nil, err
	}

	logger.Info("Order completed", map[string]interface{}{
		"order_no": orderNo,
	})
	s.notifyCreator(order, model.NotificationTypeOrderCompleted, "Your order is complete")
	return order, nil
}

// transition applies a guarded state change under a per-order mutex and
// a row lock, recording the audit event in the same transaction.
func (s *orderService) transition(
	orderNo string,
	expected []model.OrderStatus,
	actorID *uint,
	note string,
	mutate func(tx *gorm.DB, order *model.Order) error,
) (*model.Order, error) {
	unlock := s.locks.Lock("order:" + orderNo)
	defer unlock()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order transition, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_no": orderNo,
			})
		}
	}()

	var order model.Order
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_no = ?", orderNo).
		First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to lock order for transition", err, map[string]interface{}{
			"order_no": orderNo,
		})
		return nil, err
	}

	allowed := false
	for _, status := range expected {
		if order.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		tx.Rollback()
		logger.Warn("Order transition refused: wrong state", map[string]interface{}{
			"order_no": orderNo,
			"actual":   order.Status,
			"note":     note,
		})
		return nil, &InvalidStateError{
			OrderNo:  orderNo,
			Expected: expected,
			Actual:   order.Status,
		}
	}

	from := order.Status
	if err := mutate(tx, &order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to save order transition", err, map[string]interface{}{
			"order_no": orderNo,
			"from":     from,
			"to":       order.Status,
		})
		return nil, err
	}

	event := model.OrderEvent{
		OrderID: order.ID,
		From:    from,
		To:      order.Status,
		ActorID: actorID,
		Note:    note,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to record order event", err, map[string]interface{}{
			"order_no": orderNo,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transition", err, map[string]interface{}{
			"order_no": orderNo,
		})
		return nil, err
	}

	logger.Info("Order transitioned", map[string]interface{}{
		"order_no": orderNo,
		"from":     from,
		"to":       order.Status,
		"note":     note,
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) nextOrderNo() (string, error) {
	nos, err := s.orderRepo.OrderNos()
	if err != nil {
		return "", err
	}

	max := 0
	for _, no := range nos {
		if seq, ok := codegen.SeqFromOrderNo(no); ok && seq > max {
			max = seq
		}
	}
	return codegen.FormatOrderNo(max + 1), nil
}

// resolvePartner looks up a "<bp_code>-<business_name>" reference,
// optionally requiring a role.
func (s *orderService) resolvePartner(ref string, role model.PartnerRole) (*model.BusinessPartner, error) {
	bpCode, businessName, ok := model.ParseCodeName(ref)
	if !ok {
		if role == model.PartnerRoleCraftsman {
			return nil, ErrCraftsmanNotFound
		}
		return nil, ErrPartnerNotFound
	}

	partner, err := s.partnerRepo.FindByCodeAndName(bpCode, businessName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if role == model.PartnerRoleCraftsman {
				return nil, ErrCraftsmanNotFound
			}
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}

	if role != "" && partner.Role != role {
		if role == model.PartnerRoleCraftsman {
			return nil, ErrNotACraftsman
		}
		return nil, ErrPartnerNotFound
	}

	return partner, nil
}

func (s *orderService) recordEvent(order *model.Order, from, to model.OrderStatus, actorID *uint, note string) {
	event := &model.OrderEvent{
		OrderID: order.ID,
		From:    from,
		To:      to,
		ActorID: actorID,
		Note:    note,
	}
	if err := s.orderRepo.CreateEvent(event); err != nil {
		logger.Error("Failed to record order event", err, map[string]interface{}{
			"order_no": order.OrderNo,
		})
	}
}

func (s *orderService) notifyCreator(order *model.Order, notifType model.NotificationType, message string) {
	if s.notifier == nil || order.CreatedByID == nil {
		return
	}
	s.notifier.NotifyOrderEvent(*order.CreatedByID, notifType, order, message)
}

// dueDateValid requires the due date to fall on tomorrow or later.
func dueDateValid(due time.Time) bool {
	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return !due.Before(tomorrow)
}
