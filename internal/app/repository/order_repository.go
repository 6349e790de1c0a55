package repository

import (
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByOrderNo(orderNo string) (*model.Order, error)
	List(status model.OrderStatus) ([]model.Order, error)
	FindByPartnerID(partnerID uint) ([]model.Order, error)
	FindByCraftsmanID(craftsmanID uint, status model.OrderStatus) ([]model.Order, error)
	OrderNos() ([]string, error)
	Update(order *model.Order) error
	Delete(id uint) error
	CreateEvent(event *model.OrderEvent) error
	EventsByOrderID(orderID uint) ([]model.OrderEvent, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Partner").Preload("Craftsman").Preload("CreatedBy")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_no":   order.OrderNo,
		"partner_id": order.PartnerID,
		"item_name":  order.ItemName,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_no":   order.OrderNo,
			"partner_id": order.PartnerID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"order_no": order.OrderNo,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) FindByOrderNo(orderNo string) (*model.Order, error) {
	logger.Debug("Finding order by number in database", map[string]interface{}{
		"order_no": orderNo,
	})

	var order model.Order
	if err := r.preloadOrder().Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		logger.Error("Failed to find order by number in database", err, map[string]interface{}{
			"order_no": orderNo,
		})
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) List(status model.OrderStatus) ([]model.Order, error) {
	logger.Debug("Listing orders in database", map[string]interface{}{
		"status": status,
	})

	query := r.preloadOrder()
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) FindByPartnerID(partnerID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by partner ID in database", map[string]interface{}{
		"partner_id": partnerID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by partner ID in database", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) FindByCraftsmanID(craftsmanID uint, status model.OrderStatus) ([]model.Order, error) {
	logger.Debug("Finding orders by craftsman ID in database", map[string]interface{}{
		"craftsman_id": craftsmanID,
		"status":       status,
	})

	query := r.preloadOrder().Where("craftsman_id = ?", craftsmanID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by craftsman ID in database", err, map[string]interface{}{
			"craftsman_id": craftsmanID,
		})
		return nil, err
	}

	return orders, nil
}

// OrderNos returns every order number ever issued, soft-deleted orders
// included so numbers are never reused.
func (r *orderRepository) OrderNos() ([]string, error) {
	var nos []string
	if err := r.db.Unscoped().Model(&model.Order{}).Pluck("order_no", &nos).Error; err != nil {
		logger.Error("Failed to query order numbers in database", err)
		return nil, err
	}
	return nos, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"order_no": order.OrderNo,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
			"order_no": order.OrderNo,
		})
		return err
	}

	return nil
}

func (r *orderRepository) Delete(id uint) error {
	logger.Debug("Deleting order from database", map[string]interface{}{
		"order_id": id,
	})

	if err := r.db.Delete(&model.Order{}, id).Error; err != nil {
		logger.Error("Failed to delete order from database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	return nil
}

func (r *orderRepository) CreateEvent(event *model.OrderEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		logger.Error("Failed to create order event in database", err, map[string]interface{}{
			"order_id": event.OrderID,
			"to":       event.To,
		})
		return err
	}
	return nil
}

func (r *orderRepository) EventsByOrderID(orderID uint) ([]model.OrderEvent, error) {
	var events []model.OrderEvent
	if err := r.db.Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		logger.Error("Failed to find order events in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return events, nil
}
