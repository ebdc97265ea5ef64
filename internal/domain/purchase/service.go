// internal/domain/purchase/service.go
package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// Purchase order errors
var (
	ErrOrderNotFound          = errors.New("purchase order not found")
	ErrInvalidStateTransition = errors.New("invalid purchase order state transition")
	ErrNoItems                = errors.New("purchase order needs at least one item")
	ErrInvalidItemQuantity    = errors.New("purchase order item quantity must be at least 1")
	ErrVariantNotPurchasable  = errors.New("bundles cannot be purchased; order the components")
	ErrDuplicateItem          = errors.New("purchase order lists the same variant twice")
)

// Service handles purchase order business logic. Receiving an order is the
// replenishment trigger: it posts one purchase movement per line item through
// the movement applier, all inside the order's own transaction.
type Service struct {
	store   Store
	applier *inventory.Applier
	config  *config.Config
}

// NewService creates a new purchase order service
func NewService(db *gorm.DB, applier *inventory.Applier, cfg *config.Config) *Service {
	return newService(NewStore(db), applier, cfg)
}

func newService(store Store, applier *inventory.Applier, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		applier: applier,
		config:  cfg,
	}
}

// CreateOrderRequest represents a new draft purchase order
type CreateOrderRequest struct {
	SellerID     uint              `json:"seller_id"`
	SupplierName string            `json:"supplier_name"`
	Notes        string            `json:"notes,omitempty"`
	CreatedBy    uint              `json:"created_by,omitempty"`
	Items        []CreateItemInput `json:"items"`
}

// CreateItemInput is one requested line on a new order
type CreateItemInput struct {
	VariantID uint    `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost,omitempty"`
}

// ReceiveResult reports what receiving an order changed
type ReceiveResult struct {
	Order *PurchaseOrder `json:"order"`
	// AlreadyReceived signals an idempotent no-op: the order was received
	// earlier and no balances changed.
	AlreadyReceived bool   `json:"already_received,omitempty"`
	UnitsReceived   int    `json:"units_received"`
	MovementIDs     []uint `json:"movement_ids,omitempty"`
}

// CreateOrder validates the lines and creates a draft order
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*PurchaseOrder, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	seen := make(map[uint]bool, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidItemQuantity
		}
		if seen[item.VariantID] {
			return nil, ErrDuplicateItem
		}
		seen[item.VariantID] = true
	}

	po := &PurchaseOrder{
		SellerID:     req.SellerID,
		Number:       generateOrderNumber(),
		Status:       OrderStatusDraft,
		SupplierName: req.SupplierName,
		Notes:        req.Notes,
		CreatedBy:    req.CreatedBy,
	}

	err := s.store.InTx(ctx, func(tx Store, inv inventory.Store) error {
		for _, input := range req.Items {
			variant, err := inv.GetVariant(req.SellerID, input.VariantID)
			if err != nil {
				return err
			}
			if variant.IsBundle() {
				return fmt.Errorf("%w: %s", ErrVariantNotPurchasable, variant.SKU)
			}
			po.Items = append(po.Items, PurchaseOrderItem{
				SellerID:  req.SellerID,
				VariantID: variant.ID,
				SKU:       variant.SKU,
				Quantity:  input.Quantity,
				UnitCost:  input.UnitCost,
			})
		}
		return tx.CreateOrder(po)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// MarkOrdered moves a draft order to ordered
func (s *Service) MarkOrdered(ctx context.Context, sellerID, orderID uint) (*PurchaseOrder, error) {
	return s.transition(ctx, sellerID, orderID, OrderStatusDraft, func(po *PurchaseOrder) {
		now := time.Now()
		po.Status = OrderStatusOrdered
		po.OrderedAt = &now
	})
}

// Cancel abandons a draft or ordered order without touching balances
func (s *Service) Cancel(ctx context.Context, sellerID, orderID uint) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		po, err := tx.GetOrderForUpdate(sellerID, orderID)
		if err != nil {
			return err
		}
		if po.Status != OrderStatusDraft && po.Status != OrderStatusOrdered {
			return fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidStateTransition, po.Status)
		}
		po.Status = OrderStatusCancelled
		if err := tx.SaveOrder(po); err != nil {
			return err
		}
		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Receive books the ordered quantities into stock. The status change and
// every line's purchase movement commit in one transaction: a failing line
// rolls back the whole receipt. Receiving a received order is a no-op.
func (s *Service) Receive(ctx context.Context, sellerID, orderID, receivedBy uint) (*ReceiveResult, error) {
	var result *ReceiveResult
	err := s.store.InTx(ctx, func(tx Store, inv inventory.Store) error {
		po, err := tx.GetOrderForUpdate(sellerID, orderID)
		if err != nil {
			return err
		}
		if po.Status == OrderStatusReceived {
			result = &ReceiveResult{Order: po, AlreadyReceived: true}
			return nil
		}
		if po.Status != OrderStatusOrdered {
			return fmt.Errorf("%w: cannot receive a %s order", ErrInvalidStateTransition, po.Status)
		}

		items, err := tx.GetItems(sellerID, orderID)
		if err != nil {
			return err
		}

		result = &ReceiveResult{}
		for i := range items {
			item := &items[i]
			applied, err := s.applier.ApplyInTx(inv, &inventory.ApplyRequest{
				SellerID:      sellerID,
				VariantID:     item.VariantID,
				Type:          inventory.MovementTypePurchase,
				Quantity:      item.Quantity,
				ReferenceType: inventory.ReferenceTypePurchaseOrder,
				ReferenceID:   po.ID,
				Note:          fmt.Sprintf("purchase order %s", po.Number),
				CreatedBy:     receivedBy,
			})
			if err != nil {
				return err
			}
			result.UnitsReceived += applied.AppliedQuantity
			result.MovementIDs = append(result.MovementIDs, applied.MovementIDs...)
		}

		now := time.Now()
		po.Status = OrderStatusReceived
		po.ReceivedAt = &now
		if err := tx.SaveOrder(po); err != nil {
			return err
		}
		po.Items = items
		result.Order = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetOrder retrieves a purchase order with its lines
func (s *Service) GetOrder(ctx context.Context, sellerID, orderID uint) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		var err error
		order, err = tx.GetOrder(sellerID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrders lists a seller's purchase orders, optionally filtered by status
func (s *Service) GetOrders(ctx context.Context, sellerID uint, status OrderStatus, limit int) ([]PurchaseOrder, error) {
	var orders []PurchaseOrder
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		var err error
		orders, err = tx.ListOrders(sellerID, status, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) transition(ctx context.Context, sellerID, orderID uint, from OrderStatus, apply func(*PurchaseOrder)) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := s.store.InTx(ctx, func(tx Store, _ inventory.Store) error {
		po, err := tx.GetOrderForUpdate(sellerID, orderID)
		if err != nil {
			return err
		}
		if po.Status != from {
			return fmt.Errorf("%w: order is %s", ErrInvalidStateTransition, po.Status)
		}
		apply(po)
		if err := tx.SaveOrder(po); err != nil {
			return err
		}
		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// generateOrderNumber builds a human-readable order number, e.g.
// PO-20260115-4F2A9C01
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), suffix)
}
