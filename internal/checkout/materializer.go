package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/shopspring/decimal"
)

// Materializer turns the session booking into one cart line per room.
type Materializer struct {
	bookings *SessionStore
	cart     *CartStore
	products domain.ProductRepository
	logger   *slog.Logger

	mu            sync.Mutex
	placeholderID int64
}

func NewMaterializer(
	bookings *SessionStore,
	cart *CartStore,
	products domain.ProductRepository,
	placeholderID int64,
	logger *slog.Logger) *Materializer {

	return &Materializer{
		bookings:      bookings,
		cart:          cart,
		products:      products,
		placeholderID: placeholderID,
		logger:        logger,
	}
}

// Materialize replaces the cart with the rooms of the session booking. It
// reports false without touching the cart when there is no booking or the
// booking was already materialized.
func (m *Materializer) Materialize(ctx context.Context) (bool, error) {
	booking, err := m.bookings.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoBooking) {
			return false, nil
		}
		return false, err
	}

	if m.bookings.Materialized(ctx) {
		return false, nil
	}

	placeholder, err := m.placeholder(ctx)
	if err != nil {
		return false, err
	}

	m.cart.Empty(ctx)

	cart := &domain.Cart{Items: make([]domain.CartItem, 0, len(booking.RoomCodes))}
	prices := make(map[string]decimal.Decimal, len(booking.RoomCodes))

	for i := range booking.RoomCodes {
		individual := booking.Individual(i)
		key := uuid.NewString()

		cart.Items = append(cart.Items, domain.CartItem{
			Key:       key,
			ProductID: placeholder.ID,
			Quantity:  1,
			RoomIndex: i,
			Booking:   &individual,
		})
		prices[key] = individual.Price
	}

	err = m.cart.Save(ctx, cart)
	if err != nil {
		return false, err
	}

	err = m.cart.ForcePrices(ctx, prices)
	if err != nil {
		return false, err
	}

	m.bookings.MarkMaterialized(ctx)

	m.logger.Info("booking materialized into cart",
		"rooms", len(cart.Items),
		"total", booking.TotalPrice.StringFixed(2))

	return true, nil
}

// placeholder finds the zero-priced product carrying room line items,
// creating it on first use.
func (m *Materializer) placeholder(ctx context.Context) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.placeholderID > 0 {
		product, err := m.products.GetByID(ctx, m.placeholderID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("load placeholder product: %w", err)
		}

		m.logger.Warn("configured placeholder product is missing", "product_id", m.placeholderID)
	}

	product, err := m.products.GetBySKU(ctx, domain.PlaceholderProductSKU)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRecordNotFound):
		product, err = m.createPlaceholder(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load placeholder product: %w", err)
	}

	m.placeholderID = product.ID

	return product, nil
}

func (m *Materializer) createPlaceholder(ctx context.Context) (*domain.Product, error) {
	product := &domain.Product{
		SKU:    domain.PlaceholderProductSKU,
		Name:   domain.PlaceholderProductName,
		Price:  decimal.Zero,
		Hidden: true,
	}

	err := m.products.Create(ctx, product)
	if err == nil {
		m.logger.Info("created placeholder product", "product_id", product.ID)
		return product, nil
	}

	// another instance created it first
	if errors.Is(err, domain.ErrEditConflict) {
		return m.products.GetBySKU(ctx, domain.PlaceholderProductSKU)
	}

	return nil, fmt.Errorf("create placeholder product: %w", err)
}
