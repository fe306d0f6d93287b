package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	cartKey       = "cart"
	cartPricesKey = "cart_prices"
)

// CartStore keeps the order-in-progress in the visitor session. Forced
// prices are stored per item key and replace the catalog price whenever
// totals are calculated.
type CartStore struct {
	sessions *scs.SessionManager
	products domain.ProductRepository
}

func NewCartStore(sessions *scs.SessionManager, products domain.ProductRepository) *CartStore {
	return &CartStore{
		sessions: sessions,
		products: products,
	}
}

func (c *CartStore) Load(ctx context.Context) (*domain.Cart, error) {
	if !sessionLoaded(ctx, c.sessions) {
		return nil, domain.ErrSessionUnavailable
	}

	cart := &domain.Cart{Items: []domain.CartItem{}}

	data := c.sessions.GetBytes(ctx, cartKey)
	if len(data) == 0 {
		return cart, nil
	}

	err := json.Unmarshal(data, cart)
	if err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return cart, nil
}

func (c *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	c.sessions.Put(ctx, cartKey, data)

	return nil
}

func (c *CartStore) Empty(ctx context.Context) {
	c.sessions.Remove(ctx, cartKey)
	c.sessions.Remove(ctx, cartPricesKey)
}

// RemoveItem drops one line item and its forced price.
func (c *CartStore) RemoveItem(ctx context.Context, key string) (removed bool, empty bool, err error) {
	cart, err := c.Load(ctx)
	if err != nil {
		return false, false, err
	}

	if !cart.Remove(key) {
		return false, cart.IsEmpty(), nil
	}

	prices, err := c.forcedPrices(ctx)
	if err != nil {
		return false, false, err
	}
	delete(prices, key)

	err = c.saveForcedPrices(ctx, prices)
	if err != nil {
		return false, false, err
	}

	err = c.Save(ctx, cart)
	if err != nil {
		return false, false, err
	}

	return true, cart.IsEmpty(), nil
}

func (c *CartStore) ForcePrices(ctx context.Context, prices map[string]decimal.Decimal) error {
	current, err := c.forcedPrices(ctx)
	if err != nil {
		return err
	}

	for key, price := range prices {
		current[key] = price
	}

	return c.saveForcedPrices(ctx, current)
}

// CalculateTotals prices every line from the catalog, then lets the forced
// price of the line override it.
func (c *CartStore) CalculateTotals(ctx context.Context) (*domain.CartTotals, error) {
	cart, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}

	forced, err := c.forcedPrices(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make(map[int64]decimal.Decimal)
	totals := &domain.CartTotals{Lines: make([]domain.CartLine, 0, len(cart.Items)), Total: decimal.Zero}

	for _, item := range cart.Items {
		unit, ok := catalog[item.ProductID]
		if !ok {
			unit, err = c.catalogPrice(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			catalog[item.ProductID] = unit
		}

		if price, ok := forced[item.Key]; ok {
			unit = price
		}

		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

		totals.Lines = append(totals.Lines, domain.CartLine{
			Item:      item,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		totals.Total = totals.Total.Add(lineTotal)
	}

	return totals, nil
}

func (c *CartStore) catalogPrice(ctx context.Context, productID int64) (decimal.Decimal, error) {
	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return product.Price, nil
}

func (c *CartStore) forcedPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)

	data := c.sessions.GetBytes(ctx, cartPricesKey)
	if len(data) == 0 {
		return prices, nil
	}

	err := json.Unmarshal(data, &prices)
	if err != nil {
		return nil, fmt.Errorf("decode forced prices: %w", err)
	}

	return prices, nil
}

func (c *CartStore) saveForcedPrices(ctx context.Context, prices map[string]decimal.Decimal) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("encode forced prices: %w", err)
	}

	c.sessions.Put(ctx, cartPricesKey, data)

	return nil
}
