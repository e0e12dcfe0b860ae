package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

const heldKeyPrefix = "pos:held:"

// heldCart is the Redis payload for a parked sale.
type heldCart struct {
	TransactionID string               `json:"transaction_id"`
	TerminalID    string               `json:"terminal_id"`
	Lines         []CartLine           `json:"lines"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue float64              `json:"discount_value"`
	TaxRate       float64              `json:"tax_rate"`
	HeldAt        time.Time            `json:"held_at"`
}

// HeldStore parks carts in Redis so a terminal can serve the next customer and
// pick the sale back up later.
type HeldStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHeldStore(client *redis.Client, ttl time.Duration) *HeldStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HeldStore{client: client, ttl: ttl}
}

// Save parks the cart and returns the hold id used to resume it.
func (h *HeldStore) Save(ctx context.Context, cart *Cart) (string, error) {
	payload, err := json.Marshal(heldCart{
		TransactionID: cart.TransactionID,
		TerminalID:    cart.TerminalID,
		Lines:         cart.Lines,
		DiscountType:  cart.DiscountType,
		DiscountValue: cart.DiscountValue,
		TaxRate:       cart.TaxRate,
		HeldAt:        time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("pos: marshal held cart: %w", err)
	}

	holdID := uuid.NewString()
	if err := h.client.Set(ctx, heldKeyPrefix+holdID, payload, h.ttl).Err(); err != nil {
		return "", fmt.Errorf("pos: save held cart: %w", err)
	}
	return holdID, nil
}

// Take loads a held cart and removes it so it cannot be resumed twice.
func (h *HeldStore) Take(ctx context.Context, holdID string) (*heldCart, error) {
	key := heldKeyPrefix + holdID
	payload, err := h.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pos: held cart %s: %w", holdID, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pos: load held cart: %w", err)
	}

	var held heldCart
	if err := json.Unmarshal(payload, &held); err != nil {
		return nil, fmt.Errorf("pos: decode held cart: %w", err)
	}
	if err := h.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("pos: delete held cart: %w", err)
	}
	return &held, nil
}
