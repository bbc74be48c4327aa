// Package jobs defines the background tasks run by the worker binary.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeWarmPricingCache reloads a shop's cached discounts and tax zones.
const TypeWarmPricingCache = "pricing:cache:warm"

// WarmPayload is the body of a warm task.
type WarmPayload struct {
	ShopID string `json:"shop_id"`
}

// NewWarmTask builds a warm task for shopID.
func NewWarmTask(shopID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmPayload{ShopID: shopID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWarmPricingCache, payload), nil
}

// ParseWarmPayload decodes and validates a warm task body.
func ParseWarmPayload(data []byte) (uuid.UUID, error) {
	var p WarmPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return uuid.Nil, fmt.Errorf("decode warm payload: %w", err)
	}
	id, err := uuid.Parse(p.ShopID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid shop id %q", p.ShopID)
	}
	return id, nil
}
