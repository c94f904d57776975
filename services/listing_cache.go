package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-marketplace/models"
	"ticket-marketplace/utils"
)

const (
	listingKeyPublic     = "tickets:public"
	listingKeyAdvertised = "tickets:public:advertised"
)

// ListingCache keeps the public catalog listing in redis. Reads go through a
// circuit breaker so a struggling redis degrades to store reads instead of
// slowing every listing request down.
type ListingCache struct {
	redis   *redis.Client
	breaker *utils.CircuitBreaker
	ttl     time.Duration
}

func NewListingCache(redisClient *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{
		redis:   redisClient,
		breaker: utils.NewCircuitBreaker("listing-cache", 20, 0.5),
		ttl:     ttl,
	}
}

func listingKey(advertisedOnly bool) string {
	if advertisedOnly {
		return listingKeyAdvertised
	}
	return listingKeyPublic
}

func (c *ListingCache) Get(ctx context.Context, advertisedOnly bool) ([]*models.Ticket, bool) {
	result, err := c.breaker.Execute(ctx, func() (any, error) {
		return c.redis.Get(ctx, listingKey(advertisedOnly)).Result()
	})
	if err != nil {
		return nil, false
	}

	raw, ok := result.(string)
	if !ok {
		return nil, false
	}

	var tickets []*models.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		return nil, false
	}
	return tickets, true
}

// Set is best effort; a failed write only costs the next reader a store query.
func (c *ListingCache) Set(ctx context.Context, advertisedOnly bool, tickets []*models.Ticket) {
	data, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	c.redis.Set(ctx, listingKey(advertisedOnly), data, c.ttl)
}

func (c *ListingCache) Invalidate(ctx context.Context) {
	c.redis.Del(ctx, listingKeyPublic, listingKeyAdvertised)
}
