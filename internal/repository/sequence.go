package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const ticketSequenceKey = "opsdesk:ticket:sequence"

// TicketNumberAllocator issues globally unique, monotonic ticket numbers.
type TicketNumberAllocator interface {
	Next(ctx context.Context) (string, error)
}

type redisSequence struct {
	client *redis.Client
}

// NewTicketNumberAllocator allocates ticket numbers through a Redis
// counter. INCR is atomic, so concurrent creates never collide.
func NewTicketNumberAllocator(client *redis.Client) TicketNumberAllocator {
	return &redisSequence{client: client}
}

func (s *redisSequence) Next(ctx context.Context) (string, error) {
	n, err := s.client.Incr(ctx, ticketSequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("allocate ticket number: %w", err)
	}
	return fmt.Sprintf("TKT-%06d", n), nil
}
