package database

import (
	"context"
)

type DeliveryRepository interface {
	Record(ctx context.Context, delivery Delivery) error
	Recent(ctx context.Context, chatID int64, limit int) ([]Delivery, error)
	Stats(ctx context.Context) (*Stats, error)
}
