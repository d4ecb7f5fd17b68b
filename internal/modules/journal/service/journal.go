package service

import (
	"context"
	"errors"

	"fivesec_bot/internal/models"
)

var ErrUnknownBackend = errors.New("unknown journal backend")

// Journal is an append-only store of settled trades and runtime events.
type Journal interface {
	Append(ctx context.Context, rec models.TradeRecord) error
	AppendEvent(ctx context.Context, ev models.Event) error
	Stats(ctx context.Context) (models.Stats, error)
}
