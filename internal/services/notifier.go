package services

import (
	"context"

	"github.com/wavebreaker/wavebreaker/internal/clients/redis"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/sse"
)

// DethroneNotification is pushed to a player whose reigning top score
// was just beaten.
type DethroneNotification struct {
	SongID       int32  `json:"song_id"`
	SongTitle    string `json:"song_title"`
	SongArtist   string `json:"song_artist"`
	ByUsername   string `json:"by_username"`
	NewScore     int32  `json:"new_score"`
	OldScore     int32  `json:"old_score"`
	ReignSeconds int64  `json:"reign_seconds"`
}

// NotifierService publishes player notifications onto the Redis bus
// and forwards bus traffic into the local SSE hub. Notifications are
// best effort; delivery problems are logged and swallowed.
type NotifierService interface {
	NotifyDethrone(ctx context.Context, playerID int32, n DethroneNotification)
	NotifyRivalAdded(ctx context.Context, playerID int32, byUsername string)
	// StartForwarding wires bus messages into the hub until ctx ends.
	StartForwarding(ctx context.Context) error
}

type notifierService struct {
	log *logger.Logger
	bus redis.NotifyBus
	hub *sse.Hub
}

func NewNotifierService(log *logger.Logger, bus redis.NotifyBus, hub *sse.Hub) NotifierService {
	return &notifierService{
		log: log.With("service", "NotifierService"),
		bus: bus,
		hub: hub,
	}
}

func (ns *notifierService) NotifyDethrone(ctx context.Context, playerID int32, n DethroneNotification) {
	ns.publish(ctx, sse.Message{
		Channel: sse.PlayerChannel(playerID),
		Event:   sse.EventDethroned,
		Data:    n,
	})
}

func (ns *notifierService) NotifyRivalAdded(ctx context.Context, playerID int32, byUsername string) {
	ns.publish(ctx, sse.Message{
		Channel: sse.PlayerChannel(playerID),
		Event:   sse.EventRivalAdded,
		Data:    map[string]string{"by_username": byUsername},
	})
}

func (ns *notifierService) publish(ctx context.Context, msg sse.Message) {
	if ns.bus == nil {
		// Single-instance deployment without Redis: deliver locally.
		ns.hub.Publish(msg)
		return
	}
	if err := ns.bus.Publish(ctx, msg); err != nil {
		ns.log.Warn("Notification publish failed, delivering locally", "channel", msg.Channel, "error", err)
		ns.hub.Publish(msg)
	}
}

func (ns *notifierService) StartForwarding(ctx context.Context) error {
	if ns.bus == nil {
		return nil
	}
	return ns.bus.StartForwarder(ctx, func(m sse.Message) {
		ns.hub.Publish(m)
	})
}
