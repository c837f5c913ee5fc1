package observability

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMonitor_Counts_And_Forwards(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	next := mocks.NewMockIBroadcaster(ctrl)
	monitor := NewMonitor(logs.GetLoggerFromLevel(slog.LevelDebug), next, time.Second)
	created := event.MessageCreated{Payload: domain.MessagePayload{ID: "m-1", ConversationID: "c-1"}}
	deleted := event.MessageDeleted{Marker: domain.DeleteMarker{ID: "m-1", ConversationID: "c-1"}}

	// Given a hub accepting the first event and stopped for the second
	gomock.InOrder(
		next.EXPECT().Broadcast(ctx, created).Return(nil),
		next.EXPECT().Broadcast(ctx, deleted).Return(errors.ErrHubStopped),
	)

	// When both are broadcast
	req.NoError(monitor.Broadcast(ctx, created))
	req.ErrorIs(monitor.Broadcast(ctx, deleted), errors.ErrHubStopped)

	// Then nothing shows until the next refresh
	req.Zero(monitor.Latest().Created)

	monitor.refresh(monitor.lastCheck.Add(2 * time.Second))
	stats := monitor.Latest()
	req.Equal(uint64(1), stats.Created)
	req.Equal(uint64(1), stats.Deleted)
	req.Equal(uint64(1), stats.Failed)
	req.Zero(stats.Edited)
	req.InDelta(1.0, stats.EventsPerSecond, 0.001)

	// And the rate window restarts
	monitor.refresh(monitor.lastCheck.Add(time.Second))
	req.Zero(monitor.Latest().EventsPerSecond)
	req.Equal(uint64(1), monitor.Latest().Created)
}

func TestMonitor_Run_Stops_With_Context(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	monitor := NewMonitor(logs.GetLoggerFromLevel(slog.LevelDebug), mocks.NewMockIBroadcaster(ctrl), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()
	req.Eventually(func() bool { return !monitor.Latest().At.IsZero() }, time.Second, 5*time.Millisecond)

	cancel()
	req.NoError(<-done)
}
