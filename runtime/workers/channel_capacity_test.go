package workers

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Sample(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	worker := NewChannelCapacityWorker(log, nil, time.Second, 2)

	ch := make(chan int, 4)
	req.False(worker.sample(NamedChannel{Name: "empty", Channel: ch}))

	// Given only two free slots left
	ch <- 1
	ch <- 2
	req.True(worker.sample(NamedChannel{Name: "busy", Channel: ch}))

	req.False(worker.sample(NamedChannel{Name: "unbuffered", Channel: make(chan int)}))
	req.False(worker.sample(NamedChannel{Name: "not a channel", Channel: 42}))
}
