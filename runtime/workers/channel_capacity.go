package workers

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelCapacityWorker periodically samples the length and capacity of
// buffered channels and warns when one is close to full.
// Reading len and cap never blocks the goroutines using the channel.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	channels             []NamedChannel
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		channels:             channels,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				w.sample(nc)
			}
		}
	}
}

// sample reports whether the channel is running low on free slots.
func (w ChannelCapacityWorker) sample(nc NamedChannel) bool {
	v := reflect.ValueOf(nc.Channel)
	if v.Kind() != reflect.Chan {
		w.log.Error("Provided object is not a channel", "name", nc.Name)
		return false
	}
	capacity, length := v.Cap(), v.Len()
	w.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", nc.Name, length, capacity))
	if capacity <= 0 {
		// In case of unbuffered channel
		return false
	}
	capacityLeft := capacity - length
	if capacityLeft <= w.lowCapacityThreshold {
		w.log.Warn("Channel close to full", "name", nc.Name, "left", capacityLeft, "capacity", capacity)
		return true
	}
	return false
}
