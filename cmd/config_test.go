package main

import (
	"chat-hub/errors"
	"chat-hub/internal"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults_And_Lists(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", " http://a.test ,,http://b.test")
	t.Setenv("CENSORED_WORDS", "badger, snake")
	t.Setenv("CENSOR_MASK", "#!")

	var config Config
	req.NoError(internal.LoadConfig(&config))

	req.Equal(driverBadger, config.StoreDriver)
	req.Equal(8080, config.Port)
	req.Equal(100*time.Millisecond, config.SinkTimeout)
	req.Nil(config.LimitMessages)
	req.Equal([]string{"http://a.test", "http://b.test"}, config.Origins())
	req.Equal([]string{"badger", "snake"}, config.Censored())
	req.Equal('#', config.Mask())

	config.CensorMask = ""
	req.Equal('*', config.Mask())
}

func TestOpenStores_Rejects_Unknown_Driver(t *testing.T) {
	req := require.New(t)
	_, err := openStores(Config{StoreDriver: "mysql"}, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.ErrorIs(err, errors.ErrUnsupportedDatabase)
}

func TestOpenStores_Badger(t *testing.T) {
	req := require.New(t)
	store, err := openStores(Config{StoreDriver: driverBadger, BadgerFilepath: t.TempDir()}, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	req.NotNil(store.badger)
	req.NoError(store.close())
}
