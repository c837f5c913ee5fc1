package internal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port          int           `env:"TEST_CHAT_PORT,default=8080"`
	Secret        string        `env:"TEST_CHAT_SECRET,required=true"`
	SinkTimeout   time.Duration `env:"TEST_CHAT_SINK_TIMEOUT,default=1s"`
	LimitMessages *int          `env:"TEST_CHAT_LIMIT"`
}

func TestLoadConfig_From_Environment_And_File(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	req.NoError(os.WriteFile(file, []byte("TEST_CHAT_SECRET=from-file\nTEST_CHAT_PORT=9000\n"), 0o600))
	t.Setenv("TEST_CHAT_PORT", "9100")
	t.Setenv("TEST_CHAT_SECRET", "")
	req.NoError(os.Unsetenv("TEST_CHAT_SECRET"))

	var cfg testConfig
	err := LoadConfig(&cfg, file, filepath.Join(dir, "missing.env"))

	// Then the environment wins over the file, the file fills the gaps
	req.NoError(err)
	req.Equal(9100, cfg.Port)
	req.Equal("from-file", cfg.Secret)
	req.Equal(time.Second, cfg.SinkTimeout)
	req.Nil(cfg.LimitMessages)
}

func TestLoadConfig_Missing_Required(t *testing.T) {
	req := require.New(t)
	t.Setenv("TEST_CHAT_SECRET", "")
	req.NoError(os.Unsetenv("TEST_CHAT_SECRET"))

	var cfg testConfig
	req.Error(LoadConfig(&cfg))
}

func TestLogWriter_Forwards_Lines(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	w := NewLogWriter(logger, "gin", slog.LevelWarn)

	n, err := w.Write([]byte("listen failed\n"))
	req.NoError(err)
	req.Equal(len("listen failed\n"), n)

	var record map[string]any
	req.NoError(json.Unmarshal(buf.Bytes(), &record))
	req.Equal("listen failed", record["msg"])
	req.Equal("WARN", record["level"])
	req.Equal("gin", record["component"])

	buf.Reset()
	_, _ = w.Write([]byte("\n"))
	req.Empty(buf.String())
}

func TestDebugServer_Stats_And_Keys(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	req.NoError(db.Update(func(txn *badger.Txn) error {
		_ = txn.Set([]byte("user:a"), []byte("123"))
		_ = txn.Set([]byte("user:b"), []byte("1"))
		return txn.Set([]byte("conv:c"), []byte("12"))
	}))

	r := gin.New()
	NewDebugServer(logs.GetLoggerFromLevel(slog.LevelDebug), db, map[string]StatsProvider{
		"hub": func() any { return map[string]int{"sessions": 3} },
	}).Register(r.Group("/debug"))

	// When stats are requested
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	req.Equal(http.StatusOK, w.Code)
	var stats map[string]map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	req.Equal(float64(3), stats["hub"]["sessions"])
	req.Equal(float64(os.Getpid()), stats["process"]["pid"])

	// When keys are listed by prefix
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/keys?prefix=user:&limit=5", nil))
	req.Equal(http.StatusOK, w.Code)
	var dump struct {
		Prefix string   `json:"prefix"`
		Items  []KeyRow `json:"items"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &dump))
	req.Equal("user:", dump.Prefix)
	req.Equal([]KeyRow{{Key: "user:a", Size: 3}, {Key: "user:b", Size: 1}}, dump.Items)
}

func TestDebugServer_Without_Store(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDebugServer(slog.Default(), nil, nil).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/keys", nil))
	req.Equal(http.StatusNotFound, w.Code)
}
