package internal

import (
	"chat-hub/domain"
	"log/slog"
	"net/http"
	"os"
	goruntime "runtime"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"
)

const defaultKeyLimit = 100

// StatsProvider returns the live figures of one component.
type StatsProvider func() any

// KeyRow is one raw store entry listed by the key dump.
type KeyRow struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// DebugServer exposes read-only internals of the running process.
// db is nil when the server does not run on the embedded store.
type DebugServer struct {
	log       *slog.Logger
	db        *badger.DB
	providers map[string]StatsProvider
}

func NewDebugServer(log *slog.Logger, db *badger.DB, providers map[string]StatsProvider) *DebugServer {
	return &DebugServer{log: log, db: db, providers: providers}
}

// Register mounts GET /stats and, with an embedded store, GET /keys.
func (d *DebugServer) Register(r gin.IRouter) {
	r.GET("/stats", d.handleStats)
	if d.db != nil {
		r.GET("/keys", d.handleKeys)
	}
}

func (d *DebugServer) handleStats(c *gin.Context) {
	out := gin.H{}
	for name, provider := range d.providers {
		out[name] = provider()
	}
	stats, err := ProcessSelfStats()
	if err != nil {
		d.log.Warn("Unable to sample process", "error", err)
	} else {
		out["process"] = stats
	}
	c.JSON(http.StatusOK, out)
}

// handleKeys lists the keys under ?prefix=, at most ?limit= of them.
func (d *DebugServer) handleKeys(c *gin.Context) {
	prefix := []byte(c.Query("prefix"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultKeyLimit)))
	if err != nil || limit <= 0 {
		limit = defaultKeyLimit
	}

	rows := make([]KeyRow, 0, limit)
	err = d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(rows) < limit; it.Next() {
			item := it.Item()
			rows = append(rows, KeyRow{Key: string(item.KeyCopy(nil)), Size: item.ValueSize()})
		}
		return nil
	})
	if err != nil {
		d.log.Error("Key dump failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prefix": string(prefix), "items": rows})
}

// ProcessSelfStats samples memory, CPU and OS status of the current process.
func ProcessSelfStats() (domain.ProcessStats, error) {
	pid := os.Getpid()
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return domain.ProcessStats{}, err
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return domain.ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return domain.ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return domain.ProcessStats{}, err
	}
	return domain.ProcessStats{
		PID:        domain.PID(pid),
		Status:     domain.ToStatus(status),
		CPUPercent: cpuPercent,
		RSSBytes:   memInfo.RSS,
		Goroutines: goruntime.NumGoroutine(),
	}, nil
}
