package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const pgBatchSize = 50

// PGHandler is an slog.Handler that batches ERROR+ logs into system_logs.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

type pgSink struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.SystemLog
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(db, 5*time.Second)
}

func newPGHandler(db *gorm.DB, interval time.Duration) *PGHandler {
	s := &pgSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.flushLoop()
	return &PGHandler{sink: s}
}

func (s *pgSink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	if err := s.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		// stdout only; logging at ERROR here would recurse into this handler.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes pending records and waits for the flush loop to exit.
func (h *PGHandler) Stop() {
	h.sink.stopOnce.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	h.sink.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "trace_id", "request_id":
			entry.TraceID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch a.Value.Kind() {
			case slog.KindFloat64:
				entry.LatencyMs = int(math.Round(a.Value.Float64()))
			case slog.KindInt64:
				entry.LatencyMs = int(a.Value.Int64())
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	s := h.sink
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	needFlush := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}
