// Package backup writes compressed snapshots of every record to a blob store
// and prunes old ones.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/time/rate"

	"github.com/capstonehub/capstone-hub/internal/blob"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
)

const (
	// DefaultKeep is the number of backups retained after pruning.
	DefaultKeep = 14
	// Prefix is the key prefix every backup is stored under.
	Prefix = "backups/"

	contentType = "application/zstd"
	keyLayout   = "20060102_150405"
)

// ErrThrottled is returned when a backup is requested before the minimum
// interval has elapsed.
var ErrThrottled = errors.New("backup throttled")

// Snapshotter reads every record.
type Snapshotter interface {
	Snapshot(ctx context.Context, plurals ...string) (*entity.Snapshot, error)
}

// ActivityLogger records backup outcomes.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Config controls retention and throttling.
type Config struct {
	Keep        int
	MinInterval time.Duration
	Clock       func() time.Time
}

// Result describes a completed backup.
type Result struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Records   int       `json:"records"`
	Pruned    []string  `json:"pruned,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service runs backups.
type Service struct {
	snapshots Snapshotter
	store     blob.Store
	activity  ActivityLogger
	limiter   *rate.Limiter
	keep      int
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a backup service. activity may be nil.
func NewService(snapshots Snapshotter, store blob.Store, activity ActivityLogger, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Keep <= 0 {
		cfg.Keep = DefaultKeep
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Service{
		snapshots: snapshots,
		store:     store,
		activity:  activity,
		limiter:   rate.NewLimiter(limit, 1),
		keep:      cfg.Keep,
		now:       cfg.Clock,
		logger:    logger,
	}
}

// Run writes a new backup and prunes the oldest beyond the retention count.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	now := s.now().UTC()
	if !s.limiter.AllowN(now, 1) {
		return nil, ErrThrottled
	}

	res, err := s.run(ctx, now)
	if err != nil {
		s.logger.Error("backup failed", "error", err)
		s.logActivity(ctx, activity.TypeBackupFailed, "Backup failed", "")
		return nil, err
	}

	s.logger.Info("backup created", "key", res.Key, "size", res.Size, "records", res.Records, "pruned", len(res.Pruned))
	s.logActivity(ctx, activity.TypeBackupCreated, "Backup created", res.Key)
	return res, nil
}

func (s *Service) run(ctx context.Context, now time.Time) (*Result, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot records: %w", err)
	}

	payload, err := compress(snap)
	if err != nil {
		return nil, err
	}

	base := Prefix + "capstone_" + now.Format(keyLayout)
	key := base + ".json.zst"
	var info blob.Info
	for attempt := 2; ; attempt++ {
		info, err = s.store.Put(ctx, key, bytes.NewReader(payload), contentType)
		if !errors.Is(err, blob.ErrExists) {
			break
		}
		key = fmt.Sprintf("%s_%d.json.zst", base, attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("store backup: %w", err)
	}

	pruned, err := s.prune(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Key:       info.Key,
		Size:      info.Size,
		Records:   snap.Count(),
		Pruned:    pruned,
		CreatedAt: now,
	}, nil
}

func compress(snap *entity.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses the backup encoding.
func Decode(payload []byte) (*entity.Snapshot, error) {
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var raw struct {
		ExportedAt time.Time                   `json:"exported_at"`
		Data       map[string][]map[string]any `json:"data"`
	}
	if err := json.NewDecoder(dec).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &entity.Snapshot{ExportedAt: raw.ExportedAt, Data: map[string][]entity.Record{}}
	for plural, rows := range raw.Data {
		records := make([]entity.Record, 0, len(rows))
		for _, row := range rows {
			rec := entity.Record{Fields: map[string]any{}}
			for k, v := range row {
				switch k {
				case "id":
					rec.ID, _ = v.(string)
				case "created_at":
					rec.CreatedAt = parseTime(v)
				case "updated_at":
					rec.UpdatedAt = parseTime(v)
				default:
					rec.Fields[k] = v
				}
			}
			records = append(records, rec)
		}
		snap.Data[plural] = records
	}
	return snap, nil
}

func parseTime(v any) time.Time {
	s, _ := v.(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func (s *Service) prune(ctx context.Context) ([]string, error) {
	infos, err := s.store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	if len(infos) <= s.keep {
		return nil, nil
	}

	// Keys embed the timestamp, so key order is age order.
	var pruned []string
	for _, info := range infos[:len(infos)-s.keep] {
		if err := s.store.Delete(ctx, info.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return pruned, fmt.Errorf("prune backup %s: %w", info.Key, err)
		}
		pruned = append(pruned, info.Key)
	}
	return pruned, nil
}

// List returns stored backups newest first.
func (s *Service) List(ctx context.Context) ([]blob.Info, error) {
	infos, err := s.store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	out := make([]blob.Info, 0, len(infos))
	for i := len(infos) - 1; i >= 0; i-- {
		out = append(out, infos[i])
	}
	return out, nil
}

func (s *Service) logActivity(ctx context.Context, typ activity.ActivityType, summary, key string) {
	if s.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{ActivityType: typ, EntityType: "backup", Summary: summary, Details: key}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", typ, "error", err)
	}
}
