package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/erpimport/internal/logging"
)

// BatchTimeout is the maximum duration of one import batch.
var BatchTimeout = 30 * time.Minute

// maxKeptBatches bounds how many finished batches stay queryable.
const maxKeptBatches = 100

// ServiceConfig holds the batch-independent settings of a Service.
type ServiceConfig struct {
	HomeCountry   string
	Capabilities  Capabilities
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service runs import batches.
type Service struct {
	refs    ReferenceStore
	records RecordStore
	ext     Externals
	cfg     ServiceConfig
	limiter *ImportLimiter

	mu      sync.RWMutex
	batches map[string]*BatchResult
	order   []string
}

// CreatedRecord summarizes one record created by a batch.
type CreatedRecord struct {
	Line        string `json:"line"`
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// BatchResult is the outcome of a batch.
type BatchResult struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Rows       int             `json:"rows"`
	Created    []CreatedRecord `json:"created"`
	Rejected   []string        `json:"rejected"` // Lines of skipped rows
	Report     Report          `json:"report"`
}

// NewService creates a Service.
func NewService(refs ReferenceStore, records RecordStore, ext Externals, cfg ServiceConfig) *Service {
	if cfg.HomeCountry == "" {
		cfg.HomeCountry = "FR"
	}
	return &Service{
		refs:    refs,
		records: records,
		ext:     ext,
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		batches: make(map[string]*BatchResult),
	}
}

// ListKinds returns information about all registered import kinds.
func (s *Service) ListKinds() []KindInfo {
	kinds := All()
	infos := make([]KindInfo, len(kinds))
	for i, k := range kinds {
		infos[i] = k.Info
	}
	return infos
}

// Limiter exposes the batch limiter for status reporting and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Run imports rows as one batch.
//
// The cache is built before the first row, so a missing resolver credential
// aborts without side effects. Rows are then prepared and created one at a
// time; row problems end up in the report, not in the returned error.
func (s *Service) Run(ctx context.Context, kindKey string, rows []Row, opts Options) (*BatchResult, error) {
	kind, ok := Get(kindKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kindKey)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, BatchTimeout)
	defer cancel()

	result := &BatchResult{
		ID:        uuid.New().String(),
		Kind:      kindKey,
		StartedAt: time.Now(),
		Rows:      len(rows),
	}
	logger := logging.WithFields(ctx, "batch_id", result.ID, "kind", kindKey).With(batchLogFields(ctx)...)
	logger.Info("import started", "rows", len(rows))

	cache, err := BuildCache(ctx, s.refs, s.ext.Resolver, s.cfg.HomeCountry)
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}
	im := NewImporter(cache, s.records, s.ext, opts, s.cfg.Capabilities, logger)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := kind.Prepare(ctx, im, row)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", row.Line(), err)
		}
		if out.Rejected {
			result.Rejected = append(result.Rejected, row.Line())
			continue
		}
		if err := im.Commit(ctx, row, &out); err != nil {
			return nil, fmt.Errorf("line %s: %w", row.Line(), err)
		}

		created, err := kind.Create(ctx, im, row, out.Vals)
		if err != nil {
			return nil, fmt.Errorf("line %s: create: %w", row.Line(), err)
		}
		row["id"] = created.ID
		row["display_name"] = created.DisplayName
		result.Created = append(result.Created, CreatedRecord{
			Line:        row.Line(),
			ID:          created.ID,
			DisplayName: created.DisplayName,
		})
		logger.Info("record created", "line", row.Line(), "id", created.ID, "name", created.DisplayName)
	}

	result.Report = GroupLogs(ctx, cache)
	result.FinishedAt = time.Now()
	s.keep(result)

	logger.Info("import completed",
		"created", len(result.Created),
		"rejected", len(result.Rejected),
		"log_entries", len(cache.Logs),
		"resolver_tokens", cache.TokensUsed,
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	)
	return result, nil
}

// Batch returns a finished batch by id.
func (s *Service) Batch(id string) (*BatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return b, nil
}

func (s *Service) keep(b *BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[b.ID] = b
	s.order = append(s.order, b.ID)
	if len(s.order) > maxKeptBatches {
		delete(s.batches, s.order[0])
		s.order = s.order[1:]
	}
}
