package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Importer prepares rows of one batch against its cache.
// It is not safe for concurrent use.
type Importer struct {
	cache   *Cache
	records RecordStore
	ext     Externals
	opts    Options
	caps    Capabilities
	logger  *slog.Logger
}

// NewImporter returns an importer bound to a batch cache.
// A nil logger falls back to slog.Default().
func NewImporter(cache *Cache, records RecordStore, ext Externals, opts Options, caps Capabilities, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		cache:   cache,
		records: records,
		ext:     ext,
		opts:    opts,
		caps:    caps,
		logger:  logger,
	}
}

// Cache returns the batch cache.
func (im *Importer) Cache() *Cache { return im.cache }

// Options returns the batch options.
func (im *Importer) Options() Options { return im.opts }

// Records returns the record store of the batch.
func (im *Importer) Records() RecordStore { return im.records }

// PendingKind identifies a staged creation.
type PendingKind string

const (
	PendingBank        PendingKind = "bank"
	PendingCategory    PendingKind = "category"
	PendingPOSCategory PendingKind = "pos_category"
)

// PendingCreation is a bank or category creation staged while
// Options.DeferCreations is set.
type PendingCreation struct {
	Kind PendingKind
	Key  string // BIC or category name
	Name string // Display name of the new record
}

// Commit performs the creations staged on an accepted outcome and patches the
// relation ids into out.Vals. It is a no-op for eager batches.
func (im *Importer) Commit(ctx context.Context, row Row, out *Outcome) error {
	for _, p := range out.Pending {
		switch p.Kind {
		case PendingBank:
			id, err := im.ensureBank(ctx, row, p.Key, p.Name)
			if err != nil {
				return err
			}
			if accounts, ok := out.Vals["bank_ids"].([]BankAccount); ok {
				for i := range accounts {
					if accounts[i].BIC == p.Key {
						accounts[i].BankID = id
						accounts[i].BIC = ""
					}
				}
			}
		case PendingCategory:
			id, err := im.ensureCategory(ctx, p.Key, false)
			if err != nil {
				return err
			}
			out.Vals["categ_id"] = id
		case PendingPOSCategory:
			id, err := im.ensureCategory(ctx, p.Key, true)
			if err != nil {
				return err
			}
			out.Vals["pos_categ_id"] = id
		default:
			return fmt.Errorf("unknown pending creation %q", p.Kind)
		}
	}
	out.Pending = nil
	return nil
}

// ensureBank returns the bank of bic, creating it when still unknown.
func (im *Importer) ensureBank(ctx context.Context, row Row, bic, name string) (int64, error) {
	if id, ok := im.cache.BankBICToID[bic]; ok {
		return id, nil
	}
	created, err := im.records.CreateBank(ctx, bic, name)
	if err != nil {
		return 0, fmt.Errorf("create bank %s: %w", bic, err)
	}
	im.cache.AddBank(bic, created)
	im.cache.Log(row, FieldBankBIC, bic,
		fmt.Sprintf("BIC not found. New bank named '%s' created (ID %d)", created.DisplayName, created.ID), false)
	im.logger.Info("bank created", "bic", bic, "name", created.DisplayName, "id", created.ID)
	return created.ID, nil
}

func (im *Importer) ensureCategory(ctx context.Context, name string, pos bool) (int64, error) {
	index := im.cache.CategoryToID
	if pos {
		index = im.cache.POSCategoryToID
	}
	if id, ok := index[name]; ok {
		return id, nil
	}
	created, err := im.records.CreateCategory(ctx, name, pos)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	index[name] = created.ID
	im.logger.Info("category created", "name", name, "pos", pos, "id", created.ID)
	return created.ID, nil
}
