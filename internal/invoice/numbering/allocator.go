package numbering

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/ratelimit"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	lockKey  = "finalerp:invoice:number"
	lockTTL  = 10 * time.Second
	lockWait = 5 * time.Second
)

var ErrNumberUnavailable = errors.New("invoice_number_unavailable")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Settings settingdomain.Service
	Locker   *ratelimit.Locker `optional:"true"`
}

// Allocator hands out FY-scoped invoice numbers. Next must run inside the
// transaction that persists the invoice.
type Allocator struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	settings settingdomain.Service
	locker   *ratelimit.Locker

	mu sync.Mutex
}

func NewAllocator(p Params) *Allocator {
	return &Allocator{
		db:       p.DB,
		log:      p.Log.Named("invoice.numbering"),
		clock:    p.Clock,
		settings: p.Settings,
		locker:   p.Locker,
	}
}

// Lock serializes allocations in this process and, when redis is configured,
// across processes. The returned func releases the lock.
func (a *Allocator) Lock(ctx context.Context) (func(), error) {
	a.mu.Lock()
	if !a.locker.Enabled() {
		return a.mu.Unlock, nil
	}

	token, err := a.locker.Acquire(ctx, lockKey, lockTTL, lockWait)
	if err != nil {
		a.mu.Unlock()
		a.log.Warn("numbering lock unavailable", zap.Error(err))
		if errors.Is(err, ratelimit.ErrLockTimeout) {
			return nil, ErrNumberUnavailable
		}
		return nil, err
	}

	return func() {
		if err := a.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			a.log.Warn("numbering lock release failed", zap.Error(err))
		}
		a.mu.Unlock()
	}, nil
}

// Next allocates the next number for the current financial year using tx.
func (a *Allocator) Next(ctx context.Context, tx *gorm.DB, cfg settingdomain.NumberingConfig) (Number, error) {
	now := a.clock.Now()
	fy := FiscalYearOf(now)
	prefix := fy.Prefix()

	row := Sequence{Prefix: prefix}
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(Sequence{Prefix: prefix}).
		Attrs(Sequence{UpdatedAt: now.UTC()}).
		FirstOrCreate(&row).Error
	if err != nil {
		return Number{}, err
	}

	seq, err := a.sequence(ctx, tx, prefix, cfg.SeriesStart, row.LastSequence)
	if err != nil {
		return Number{}, err
	}

	err = tx.WithContext(ctx).
		Model(&Sequence{}).
		Where("prefix = ?", prefix).
		Updates(map[string]any{"last_sequence": seq, "updated_at": now.UTC()}).Error
	if err != nil {
		return Number{}, err
	}

	return Number{Value: Format(prefix, seq), FiscalYear: fy, Sequence: seq}, nil
}

// Preview computes the number the next allocation would receive without
// reserving it.
func (a *Allocator) Preview(ctx context.Context) (Number, error) {
	cfg, err := a.settings.NumberingConfig(ctx, a.db)
	if err != nil {
		return Number{}, err
	}

	fy := FiscalYearOf(a.clock.Now())
	prefix := fy.Prefix()

	var rows []Sequence
	if err := a.db.WithContext(ctx).Where("prefix = ?", prefix).Limit(1).Find(&rows).Error; err != nil {
		return Number{}, err
	}
	var last int64
	if len(rows) > 0 {
		last = rows[0].LastSequence
	}

	seq, err := a.sequence(ctx, a.db, prefix, cfg.SeriesStart, last)
	if err != nil {
		return Number{}, err
	}
	return Number{Value: Format(prefix, seq), FiscalYear: fy, Sequence: seq}, nil
}

// sequence is seriesStart plus the number of invoices already issued under
// prefix, soft-deleted ones included. It never goes below an issued sequence
// so a lowered series start cannot reissue a number.
func (a *Allocator) sequence(ctx context.Context, db *gorm.DB, prefix string, seriesStart, lastIssued int64) (int64, error) {
	if seriesStart < 1 {
		seriesStart = 1
	}

	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices WHERE invoice_number LIKE ?`,
		prefix+"%",
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}

	var highest []string
	err = db.WithContext(ctx).Raw(
		`SELECT invoice_number
		 FROM invoices
		 WHERE invoice_number LIKE ?
		 ORDER BY LENGTH(invoice_number) DESC, invoice_number DESC
		 LIMIT 1`,
		prefix+"%",
	).Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	if len(highest) > 0 {
		if seq, ok := ParseSequence(highest[0], prefix); ok && seq > lastIssued {
			lastIssued = seq
		}
	}

	seq := seriesStart + count
	if seq <= lastIssued {
		a.log.Warn("series start behind issued numbers, continuing after highest",
			zap.String("prefix", prefix),
			zap.Int64("series_start", seriesStart),
			zap.Int64("count", count),
			zap.Int64("last_issued", lastIssued),
		)
		seq = lastIssued + 1
	}
	return seq, nil
}
