package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/repository"
	"github.com/m-mizutani/medscan/pkg/utils/logging"
)

// slotKey is the single named slot holding the serialized history
const slotKey = "medicineHistory"

// UseCase provides the bounded recent-scan history
type UseCase struct {
	repo repository.Repository
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new history UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Load reads the persisted history. An absent, unreadable or malformed slot
// degrades to an empty log; loading never fails the caller.
func (u *UseCase) Load(ctx context.Context) model.HistoryLog {
	value, ok, err := u.repo.Get(ctx, slotKey)
	if err != nil {
		logging.From(ctx).Warn("failed to read history slot, starting empty", "error", err)
		return model.HistoryLog{}
	}
	if !ok {
		return model.HistoryLog{}
	}

	var log model.HistoryLog
	if err := json.Unmarshal([]byte(value), &log); err != nil {
		logging.From(ctx).Warn("failed to parse history slot, starting empty", "error", err)
		return model.HistoryLog{}
	}

	return log
}

// Record stamps the record's capture time, prepends it to the history,
// truncates to the most recent entries and writes the whole sequence back.
// This is the only place CapturedAt is ever assigned.
func (u *UseCase) Record(ctx context.Context, record *model.MedicineRecord) (model.HistoryLog, error) {
	record.CapturedAt = u.now().UnixMilli()

	log := append(model.HistoryLog{record}, u.Load(ctx)...)
	if len(log) > model.HistoryCapacity {
		log = log[:model.HistoryCapacity]
	}

	data, err := json.Marshal(log)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal history")
	}

	if err := u.repo.Put(ctx, slotKey, string(data)); err != nil {
		return nil, goerr.Wrap(err, "failed to write history slot")
	}

	return log, nil
}

// Select returns the stored record at the given position without mutating
// the history.
func (u *UseCase) Select(ctx context.Context, index int) (*model.MedicineRecord, error) {
	log := u.Load(ctx)
	if index < 0 || index >= len(log) {
		return nil, goerr.New("history index out of range",
			goerr.T(model.TagOutOfRange),
			goerr.V("index", index), goerr.V("length", len(log)))
	}
	return log[index], nil
}
