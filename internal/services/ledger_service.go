package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/stats"
	"ledger/internal/storage"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// Dashboard is everything the main screen shows for the current range.
type Dashboard struct {
	Range        core.DateRange
	Transactions []core.Transaction
	Days         []stats.DayGroup
	Stats        stats.Stats
}

// Charts is the analysis screen for the current range.
type Charts struct {
	Range      core.DateRange
	Stats      stats.Stats
	Categories []stats.CategoryTotal
	Trend      []stats.DayTotal
}

// Export is a rendered CSV file.
type Export struct {
	Filename string
	Data     []byte
}

type Options struct {
	Publisher EventPublisher
	// ExportCache holds rendered settlement exports; settlements never change.
	ExportCache cache.Cache[[]byte]
	Location    *time.Location
	Logger      *applog.Logger
	Now         func() time.Time
}

// LedgerService owns the application state: the active transactions, the
// settlement archive and the selected date range. Every operation runs under
// one mutex and persists before returning.
type LedgerService struct {
	mu        sync.Mutex
	store     *ledger.TransactionStore
	archive   *ledger.SettlementArchive
	publisher EventPublisher
	exports   cache.Cache[[]byte]
	loc       *time.Location
	logger    *applog.Logger
	now       func() time.Time

	// nil selects the week containing now.
	custom *core.DateRange
}

func NewLedgerService(kv storage.KV, opts Options) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerService{
		store:     ledger.NewTransactionStore(kv, logger),
		archive:   ledger.NewSettlementArchive(kv, logger.WithComponent(applog.ComponentSettlement)),
		publisher: opts.Publisher,
		exports:   opts.ExportCache,
		loc:       loc,
		logger:    logger,
		now:       now,
	}
}

// Load hydrates both collections from storage.
func (s *LedgerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if err := s.archive.Load(ctx); err != nil {
		return fmt.Errorf("load settlements: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", s.store.Len(),
		"settlements", s.archive.Len())
	return nil
}

func (s *LedgerService) Location() *time.Location {
	return s.loc
}

func (s *LedgerService) clock() time.Time {
	return s.now().In(s.loc)
}

// AddTransaction validates the form input, stores it and publishes
// transaction.created.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := core.NewTransaction(in, s.clock())
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err = s.store.Add(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(tx.ID, string(tx.Type), string(tx.Category), tx.Amount.Cents).
			ToSlice()...)
	s.publish(ctx, amqp.TransactionCreated, tx.ID)
	return tx, nil
}

// DeleteTransaction removes a transaction. Unknown IDs are not an error and
// report false.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if !removed {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", applog.FieldTransactionID, id)
		return false, nil
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	s.publish(ctx, amqp.TransactionDeleted, id)
	return true, nil
}

// SetRange selects a custom inclusive range of whole days.
func (s *LedgerService) SetRange(start, end core.Date, label string) (core.DateRange, error) {
	rng, err := core.NewDateRange(start, end, s.loc, label)
	if err != nil {
		return core.DateRange{}, err
	}
	s.mu.Lock()
	s.custom = &rng
	s.mu.Unlock()
	return rng, nil
}

// ResetRange goes back to the current week.
func (s *LedgerService) ResetRange() core.DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = nil
	return s.currentRange()
}

func (s *LedgerService) Range() core.DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRange()
}

func (s *LedgerService) currentRange() core.DateRange {
	if s.custom != nil {
		return *s.custom
	}
	return core.ThisWeek(s.clock())
}

func (s *LedgerService) view() ([]core.Transaction, core.DateRange, stats.Stats) {
	rng := s.currentRange()
	filtered := stats.Filter(s.store.All(), rng)
	return filtered, rng, stats.Compute(filtered, rng, s.clock())
}

func (s *LedgerService) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered, rng, st := s.view()
	return Dashboard{
		Range:        rng,
		Transactions: filtered,
		Days:         stats.GroupByDay(filtered, s.loc),
		Stats:        st,
	}
}

func (s *LedgerService) Stats() stats.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, st := s.view()
	return st
}

// Charts returns the category breakdown and the expense trend of the last
// seven days.
func (s *LedgerService) Charts() Charts {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered, rng, st := s.view()
	return Charts{
		Range:      rng,
		Stats:      st,
		Categories: stats.CategoryBreakdown(filtered),
		Trend:      stats.DailyTrend(filtered, 7, s.clock()),
	}
}

// SettleActive archives the transactions of the current range together with
// the stats shown for that range, and removes them from the active set.
// Transactions outside the range stay active. It reports false and changes
// nothing when there is nothing to settle.
func (s *LedgerService) SettleActive(ctx context.Context) (core.Settlement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.All()
	rng := s.currentRange()
	var inRange []core.Transaction
	for _, t := range before {
		if rng.Contains(t.Date) {
			inRange = append(inRange, t)
		}
	}
	st := stats.Compute(inRange, rng, s.clock())

	settlement, ok := Settle(inRange, st, s.clock())
	if !ok {
		s.logger.InfoContext(ctx, "Nothing to settle", applog.FieldOperation, applog.OpSettle)
		return core.Settlement{}, false, nil
	}

	settled := make(map[string]struct{}, len(inRange))
	for _, t := range inRange {
		settled[t.ID] = struct{}{}
	}
	if err := s.store.Retain(ctx, func(t core.Transaction) bool {
		_, gone := settled[t.ID]
		return !gone
	}); err != nil {
		return core.Settlement{}, false, fmt.Errorf("remove settled transactions: %w", err)
	}
	if err := s.archive.Prepend(ctx, settlement); err != nil {
		err = fmt.Errorf("archive settlement: %w", err)
		if rerr := s.store.Replace(ctx, before); rerr != nil {
			s.logger.ErrorContext(ctx, "Active transactions could not be restored",
				applog.FieldOperation, applog.OpSettle,
				applog.FieldError, rerr)
			return core.Settlement{}, false, errors.Join(err, fmt.Errorf("restore active transactions: %w", rerr))
		}
		return core.Settlement{}, false, err
	}
	// A settled period starts over on the current week.
	s.custom = nil

	s.logger.InfoContext(ctx, "Period settled",
		applog.FieldOperation, applog.OpSettle,
		applog.FieldSettlementID, settlement.ID,
		applog.FieldCount, len(settlement.Transactions),
		"total_income", settlement.TotalIncome.String(),
		"total_expense", settlement.TotalExpense.String(),
		"remaining", settlement.Remaining.String())
	s.publish(ctx, amqp.PeriodSettled, settlement.ID)
	return settlement, true, nil
}

// Settlements returns the archive, most recent first.
func (s *LedgerService) Settlements() []core.Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive.All()
}

func (s *LedgerService) Settlement(id string) (core.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive.Get(id)
}

// ExportActive renders the transactions of the current range.
func (s *LedgerService) ExportActive() (Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered, _, _ := s.view()
	data, err := export.CSV(filtered, s.loc)
	if err != nil {
		return Export{}, err
	}
	return Export{Filename: export.Filename("Ledger", s.clock()), Data: data}, nil
}

// ExportSettlement renders one archived settlement.
func (s *LedgerService) ExportSettlement(id string) (Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settlement, err := s.archive.Get(id)
	if err != nil {
		return Export{}, err
	}
	return s.renderSettlement(settlement)
}

func (s *LedgerService) renderSettlement(settlement core.Settlement) (Export, error) {
	filename := export.Filename(settlement.Label(), s.clock())
	if s.exports != nil {
		if data, ok := s.exports.Get(settlement.ID); ok {
			return Export{Filename: filename, Data: data}, nil
		}
	}
	data, err := export.CSV(settlement.Transactions, s.loc)
	if err != nil {
		return Export{}, err
	}
	if s.exports != nil {
		s.exports.Set(settlement.ID, data)
	}
	return Export{Filename: filename, Data: data}, nil
}

func (s *LedgerService) publish(ctx context.Context, t amqp.EventType, id string) {
	if s.publisher == nil {
		return
	}
	// Publishing is best effort; the ledger change is already persisted.
	if err := s.publisher.Publish(ctx, amqp.NewLedgerEvent(t, id)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"type", t,
			"id", id,
			applog.FieldError, err)
	}
}

// IsNotFound reports whether err means an unknown settlement.
func IsNotFound(err error) bool {
	return errors.Is(err, ledger.ErrSettlementNotFound)
}
