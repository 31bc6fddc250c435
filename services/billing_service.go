package services

import (
	"context"
	"errors"
	"time"

	"dairyflow-backend/models"
	"dairyflow-backend/store"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const defaultLockTTL = 2 * time.Minute

// BillDraft is the computed content of a bill before and after it is saved.
type BillDraft struct {
	CustomerID  uuid.UUID             `json:"customerId"`
	FromDate    string                `json:"fromDate"`
	ToDate      string                `json:"toDate"`
	Items       []models.BillLineItem `json:"items"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	IsPaid      bool                  `json:"isPaid"`
	GeneratedAt *time.Time            `json:"generatedAt,omitempty"`
	SkippedDays []string              `json:"skippedDays,omitempty"`
}

// GenerateResult is returned by the bill generation entry point.
type GenerateResult struct {
	Success bool      `json:"success"`
	BillID  uuid.UUID `json:"billId"`
	Data    BillDraft `json:"data"`
}

// RunSummary reports a periodic run over every active customer.
type RunSummary struct {
	Generated int `json:"generated"`
	UpToDate  int `json:"upToDate"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}

// BillNotifier is told about every newly generated bill.
type BillNotifier interface {
	NotifyBillGenerated(ctx context.Context, customer *models.Customer, bill *models.Bill) error
}

type BillingOptions struct {
	Location     *time.Location
	LookbackDays int
	BatchSize    int
	LockTTL      time.Duration
	Now          func() time.Time
}

// BillingService generates, previews and settles customer bills.
type BillingService struct {
	store     BillingStore
	periods   *PeriodResolver
	days      *DayResolver
	committer *BillCommitter
	locker    Locker
	lockTTL   time.Duration
	now       func() time.Time
	logger    *zap.Logger
	metrics   *BillingMetrics
	notifier  BillNotifier
}

func NewBillingService(s BillingStore, locker Locker, logger *zap.Logger, opts BillingOptions) *BillingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 30
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if locker == nil {
		locker = NewInMemoryLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BillingService{
		store:     s,
		periods:   NewPeriodResolver(s, opts.Now, opts.Location, opts.LookbackDays),
		days:      NewDayResolver(s),
		committer: NewBillCommitter(s, opts.BatchSize, opts.Now),
		locker:    locker,
		lockTTL:   opts.LockTTL,
		now:       opts.Now,
		logger:    logger.Named("billing"),
	}
}

func (s *BillingService) WithMetrics(m *BillingMetrics) *BillingService {
	s.metrics = m
	return s
}

func (s *BillingService) WithNotifier(n BillNotifier) *BillingService {
	s.notifier = n
	return s
}

// GenerateBill bills a customer from the day after their last bill up to
// today. At most one generation per customer runs at a time.
func (s *BillingService) GenerateBill(ctx context.Context, customerID uuid.UUID) (*GenerateResult, error) {
	started := time.Now()
	result, err := s.generate(ctx, customerID)
	s.metrics.observeRun(outcome(err), started)
	return result, err
}

func (s *BillingService) generate(ctx context.Context, customerID uuid.UUID) (*GenerateResult, error) {
	if customerID == uuid.Nil {
		return nil, newError(ErrValidation, "Customer ID is required", nil)
	}

	release, ok, err := s.locker.TryLock(ctx, "billing:"+customerID.String(), s.lockTTL)
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to acquire billing lock", err)
	}
	if !ok {
		return nil, ErrBillingInProgress
	}
	defer release()

	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	draft, consumed, err := s.buildDraft(ctx, customer)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{
		CustomerID:  customer.ID,
		FromDate:    draft.FromDate,
		ToDate:      draft.ToDate,
		Items:       datatypes.NewJSONSlice(draft.Items),
		TotalAmount: draft.TotalAmount,
	}
	committed, err := s.committer.Commit(ctx, bill, consumed)
	if err != nil {
		return nil, err
	}

	generatedAt := committed.Bill.GeneratedAt
	draft.GeneratedAt = &generatedAt
	s.metrics.billCommitted(committed.Marked, draft.TotalAmount.InexactFloat64())

	s.logger.Info("bill generated",
		zap.String("customer_id", customer.ID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("from", draft.FromDate),
		zap.String("to", draft.ToDate),
		zap.String("total", draft.TotalAmount.StringFixed(2)),
		zap.Int64("overrides_marked", committed.Marked),
		zap.Int("batches", committed.Batches),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyBillGenerated(ctx, customer, bill); err != nil {
			s.logger.Warn("bill notification failed",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
		}
	}

	return &GenerateResult{Success: true, BillID: bill.ID, Data: *draft}, nil
}

// PreviewBill computes the next bill without saving anything.
func (s *BillingService) PreviewBill(ctx context.Context, customerID uuid.UUID) (*BillDraft, error) {
	if customerID == uuid.Nil {
		return nil, newError(ErrValidation, "Customer ID is required", nil)
	}
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	draft, _, err := s.buildDraft(ctx, customer)
	return draft, err
}

// MarkPaid flips the payment flag of a bill. Nothing else on the bill changes.
func (s *BillingService) MarkPaid(ctx context.Context, customerID, billID uuid.UUID) (*models.Bill, error) {
	bill, err := s.store.MarkBillPaid(ctx, customerID, billID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to mark bill as paid", err)
	}
	return bill, nil
}

// GenerateAll bills every active customer in turn. Customers with nothing to
// bill are counted, not treated as failures.
func (s *BillingService) GenerateAll(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	customers, err := s.store.ListCustomers(ctx, true)
	if err != nil {
		return summary, newError(ErrPersistence, "Failed to list customers", err)
	}

	for _, customer := range customers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		_, err := s.GenerateBill(ctx, customer.ID)
		switch {
		case err == nil:
			summary.Generated++
		case errors.Is(err, ErrInvalidPeriod):
			summary.UpToDate++
		case errors.Is(err, ErrNoBillableItems):
			summary.Empty++
		default:
			summary.Failed++
			s.logger.Error("periodic bill generation failed",
				zap.String("customer_id", customer.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("periodic billing finished",
		zap.Int("generated", summary.Generated),
		zap.Int("up_to_date", summary.UpToDate),
		zap.Int("empty", summary.Empty),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *BillingService) loadCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load customer", err)
	}
	return customer, nil
}

// buildDraft resolves the period, every day in it and the prices. It returns
// the ids of the overrides the bill consumes.
func (s *BillingService) buildDraft(ctx context.Context, customer *models.Customer) (*BillDraft, []uuid.UUID, error) {
	period, err := s.periods.Resolve(ctx, customer)
	if err != nil {
		return nil, nil, err
	}
	dates, err := period.Days()
	if err != nil {
		return nil, nil, newError(ErrValidation, "Invalid billing period", err)
	}

	draft := &BillDraft{CustomerID: customer.ID, FromDate: period.From, ToDate: period.To}
	aggregator := NewAggregator()
	var consumed []*models.DayOverride

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		day, err := s.days.Resolve(ctx, customer, date)
		if err != nil {
			s.logger.Warn("skipping day that could not be resolved",
				zap.String("customer_id", customer.ID.String()),
				zap.String("date", date),
				zap.Error(err),
			)
			s.metrics.daySkipped()
			draft.SkippedDays = append(draft.SkippedDays, date)
			continue
		}

		aggregator.Add(day)
		if day.Billable() {
			consumed = append(consumed, day.Override)
		}
	}

	rates, err := LoadRateTable(ctx, s.store)
	if err != nil {
		return nil, nil, newError(ErrPersistence, "Failed to load item rates", err)
	}

	items, total, err := aggregator.Price(rates)
	if err != nil {
		return nil, nil, err
	}
	draft.Items = items
	draft.TotalAmount = total

	ids := lo.Map(consumed, func(o *models.DayOverride, _ int) uuid.UUID { return o.ID })
	return draft, ids, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "generated"
	case errors.Is(err, ErrInvalidPeriod):
		return "up_to_date"
	case errors.Is(err, ErrNoBillableItems):
		return "empty"
	case errors.Is(err, ErrBillingInProgress):
		return "in_progress"
	default:
		return "failed"
	}
}
