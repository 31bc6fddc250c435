package services

import (
	"context"
	"time"

	"dairyflow-backend/models"
	"dairyflow-backend/utils"
)

// Period is an inclusive billing window of YYYY-MM-DD dates.
type Period struct {
	From string `json:"fromDate"`
	To   string `json:"toDate"`
}

func (p Period) Days() ([]string, error) {
	return utils.DateRange(p.From, p.To)
}

// PeriodResolver picks the next billing window of a customer. Windows are
// contiguous: a new one starts the day after the previous bill ends.
type PeriodResolver struct {
	bills        BillReader
	now          func() time.Time
	location     *time.Location
	lookbackDays int
}

func NewPeriodResolver(bills BillReader, now func() time.Time, location *time.Location, lookbackDays int) *PeriodResolver {
	if location == nil {
		location = time.UTC
	}
	return &PeriodResolver{bills: bills, now: now, location: location, lookbackDays: lookbackDays}
}

// Today is the current calendar day in the billing timezone.
func (r *PeriodResolver) Today() string {
	return utils.DateIn(r.now(), r.location)
}

func (r *PeriodResolver) Resolve(ctx context.Context, customer *models.Customer) (Period, error) {
	today := r.Today()

	last, err := r.bills.LatestBill(ctx, customer.ID)
	if err != nil {
		return Period{}, newError(ErrPersistence, "Failed to read previous bills", err)
	}

	var start string
	switch {
	case last != nil:
		start, err = utils.AddDays(last.ToDate, 1)
		if err != nil {
			return Period{}, newError(ErrPersistence, "Previous bill has a malformed end date", err)
		}
		if start > today {
			return Period{}, ErrAlreadyUpToDate
		}
	case customer.SubscriptionStartDate != nil && *customer.SubscriptionStartDate != "":
		start = *customer.SubscriptionStartDate
		if !utils.IsValidDate(start) {
			return Period{}, newError(ErrValidation, "Customer has an invalid subscription start date", nil)
		}
	default:
		start, err = utils.AddDays(today, -r.lookbackDays)
		if err != nil {
			return Period{}, err
		}
	}

	if start > today {
		return Period{}, ErrInvalidPeriod
	}
	return Period{From: start, To: today}, nil
}
