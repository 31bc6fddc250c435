// controllers/report.go
package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"dairyflow-backend/models"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	defaultReportMonths = 6
	maxReportMonths     = 24
	topListSize         = 5
)

// BillingReport is the revenue overview of the last few months.
type BillingReport struct {
	Months       []MonthRevenue    `json:"months"`
	MonthGrowth  float64           `json:"monthGrowth"`
	TopItems     []ItemSummary     `json:"topItems"`
	TopCustomers []CustomerSummary `json:"topCustomers"`
}

type MonthRevenue struct {
	Month     string          `json:"month"`
	Billed    decimal.Decimal `json:"billed"`
	Collected decimal.Decimal `json:"collected"`
	Bills     int             `json:"bills"`
}

type ItemSummary struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CustomerSummary struct {
	CustomerID uuid.UUID       `json:"customerId"`
	Name       string          `json:"name"`
	Bills      int             `json:"bills"`
	Billed     decimal.Decimal `json:"billed"`
}

// GetBillingReport reports billed and collected amounts for ?months=N months
// (6 by default) including the current one.
func (h *Controller) GetBillingReport(c *gin.Context) {
	months := defaultReportMonths
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxReportMonths {
			utils.RespondWithError(c, http.StatusBadRequest, "months must be between 1 and 24")
			return
		}
		months = n
	}

	now := h.now().In(h.location())
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	since := firstOfMonth.AddDate(0, -(months - 1), 0)

	ctx := c.Request.Context()
	bills, err := h.Store.ListBillsGeneratedSince(ctx, since)
	if err != nil {
		h.respondStoreError(c, err, "Report not found", "Failed to load bills")
		return
	}
	customers, err := h.Store.ListCustomers(ctx, false)
	if err != nil {
		h.respondStoreError(c, err, "Report not found", "Failed to load customers")
		return
	}
	names := lo.SliceToMap(customers, func(cu models.Customer) (uuid.UUID, string) { return cu.ID, cu.Name })

	c.JSON(http.StatusOK, buildBillingReport(bills, names, since, months, h.location()))
}

func buildBillingReport(bills []models.Bill, names map[uuid.UUID]string, since time.Time, months int, loc *time.Location) BillingReport {
	report := BillingReport{Months: make([]MonthRevenue, months)}
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		report.Months[i] = MonthRevenue{Month: key, Billed: decimal.Zero, Collected: decimal.Zero}
		index[key] = i
	}

	items := make(map[string]*ItemSummary)
	byCustomer := make(map[uuid.UUID]*CustomerSummary)

	for _, bill := range bills {
		i, ok := index[bill.GeneratedAt.In(loc).Format("2006-01")]
		if !ok {
			continue
		}
		month := &report.Months[i]
		month.Bills++
		month.Billed = month.Billed.Add(bill.TotalAmount)
		if bill.IsPaid {
			month.Collected = month.Collected.Add(bill.TotalAmount)
		}

		cs, ok := byCustomer[bill.CustomerID]
		if !ok {
			cs = &CustomerSummary{CustomerID: bill.CustomerID, Name: names[bill.CustomerID], Billed: decimal.Zero}
			byCustomer[bill.CustomerID] = cs
		}
		cs.Bills++
		cs.Billed = cs.Billed.Add(bill.TotalAmount)

		for _, line := range bill.Items {
			is, ok := items[line.ItemID]
			if !ok {
				is = &ItemSummary{ItemID: line.ItemID, ItemName: line.ItemName, Quantity: decimal.Zero, Revenue: decimal.Zero}
				items[line.ItemID] = is
			}
			is.Quantity = is.Quantity.Add(line.Quantity)
			is.Revenue = is.Revenue.Add(line.Total)
		}
	}

	if months > 1 {
		current := report.Months[months-1].Billed
		previous := report.Months[months-2].Billed
		if previous.IsPositive() {
			report.MonthGrowth = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
	}

	topItems := lo.MapToSlice(items, func(_ string, v *ItemSummary) ItemSummary { return *v })
	sort.Slice(topItems, func(i, j int) bool {
		if !topItems[i].Revenue.Equal(topItems[j].Revenue) {
			return topItems[i].Revenue.GreaterThan(topItems[j].Revenue)
		}
		return topItems[i].ItemID < topItems[j].ItemID
	})
	report.TopItems = lo.Slice(topItems, 0, topListSize)

	topCustomers := lo.MapToSlice(byCustomer, func(_ uuid.UUID, v *CustomerSummary) CustomerSummary { return *v })
	sort.Slice(topCustomers, func(i, j int) bool {
		if !topCustomers[i].Billed.Equal(topCustomers[j].Billed) {
			return topCustomers[i].Billed.GreaterThan(topCustomers[j].Billed)
		}
		return topCustomers[i].CustomerID.String() < topCustomers[j].CustomerID.String()
	})
	report.TopCustomers = lo.Slice(topCustomers, 0, topListSize)

	return report
}
