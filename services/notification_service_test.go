package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dairyflow-backend/config"
	"dairyflow-backend/models"
	"dairyflow-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	from, to, body string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (s *fakeSender) Send(_ context.Context, from, to, body string) (string, error) {
	s.sent = append(s.sent, sentMessage{from: from, to: to, body: body})
	if s.err != nil {
		return "", s.err
	}
	return "SM123", nil
}

func newTestNotifier(t *testing.T, sender MessageSender, logs NotificationLogStore) *NotificationService {
	t.Helper()
	links, err := utils.NewBillLinkSigner("test-secret", time.Hour)
	require.NoError(t, err)

	n := NewNotificationService(sender, logs, links, config.TwilioConfig{
		PhoneNumber:    "+15550001111",
		WhatsAppNumber: "+15550002222",
	}, "https://dairy.example.com/", nil)
	n.now = fixedClock
	return n
}

func testBill(customerID uuid.UUID) *models.Bill {
	return &models.Bill{
		ID:          uuid.New(),
		CustomerID:  customerID,
		FromDate:    "2024-05-01",
		ToDate:      "2024-05-10",
		TotalAmount: decimal.RequireFromString("450"),
	}
}

func TestNotifyBillGenerated_WhatsAppForInternationalNumbers(t *testing.T) {
	fs := newFakeStore()
	sender := &fakeSender{}
	notifier := newTestNotifier(t, sender, fs)
	customer := &models.Customer{ID: uuid.New(), Name: "Asha", Phone: "+919876543210"}
	bill := testBill(customer.ID)

	require.NoError(t, notifier.NotifyBillGenerated(context.Background(), customer, bill))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "whatsapp:+15550002222", msg.from)
	assert.Equal(t, "whatsapp:+919876543210", msg.to)
	assert.Contains(t, msg.body, "Hi Asha")
	assert.Contains(t, msg.body, "Rs. 450.00")
	assert.Contains(t, msg.body, "https://dairy.example.com/public/bills?token=")

	require.Len(t, fs.logs, 1)
	assert.Equal(t, ChannelWhatsApp, fs.logs[0].Channel)
	assert.Equal(t, "sent", fs.logs[0].Status)
	assert.Equal(t, "SM123", fs.logs[0].ProviderSID)
	assert.Equal(t, bill.ID, fs.logs[0].BillID)
}

func TestNotifyBillGenerated_LinkVerifies(t *testing.T) {
	notifier := newTestNotifier(t, &fakeSender{}, newFakeStore())
	customerID := uuid.New()
	billID := uuid.New()

	link := notifier.BillURL(customerID, billID)
	token := link[strings.Index(link, "token=")+len("token="):]

	gotCustomer, gotBill, err := notifier.links.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, customerID, gotCustomer)
	assert.Equal(t, billID, gotBill)
}

func TestNotifyBillGenerated_SMSAndFailures(t *testing.T) {
	fs := newFakeStore()
	sender := &fakeSender{err: errors.New("invalid number")}
	notifier := newTestNotifier(t, sender, fs)
	customer := &models.Customer{ID: uuid.New(), Name: "Ravi", Phone: "9876543210"}

	err := notifier.NotifyBillGenerated(context.Background(), customer, testBill(customer.ID))
	assert.Error(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+15550001111", sender.sent[0].from)
	assert.Equal(t, "9876543210", sender.sent[0].to)

	require.Len(t, fs.logs, 1)
	assert.Equal(t, ChannelSMS, fs.logs[0].Channel)
	assert.Equal(t, "failed", fs.logs[0].Status)
	assert.Equal(t, "invalid number", fs.logs[0].ErrorMessage)
}

func TestNotifyBillGenerated_NoPhone(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(t, sender, newFakeStore())
	customer := &models.Customer{ID: uuid.New(), Name: "Anon"}

	require.NoError(t, notifier.NotifyBillGenerated(context.Background(), customer, testBill(customer.ID)))
	assert.Empty(t, sender.sent)
}

type countingBiller struct {
	runs int
}

func (b *countingBiller) GenerateAll(context.Context) (RunSummary, error) {
	b.runs++
	return RunSummary{Generated: 2}, nil
}

func TestBillingScheduler(t *testing.T) {
	biller := &countingBiller{}
	scheduler := NewBillingScheduler(biller, time.UTC, nil)

	assert.Error(t, scheduler.Schedule("not a schedule"))
	require.NoError(t, scheduler.Schedule("0 6 1 * *"))
	assert.Len(t, scheduler.cron.Entries(), 1)

	scheduler.RunOnce()
	assert.Equal(t, 1, biller.runs)

	scheduler.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}
