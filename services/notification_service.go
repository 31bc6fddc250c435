// services/notification_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dairyflow-backend/config"
	"dairyflow-backend/models"
	"dairyflow-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"

	notificationSent   = "sent"
	notificationFailed = "failed"
)

// MessageSender delivers one text message and returns the provider's id.
type MessageSender interface {
	Send(ctx context.Context, from, to, body string) (string, error)
}

// NotificationLogStore keeps a record of every attempted message.
type NotificationLogStore interface {
	CreateNotificationLog(ctx context.Context, entry *models.NotificationLog) error
}

type twilioSender struct {
	client *twilio.RestClient
}

func NewTwilioSender(cfg config.TwilioConfig) MessageSender {
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
	}
}

func (s *twilioSender) Send(_ context.Context, from, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// NotificationService tells customers that a new bill is ready.
type NotificationService struct {
	sender  MessageSender
	logs    NotificationLogStore
	links   *utils.BillLinkSigner
	cfg     config.TwilioConfig
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewNotificationService(sender MessageSender, logs NotificationLogStore, links *utils.BillLinkSigner,
	cfg config.TwilioConfig, baseURL string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		sender:  sender,
		logs:    logs,
		links:   links,
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("notifications"),
		now:     time.Now,
	}
}

// NotifyBillGenerated sends the bill summary over WhatsApp when the phone is
// in E.164 form, otherwise over SMS. Every attempt is logged.
func (s *NotificationService) NotifyBillGenerated(ctx context.Context, customer *models.Customer, bill *models.Bill) error {
	if customer.Phone == "" {
		s.logger.Debug("customer has no phone, skipping notification",
			zap.String("customer_id", customer.ID.String()))
		return nil
	}

	channel, from, to := s.route(customer.Phone)
	message := s.BillMessage(customer, bill)

	sid, sendErr := s.sender.Send(ctx, from, to, message)
	entry := &models.NotificationLog{
		CustomerID:  customer.ID,
		BillID:      bill.ID,
		Channel:     channel,
		Status:      notificationSent,
		Message:     message,
		ProviderSID: sid,
		SentAt:      s.now(),
	}
	if sendErr != nil {
		entry.Status = notificationFailed
		entry.ErrorMessage = sendErr.Error()
	}

	if err := s.logs.CreateNotificationLog(ctx, entry); err != nil {
		s.logger.Error("failed to log notification",
			zap.String("bill_id", bill.ID.String()), zap.Error(err))
	}

	if sendErr != nil {
		return fmt.Errorf("send %s to %s: %w", channel, customer.Phone, sendErr)
	}
	s.logger.Info("bill notification sent",
		zap.String("bill_id", bill.ID.String()),
		zap.String("channel", channel),
		zap.String("sid", sid),
	)
	return nil
}

func (s *NotificationService) route(phone string) (channel, from, to string) {
	if utils.IsE164(phone) && s.cfg.WhatsAppNumber != "" {
		return ChannelWhatsApp, "whatsapp:" + s.cfg.WhatsAppNumber, "whatsapp:" + phone
	}
	return ChannelSMS, s.cfg.PhoneNumber, phone
}

// BillMessage renders the text sent for a bill.
func (s *NotificationService) BillMessage(customer *models.Customer, bill *models.Bill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, your milk bill for %s to %s is Rs. %s.",
		customer.Name, bill.FromDate, bill.ToDate, bill.TotalAmount.StringFixed(2))

	if link := s.BillURL(customer.ID, bill.ID); link != "" {
		fmt.Fprintf(&b, " View it here: %s", link)
	}
	return b.String()
}

// BillURL returns the public link of a bill, or "" when links are disabled.
func (s *NotificationService) BillURL(customerID, billID uuid.UUID) string {
	if s.links == nil || s.baseURL == "" {
		return ""
	}
	token, err := s.links.Sign(customerID, billID)
	if err != nil {
		s.logger.Warn("failed to sign bill link", zap.Error(err))
		return ""
	}
	return s.baseURL + "/public/bills?token=" + token
}

var _ BillNotifier = (*NotificationService)(nil)
