package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
	"farewatch-service/templates"
)

// DealMailer sends deal alert emails through the Gmail API
type DealMailer struct {
	gmailService *gmail.Service
	airportRepo  repository.AirportRepository
	logger       logger.Logger
	sender       string
	recipient    string
}

// NewDealMailer creates a new deal mailer. The airport repository is
// optional; without it route labels fall back to the bare airport codes.
func NewDealMailer(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	airportRepo repository.AirportRepository,
	logger logger.Logger,
	sender string,
	recipient string,
) (*DealMailer, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &DealMailer{
		gmailService: service,
		airportRepo:  airportRepo,
		logger:       logger,
		sender:       sender,
		recipient:    recipient,
	}, nil
}

// Name identifies the notifier in logs
func (m *DealMailer) Name() string {
	return "gmail"
}

// Notify renders and sends one deal alert email
func (m *DealMailer) Notify(ctx context.Context, deal *entity.DealRecord) error {
	originLabel := m.describeAirport(ctx, deal.Offer.Origin)
	destinationLabel := m.describeAirport(ctx, deal.Offer.Destination)

	subject, body := templates.RenderDealEmail(deal, originLabel, destinationLabel)

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		m.sender, m.recipient, subject, body)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := m.gmailService.Users.Messages.Send("me", message).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send deal email: %w", err)
	}

	m.logger.Info("Deal email sent",
		"recipient", m.recipient,
		"subject", subject)

	return nil
}

// describeAirport resolves an airport code to a city label when reference
// data is available.
func (m *DealMailer) describeAirport(ctx context.Context, code string) string {
	if m.airportRepo == nil {
		return code
	}

	airport, err := m.airportRepo.GetByCode(ctx, code)
	if err != nil || airport == nil {
		m.logger.Debug("Airport lookup failed, using code", "code", code, "error", err)
		return code
	}

	if airport.CityName != "" {
		return airport.CityName
	}
	return airport.AirportName
}
