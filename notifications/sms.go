package notifications

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SMSNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewSMSNotifier(accountSID, authToken, from string) *SMSNotifier {
	return &SMSNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *SMSNotifier) Notify(_ context.Context, event string, payload Payload) error {
	to := payload.String("phone")
	if to == "" {
		return nil
	}
	body := SMSBody(event, payload)
	if body == "" {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send %s: %w", event, err)
	}
	return nil
}

// SMSBody renders the short text for an event. Unknown events have no SMS form.
func SMSBody(event string, p Payload) string {
	name := p.String("name")
	switch event {
	case EventClientCredentials:
		return fmt.Sprintf("Hi %s, your account was created. Temporary password: %s", name, p.String("temporaryPassword"))
	case EventBookingConfirmed:
		return fmt.Sprintf("Hi %s, your booking %s on %s is confirmed.", name, p.String("confirmationCode"), p.String("dateTime"))
	case EventRequestReceived:
		return fmt.Sprintf("Hi %s, we received your request for %s. We will confirm shortly.", name, p.String("dateTime"))
	case EventRequestApproved:
		return fmt.Sprintf("Hi %s, your request was approved. Booking %s on %s.", name, p.String("confirmationCode"), p.String("dateTime"))
	case EventRequestRejected:
		return fmt.Sprintf("Hi %s, your request for %s was declined: %s", name, p.String("dateTime"), p.String("reason"))
	case EventAppointmentCancelled:
		return fmt.Sprintf("Hi %s, your appointment on %s was cancelled.", name, p.String("dateTime"))
	case EventAppointmentReminder:
		return fmt.Sprintf("Reminder: %s, you have an appointment on %s.", name, p.String("dateTime"))
	}
	return ""
}
