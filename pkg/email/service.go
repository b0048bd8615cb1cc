package email

import (
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/logger"
)

// Service sends transactional email via SendGrid. Without an API key it
// logs the message instead, so local development needs no credentials.
type Service struct {
	client   *sendgrid.Client
	from     string
	fromName string
	log      logger.Logger
}

// New creates a new email service. An empty apiKey enables console mode.
func New(apiKey, from, fromName string, log logger.Logger) *Service {
	s := &Service{from: from, fromName: fromName, log: log}
	if apiKey != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}
	return s
}

// Send delivers a single plain-text email.
func (s *Service) Send(to, subject, body string) error {
	if s.client == nil {
		s.log.Info("email (console mode)", "to", to, "subject", subject, "body", body)
		return nil
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)
	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome greets a newly registered user.
func (s *Service) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account is ready. Import your leads and the follow-up board will tell you who to call first.\n",
		name,
	)
	return s.Send(to, "Welcome to RealtyCRM", body)
}

// DigestData is the weekly summary content.
type DigestData struct {
	Groups       []cadence.FollowUpGroup
	DormantCount int
	TotalLeads   int
}

// SendDigest mails the weekly follow-up digest: who to call this week,
// grouped the same way the board shows them.
func (s *Service) SendDigest(to string, data DigestData) error {
	return s.Send(to, "Your weekly follow-up digest", digestBody(data))
}

func digestBody(data DigestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly follow-up digest\n\n")
	fmt.Fprintf(&b, "Pipeline: %d leads, %d dormant.\n\n", data.TotalLeads, data.DormantCount)

	if len(data.Groups) == 0 {
		b.WriteString("No leads need a follow-up right now.\n")
	}
	for _, group := range data.Groups {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(group.Label[:1])+group.Label[1:])
		for _, lead := range group.Leads {
			if lead.NeverContacted {
				fmt.Fprintf(&b, "  - %s (never contacted)\n", lead.Name)
			} else {
				fmt.Fprintf(&b, "  - %s (last contact %s)\n", lead.Name, lead.LastContact.Format("Jan 2"))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
