package mail

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/config"
)

// Module provides the ordered mail strategy chain as the Sender.
var Module = fx.Provide(newSender)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) (Sender, error) {
	m := p.Config.Mail
	var senders []Sender
	if m.BrevoAPIKey != "" && m.From != "" {
		brevo, err := NewBrevoSender(m.BrevoBaseURL, m.BrevoAPIKey, m.From, m.FromName, p.Config.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		senders = append(senders, brevo)
	}
	if m.SMTPHost != "" && m.From != "" {
		senders = append(senders, NewSMTPSender(m.SMTPHost, m.SMTPPort, m.SMTPUsername, m.SMTPPassword, m.From, m.FromName, p.Config.UpstreamTimeout))
	}
	if len(senders) == 0 {
		p.Logger.Warn("no mail transport configured, receipts will not be sent")
	}
	return NewChain(p.Logger, senders...), nil
}
