package notifications

import (
	"io"
	"strings"

	"salonpro-booking/config"

	"go.uber.org/zap"
)

// FromConfig assembles the notifiers named in cfg.Notifiers. The returned
// closers must be closed on shutdown.
func FromConfig(cfg *config.Config, logger *zap.Logger) (Notifier, []io.Closer) {
	var (
		out     Multi
		closers []io.Closer
	)
	for _, name := range cfg.Notifiers {
		switch strings.ToLower(name) {
		case "log":
			out = append(out, LogNotifier{Logger: logger})
		case "sms", "twilio":
			if cfg.TwilioAccountSID == "" || cfg.TwilioFromNumber == "" {
				logger.Warn("sms notifier skipped, twilio credentials missing")
				continue
			}
			out = append(out, NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber))
		case "amqp", "rabbitmq":
			out = append(out, NewAMQPNotifier(cfg.RabbitMQURL, cfg.RabbitMQQueue))
		case "kafka":
			k := NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
			out = append(out, k)
			closers = append(closers, k)
		default:
			logger.Warn("unknown notifier", zap.String("name", name))
		}
	}
	if len(out) == 0 {
		return LogNotifier{Logger: logger}, closers
	}
	return out, closers
}
