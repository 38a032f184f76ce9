package notifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/vfg2006/sales-analytics-api/internal/config"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const sendTimeout = 20 * time.Second

var ErrNoRecipients = errors.New("nenhum destinatário informado")

// Message é um e-mail de resumo de relatório
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

//go:generate mockgen -source=notifier.go -destination=mocks/notifier_mock.go -package=mocks
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// mailgunClient é o subconjunto do cliente Mailgun usado pelo notifier
type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

type MailgunNotifier struct {
	client mailgunClient
	sender string
}

// New retorna um MailgunNotifier quando há credenciais configuradas e um LogNotifier caso contrário
func New(cfg config.Mailgun) Notifier {
	if !cfg.Enabled() {
		log.L.Warn("Configuração do Mailgun incompleta, e-mails serão apenas registrados em log")
		return NewLogNotifier(log.L)
	}

	return NewMailgunNotifier(mailgun.NewMailgun(cfg.Domain, cfg.APIKey), cfg.Sender)
}

func NewMailgunNotifier(client mailgunClient, sender string) *MailgunNotifier {
	return &MailgunNotifier{
		client: client,
		sender: sender,
	}
}

func (n *MailgunNotifier) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	message := n.client.NewMessage(n.sender, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, id, err := n.client.Send(ctx, message)
	if err != nil {
		log.ForContext(ctx).WithError(err).WithFields(log.Fields{
			"report_recipients": strings.Join(msg.To, ","),
			"mailgun_resp":      resp,
		}).Error("Falha ao enviar e-mail pelo Mailgun")
		return &SendError{Err: err, Response: resp}
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"report_recipients": strings.Join(msg.To, ","),
		"mailgun_id":        id,
	}).Info("E-mail enviado pelo Mailgun")

	return nil
}

// LogNotifier apenas registra as mensagens em log
type LogNotifier struct {
	logger log.Logger
}

func NewLogNotifier(logger log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	n.logger.WithContext(ctx).WithFields(log.Fields{
		"report_recipients": strings.Join(msg.To, ","),
		"report_subject":    msg.Subject,
	}).Info("E-mail não enviado (Mailgun não configurado)")

	return nil
}
