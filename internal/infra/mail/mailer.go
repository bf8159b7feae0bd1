package mail

import (
	"context"

	gomail "gopkg.in/gomail.v2"
)

// Mailer はSMTP経由の送信。usecase.Mailerを満たす。
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, user, pass string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

func (m *Mailer) Send(ctx context.Context, to string, subject string, body string) error {
	//gomailはcontext非対応。キャンセル済みなら送らない
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
