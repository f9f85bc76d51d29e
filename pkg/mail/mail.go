package mail

import (
	"fmt"

	gomail "github.com/go-mail/mail"

	"cryptograph/conf"
)

// Sender 统一封装 SMTP 发信
type Sender struct {
	cfg    conf.EmailConfig
	dialer *gomail.Dialer
}

func NewSender(cfg conf.EmailConfig) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *Sender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.Sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendStopLoss 止损/移动止损成交后的用户提醒
func (s *Sender) SendStopLoss(to, username, coin string, quantity, price float64, triggerType string) error {
	subject := fmt.Sprintf("%s executed: %s position closed", triggerType, coin)
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
<h2>%s Triggered</h2>
<p>Hi %s,</p>
<p>Your %s order on <b>%s</b> was executed automatically.</p>
<ul>
<li>Quantity sold: %v %s</li>
<li>Execution price: $%v</li>
</ul>
<p>You can review the closed position in your transaction history.</p>
</div>`, triggerType, username, triggerType, coin, quantity, coin, price)
	return s.send(to, subject, body)
}

// SendTradeConfirmation 手动买卖成交确认
func (s *Sender) SendTradeConfirmation(to, username, side, coin string, quantity, price float64) error {
	subject := fmt.Sprintf("Trade confirmation: %s %s", side, coin)
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
<h2>Trade Confirmed</h2>
<p>Hi %s,</p>
<p>Your %s order for %v %s at $%v has been recorded.</p>
</div>`, username, side, quantity, coin, price)
	return s.send(to, subject, body)
}
