package engine

import (
	"context"
	"fmt"

	"cryptograph/pkg/kafka"
	"cryptograph/pkg/mail"
)

// EmailNotifier 尊重用户的邮件开关，关了就静默跳过
type EmailNotifier struct {
	sender *mail.Sender
}

func NewEmailNotifier(sender *mail.Sender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) NotifyLiquidation(_ context.Context, ev LiquidationEvent) error {
	if !ev.NotifyEmail || ev.Email == "" {
		return nil
	}
	return n.sender.SendStopLoss(ev.Email, ev.Username, ev.Sell.CoinSymbol, ev.Sell.Quantity, ev.Price, ev.Trigger)
}

// KafkaNotifier 把清算事件投递到消息总线
type KafkaNotifier struct {
	producer *kafka.Producer
}

func NewKafkaNotifier(producer *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) NotifyLiquidation(ctx context.Context, ev LiquidationEvent) error {
	key := fmt.Sprintf("%d_%s", ev.Order.UserId, ev.Order.CoinSymbol)
	return n.producer.Produce(ctx, key, ev)
}
