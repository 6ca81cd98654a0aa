package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// purchaseAuditFile is where consumed sales are appended, one JSON
// line per purchase.
const purchaseAuditFile = "logs/purchases.log"

// StartPurchaseConsumer connects to RabbitMQ, declares the durable
// ticket.purchased queue and consumes it, appending one structured
// audit entry per sale to logs/purchases.log.  It runs a reconnect
// loop with exponential backoff and never returns; malformed messages
// are rejected without requeue so a poison message cannot wedge the
// consumer.
func StartPurchaseConsumer(url string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = teeAuditFile(log)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("purchase consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("purchase consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

// teeAuditFile duplicates the consumer's log output into the purchase
// audit file.  If the file cannot be opened the service logger alone
// is used.
func teeAuditFile(log *zap.Logger) *zap.Logger {
	if err := os.MkdirAll(filepath.Dir(purchaseAuditFile), 0o755); err != nil {
		log.Warn("cannot create audit log dir", zap.Error(err))
		return log
	}
	f, err := os.OpenFile(purchaseAuditFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warn("cannot open purchase audit log", zap.Error(err))
		return log
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), zapcore.InfoLevel)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(TicketPurchasedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(TicketPurchasedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev TicketPurchasedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Warn("drop malformed purchase event", zap.Error(err))
			_ = d.Nack(false, false) // do not requeue, avoids tight loops
			continue
		}
		log.Info("ticket purchase recorded",
			zap.String("purchase_ref", ev.PurchaseRef),
			zap.Uint64("user_id", ev.UserID),
			zap.Uint64("screening_id", ev.ScreeningID),
			zap.String("film", ev.FilmTitle),
			zap.String("occurrence_date", ev.OccurrenceDate),
			zap.String("start_time", ev.StartTime),
			zap.Uint32("quantity", ev.Quantity),
			zap.Uint64("total_cents", ev.TotalAmountCents),
		)
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
