package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartReceiptConsumer connects to RabbitMQ, declares the order.paid
// queue and appends one line per finalized invoice to logs/receipt.log.
// It runs a reconnect loop with exponential backoff and never returns
// under normal operation; processing failures are logged and the
// message rejected without requeue so a poison message cannot wedge
// the queue.
func StartReceiptConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("receipt-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("receipt-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("receipt-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(OrderPaidQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(OrderPaidQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("receipt-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev OrderPaidEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "receipt.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	kind := "sale"
	session := ""
	if ev.TableName != "" {
		kind = "table"
		session = fmt.Sprintf(" | table=%q | start=%s | end=%s | time_charge=%d", ev.TableName, ev.StartTime, ev.EndTime, ev.TableCharge)
	}
	line := fmt.Sprintf("[%s] Order paid | order_id=%d | kind=%s | cashier=%q%s | lines=%d | total=%d VND\n",
		ev.PaidAt, ev.OrderID, kind, ev.CashierName, session, len(ev.Lines), ev.TotalAmount)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
