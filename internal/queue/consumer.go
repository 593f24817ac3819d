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

// StartAccountConsumer connects to RabbitMQ, declares the account event
// queues (durable), and starts consuming them.  Each message is appended
// to account.log in the given directory in a single-line, human-friendly
// format.  The function runs a reconnect loop; it keeps running and logs
// any processing errors while rejecting the offending message so the
// server continues operating.
func StartAccountConsumer(logDir string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("account-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, logDir); err != nil {
			log.Printf("account-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("account-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{RegisteredQueue, DeletedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	registered, err := ch.Consume(RegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", RegisteredQueue, err)
	}
	deleted, err := ch.Consume(DeletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", DeletedQueue, err)
	}

	for {
		select {
		case d, ok := <-registered:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ack(d, handleRegistered(logDir, d.Body))
		case d, ok := <-deleted:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ack(d, handleDeleted(logDir, d.Body))
		}
	}
}

func ack(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("account-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleRegistered(logDir string, body []byte) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] User registered | user_id=%s | username=%q | email=%q\n",
		ev.RegisteredAt.Format(time.RFC3339), ev.UserID, ev.Username, ev.Email)
	return appendAuditLine(logDir, line)
}

func handleDeleted(logDir string, body []byte) error {
	var ev UserDeletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] User deleted | user_id=%s\n",
		ev.DeletedAt.Format(time.RFC3339), ev.UserID)
	return appendAuditLine(logDir, line)
}

func appendAuditLine(logDir, line string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join(logDir, "account.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
