package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"pondy/classifieds/internal/config"
	"pondy/classifieds/internal/email"
	"pondy/classifieds/internal/models"
	"pondy/classifieds/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeNotificationDeliver = "notification:deliver"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// IAsynqClient abstracts the asynq client for testing.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher implements services.IDispatcher by enqueuing delivery tasks.
// The core transaction has already committed by the time Dispatch runs, so a
// failed enqueue loses at most a notification, never listing state.
type Dispatcher struct {
	client IAsynqClient
}

// NewDispatcher creates a queue-backed notification dispatcher.
func NewDispatcher(client IAsynqClient) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch enqueues a notification delivery task.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}
	task := asynq.NewTask(TypeNotificationDeliver, payload)
	_, err = d.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg                 *config.Config
	notificationService services.INotificationService
	emailSender         email.Sender
}

func NewTaskProcessor(
	cfg *config.Config,
	notificationService services.INotificationService,
	emailSender email.Sender,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                 cfg,
		notificationService: notificationService,
		emailSender:         emailSender,
	}
}

// SetupServer configures an Asynq server and its handler mux. The caller
// starts it with srv.Run(mux).
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationDeliver, processor.HandleNotificationDeliverTask)
	log.Println("Registered notification task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// HandleNotificationDeliverTask writes the notification document and, when an
// SMS-over-email gateway is configured, emails the recipient a copy. Store
// failures are returned so asynq retries; gateway failures are only logged.
func (p *TaskProcessor) HandleNotificationDeliverTask(ctx context.Context, t *asynq.Task) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %v: %w", err, asynq.SkipRetry)
	}

	notification, err := p.notificationService.Create(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to store notification %s: %w", event.NotificationID, err)
	}
	log.Printf("Notification %s stored for %s (listing %d)", notification.NotificationID, notification.RecipientPhone, notification.PpcID)

	if p.cfg.SmsGatewayDomain != "" && p.emailSender != nil {
		to := fmt.Sprintf("%s@%s", event.RecipientPhone, p.cfg.SmsGatewayDomain)
		subject := fmt.Sprintf("Activity on PPC-%d", event.PpcID)

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
		sb.WriteString(fmt.Sprintf("From: %s\r\n", p.cfg.SmtpFromAddress))
		sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
		sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
		sb.WriteString("MIME-Version: 1.0\r\n")
		sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(event.Message)
		sb.WriteString("\r\n")

		if sendErr := p.emailSender.Send(ctx, []string{to}, subject, []byte(sb.String())); sendErr != nil {
			// Gateway copy is best-effort; the stored notification is the contract.
			log.Printf("Failed to send gateway copy of notification %s: %v", event.NotificationID, sendErr)
		}
	}

	return nil
}
