package service

import (
	"context"       // Worker lifecycle
	"encoding/json" // Job serialization
	"fmt"           // Message bodies
	"net/smtp"      // Mail delivery
	"time"          // Retry pacing and timestamps

	"metals_trading/internal/config" // SMTP configuration
	"metals_trading/internal/domain" // Domain models

	"github.com/redis/go-redis/v9" // Redis-backed job queue
	"github.com/sirupsen/logrus"   // Structured logging
)

const (
	emailQueueKey  = "emails"        // Pending job list
	emailFailedKey = "emails:failed" // Dead-letter list
	emailMaxTries  = 3
)

// EmailJob is one queued outgoing message
type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// EmailService queues notifications onto a Redis list and drains it in a
// background worker. Sending is strictly best-effort: callers never block on
// SMTP and never see delivery errors.
type EmailService struct {
	rdb      *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
	enabled  bool
}

// NewEmailService creates the notification collaborator. Without SMTP
// credentials the service logs and discards instead of sending.
func NewEmailService(cfg *config.Config, rdb *redis.Client) *EmailService {
	s := &EmailService{
		rdb:      rdb,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		smtpUser: cfg.SMTPUser,
		smtpPass: cfg.SMTPPass,
		enabled:  cfg.SMTPUser != "" && cfg.SMTPPass != "",
	}
	if !s.enabled {
		logrus.Warn("Email service not configured, emails will not be sent")
	}
	return s
}

// Send queues a message for delivery
func (s *EmailService) Send(ctx context.Context, to, name, subject, body string) error {
	if !s.enabled {
		logrus.WithField("subject", subject).Info("Email service not configured, skipping email")
		return nil
	}
	job := EmailJob{To: to, Name: name, Subject: subject, Body: body, Created: time.Now()}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := s.rdb.LPush(ctx, emailQueueKey, data).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"to": to, "error": err.Error()}).Error("Failed to queue email")
		return err
	}
	logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email queued")
	return nil
}

// Start runs the delivery worker until the context is cancelled
func (s *EmailService) Start(ctx context.Context) {
	if !s.enabled {
		return
	}
	logrus.Info("Email worker started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *EmailService) processNext(ctx context.Context) {
	result, err := s.rdb.BRPop(ctx, 2*time.Second, emailQueueKey).Result()
	if err != nil {
		return // Timeout or shutdown
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logrus.WithField("error", err.Error()).Error("Discarding malformed email job")
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logrus.WithFields(logrus.Fields{"to": job.To, "attempt": job.Tries, "error": err.Error()}).Error("Email send failed")
		if job.Tries < emailMaxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.rdb.LPush(context.Background(), emailQueueKey, data)
			return
		}
		s.saveFailed(job, err)
		return
	}
	logrus.WithField("to", job.To).Info("Email sent")
}

func (s *EmailService) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}
	return smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.from, []string{job.To}, []byte(message))
}

func (s *EmailService) saveFailed(job EmailJob, sendErr error) {
	failed := map[string]any{"job": job, "error": sendErr.Error(), "time": time.Now()}
	data, _ := json.Marshal(failed)
	s.rdb.LPush(context.Background(), emailFailedKey, data)
	logrus.WithField("to", job.To).Error("Email moved to failed queue")
}

// NotifyTransaction implements Notifier: confirmation mail after a settled
// operation. Errors are swallowed, a lost email never fails a trade.
func (s *EmailService) NotifyTransaction(ctx context.Context, user *domain.User, tx *domain.Transaction) {
	body := fmt.Sprintf(`Dear %s,

Your %s transaction has been completed successfully.

Amount: Rs %.2f
Date: %s

- %s`, user.FullName, tx.Type, tx.TotalAmount,
		time.UnixMilli(tx.CreatedAt).Format("Jan 2, 2006 at 3:04 PM"), s.fromName)

	_ = s.Send(ctx, user.Email, user.FullName, "Transaction Confirmation", body)
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, fullName string) {
	body := fmt.Sprintf(`Welcome %s!

Thank you for registering with us.
Start trading gold and silver today!

- %s`, fullName, s.fromName)

	_ = s.Send(ctx, email, fullName, "Welcome to Metals Trading Platform", body)
}

// SendKYCStatusEmail informs a user of a KYC status change
func (s *EmailService) SendKYCStatusEmail(ctx context.Context, email, fullName, status string) {
	body := fmt.Sprintf(`Dear %s,

Your KYC status has been updated to: %s`, fullName, status)
	if status == domain.KYCVerified {
		body += "\n\nYou can now trade without restrictions!"
	}
	body += fmt.Sprintf("\n\n- %s", s.fromName)

	_ = s.Send(ctx, email, fullName, "KYC Status Update", body)
}
