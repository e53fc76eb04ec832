package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/environment"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailFrom                              = "From"
	KeyEmailTo                                = "To"
	KeyEmailSubject                           = "Subject"
	KeyEmailBodyPlain           EmailBodyType = "text/plain"
	PurposeJudgeOutageAlert     EmailPurpose  = "judge outage"
	defaultEmailChannelCapacity               = 100
	defaultWorkers                            = 2
	defaultAlertInterval                      = 10 * time.Minute
)

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

type emailJob struct {
	EmailRequest
	from string
}

// Sender delivers one composed message.
type Sender func(*gomail.Message) error

type EmailService struct {
	Config environment.MailConfig
	// minimum gap between two outage alerts
	AlertInterval time.Duration
	// overrides SMTP delivery, used in tests
	Send Sender

	jobs      chan emailJob
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastAlert time.Time
	logger    *logrus.Entry
}

// Start launches the mail workers. They stop when ctx is done.
func (e *EmailService) Start(ctx context.Context, workers int) {
	e.logger = logrus.WithFields(logrus.Fields{
		"from": "email service",
	})
	if e.AlertInterval <= 0 {
		e.AlertInterval = defaultAlertInterval
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if e.Send == nil {
		dialer := gomail.NewDialer(
			e.Config.SMTPHost,
			e.Config.SMTPPort,
			e.Config.Sender,
			e.Config.Password,
		)
		e.Send = func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		}
	}

	e.jobs = make(chan emailJob, defaultEmailChannelCapacity)
	for i := range workers {
		e.wg.Add(1)
		go e.worker(ctx, i)
	}
	e.logger.Infof("started %d mail workers", workers)
}

// Wait blocks until all workers have exited.
func (e *EmailService) Wait() {
	e.wg.Wait()
}

func (e *EmailService) worker(ctx context.Context, id int) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			e.logger.Debugf("mail worker %d stopped", id)
			return
		case job := <-e.jobs:
			if err := e.deliver(job); err != nil {
				e.logger.Errorf("cannot send %v mail, %v", job.Purpose, err)
			}
		}
	}
}

func (e *EmailService) deliver(job emailJob) error {
	m := gomail.NewMessage()
	m.SetHeader(KeyEmailFrom, job.from)
	m.SetHeader(KeyEmailTo, job.To...)
	m.SetHeader(KeyEmailSubject, job.Subject)
	m.SetBody(string(job.BodyType), job.Body)
	return e.Send(m)
}

// NewMail queues a mail. It never blocks past ctx or a full queue.
func (e *EmailService) NewMail(ctx context.Context, req EmailRequest) error {
	if e.jobs == nil || e.Config.Sender == "" {
		log.Error("sender email is not configured")
		return drill_errors.ErrEmailServiceStopped
	}
	if req.BodyType == "" {
		req.BodyType = KeyEmailBodyPlain
	}
	job := emailJob{
		from:         e.Config.Sender,
		EmailRequest: req,
	}

	select {
	case <-ctx.Done():
		log.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(drill_errors.ErrEmailServiceStopped, ctx.Err())
	case e.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w, mail queue is full", drill_errors.ErrEmailServiceStopped)
	}
}

// AlertJudgeFailure mails the operators about a judge outage, at most once
// per AlertInterval.
func (e *EmailService) AlertJudgeFailure(ctx context.Context, runID uuid.UUID, cause error) {
	if !e.Config.Enabled() {
		return
	}

	e.mu.Lock()
	now := time.Now()
	if !e.lastAlert.IsZero() && now.Sub(e.lastAlert) < e.AlertInterval {
		e.mu.Unlock()
		e.logger.Debugf("outage alert for run %v throttled", runID)
		return
	}
	e.lastAlert = now
	e.mu.Unlock()

	body := fmt.Sprintf(
		"Judging run %v failed at %s.\n\nCause: %v\n",
		runID,
		now.UTC().Format(time.RFC3339),
		cause,
	)
	err := e.NewMail(ctx, EmailRequest{
		To:       e.Config.AlertTo,
		Subject:  "code-drill: execution service unavailable",
		Body:     body,
		BodyType: KeyEmailBodyPlain,
		Purpose:  PurposeJudgeOutageAlert,
	})
	if err != nil {
		e.logger.Errorf("cannot queue outage alert, %v", err)
		return
	}
	e.logger.Infof("queued outage alert for run %v", runID)
}
