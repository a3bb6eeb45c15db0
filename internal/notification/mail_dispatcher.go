package notification

import (
	"context"
	"log"
	"sync"
	"time"

	authdomain "propertyhub/internal/auth/domain"
	"propertyhub/pkg/mailer"
)

const (
	defaultQueueSize = 100
	sendTimeout      = 30 * time.Second
)

// MailJob is one email waiting for delivery.
type MailJob struct {
	Kind    string
	Message *mailer.Message
}

// MailDispatcher delivers account emails in the background so requests
// never wait on the SMTP server.
type MailDispatcher struct {
	mailer      mailer.Mailer
	baseURL     string
	jobQueue    chan MailJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// NewMailDispatcher creates a new dispatcher. baseURL prefixes the links
// placed in account emails.
func NewMailDispatcher(m mailer.Mailer, baseURL string, workerCount int) *MailDispatcher {
	if workerCount <= 0 {
		workerCount = 1
	}

	return &MailDispatcher{
		mailer:      m,
		baseURL:     baseURL,
		jobQueue:    make(chan MailJob, defaultQueueSize),
		workerCount: workerCount,
	}
}

// Start starts the delivery workers
func (d *MailDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}

	for i := 0; i < d.workerCount; i++ {
		d.workerWg.Add(1)
		go d.worker(i)
	}
	d.started = true
	log.Printf("[MailDispatcher] Started %d workers", d.workerCount)
}

// Stop stops accepting jobs and waits for the queued ones to be delivered,
// or for ctx to end.
func (d *MailDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[MailDispatcher] All workers stopped")
		return nil
	case <-ctx.Done():
		log.Printf("[MailDispatcher] Stopped with %d emails still queued", len(d.jobQueue))
		return ctx.Err()
	}
}

func (d *MailDispatcher) worker(id int) {
	defer d.workerWg.Done()

	for job := range d.jobQueue {
		d.processJob(job)
	}

	log.Printf("[MailDispatcher] Worker %d stopped", id)
}

func (d *MailDispatcher) processJob(job MailJob) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, job.Message); err != nil {
		log.Printf("[MailDispatcher] Failed to send %s email to %s: %v", job.Kind, job.Message.To, err)
		return
	}
	log.Printf("[MailDispatcher] Sent %s email to %s", job.Kind, job.Message.To)
}

// QueueJob adds a job to the queue without blocking. It returns false when
// the queue is full or the dispatcher is stopped.
func (d *MailDispatcher) QueueJob(job MailJob) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	select {
	case d.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (d *MailDispatcher) AccountCreated(user *authdomain.User) {
	d.enqueue("confirmation", mailer.ConfirmationMessage(d.baseURL, user.Name, user.Email, user.Token))
}

func (d *MailDispatcher) PasswordResetRequested(user *authdomain.User) {
	d.enqueue("password reset", mailer.PasswordResetMessage(d.baseURL, user.Name, user.Email, user.Token))
}

func (d *MailDispatcher) enqueue(kind string, msg *mailer.Message) {
	if !d.QueueJob(MailJob{Kind: kind, Message: msg}) {
		log.Printf("[MailDispatcher] Dropped %s email to %s, queue unavailable", kind, msg.To)
	}
}
