package email

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

type job struct {
	user *domain.User
	url  string
}

// Dispatcher wraps a Mailer and moves welcome mail off the request path.
// Jobs are routed to a fixed set of workers by recipient hash so mail to the
// same address keeps its order. Password-reset mail stays synchronous: the
// caller compensates on failure.
type Dispatcher struct {
	workers []chan job
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendWelcome enqueues the welcome mail; delivery failures are logged, not
// surfaced.
func (d *Dispatcher) SendWelcome(_ context.Context, user *domain.User, url string) error {
	d.workers[d.shardIndex(user.Email)] <- job{user: user, url: url}
	return nil
}

// SendPasswordReset delegates synchronously so the auth service can clear
// the stored reset token when delivery fails.
func (d *Dispatcher) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	return d.mailer.SendPasswordReset(ctx, user, resetURL)
}

func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.SendWelcome(ctx, j.user, j.url); err != nil {
				d.log.Error().Err(err).
					Str("email", j.user.Email).
					Int("worker_id", id).
					Msg("welcome email failed")
			}
		}
	}
}
