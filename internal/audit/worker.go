package audit

import "context"

// DeliverFunc pushes one entry to an external destination.
type DeliverFunc func(ctx context.Context, entry Entry) error

// Worker consumes audit entries from a channel and delivers them. It keeps
// background delivery testable without wiring a broker client.
type Worker struct {
	deliver DeliverFunc
	inbox   <-chan Entry
}

func NewWorker(deliver DeliverFunc, inbox <-chan Entry) *Worker {
	return &Worker{deliver: deliver, inbox: inbox}
}

// Run drains the inbox until the context is cancelled. Delivery errors are
// returned to the caller, which decides whether to restart.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			if err := w.deliver(ctx, entry); err != nil {
				return err
			}
		}
	}
}
