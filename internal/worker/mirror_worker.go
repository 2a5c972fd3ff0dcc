// Package worker applies ledger change messages to the sheet mirror.
package worker

import (
	"context"
	"fmt"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/sheets"
)

// Consumer delivers change messages until its context ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker keeps a sheets.Mirror in step with the ledger.
type MirrorWorker struct {
	mirror sheets.Mirror
	logger *log.Logger
}

func NewMirrorWorker(mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{mirror: mirror, logger: logger.WithComponent(log.ComponentWorker)}
}

// Run consumes messages until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Mirror worker started")
	err := c.Consume(ctx, w.Handle)
	w.logger.InfoContext(ctx, "Mirror worker stopped", log.FieldError, err)
	return err
}

// Handle applies one message. An error asks for redelivery.
func (w *MirrorWorker) Handle(ctx context.Context, msg *amqp.ExpenseChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		log.FieldMessageID, msg.ID,
		log.FieldChangeOp, string(msg.Op))

	if err := msg.Validate(); err != nil {
		return w.drop(ctx, msg, err)
	}

	switch msg.Op {
	case amqp.OpAdded:
		e, err := msg.Expense.Expense()
		if err != nil {
			return w.drop(ctx, msg, err)
		}
		if err := w.mirror.Append(ctx, e); err != nil {
			return fmt.Errorf("mirror append: %w", err)
		}
	case amqp.OpRemoved:
		e, err := msg.Expense.Expense()
		if err != nil {
			return w.drop(ctx, msg, err)
		}
		n, err := w.mirror.DeleteMatching(ctx, e)
		if err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}
		w.logger.DebugContext(ctx, "Mirror rows removed", "count", n)
	case amqp.OpDayCleared:
		d, err := core.ParseDate(msg.Date)
		if err != nil {
			return w.drop(ctx, msg, err)
		}
		n, err := w.mirror.DeleteDate(ctx, d)
		if err != nil {
			return fmt.Errorf("mirror clear %s: %w", d, err)
		}
		w.logger.DebugContext(ctx, "Mirror rows removed", "count", n)
	}
	return nil
}

// drop logs a message that can never be applied. Returning nil acks it so
// it does not loop through redelivery.
func (w *MirrorWorker) drop(ctx context.Context, msg *amqp.ExpenseChangeMessage, err error) error {
	w.logger.ErrorContext(ctx, "Dropping unusable change message",
		log.FieldMessageID, msg.ID,
		log.FieldChangeOp, string(msg.Op),
		log.FieldError, err)
	return nil
}
