// Package worker turns queued anomaly alerts into user notifications.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// Notifier delivers one alert to one user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, alert core.AnomalyAlert) error
}

// LogNotifier records notifications in the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogNotifier{logger: logger.WithComponent(log.ComponentWorker)}
}

func (n *LogNotifier) Notify(ctx context.Context, userID int64, a core.AnomalyAlert) error {
	n.logger.InfoContext(ctx, a.Message,
		log.FieldUserID, userID,
		log.FieldTransaction, a.TransactionID,
		log.FieldCategory, a.CategoryName,
		log.FieldAmount, core.FormatMoney(a.Amount),
		log.FieldOperation, log.OpNotify)
	return nil
}

// Stats counts handled alerts since start.
type Stats struct {
	Notified   int64
	Duplicates int64
	Failed     int64
}

// AlertWorker notifies each (user, transaction) alert at most once.
type AlertWorker struct {
	store    ports.AlertStore
	notifier Notifier
	logger   *log.Logger

	notified   atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

func NewAlertWorker(store ports.AlertStore, notifier Notifier, logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &AlertWorker{
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleAlert is the consumer callback. A returned error requeues the message.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.AnomalyAlertMessage) error {
	fresh, err := w.store.MarkNotified(ctx, msg.UserID, msg.TransactionID)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("mark alert notified: %w", err)
	}
	if !fresh {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "alert already notified",
			log.FieldUserID, msg.UserID,
			log.FieldTransaction, msg.TransactionID)
		return nil
	}

	// A failed delivery is not retried; the alert stays marked.
	if err := w.notifier.Notify(ctx, msg.UserID, msg.Alert()); err != nil {
		w.failed.Add(1)
		w.logger.Failure(ctx, "alert notification failed", err,
			log.FieldUserID, msg.UserID,
			log.FieldTransaction, msg.TransactionID)
		return nil
	}
	w.notified.Add(1)
	return nil
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Notified:   w.notified.Load(),
		Duplicates: w.duplicates.Load(),
		Failed:     w.failed.Load(),
	}
}
