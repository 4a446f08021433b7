package services

import (
	"encoding/json"
	"fmt"
	"time"

	"schooladmin_go/database"
	"schooladmin_go/models"
	"schooladmin_go/services/finance"
	"schooladmin_go/services/websocket"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler owns all recurring background work: activity-log maintenance
// and overdue-invoice reminders.
type Scheduler struct {
	cron       *cron.Cron
	logArchive *LogArchiveService
	hub        *websocket.Hub
}

// NewScheduler wires the cron runner with its jobs.
func NewScheduler(logArchive *LogArchiveService, hub *websocket.Hub) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		logArchive: logArchive,
		hub:        hub,
	}
}

// Start registers the jobs and launches the runner. Log maintenance runs
// hourly; overdue reminders go out once a day at 07:00 server time.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.logArchive.RunMaintenance); err != nil {
		return fmt.Errorf("failed to schedule log maintenance: %w", err)
	}

	if _, err := s.cron.AddFunc("0 7 * * *", func() {
		if err := s.SendOverdueReminders(); err != nil {
			logrus.WithError(err).Warn("overdue reminder run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule overdue reminders: %w", err)
	}

	s.cron.Start()
	logrus.Info("Background scheduler started")
	return nil
}

// Stop halts the runner, waiting for in-flight jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Background scheduler stopped")
}

// SendOverdueReminders notifies guardians about invoices past their due
// date. One notification message per overdue invoice, addressed to every
// guardian of the student, pushed live to connected clients.
func (s *Scheduler) SendOverdueReminders() error {
	var invoices []models.Invoice
	now := time.Now()

	err := database.DB.
		Preload("Student.Guardians").
		Preload("FeeCategory").
		Where("due_date < ? AND status IN ?", now, []string{finance.InvoiceUnpaid, finance.InvoicePartial}).
		Find(&invoices).Error
	if err != nil {
		return fmt.Errorf("failed to load overdue invoices: %w", err)
	}

	var sent int
	for _, inv := range invoices {
		if len(inv.Student.Guardians) == 0 {
			continue
		}

		body := fmt.Sprintf(
			"Invoice %s (%s) for %s %s is overdue. Outstanding amount: %.2f, due %s.",
			inv.InvoiceNumber,
			inv.FeeCategory.Name,
			inv.Student.FirstName,
			inv.Student.LastName,
			inv.TotalAmount-inv.PaidAmount,
			inv.DueDate.Format("2006-01-02"),
		)

		msg := models.Message{
			SenderID:   inv.CreatedByID,
			Subject:    "Overdue invoice reminder",
			Body:       body,
			Type:       "Notification",
			Status:     "Sent",
			SentAt:     now,
			Recipients: inv.Student.Guardians,
		}
		if err := database.DB.Create(&msg).Error; err != nil {
			logrus.WithError(err).WithField("invoice", inv.InvoiceNumber).Warn("failed to record overdue reminder")
			continue
		}

		if s.hub != nil {
			ids := make([]uint, 0, len(inv.Student.Guardians))
			for _, g := range inv.Student.Guardians {
				ids = append(ids, g.ID)
			}
			payload, _ := json.Marshal(msg)
			s.hub.BroadcastToUsers(ids, websocket.Envelope{Type: "message", Data: json.RawMessage(payload)})
		}
		sent++
	}

	logrus.Infof("Overdue reminder run complete: %d invoices, %d reminders sent", len(invoices), sent)
	return nil
}
