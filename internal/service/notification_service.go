package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/notify"
	"github.com/campus-ops/grievance-service/internal/repository"
)

const sendTimeout = 15 * time.Second

// NotificationService turns lifecycle events into emails. Delivery is
// fire-and-forget: sends run on their own goroutine and failures are logged,
// never surfaced to the request that triggered them.
type NotificationService struct {
	mailer notify.Mailer
	users  repository.UserRepository
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(mailer notify.Mailer, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: mailer, users: users, logger: logger}
}

// RegisterHandlers wires the service onto the dispatcher.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventVerificationRequested, s.handleVerificationRequested)
	dispatcher.Subscribe(events.EventResolutionVerified, s.handleResolutionVerified)
	dispatcher.Subscribe(events.EventExtensionResolved, s.handleExtensionResolved)
}

func (s *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationRequestedPayload)
	if !ok {
		s.logger.Warn("unexpected payload type", zap.String("event_type", string(event.Type)))
		return nil
	}
	if payload.StudentEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Your %s grievance has a proposed resolution", payload.Category)
	body := fmt.Sprintf(
		"<p>A resolution has been proposed for your grievance.</p>"+
			"<p><b>Remarks:</b> %s</p>"+
			"<p>Please confirm or reject it from your portal. If no action is taken "+
			"within %d hours the resolution is accepted automatically.</p>",
		payload.ResolutionRemarks, payload.WindowHours)

	s.sendAsync(event, []string{payload.StudentEmail}, subject, body)
	return nil
}

func (s *NotificationService) handleResolutionVerified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ResolutionVerifiedPayload)
	if !ok {
		s.logger.Warn("unexpected payload type", zap.String("event_type", string(event.Type)))
		return nil
	}

	var subject, body string
	var staffIDs []string
	if payload.Accepted {
		subject = "Grievance resolution confirmed"
		body = "<p>The student has confirmed the proposed resolution. The grievance is now closed.</p>"
		if payload.AssignedTo != nil {
			staffIDs = append(staffIDs, *payload.AssignedTo)
		}
	} else {
		subject = "Grievance resolution rejected"
		body = "<p>The student has rejected the proposed resolution and the grievance has been reopened.</p>"
		if payload.Feedback != "" {
			body += fmt.Sprintf("<p><b>Student feedback:</b> %s</p>", payload.Feedback)
		}
		if payload.AssignedTo != nil {
			staffIDs = append(staffIDs, *payload.AssignedTo)
		}
		if payload.AssignedBy != nil {
			staffIDs = append(staffIDs, *payload.AssignedBy)
		}
	}

	recipients := s.resolveEmails(ctx, staffIDs)
	if len(recipients) == 0 {
		return nil
	}
	s.sendAsync(event, recipients, subject, body)
	return nil
}

func (s *NotificationService) handleExtensionResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ExtensionResolvedPayload)
	if !ok {
		s.logger.Warn("unexpected payload type", zap.String("event_type", string(event.Type)))
		return nil
	}
	if payload.AssignedTo == nil {
		return nil
	}

	var subject, body string
	if payload.Approved {
		subject = "Deadline extension approved"
		body = "<p>Your extension request has been approved.</p>"
		if payload.RequestedDate != nil {
			body += fmt.Sprintf("<p>The new deadline is %s.</p>", payload.RequestedDate.Format("2006-01-02"))
		}
	} else {
		subject = "Deadline extension rejected"
		body = "<p>Your extension request has been rejected. The original deadline stands.</p>"
	}

	recipients := s.resolveEmails(ctx, []string{*payload.AssignedTo})
	if len(recipients) == 0 {
		return nil
	}
	s.sendAsync(event, recipients, subject, body)
	return nil
}

// resolveEmails maps staff ids to addresses via the user directory,
// deduplicating so nobody is mailed twice for one event.
func (s *NotificationService) resolveEmails(ctx context.Context, staffIDs []string) []string {
	seen := make(map[string]struct{}, len(staffIDs))
	var emails []string
	for _, id := range staffIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("failed to resolve recipient",
				zap.String("staff_id", id),
				zap.Error(err),
			)
			continue
		}
		if _, dup := seen[user.Email]; dup {
			continue
		}
		seen[user.Email] = struct{}{}
		emails = append(emails, user.Email)
	}
	return emails
}

func (s *NotificationService) sendAsync(event events.Event, to []string, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			s.logger.Error("notification send failed",
				zap.String("event_type", string(event.Type)),
				zap.String("grievance_id", event.GrievanceID),
				zap.Strings("to", to),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("notification sent",
			zap.String("event_type", string(event.Type)),
			zap.String("grievance_id", event.GrievanceID),
			zap.Int("recipients", len(to)),
		)
	}()
}
