// Package notify records and retracts the notifications produced by likes, comments,
// replies, mentions and follows.
//
// Both operations run inside the caller's transaction but in their own savepoint, so a
// failure never rolls back the primary mutation. Failures are logged, counted and
// reported as Failed; callers are expected to ignore the Outcome.
package notify

import (
	"context"
	"time"

	"github.com/rijalsawan/photography-sub000/internal/metrics"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultWindow is how long a notification absorbs repeats of the same action.
const DefaultWindow = time.Hour

// Outcome is the result of a side effect.
type Outcome int

const (
	Suppressed Outcome = iota
	Created
	Refreshed
	Retracted
	Untouched
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Suppressed:
		return "suppressed"
	case Created:
		return "created"
	case Refreshed:
		return "refreshed"
	case Retracted:
		return "retracted"
	case Untouched:
		return "untouched"
	default:
		return "failed"
	}
}

// Event describes an action that should notify RecipientID.
type Event struct {
	Type        models.NotificationType
	RecipientID string
	ActorID     string
	PhotoID     string
	CommentID   string
	Message     string
}

// Scope identifies the notifications to delete when an action is undone.
type Scope struct {
	Type        models.NotificationType
	ActorID     string
	RecipientID string
	PhotoID     string
	CommentID   string
}

// Notifier applies the notification rules.
type Notifier struct {
	window  time.Duration
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New returns a Notifier deduplicating within window (DefaultWindow when <= 0).
func New(window time.Duration, log *zap.Logger) *Notifier {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		window:  window,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
		metrics: metrics.Get(),
	}
}

// WithClock replaces the time source.
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// Window reports the dedup window in use.
func (n *Notifier) Window() time.Duration {
	return n.window
}

// Notify creates a notification for ev, or refreshes the matching one created within
// the window. Self-actions are suppressed without touching the table.
func (n *Notifier) Notify(ctx context.Context, tx *gorm.DB, ev Event) Outcome {
	if ev.RecipientID == "" || ev.RecipientID == ev.ActorID {
		n.record(ev.Type, Suppressed)
		return Suppressed
	}

	outcome := Failed
	err := tx.Transaction(func(sp *gorm.DB) error {
		repo := repositories.NewPostgresNotificationRepository(sp)
		now := n.now()

		existing, err := repo.FindLatest(ctx, dedupFilter(ev), now.Add(-n.window))
		if err != nil {
			return err
		}
		if existing != nil {
			if err := repo.Refresh(ctx, existing.ID, ev.Message, optional(ev.CommentID), now); err != nil {
				return err
			}
			outcome = Refreshed
			return nil
		}

		if err := repo.CreateNotification(ctx, &models.Notification{
			UserID:       ev.RecipientID,
			ActionUserID: ev.ActorID,
			Type:         ev.Type,
			PhotoID:      optional(ev.PhotoID),
			CommentID:    optional(ev.CommentID),
			Message:      ev.Message,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return err
		}
		outcome = Created
		return nil
	})
	if err != nil {
		n.fail("notify", ev.Type, err,
			zap.String("recipient_id", ev.RecipientID),
			zap.String("actor_id", ev.ActorID),
			zap.String("photo_id", ev.PhotoID),
			zap.String("comment_id", ev.CommentID),
		)
		return Failed
	}

	n.record(ev.Type, outcome)
	return outcome
}

// Retract deletes the notifications an undone action produced.
func (n *Notifier) Retract(ctx context.Context, tx *gorm.DB, s Scope) Outcome {
	var deleted int64
	err := tx.Transaction(func(sp *gorm.DB) error {
		var err error
		deleted, err = repositories.NewPostgresNotificationRepository(sp).DeleteMatching(ctx, retractFilter(s))
		return err
	})
	if err != nil {
		n.fail("retract", s.Type, err,
			zap.String("actor_id", s.ActorID),
			zap.String("photo_id", s.PhotoID),
			zap.String("comment_id", s.CommentID),
		)
		return Failed
	}

	outcome := Untouched
	if deleted > 0 {
		outcome = Retracted
	}
	n.record(s.Type, outcome)
	return outcome
}

// dedupFilter scopes likes and comments to the photo, replies and mentions to the
// comment as well, and follows to the (recipient, actor) pair.
func dedupFilter(ev Event) repositories.NotificationFilter {
	f := repositories.NotificationFilter{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Type,
	}
	switch ev.Type {
	case models.NotificationLike, models.NotificationComment:
		f.PhotoID = optional(ev.PhotoID)
	case models.NotificationReply, models.NotificationMention:
		f.PhotoID = optional(ev.PhotoID)
		f.CommentID = optional(ev.CommentID)
	}
	return f
}

func retractFilter(s Scope) repositories.NotificationFilter {
	f := repositories.NotificationFilter{ActorID: s.ActorID, Type: s.Type}
	switch s.Type {
	case models.NotificationLike, models.NotificationComment:
		f.PhotoID = optional(s.PhotoID)
	case models.NotificationReply, models.NotificationMention:
		f.CommentID = optional(s.CommentID)
	case models.NotificationFollow:
		f.RecipientID = s.RecipientID
	}
	if s.RecipientID != "" {
		f.RecipientID = s.RecipientID
	}
	return f
}

func (n *Notifier) record(t models.NotificationType, o Outcome) {
	n.metrics.NotificationOutcomes.WithLabelValues(string(t), o.String()).Inc()
	n.log.Debug("notification side effect", zap.String("type", string(t)), zap.Stringer("outcome", o))
}

func (n *Notifier) fail(op string, t models.NotificationType, err error, fields ...zap.Field) {
	n.metrics.NotificationFailures.WithLabelValues(string(t), op).Inc()
	n.metrics.NotificationOutcomes.WithLabelValues(string(t), Failed.String()).Inc()
	n.log.Warn("notification side effect failed",
		append(fields, zap.String("op", op), zap.String("type", string(t)), zap.Error(err))...)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
