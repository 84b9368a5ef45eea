package services

import (
	"context"
	"errors"

	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LikeResult is the state after a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// CommentResult is a created comment or reply with the photo's new comment count.
type CommentResult struct {
	Comment      *models.Comment `json:"comment"`
	CommentCount int             `json:"commentCount"`
}

// DeleteResult reports how many comment rows a delete removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
	CommentCount int   `json:"commentCount"`
}

// EngagementService handles likes, comments and replies.
type EngagementService struct {
	db       *gorm.DB
	users    *UserService
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewEngagementService(db *gorm.DB, users *UserService, notifier *notify.Notifier, log *zap.Logger) *EngagementService {
	return &EngagementService{db: db, users: users, notifier: notifier, log: log}
}

// ToggleLike likes the photo if the actor has not liked it yet, and unlikes it otherwise.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID, photoID string) (*LikeResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if photoID == "" {
		return nil, apperrors.Validation("photoId", "is required")
	}

	res := &LikeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		photo, err := r.photos.GetPhotoByID(ctx, photoID)
		if err != nil {
			return lookup(err, "photo")
		}
		actor, err := s.users.EnsureUser(ctx, tx, actorID)
		if err != nil {
			return err
		}

		liked, err := r.likes.HasUserLikedPhoto(ctx, photoID, actorID)
		if err != nil {
			return err
		}

		if liked {
			removed, err := r.likes.DeleteLike(ctx, photoID, actorID)
			if err != nil {
				return err
			}
			if removed {
				if err := r.photos.DecrementLikeCount(ctx, photoID); err != nil {
					return err
				}
				s.notifier.Retract(ctx, tx, notify.Scope{
					Type:        models.NotificationLike,
					ActorID:     actorID,
					RecipientID: photo.UserID,
					PhotoID:     photoID,
				})
			}
			res.Liked = false
		} else {
			created, err := r.likes.CreateLikeIfAbsent(ctx, &models.Like{UserID: actorID, PhotoID: photoID})
			if err != nil {
				return err
			}
			if created {
				if err := r.photos.IncrementLikeCount(ctx, photoID); err != nil {
					return err
				}
				s.notifier.Notify(ctx, tx, notify.Event{
					Type:        models.NotificationLike,
					RecipientID: photo.UserID,
					ActorID:     actorID,
					PhotoID:     photoID,
					Message:     notify.LikeMessage(displayName(actor)),
				})
			}
			res.Liked = true
		}

		res.LikeCount, _, err = r.photos.GetCounters(ctx, photoID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "toggle like on photo %s", photoID)
	}
	return res, nil
}

// CreateComment adds a top-level comment to a photo.
func (s *EngagementService) CreateComment(ctx context.Context, actorID, photoID, text string) (*CommentResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if photoID == "" {
		return nil, apperrors.Validation("photoId", "is required")
	}
	text, err := commentText(text)
	if err != nil {
		return nil, err
	}

	res := &CommentResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		photo, err := r.photos.GetPhotoByID(ctx, photoID)
		if err != nil {
			return lookup(err, "photo")
		}
		author, err := s.users.EnsureUser(ctx, tx, actorID)
		if err != nil {
			return err
		}

		comment := &models.Comment{UserID: actorID, PhotoID: photoID, Text: text}
		if err := r.comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := r.photos.IncrementCommentCount(ctx, photoID); err != nil {
			return err
		}
		comment.User = author

		s.notifier.Notify(ctx, tx, notify.Event{
			Type:        models.NotificationComment,
			RecipientID: photo.UserID,
			ActorID:     actorID,
			PhotoID:     photoID,
			CommentID:   comment.ID,
			Message:     notify.CommentMessage(displayName(author), text),
		})
		s.notifyMentions(ctx, tx, author, photoID, comment.ID, text, photo.UserID)

		res.Comment = comment
		_, res.CommentCount, err = r.photos.GetCounters(ctx, photoID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "comment on photo %s", photoID)
	}
	return res, nil
}

// CreateReply answers a top-level comment. Replies to replies are rejected.
func (s *EngagementService) CreateReply(ctx context.Context, actorID, commentID, text string) (*CommentResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if commentID == "" {
		return nil, apperrors.Validation("commentId", "is required")
	}
	text, err := commentText(text)
	if err != nil {
		return nil, err
	}

	res := &CommentResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		parent, err := r.comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return lookup(err, "comment")
		}
		if parent.IsReply() {
			return apperrors.BadRequest("replies can only be added to top-level comments")
		}
		author, err := s.users.EnsureUser(ctx, tx, actorID)
		if err != nil {
			return err
		}

		reply := &models.Comment{UserID: actorID, PhotoID: parent.PhotoID, ParentID: &parent.ID, Text: text}
		if err := r.comments.CreateComment(ctx, reply); err != nil {
			return err
		}
		if err := r.photos.IncrementCommentCount(ctx, parent.PhotoID); err != nil {
			return lookup(err, "photo")
		}
		reply.User = author

		s.notifier.Notify(ctx, tx, notify.Event{
			Type:        models.NotificationReply,
			RecipientID: parent.UserID,
			ActorID:     actorID,
			PhotoID:     parent.PhotoID,
			CommentID:   reply.ID,
			Message:     notify.ReplyMessage(displayName(author), text),
		})
		s.notifyMentions(ctx, tx, author, parent.PhotoID, reply.ID, text, parent.UserID)

		res.Comment = reply
		_, res.CommentCount, err = r.photos.GetCounters(ctx, parent.PhotoID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "reply to comment %s", commentID)
	}
	return res, nil
}

// DeleteComment removes a top-level comment with all of its replies. A reply id is
// handled like DeleteReply.
func (s *EngagementService) DeleteComment(ctx context.Context, actorID, commentID string) (*DeleteResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if commentID == "" {
		return nil, apperrors.Validation("commentId", "is required")
	}

	var res *DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)

		comment, err := r.comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return lookup(err, "comment")
		}
		if comment.IsReply() {
			res, err = s.deleteReply(ctx, tx, actorID, comment)
			return err
		}

		ownerID, err := photoOwner(ctx, r, comment.PhotoID)
		if err != nil {
			return err
		}
		if actorID != comment.UserID && actorID != ownerID {
			return apperrors.Forbidden("you can only delete your own comments or comments on your photos")
		}

		replies, err := r.comments.GetReplies(ctx, comment.ID)
		if err != nil {
			return err
		}
		removedReplies, err := r.comments.DeleteRepliesTo(ctx, []string{comment.ID})
		if err != nil {
			return err
		}
		if _, err := r.comments.DeleteComments(ctx, []string{comment.ID}); err != nil {
			return err
		}
		removed := 1 + removedReplies
		if err := decrementComments(ctx, r, comment.PhotoID, int(removed)); err != nil {
			return err
		}

		s.notifier.Retract(ctx, tx, notify.Scope{
			Type:    models.NotificationComment,
			ActorID: comment.UserID,
			PhotoID: comment.PhotoID,
		})
		s.retractMentions(ctx, tx, comment)
		for i := range replies {
			s.retractReply(ctx, tx, &replies[i])
		}

		res = &DeleteResult{DeletedCount: removed}
		_, res.CommentCount, err = counters(ctx, r, comment.PhotoID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "delete comment %s", commentID)
	}
	return res, nil
}

// DeleteReply removes one reply. When parentID is set the reply must belong to it.
func (s *EngagementService) DeleteReply(ctx context.Context, actorID, parentID, replyID string) (*DeleteResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if replyID == "" {
		return nil, apperrors.Validation("replyId", "is required")
	}

	var res *DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reply, err := reposFor(tx).comments.GetCommentByID(ctx, replyID)
		if err != nil {
			return lookup(err, "reply")
		}
		if !reply.IsReply() {
			return apperrors.BadRequest("comment is not a reply")
		}
		if parentID != "" && *reply.ParentID != parentID {
			return apperrors.NotFound("reply")
		}
		res, err = s.deleteReply(ctx, tx, actorID, reply)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, "delete reply %s", replyID)
	}
	return res, nil
}

// deleteReply lets the reply author, the photo owner or the parent comment's author
// remove a reply.
func (s *EngagementService) deleteReply(ctx context.Context, tx *gorm.DB, actorID string, reply *models.Comment) (*DeleteResult, error) {
	r := reposFor(tx)

	ownerID, err := photoOwner(ctx, r, reply.PhotoID)
	if err != nil {
		return nil, err
	}
	parentAuthor := ""
	parent, err := r.comments.GetCommentByID(ctx, *reply.ParentID)
	switch {
	case err == nil:
		parentAuthor = parent.UserID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if actorID != reply.UserID && actorID != ownerID && actorID != parentAuthor {
		return nil, apperrors.Forbidden("you are not allowed to delete this reply")
	}

	removed, err := r.comments.DeleteComments(ctx, []string{reply.ID})
	if err != nil {
		return nil, err
	}
	if err := decrementComments(ctx, r, reply.PhotoID, int(removed)); err != nil {
		return nil, err
	}
	s.retractReply(ctx, tx, reply)

	res := &DeleteResult{DeletedCount: removed}
	_, res.CommentCount, err = counters(ctx, r, reply.PhotoID)
	return res, err
}

func (s *EngagementService) retractReply(ctx context.Context, tx *gorm.DB, reply *models.Comment) {
	s.notifier.Retract(ctx, tx, notify.Scope{
		Type:      models.NotificationReply,
		ActorID:   reply.UserID,
		CommentID: reply.ID,
	})
	s.retractMentions(ctx, tx, reply)
}

func (s *EngagementService) retractMentions(ctx context.Context, tx *gorm.DB, c *models.Comment) {
	if len(notify.ExtractMentions(c.Text)) == 0 {
		return
	}
	s.notifier.Retract(ctx, tx, notify.Scope{
		Type:      models.NotificationMention,
		ActorID:   c.UserID,
		CommentID: c.ID,
	})
}

// notifyMentions notifies every existing @mentioned user other than the author and
// skip, who already gets a like/comment/reply notification.
func (s *EngagementService) notifyMentions(ctx context.Context, tx *gorm.DB, author *models.User, photoID, commentID, text, skip string) {
	names := notify.ExtractMentions(text)
	if len(names) == 0 {
		return
	}

	var mentioned []models.User
	err := tx.Transaction(func(sp *gorm.DB) error {
		var err error
		mentioned, err = reposFor(sp).users.GetUsersByUsernames(ctx, names)
		return err
	})
	if err != nil {
		s.log.Warn("mention lookup failed", zap.String("comment_id", commentID), zap.Error(err))
		return
	}

	for _, u := range mentioned {
		if u.ID == author.ID || u.ID == skip {
			continue
		}
		s.notifier.Notify(ctx, tx, notify.Event{
			Type:        models.NotificationMention,
			RecipientID: u.ID,
			ActorID:     author.ID,
			PhotoID:     photoID,
			CommentID:   commentID,
			Message:     notify.MentionMessage(displayName(author)),
		})
	}
}

// photoOwner returns the owner of photoID, or "" when the photo is gone.
func photoOwner(ctx context.Context, r repos, photoID string) (string, error) {
	photo, err := r.photos.GetPhotoByID(ctx, photoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return photo.UserID, nil
}

func decrementComments(ctx context.Context, r repos, photoID string, n int) error {
	err := r.photos.DecrementCommentCount(ctx, photoID, n)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func counters(ctx context.Context, r repos, photoID string) (int, int, error) {
	likes, comments, err := r.photos.GetCounters(ctx, photoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	return likes, comments, err
}
