package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rijalsawan/photography-sub000/internal/apperrors"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/notify"
	"github.com/rijalsawan/photography-sub000/internal/testutil"
	"github.com/rijalsawan/photography-sub000/pkg/storage"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (*storage.UploadResult, error) {
	if m.failPut {
		return nil, errors.New("store unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return &storage.UploadResult{Key: key, URL: "https://img.test/" + key, Size: int64(len(data))}, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type staticDirectory map[string]models.Identity

func (d staticDirectory) LookupUser(_ context.Context, id string) (*models.Identity, error) {
	identity, ok := d[id]
	if !ok {
		return nil, errors.New("no such account")
	}
	return &identity, nil
}

type ServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB

	logs     *observer.ObservedLogs
	notifier *notify.Notifier
	store    *memoryStore

	counters   *CounterService
	users      *UserService
	engagement *EngagementService
	follows    *FollowService
	photos     *PhotoService

	owner *models.User
	photo *models.Photo
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	s.logs = logs
	s.notifier = notify.New(time.Hour, log)
	s.store = newMemoryStore()

	s.counters = NewCounterService(s.db, log)
	s.users = NewUserService(s.db, staticDirectory{
		"fb-9f8e7d6c5b": {Name: "Dana Doe", Email: "dana@example.com", Avatar: "https://img.test/dana.png"},
	}, s.counters, log)
	s.engagement = NewEngagementService(s.db, s.users, s.notifier, log)
	s.follows = NewFollowService(s.db, s.users, s.notifier, log)
	s.photos = NewPhotoService(s.db, s.store, s.users, 1024, log)

	s.owner = testutil.CreateUser(s.T(), s.db, "u2")
	testutil.CreateUser(s.T(), s.db, "u1")
	testutil.CreateUser(s.T(), s.db, "u3")
	s.photo = testutil.CreatePhoto(s.T(), s.db, "u2", "harbour at dusk")
}

func (s *ServiceTestSuite) requireCode(err error, target *apperrors.APIError) {
	s.T().Helper()
	s.Require().Error(err)
	s.True(errors.Is(err, target), "got %v", err)
}

func (s *ServiceTestSuite) reload() *models.Photo {
	return testutil.ReloadPhoto(s.T(), s.db, s.photo.ID)
}

func (s *ServiceTestSuite) notificationsOf(recipient string, t models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range testutil.Notifications(s.T(), s.db, recipient) {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

// Likes

func (s *ServiceTestSuite) TestLikeNotifiesOwner() {
	res, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Equal(1, res.LikeCount)
	s.Equal(1, s.reload().LikeCount)

	likes := s.notificationsOf("u2", models.NotificationLike)
	s.Require().Len(likes, 1)
	s.Equal("u1", likes[0].ActionUserID)
	s.Equal(s.photo.ID, *likes[0].PhotoID)
	s.False(likes[0].IsRead)
	s.Equal("u1 liked your photo", likes[0].Message)
}

func (s *ServiceTestSuite) TestUnlikeRetractsNotification() {
	_, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)

	res, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	s.False(res.Liked)
	s.Equal(0, res.LikeCount)
	s.Empty(s.notificationsOf("u2", models.NotificationLike))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Like{}, ""))
}

func (s *ServiceTestSuite) TestLikeUnlikeLikeLeavesOneUnreadNotification() {
	for i := 0; i < 3; i++ {
		_, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
		s.Require().NoError(err)
		if i < 2 {
			// the owner reads the notification between toggles
			s.Require().NoError(s.db.Model(&models.Notification{}).Where("user_id = ?", "u2").Update("is_read", true).Error)
		}
	}

	likes := s.notificationsOf("u2", models.NotificationLike)
	s.Require().Len(likes, 1)
	s.False(likes[0].IsRead)
	s.Equal(1, s.reload().LikeCount)
}

func (s *ServiceTestSuite) TestLikingOwnPhotoNeverNotifies() {
	res, err := s.engagement.ToggleLike(s.ctx, "u2", s.photo.ID)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Equal(1, res.LikeCount)
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Notification{}, ""))
}

func (s *ServiceTestSuite) TestLikeCountTracksInsertsMinusDeletes() {
	for _, u := range []string{"u1", "u3", "u4", "u5"} {
		_, err := s.engagement.ToggleLike(s.ctx, u, s.photo.ID)
		s.Require().NoError(err)
	}
	for _, u := range []string{"u3", "u5"} {
		_, err := s.engagement.ToggleLike(s.ctx, u, s.photo.ID)
		s.Require().NoError(err)
	}
	s.Equal(2, s.reload().LikeCount)
}

func (s *ServiceTestSuite) TestLikeCreatesActorLazily() {
	_, err := s.engagement.ToggleLike(s.ctx, "fb-9f8e7d6c5b", s.photo.ID)
	s.Require().NoError(err)

	var u models.User
	s.Require().NoError(s.db.First(&u, "id = ?", "fb-9f8e7d6c5b").Error)
	s.Equal("user_fb9f8e7d", u.Username)
	s.Equal("Dana Doe", u.Name)
	s.Equal("dana@example.com", u.Email)
}

func (s *ServiceTestSuite) TestDuplicateLikeRowIsNotCounted() {
	// A like that slipped in from a concurrent request: the toggle must see it as
	// existing and remove it instead of inserting a second row.
	s.Require().NoError(s.db.Create(&models.Like{UserID: "u1", PhotoID: s.photo.ID}).Error)

	res, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	s.False(res.Liked)
	s.Equal(0, res.LikeCount)
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Like{}, ""))
}

func (s *ServiceTestSuite) TestLikeErrors() {
	_, err := s.engagement.ToggleLike(s.ctx, "", s.photo.ID)
	s.requireCode(err, apperrors.ErrUnauthorized)

	_, err = s.engagement.ToggleLike(s.ctx, "u1", "")
	s.requireCode(err, apperrors.ErrValidation)

	_, err = s.engagement.ToggleLike(s.ctx, "u1", "missing")
	s.requireCode(err, apperrors.ErrNotFound)
}

func (s *ServiceTestSuite) TestNotificationFailureDoesNotBlockLike() {
	testutil.DropNotifications(s.T(), s.db)

	res, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Equal(1, s.reload().LikeCount)
	s.EqualValues(1, testutil.Count(s.T(), s.db, &models.Like{}, ""))
	s.Equal(1, s.logs.FilterMessage("notification side effect failed").Len())
}

// Comments and replies

func (s *ServiceTestSuite) TestCommentNotifiesOwner() {
	res, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "  nice shot ")
	s.Require().NoError(err)
	s.Equal("nice shot", res.Comment.Text)
	s.Equal(1, res.CommentCount)
	s.Require().NotNil(res.Comment.User)
	s.Equal("u1", res.Comment.User.Username)
	s.Equal(1, s.reload().CommentCount)

	comments := s.notificationsOf("u2", models.NotificationComment)
	s.Require().Len(comments, 1)
	s.Equal("u1 commented on your photo: nice shot", comments[0].Message)
	s.Equal(res.Comment.ID, *comments[0].CommentID)
}

func (s *ServiceTestSuite) TestCommentValidation() {
	_, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "   ")
	s.requireCode(err, apperrors.ErrValidation)

	_, err = s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, strings.Repeat("a", MaxCommentRunes+1))
	s.requireCode(err, apperrors.ErrValidation)

	_, err = s.engagement.CreateComment(s.ctx, "u1", "missing", "hello")
	s.requireCode(err, apperrors.ErrNotFound)

	_, err = s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, strings.Repeat("é", MaxCommentRunes))
	s.NoError(err)
}

func (s *ServiceTestSuite) TestReplyNotifiesCommentAuthor() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)

	reply, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "agreed")
	s.Require().NoError(err)
	s.Equal(2, reply.CommentCount)
	s.Equal(s.photo.ID, reply.Comment.PhotoID)
	s.Require().NotNil(reply.Comment.ParentID)
	s.Equal(comment.Comment.ID, *reply.Comment.ParentID)

	replies := s.notificationsOf("u1", models.NotificationReply)
	s.Require().Len(replies, 1)
	s.Equal("u3", replies[0].ActionUserID)
	s.Equal(reply.Comment.ID, *replies[0].CommentID)
	s.Empty(s.notificationsOf("u2", models.NotificationReply))
}

// Each reply carries its own comment id, so repeated replies are never merged.
func (s *ServiceTestSuite) TestEachReplyGetsItsOwnNotification() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)

	first, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "agreed")
	s.Require().NoError(err)
	second, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "still agreed")
	s.Require().NoError(err)

	replies := s.notificationsOf("u1", models.NotificationReply)
	s.Require().Len(replies, 2)
	ids := []string{*replies[0].CommentID, *replies[1].CommentID}
	s.ElementsMatch([]string{first.Comment.ID, second.Comment.ID}, ids)

	_, err = s.engagement.DeleteReply(s.ctx, "u3", comment.Comment.ID, first.Comment.ID)
	s.Require().NoError(err)
	replies = s.notificationsOf("u1", models.NotificationReply)
	s.Require().Len(replies, 1)
	s.Equal(second.Comment.ID, *replies[0].CommentID)
}

func (s *ServiceTestSuite) TestReplyToReplyIsRejected() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	reply, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "agreed")
	s.Require().NoError(err)

	_, err = s.engagement.CreateReply(s.ctx, "u1", reply.Comment.ID, "thanks")
	s.requireCode(err, apperrors.ErrBadRequest)

	_, err = s.engagement.CreateReply(s.ctx, "u1", "missing", "thanks")
	s.requireCode(err, apperrors.ErrNotFound)
}

func (s *ServiceTestSuite) TestMentionsNotifyOtherUsers() {
	testutil.CreateUser(s.T(), s.db, "carla")
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", "u1").Update("username", "annie").Error)
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", "u2").Update("username", "harbour").Error)

	res, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "@Carla look at this, @harbour and @nobody and @annie")
	s.Require().NoError(err)

	mentions := s.notificationsOf("carla", models.NotificationMention)
	s.Require().Len(mentions, 1)
	s.Equal(res.Comment.ID, *mentions[0].CommentID)
	s.Equal(s.photo.ID, *mentions[0].PhotoID)
	s.Equal("annie mentioned you in a comment", mentions[0].Message)

	s.Empty(s.notificationsOf("u2", models.NotificationMention), "the owner already gets a comment notification")
	s.Empty(s.notificationsOf("u1", models.NotificationMention))

	_, err = s.engagement.DeleteComment(s.ctx, "u1", res.Comment.ID)
	s.Require().NoError(err)
	s.Empty(s.notificationsOf("carla", models.NotificationMention))
}

func (s *ServiceTestSuite) TestDeleteCommentCascadesReplies() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	for _, u := range []string{"u3", "u2", "u3"} {
		_, err := s.engagement.CreateReply(s.ctx, u, comment.Comment.ID, "reply from "+u)
		s.Require().NoError(err)
	}
	other, err := s.engagement.CreateComment(s.ctx, "u3", s.photo.ID, "second")
	s.Require().NoError(err)
	s.Equal(5, s.reload().CommentCount)

	res, err := s.engagement.DeleteComment(s.ctx, "u1", comment.Comment.ID)
	s.Require().NoError(err)
	s.EqualValues(4, res.DeletedCount)
	s.Equal(1, res.CommentCount)
	s.Equal(1, s.reload().CommentCount)
	s.EqualValues(1, testutil.Count(s.T(), s.db, &models.Comment{}, ""))
	s.EqualValues(1, testutil.Count(s.T(), s.db, &models.Comment{}, "id = ?", other.Comment.ID))

	s.Empty(s.notificationsOf("u1", models.NotificationReply))
}

func (s *ServiceTestSuite) TestDeleteCommentPermissions() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)

	_, err = s.engagement.DeleteComment(s.ctx, "u3", comment.Comment.ID)
	s.requireCode(err, apperrors.ErrForbidden)

	_, err = s.engagement.DeleteComment(s.ctx, "u2", comment.Comment.ID)
	s.NoError(err, "the photo owner may moderate")

	_, err = s.engagement.DeleteComment(s.ctx, "u2", comment.Comment.ID)
	s.requireCode(err, apperrors.ErrNotFound)
}

func (s *ServiceTestSuite) TestDeleteReplyRetractsOnlyItsNotification() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	first, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "one")
	s.Require().NoError(err)
	second, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "two")
	s.Require().NoError(err)
	s.Require().Len(s.notificationsOf("u1", models.NotificationReply), 2)

	res, err := s.engagement.DeleteReply(s.ctx, "u3", comment.Comment.ID, first.Comment.ID)
	s.Require().NoError(err)
	s.EqualValues(1, res.DeletedCount)
	s.Equal(2, res.CommentCount)

	left := s.notificationsOf("u1", models.NotificationReply)
	s.Require().Len(left, 1)
	s.Equal(second.Comment.ID, *left[0].CommentID)
	s.Len(s.notificationsOf("u2", models.NotificationComment), 1)
}

func (s *ServiceTestSuite) TestDeleteReplyRules() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	reply, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "one")
	s.Require().NoError(err)

	_, err = s.engagement.DeleteReply(s.ctx, "u1", "", comment.Comment.ID)
	s.requireCode(err, apperrors.ErrBadRequest)

	_, err = s.engagement.DeleteReply(s.ctx, "u1", "other-parent", reply.Comment.ID)
	s.requireCode(err, apperrors.ErrNotFound)

	testutil.CreateUser(s.T(), s.db, "u9")
	_, err = s.engagement.DeleteReply(s.ctx, "u9", "", reply.Comment.ID)
	s.requireCode(err, apperrors.ErrForbidden)

	_, err = s.engagement.DeleteReply(s.ctx, "u1", comment.Comment.ID, reply.Comment.ID)
	s.NoError(err, "the parent comment author may remove replies")
	s.Equal(1, s.reload().CommentCount)
}

func (s *ServiceTestSuite) TestDeleteCommentWithReplyIDDeletesOnlyTheReply() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	reply, err := s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "one")
	s.Require().NoError(err)

	res, err := s.engagement.DeleteComment(s.ctx, "u3", reply.Comment.ID)
	s.Require().NoError(err)
	s.EqualValues(1, res.DeletedCount)
	s.EqualValues(1, testutil.Count(s.T(), s.db, &models.Comment{}, "id = ?", comment.Comment.ID))
}

// Follows

func (s *ServiceTestSuite) TestFollowAndUnfollow() {
	res, err := s.follows.Follow(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	s.True(res.Following)
	s.EqualValues(1, res.FollowersCount)
	s.True(s.follows.IsFollowing(s.ctx, "u1", "u2"))

	follows := s.notificationsOf("u2", models.NotificationFollow)
	s.Require().Len(follows, 1)
	s.Equal("u1 started following you", follows[0].Message)
	s.Nil(follows[0].PhotoID)

	res, err = s.follows.Unfollow(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	s.False(res.Following)
	s.EqualValues(0, res.FollowersCount)
	s.Empty(s.notificationsOf("u2", models.NotificationFollow))
}

func (s *ServiceTestSuite) TestFollowConflicts() {
	_, err := s.follows.Follow(s.ctx, "u1", "u2")
	s.Require().NoError(err)

	_, err = s.follows.Follow(s.ctx, "u1", "u2")
	s.requireCode(err, apperrors.ErrConflict)
	s.EqualValues(1, testutil.Count(s.T(), s.db, &models.Follow{}, ""))

	_, err = s.follows.Unfollow(s.ctx, "u3", "u2")
	s.requireCode(err, apperrors.ErrConflict)

	_, err = s.follows.Follow(s.ctx, "u1", "u1")
	s.requireCode(err, apperrors.ErrConflict)

	_, err = s.follows.Follow(s.ctx, "u1", "ghost")
	s.requireCode(err, apperrors.ErrNotFound)

	_, err = s.follows.Follow(s.ctx, "u1", "")
	s.requireCode(err, apperrors.ErrValidation)
}

func (s *ServiceTestSuite) TestConflictsRenderAsBadRequest() {
	_, err := s.follows.Unfollow(s.ctx, "u1", "u2")
	var apiErr *apperrors.APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(400, apiErr.Status)
	s.Equal("not following this user", apiErr.Message)
}

// Users

func (s *ServiceTestSuite) TestUpdateProfile() {
	name, username, private := "Ann", "ann.photo", true
	u, err := s.users.UpdateProfile(s.ctx, "u1", models.UpdateProfileRequest{Name: &name, Username: &username, IsPrivate: &private})
	s.Require().NoError(err)
	s.Equal("ann.photo", u.Username)
	s.True(u.IsPrivate)

	taken := "ANN.PHOTO"
	_, err = s.users.UpdateProfile(s.ctx, "u3", models.UpdateProfileRequest{Username: &taken})
	s.requireCode(err, apperrors.ErrConflict)

	// keeping your own username is not a conflict
	same := "ann.photo"
	_, err = s.users.UpdateProfile(s.ctx, "u1", models.UpdateProfileRequest{Username: &same})
	s.Require().NoError(err)

	bad := "no spaces allowed"
	_, err = s.users.UpdateProfile(s.ctx, "u3", models.UpdateProfileRequest{Username: &bad})
	s.requireCode(err, apperrors.ErrValidation)
}

func (s *ServiceTestSuite) TestPlaceholderUsernameCollisionGetsSuffix() {
	testutil.CreateUser(s.T(), s.db, "user_abcdefgh")

	u, err := s.users.EnsureUser(s.ctx, s.db, "ABCDEFGH-second")
	s.Require().NoError(err)
	s.Equal("user_abcdefgh2", u.Username)

	again, err := s.users.EnsureUser(s.ctx, s.db, "ABCDEFGH-second")
	s.Require().NoError(err)
	s.Equal(u.Username, again.Username)
}

func (s *ServiceTestSuite) TestGetProfileCounts() {
	_, err := s.follows.Follow(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, "u2", "u3")
	s.Require().NoError(err)

	p, err := s.users.GetProfile(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	s.EqualValues(1, p.FollowersCount)
	s.EqualValues(1, p.FollowingCount)
	s.EqualValues(1, p.PhotosCount)
	s.True(p.IsFollowing)

	_, err = s.users.GetProfile(s.ctx, "u1", "ghost")
	s.requireCode(err, apperrors.ErrNotFound)
}

func (s *ServiceTestSuite) TestSyncUserEvents() {
	err := s.users.SyncUser(s.ctx, models.AuthEvent{
		Type: models.AuthEventUserCreated,
		User: models.Identity{ID: "new-user-1", Name: "Nia", Username: "nia", Email: "nia@example.com"},
	})
	s.Require().NoError(err)

	err = s.users.SyncUser(s.ctx, models.AuthEvent{
		Type: models.AuthEventUserUpdated,
		User: models.Identity{ID: "new-user-1", Name: "Nia K"},
	})
	s.Require().NoError(err)

	var u models.User
	s.Require().NoError(s.db.First(&u, "id = ?", "new-user-1").Error)
	s.Equal("nia", u.Username)
	s.Equal("Nia K", u.Name)

	err = s.users.SyncUser(s.ctx, models.AuthEvent{Type: "user.renamed", User: models.Identity{ID: "new-user-1"}})
	s.requireCode(err, apperrors.ErrBadRequest)
}

func (s *ServiceTestSuite) TestDeleteUserCascadesAndRecounts() {
	mine := testutil.CreatePhoto(s.T(), s.db, "u1", "mine")
	_, err := s.engagement.ToggleLike(s.ctx, "u3", mine.ID)
	s.Require().NoError(err)

	_, err = s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	_, err = s.engagement.CreateReply(s.ctx, "u3", comment.Comment.ID, "agreed")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	_, err = s.follows.Follow(s.ctx, "u3", "u1")
	s.Require().NoError(err)

	err = s.users.SyncUser(s.ctx, models.AuthEvent{Type: models.AuthEventUserDeleted, User: models.Identity{ID: "u1"}})
	s.Require().NoError(err)

	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.User{}, "id = ?", "u1"))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Photo{}, "id = ?", mine.ID))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Like{}, ""))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Comment{}, ""))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Follow{}, ""))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Notification{}, ""))

	p := s.reload()
	s.Equal(0, p.LikeCount)
	s.Equal(0, p.CommentCount)
}

// Counters

func (s *ServiceTestSuite) TestRecountRepairsDrift() {
	_, err := s.engagement.ToggleLike(s.ctx, "u1", s.photo.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Photo{}).Where("id = ?", s.photo.ID).
		UpdateColumns(map[string]any{"like_count": 7, "comment_count": 3}).Error)

	c, err := s.counters.Recount(s.ctx, s.photo.ID)
	s.Require().NoError(err)
	s.True(c.Changed)
	s.EqualValues(1, c.LikeCount)
	s.EqualValues(0, c.CommentCount)

	changed, err := s.counters.RecountAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, changed)

	_, err = s.counters.Recount(s.ctx, "missing")
	s.requireCode(err, apperrors.ErrNotFound)
}

func (s *ServiceTestSuite) TestCommentCounterNeverGoesNegative() {
	comment, err := s.engagement.CreateComment(s.ctx, "u1", s.photo.ID, "nice shot")
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Photo{}).Where("id = ?", s.photo.ID).UpdateColumn("comment_count", 0).Error)

	res, err := s.engagement.DeleteComment(s.ctx, "u1", comment.Comment.ID)
	s.Require().NoError(err)
	s.Equal(0, res.CommentCount)
}

// Photos

func (s *ServiceTestSuite) TestUploadUpdateDelete() {
	body := []byte("\x89PNG fake image bytes")
	photo, err := s.photos.Upload(s.ctx, "u1", Upload{
		Filename:    "sunset.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}, models.PhotoMeta{Title: " Sunset ", Tags: []string{"#Sky", "sky", " sea "}})
	s.Require().NoError(err)
	s.Equal("Sunset", photo.Title)
	s.Equal([]string{"sky", "sea"}, []string(photo.Tags))
	s.True(strings.HasPrefix(photo.URL, "https://img.test/photos/u1/"))
	s.Len(s.store.objects, 1)

	_, err = s.photos.Update(s.ctx, "u3", photo.ID, models.PhotoMeta{Title: "mine now"})
	s.requireCode(err, apperrors.ErrForbidden)

	updated, err := s.photos.Update(s.ctx, "u1", photo.ID, models.PhotoMeta{Title: "Sunset II"})
	s.Require().NoError(err)
	s.Equal("Sunset II", updated.Title)

	_, err = s.engagement.ToggleLike(s.ctx, "u3", photo.ID)
	s.Require().NoError(err)
	_, err = s.engagement.CreateComment(s.ctx, "u3", photo.ID, "wow")
	s.Require().NoError(err)

	s.requireCode(s.photos.Delete(s.ctx, "u3", photo.ID), apperrors.ErrForbidden)
	s.Require().NoError(s.photos.Delete(s.ctx, "u1", photo.ID))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Photo{}, "id = ?", photo.ID))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Like{}, "photo_id = ?", photo.ID))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Comment{}, "photo_id = ?", photo.ID))
	s.EqualValues(0, testutil.Count(s.T(), s.db, &models.Notification{}, "photo_id = ?", photo.ID))
}

func (s *ServiceTestSuite) TestUploadRejectsBadFiles() {
	_, err := s.photos.Upload(s.ctx, "u1", Upload{Filename: "a.txt", ContentType: "text/plain", Size: 3, Body: strings.NewReader("abc")}, models.PhotoMeta{})
	s.requireCode(err, apperrors.ErrValidation)

	big := bytes.Repeat([]byte("x"), 2048)
	_, err = s.photos.Upload(s.ctx, "u1", Upload{Filename: "a.jpg", ContentType: "image/jpeg", Size: int64(len(big)), Body: bytes.NewReader(big)}, models.PhotoMeta{})
	s.requireCode(err, apperrors.ErrValidation)

	s.store.failPut = true
	_, err = s.photos.Upload(s.ctx, "u1", Upload{Filename: "a.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("abc")}, models.PhotoMeta{})
	s.requireCode(err, apperrors.ErrInternal)
	s.Empty(s.store.objects)
}

func TestPlaceholderUsername(t *testing.T) {
	cases := map[string]string{
		"u1":                           "user_u1",
		"Xy9-Long-Firebase-Identifier": "user_xy9longf",
	}
	for id, want := range cases {
		if got := PlaceholderUsername(id); got != want {
			t.Errorf("PlaceholderUsername(%q) = %q, want %q", id, got, want)
		}
	}
}
