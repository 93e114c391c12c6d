package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
	"realtime-chat/internal/repository/mocks"
	"realtime-chat/internal/service"
)

func newMessageService(
	messageRepo *mocks.MessageRepository,
	roomRepo *mocks.RoomRepository,
	memberRepo *mocks.MembershipRepository,
	userRepo *mocks.UserRepository,
	notificationRepo *mocks.NotificationRepository,
	registry *fakeRegistry,
) *service.MessageService {
	notifications := service.NewNotificationService(notificationRepo, registry, 0)
	return service.NewMessageService(messageRepo, roomRepo, memberRepo, userRepo, notifications, registry, nil, 0)
}

func TestMessageService_Send_Success(t *testing.T) {
	// Arrange
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	room := &domain.Room{ID: 1, Name: "general", Type: domain.RoomTypePublic}
	roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	memberRepo.On("Find", ctx, uint(1), uint(7)).Return(&domain.RoomMembership{RoomID: 1, UserID: 7}, nil).Once()
	messageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Message).ID = 42
		}).
		Return(nil).Once()
	roomRepo.On("TouchActivity", ctx, uint(1), mock.AnythingOfType("time.Time")).Return(nil).Once()

	// Act
	msg, err := svc.Send(ctx, service.SendInput{RoomID: 1, SenderID: 7, Content: "  hello world  "})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, uint(42), msg.ID)
	assert.Equal(t, "hello world", msg.Content, "content should be trimmed")
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.False(t, msg.SentAt.IsZero())

	require.Len(t, registry.roomBroadcasts, 1)
	payload := decodePayload(registry.roomBroadcasts[0].payload)
	assert.Equal(t, "new_message", payload["type"])
	assert.Equal(t, "hello world", payload["content"])

	messageRepo.AssertExpectations(t)
	roomRepo.AssertExpectations(t)
	memberRepo.AssertExpectations(t)
}

func TestMessageService_Send_Validation(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())
	ctx := context.Background()

	cases := []struct {
		name  string
		input service.SendInput
	}{
		{"empty content", service.SendInput{RoomID: 1, SenderID: 7, Content: ""}},
		{"whitespace only", service.SendInput{RoomID: 1, SenderID: 7, Content: "   \n\t "}},
		{"unknown type", service.SendInput{RoomID: 1, SenderID: 7, Content: "hi", Type: "gif"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrValidation))
		})
	}
	messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMessageService_Send_NonMemberDenied(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	roomRepo.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1}, nil).Once()
	memberRepo.On("Find", ctx, uint(1), uint(9)).Return(nil, repository.ErrMembershipNotFound).Once()

	_, err := svc.Send(ctx, service.SendInput{RoomID: 1, SenderID: 9, Content: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAccessDenied))
	assert.Empty(t, registry.roomBroadcasts, "nothing should be broadcast on a rejected send")
	messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMessageService_Send_ArchivedRoomRejected(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	roomRepo.On("FindByID", ctx, uint(3)).Return(&domain.Room{ID: 3, Archived: true}, nil).Once()

	_, err := svc.Send(ctx, service.SendInput{RoomID: 3, SenderID: 7, Content: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomArchived))
}

func TestMessageService_Send_MentionFanOut(t *testing.T) {
	// Alice sends "@bob @carol @alice hi"; bob is a member, carol is not,
	// alice mentions herself. Only bob gets a notification.
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	const aliceID, bobID, carolID = 1, 2, 3
	room := &domain.Room{ID: 10, Name: "general"}

	roomRepo.On("FindByID", ctx, uint(10)).Return(room, nil).Once()
	memberRepo.On("Find", ctx, uint(10), uint(aliceID)).Return(&domain.RoomMembership{RoomID: 10, UserID: aliceID}, nil).Once()
	messageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Message).ID = 100 }).
		Return(nil).Once()
	roomRepo.On("TouchActivity", ctx, uint(10), mock.AnythingOfType("time.Time")).Return(nil).Once()

	userRepo.On("FindByUsername", ctx, "bob").Return(&domain.User{ID: bobID, Username: "bob"}, nil).Once()
	userRepo.On("FindByUsername", ctx, "carol").Return(&domain.User{ID: carolID, Username: "carol"}, nil).Once()
	userRepo.On("FindByUsername", ctx, "alice").Return(&domain.User{ID: aliceID, Username: "alice"}, nil).Once()

	memberRepo.On("Find", ctx, uint(10), uint(bobID)).Return(&domain.RoomMembership{RoomID: 10, UserID: bobID}, nil).Once()
	memberRepo.On("Find", ctx, uint(10), uint(carolID)).Return(nil, repository.ErrMembershipNotFound).Once()

	notificationRepo.On("Save", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == bobID && n.Type == domain.NotificationTypeMention
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Notification).ID = 55
	}).Return(nil).Once()

	_, err := svc.Send(ctx, service.SendInput{RoomID: 10, SenderID: aliceID, Content: "@bob @carol @alice hi"})

	require.NoError(t, err)
	notificationRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)

	// Bob also gets a live push on his own connections.
	require.Len(t, registry.userSends, 1)
	assert.Equal(t, uint(bobID), registry.userSends[0].userID)
	pushed := decodePayload(registry.userSends[0].payload)
	assert.Equal(t, "notification", pushed["type"])
}

func TestMessageService_Edit_OnlySender(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, Content: "original", SentAt: time.Now()}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()

	_, err := svc.Edit(ctx, 5, 8, "hacked")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrForbidden))
	messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMessageService_Edit_StampsEditedAt(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, Content: "original", SentAt: time.Now()}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()
	messageRepo.On("Save", ctx, msg).Return(nil).Once()

	edited, err := svc.Edit(ctx, 5, 7, "updated")

	require.NoError(t, err)
	assert.Equal(t, "updated", edited.Content)
	require.NotNil(t, edited.EditedAt)

	require.Len(t, registry.roomBroadcasts, 1)
	assert.Equal(t, "message_edited", decodePayload(registry.roomBroadcasts[0].payload)["type"])
}

func TestMessageService_Delete_SoftDeleteAndTombstone(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, Content: "secret stuff", SentAt: time.Now()}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()
	messageRepo.On("Save", ctx, msg).Return(nil).Once()

	deleted, err := svc.Delete(ctx, 5, 7)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, msg.IsDeleted)
	assert.Equal(t, "secret stuff", msg.Content, "soft delete keeps the row content")

	// The broadcast carries only identifiers, never the content.
	require.Len(t, registry.roomBroadcasts, 1)
	payload := decodePayload(registry.roomBroadcasts[0].payload)
	assert.Equal(t, "message_deleted", payload["type"])
	assert.Equal(t, float64(5), payload["message_id"])
	assert.NotContains(t, payload, "content")
}

func TestMessageService_Delete_SecondDeleteIsNoOp(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	now := time.Now()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, IsDeleted: true, DeletedAt: &now, SentAt: now}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()

	deleted, err := svc.Delete(ctx, 5, 7)

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, registry.roomBroadcasts)
	messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMessageService_Delete_ModeratorMayDeleteOthers(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, Content: "spam", SentAt: time.Now()}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Twice()

	// A plain member may not delete someone else's message.
	memberRepo.On("Find", ctx, uint(1), uint(8)).Return(&domain.RoomMembership{RoomID: 1, UserID: 8, Role: domain.RoomRoleMember}, nil).Once()
	_, err := svc.Delete(ctx, 5, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrForbidden))

	// A moderator may.
	memberRepo.On("Find", ctx, uint(1), uint(9)).Return(&domain.RoomMembership{RoomID: 1, UserID: 9, Role: domain.RoomRoleModerator}, nil).Once()
	messageRepo.On("Save", ctx, msg).Return(nil).Once()
	deleted, err := svc.Delete(ctx, 5, 9)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NotNil(t, msg.DeletedBy)
	assert.Equal(t, uint(9), *msg.DeletedBy)
}

func TestMessageService_EditAfterDelete_ReportsNotFound(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	now := time.Now()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, IsDeleted: true, DeletedAt: &now, SentAt: now}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()

	_, err := svc.Edit(ctx, 5, 7, "resurrect")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMessageNotFound))
}

func TestMessageService_Get_ReturnsSoftDeleted(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	now := time.Now()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, IsDeleted: true, DeletedAt: &now, SentAt: now}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil).Once()

	got, err := svc.Get(ctx, 5)

	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, uint(5), got.ID)
}

func TestMessageService_Reactions_IdempotentRoundTrip(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	registry := newFakeRegistry()
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, registry)

	ctx := context.Background()
	msg := &domain.Message{ID: 5, RoomID: 1, SenderID: 7, Content: "hi", SentAt: time.Now(), Reactions: domain.ReactionMap{}}
	messageRepo.On("FindByID", ctx, uint(5)).Return(msg, nil)
	memberRepo.On("Find", ctx, uint(1), uint(8)).Return(&domain.RoomMembership{RoomID: 1, UserID: 8}, nil)
	messageRepo.On("Save", ctx, msg).Return(nil)

	// First add changes state and broadcasts.
	out, err := svc.AddReaction(ctx, 5, "👍", 8)
	require.NoError(t, err)
	assert.Equal(t, []uint{8}, out.Reactions["👍"])
	assert.Len(t, registry.roomBroadcasts, 1)

	// Second add is a no-op: no new broadcast.
	_, err = svc.AddReaction(ctx, 5, "👍", 8)
	require.NoError(t, err)
	assert.Len(t, registry.roomBroadcasts, 1)

	// Remove prunes the emoji key entirely.
	out, err = svc.RemoveReaction(ctx, 5, "👍", 8)
	require.NoError(t, err)
	assert.NotContains(t, out.Reactions, "👍")
	assert.Len(t, registry.roomBroadcasts, 2)

	// Removing again changes nothing.
	_, err = svc.RemoveReaction(ctx, 5, "👍", 8)
	require.NoError(t, err)
	assert.Len(t, registry.roomBroadcasts, 2)
}

func TestMessageService_List_NonMemberGetsEmptyPage(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	memberRepo.On("Find", ctx, uint(1), uint(9)).Return(nil, repository.ErrMembershipNotFound).Once()

	msgs, err := svc.List(ctx, 1, 9, repository.MessageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, msgs)
	messageRepo.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageService_List_ChronologicalOrder(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	base := time.Now()
	// Repository order: newest first.
	stored := []domain.Message{
		{ID: 3, RoomID: 1, SentAt: base.Add(2 * time.Second)},
		{ID: 2, RoomID: 1, SentAt: base.Add(time.Second)},
		{ID: 1, RoomID: 1, SentAt: base},
	}
	memberRepo.On("Find", ctx, uint(1), uint(7)).Return(&domain.RoomMembership{RoomID: 1, UserID: 7}, nil).Once()
	messageRepo.On("ListByRoom", ctx, uint(1), mock.AnythingOfType("repository.MessageQuery")).Return(stored, nil).Once()

	msgs, err := svc.List(ctx, 1, 7, repository.MessageQuery{Limit: 10})

	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, uint(1), msgs[0].ID)
	assert.Equal(t, uint(2), msgs[1].ID)
	assert.Equal(t, uint(3), msgs[2].ID)
}

func TestMessageService_Search_RestrictedToMemberRooms(t *testing.T) {
	messageRepo := new(mocks.MessageRepository)
	roomRepo := new(mocks.RoomRepository)
	memberRepo := new(mocks.MembershipRepository)
	userRepo := new(mocks.UserRepository)
	notificationRepo := new(mocks.NotificationRepository)
	svc := newMessageService(messageRepo, roomRepo, memberRepo, userRepo, notificationRepo, newFakeRegistry())

	ctx := context.Background()
	memberRepo.On("RoomIDsForUser", ctx, uint(7)).Return([]uint{1, 2}, nil)

	// Scoped to a room the user is not in: empty result, no query issued.
	msgs, err := svc.Search(ctx, "hello", 7, 99, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	messageRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Scoped to a member room: only that room is searched.
	messageRepo.On("Search", ctx, "hello", []uint{2}, 10, 0).Return([]domain.Message{{ID: 8, RoomID: 2}}, nil).Once()
	msgs, err = svc.Search(ctx, "hello", 7, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, uint(8), msgs[0].ID)
}
