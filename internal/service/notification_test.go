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

func TestNotificationService_MarkRead_Success(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 0)

	ctx := context.Background()
	n := &domain.Notification{ID: 5, UserID: 7, Type: domain.NotificationTypeMention}
	repo.On("FindByID", ctx, uint(5)).Return(n, nil).Once()
	repo.On("Save", ctx, n).Return(nil).Once()

	marked, err := svc.MarkRead(ctx, 5, 7)

	require.NoError(t, err)
	assert.True(t, marked)
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_WrongOwner(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 0)

	ctx := context.Background()
	n := &domain.Notification{ID: 5, UserID: 7}
	repo.On("FindByID", ctx, uint(5)).Return(n, nil).Once()

	marked, err := svc.MarkRead(ctx, 5, 99)

	require.NoError(t, err, "someone else's notification is a silent no-op")
	assert.False(t, marked)
	assert.False(t, n.IsRead)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkRead_UnknownID(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 0)

	ctx := context.Background()
	repo.On("FindByID", ctx, uint(404)).Return(nil, repository.ErrNotificationNotFound).Once()

	_, err := svc.MarkRead(ctx, 404, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotificationNotFound))
}

func TestNotificationService_MarkRead_AlreadyReadIsNoOp(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 0)

	ctx := context.Background()
	readAt := time.Now().Add(-time.Hour)
	n := &domain.Notification{ID: 5, UserID: 7, IsRead: true, ReadAt: &readAt}
	repo.On("FindByID", ctx, uint(5)).Return(n, nil).Once()

	marked, err := svc.MarkRead(ctx, 5, 7)

	require.NoError(t, err)
	assert.True(t, marked)
	assert.Equal(t, readAt, *n.ReadAt, "read timestamp must not move")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNotificationService_Create_Validation(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 0)

	_, err := svc.Create(context.Background(), &domain.Notification{Type: domain.NotificationTypeSystem})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = svc.Create(context.Background(), &domain.Notification{UserID: 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestNotificationService_CleanupExpired(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := service.NewNotificationService(repo, newFakeRegistry(), 24*time.Hour)

	repo.On("DeleteReadBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// Cutoff should sit roughly one retention window in the past.
		return time.Since(cutoff) > 23*time.Hour && time.Since(cutoff) < 25*time.Hour
	})).Return(int64(3), nil).Once()

	removed, err := svc.CleanupExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	repo.AssertExpectations(t)
}
