package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunityalert/backend/internal/domain"
)

// ---- GET /api/notifications -------------------------------------------------

func TestListNotifications_200(t *testing.T) {
	caller := residentUser()
	svc := &mockNotificationServicer{
		listScoped: func(_ context.Context, u *domain.User, _ domain.PaginationParams, _ domain.SortParams) ([]domain.Notification, int64, error) {
			require.NotNil(t, u)
			assert.Equal(t, caller.ID, u.ID)
			return []domain.Notification{notificationFixture(caller.ID)}, 1, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), caller)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestListNotifications_200_AnonymousEmptyPage(t *testing.T) {
	svc := &mockNotificationServicer{
		listScoped: func(_ context.Context, u *domain.User, _ domain.PaginationParams, _ domain.SortParams) ([]domain.Notification, int64, error) {
			assert.Nil(t, u)
			return []domain.Notification{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

// ---- GET /api/notifications/search ------------------------------------------

func TestSearchNotifications_200(t *testing.T) {
	var capturedQuery string
	svc := &mockNotificationServicer{
		searchScoped: func(_ context.Context, _ *domain.User, query string) ([]domain.Notification, error) {
			capturedQuery = query
			return nil, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/notifications/search?q=resolved", nil), adminUser())
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "resolved", capturedQuery)
	assert.Equal(t, "[]\n", rec.Body.String())
}

// ---- GET /api/notifications/user/{userID} -----------------------------------

func TestListUserNotifications_200_Self(t *testing.T) {
	caller := residentUser()
	svc := &mockNotificationServicer{
		byRecipient: func(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
			assert.Equal(t, caller.ID, userID)
			return []domain.Notification{notificationFixture(caller.ID)}, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/notifications/user/"+caller.ID.String(), nil), caller)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Notification
	decodeResponse(t, rec, &got)
	assert.Len(t, got, 1)
}

func TestListUserNotifications_200_AdminForAnyone(t *testing.T) {
	other := uuid.New()
	svc := &mockNotificationServicer{
		byRecipient: func(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
			assert.Equal(t, other, userID)
			return []domain.Notification{}, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/notifications/user/"+other.String(), nil), adminUser())
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListUserNotifications_403_OtherResident(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/notifications/user/"+uuid.NewString(), nil), residentUser())
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, &mockNotificationServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListUserNotifications_401_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/user/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, &mockNotificationServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- PUT /api/notifications/{id}/read ---------------------------------------

func TestMarkNotificationRead_200(t *testing.T) {
	caller := residentUser()
	note := notificationFixture(caller.ID)
	svc := &mockNotificationServicer{
		markAsRead: func(_ context.Context, u *domain.User, id uuid.UUID) (domain.Notification, error) {
			require.NotNil(t, u)
			assert.Equal(t, caller.ID, u.ID)
			assert.Equal(t, note.ID, id)
			note.Read = true
			return note, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/notifications/"+note.ID.String()+"/read", nil), caller)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Notification
	decodeResponse(t, rec, &got)
	assert.True(t, got.Read)
}

func TestMarkNotificationRead_403_NotRecipient(t *testing.T) {
	svc := &mockNotificationServicer{
		markAsRead: func(_ context.Context, _ *domain.User, _ uuid.UUID) (domain.Notification, error) {
			return domain.Notification{}, domain.ErrForbidden
		},
	}

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/notifications/"+uuid.NewString()+"/read", nil), residentUser())
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkNotificationRead_401_Anonymous(t *testing.T) {
	svc := &mockNotificationServicer{
		markAsRead: func(_ context.Context, u *domain.User, _ uuid.UUID) (domain.Notification, error) {
			assert.Nil(t, u)
			return domain.Notification{}, domain.ErrUnauthenticated
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/notifications/"+uuid.NewString()+"/read", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
