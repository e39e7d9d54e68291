package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, userUID string, req models.DummySubscribe) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, req)
	entry, _ := args.Get(0).(*models.Subscription)
	return entry, args.Error(1)
}

func newRequest(t *testing.T, body map[string]any, userUID string) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(raw))
	if userUID != "" {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, userUID)
		req = req.WithContext(ctx)
	}
	return req
}

func validBody() map[string]any {
	return map[string]any{
		"tier": "tier2",
		"payment_method": map[string]any{
			"card_number":     "4242424242424242",
			"cardholder_name": "IVAN PETROV",
			"expiry_month":    "09",
			"expiry_year":     "2028",
			"cvc":             "123",
		},
	}
}

func TestSubscribe_Success(t *testing.T) {
	service := new(ServiceMock)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	service.On("Subscribe", mock.Anything, "user-1", mock.MatchedBy(func(req models.DummySubscribe) bool {
		return req.Tier == "tier2" && req.PaymentMethod.CardNumber == "4242424242424242"
	})).Return(&models.Subscription{
		UID:             "sub-1",
		OrderID:         "ORD-2025-001",
		Tier:            "tier2",
		Status:          models.StatusCompleted,
		StartedAt:       started,
		DurationDays:    90,
		CardholderName:  "IVAN PETROV",
		CardExpiryMonth: "09",
		CardExpiryYear:  "2028",
	}, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(t, validBody(), "user-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ORD-2025-001")
	assert.Contains(t, rr.Body.String(), "IVAN PETROV 09/2028")
	service.AssertExpectations(t)
}

func TestSubscribe_ResponseNeverContainsCardSecrets(t *testing.T) {
	service := new(ServiceMock)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	service.On("Subscribe", mock.Anything, "user-1", mock.Anything).
		Return(&models.Subscription{UID: "sub-1", OrderID: "ORD-2025-001"}, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(t, validBody(), "user-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "4242424242424242")
	assert.NotContains(t, rr.Body.String(), "123")
}

func TestSubscribe_LogsOnlyMaskedPayment(t *testing.T) {
	service := new(ServiceMock)
	var logBuf bytes.Buffer
	handler := New(slog.New(slog.NewTextHandler(&logBuf, nil)), service)

	service.On("Subscribe", mock.Anything, "user-1", mock.Anything).
		Return(&models.Subscription{UID: "sub-1", OrderID: "ORD-2025-001"}, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(t, validBody(), "user-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	logs := logBuf.String()
	assert.NotContains(t, logs, "4242424242424242")
	assert.Contains(t, logs, "IVAN PETROV 09/2028")
}

func TestSubscribe_InvalidJSON(t *testing.T) {
	service := new(ServiceMock)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader("{broken"))
	req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "user-1"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribe_ValidationListsFieldsWithoutValues(t *testing.T) {
	service := new(ServiceMock)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	body := validBody()
	body["tier"] = "gold"
	payment := body["payment_method"].(map[string]any)
	payment["card_number"] = "42424242"
	payment["cvc"] = "12"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(t, body, "user-1"))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	out := rr.Body.String()
	assert.Contains(t, out, "Tier")
	assert.Contains(t, out, "CardNumber")
	assert.Contains(t, out, "CVC")
	assert.NotContains(t, out, "42424242")
	assert.NotContains(t, out, "gold")
	service.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribe_MissingIdentity(t *testing.T) {
	service := new(ServiceMock)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(t, validBody(), ""))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSubscribe_ServiceErrorsMapped(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"plan not found", apperr.ErrPlanNotFound, http.StatusNotFound, "not_found"},
		{"forbidden role", apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"sequence exhausted", apperr.ErrSequenceExhausted, http.StatusConflict, "sequence_generation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := new(ServiceMock)
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)
			service.On("Subscribe", mock.Anything, "user-1", mock.Anything).Return(nil, tc.serviceErr)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest(t, validBody(), "user-1"))

			require.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantCode)
		})
	}
}
