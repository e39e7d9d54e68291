package response

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
)

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "пользователь не найден", err: apperr.ErrUserNotFound, wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "план не найден", err: apperr.ErrPlanNotFound, wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "роль не допускает операцию", err: apperr.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: CodeForbidden},
		{name: "ошибка валидации", err: apperr.ErrValidation, wantStatus: http.StatusUnprocessableEntity, wantCode: CodeValidation},
		{name: "повторная отмена", err: apperr.ErrNoActiveSubscription, wantStatus: http.StatusConflict, wantCode: CodeConflict},
		{name: "исчерпаны попытки резервирования", err: apperr.ErrSequenceExhausted, wantStatus: http.StatusConflict, wantCode: CodeSequence},
		{name: "прочая ошибка", err: fmt.Errorf("db down"), wantStatus: http.StatusInternalServerError, wantCode: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromAppError(fmt.Errorf("op: %w", tt.err))
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestFromAppError_HidesInternals(t *testing.T) {
	status, resp := FromAppError(fmt.Errorf("storage.CreateSubscription: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestValidationError_ListsEveryViolatedField(t *testing.T) {
	type payment struct {
		CardNumber     string `validate:"required,len=16,numeric"`
		CardholderName string `validate:"required"`
		CVC            string `validate:"required,numeric,min=3,max=4"`
	}

	err := validator.New().Struct(payment{CardNumber: "123", CVC: "x"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Contains(t, resp.Error, "CardNumber")
	assert.Contains(t, resp.Error, "CardholderName")
	assert.Contains(t, resp.Error, "CVC")
	// Значения полей не должны попадать в текст ошибки.
	assert.NotContains(t, resp.Error, "123")
}
