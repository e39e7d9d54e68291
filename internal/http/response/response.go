// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков: успешных ответов, ошибок
// с машиночитаемым кодом вида и сообщений валидации.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/marketplace-backend/internal/apperr"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Code заполняется при ошибке машиночитаемым видом ошибки,
// чтобы клиент не разбирал текст сообщения.
type Response struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Code   string `json:"code" example:"validation"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Машиночитаемые коды видов ошибок.
const (
	CodeNotFound   = "not_found"
	CodeForbidden  = "forbidden"
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeSequence   = "sequence_generation"
	CodeInternal   = "internal"
)

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Code:   CodeInternal,
		Error:  msg,
	}
}

// FromAppError строит Response по доменной ошибке, заполняя
// машиночитаемый код, и возвращает подходящий HTTP-статус.
// Текст сообщения берётся из sentinel-ошибки, а не из обёрток,
// чтобы внутренние детали не утекали наружу.
func FromAppError(err error) (int, Response) {
	code, status, msg := classify(err)
	return status, Response{
		Status: StatusError,
		Code:   code,
		Error:  msg,
	}
}

func classify(err error) (string, int, string) {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		return CodeNotFound, http.StatusNotFound, apperr.ErrUserNotFound.Error()
	case errors.Is(err, apperr.ErrPlanNotFound):
		return CodeNotFound, http.StatusNotFound, apperr.ErrPlanNotFound.Error()
	case errors.Is(err, apperr.ErrSubscriptionNotFound):
		return CodeNotFound, http.StatusNotFound, apperr.ErrSubscriptionNotFound.Error()
	case errors.Is(err, apperr.ErrForbidden):
		return CodeForbidden, http.StatusForbidden, apperr.ErrForbidden.Error()
	case errors.Is(err, apperr.ErrValidation):
		return CodeValidation, http.StatusUnprocessableEntity, apperr.ErrValidation.Error()
	case errors.Is(err, apperr.ErrNoActiveSubscription):
		return CodeConflict, http.StatusConflict, apperr.ErrNoActiveSubscription.Error()
	case errors.Is(err, apperr.ErrSequenceExhausted):
		return CodeSequence, http.StatusConflict, apperr.ErrSequenceExhausted.Error()
	default:
		return CodeInternal, http.StatusInternalServerError, "internal server error"
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок
// валидации. Каждое нарушение превращается в человекочитаемый текст;
// значения полей в ответ не попадают — для платёжных реквизитов это
// обязательное условие.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has wrong length", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is below the allowed minimum", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has unsupported value", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Code:   CodeValidation,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
