// Package apperr определяет доменные ошибки сервиса подписок и квот.
//
// Ошибки являются sentinel-значениями и проверяются через errors.Is,
// что позволяет HTTP-слою программно определить вид ошибки и подобрать
// корректный статус ответа, не разбирая текст сообщения.
package apperr

import "errors"

var (
	// ErrUserNotFound — учётная запись не найдена в хранилище.
	ErrUserNotFound = errors.New("user not found")
	// ErrPlanNotFound — для пары (тип аккаунта, тариф) нет записи в каталоге планов.
	ErrPlanNotFound = errors.New("plan not found for account type and tier")
	// ErrSubscriptionNotFound — запись подписки не найдена.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrForbidden — роль пользователя не допускает операцию.
	ErrForbidden = errors.New("operation is not allowed for this role")
	// ErrValidation — входные данные не прошли бизнес-валидацию.
	ErrValidation = errors.New("validation failed")
	// ErrNoActiveSubscription — отмена без действующей подписки, в том числе повторная.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrSequenceExhausted — не удалось зарезервировать номер заказа за отведённое число попыток.
	ErrSequenceExhausted = errors.New("order id reservation retries exhausted")
)
