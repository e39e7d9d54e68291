package models

import (
	"fmt"
	"time"
)

// SubscriptionStatus — статус записи подписки.
//
// Отмена и неуспешный платёж — разные причины прекращения и кодируются
// разными значениями. Статус pending присутствует в домене, но текущими
// потоками не порождается.
type SubscriptionStatus string

// Допустимые статусы записи подписки.
const (
	StatusCompleted     SubscriptionStatus = "completed"
	StatusPending       SubscriptionStatus = "pending"
	StatusCancelled     SubscriptionStatus = "cancelled"
	StatusPaymentFailed SubscriptionStatus = "payment_failed"
)

// Subscription — одна попытка покупки или продления подписки.
// Записи никогда не удаляются физически: актуальная запись указана
// в User.SubscriptionUID, остальные образуют историю.
//
// Из платёжных данных сохраняется только маскированная сводка:
// имя держателя и срок действия. Полный номер карты и CVC не попадают
// ни в хранилище, ни в логи.
type Subscription struct {
	UID             string             // Уникальный идентификатор записи
	OrderID         string             // Человекочитаемый номер заказа ORD-<год>-<номер>
	UserUID         string             // Идентификатор учётной записи
	UserName        string             // Имя пользователя на момент покупки
	AccountType     string             // reseller или store_owner
	Tier            string             // Купленный тариф
	Amount          float64            // Списанная сумма
	Status          SubscriptionStatus // Статус записи
	StartedAt       time.Time          // Момент оформления
	DurationDays    int                // Оплаченная длительность в днях
	CardholderName  string             // Имя держателя карты
	CardExpiryMonth string             // Месяц окончания действия карты (MM)
	CardExpiryYear  string             // Год окончания действия карты (YYYY)
}

// EndsAt возвращает момент истечения оплаченного периода.
func (s *Subscription) EndsAt() time.Time {
	return s.StartedAt.AddDate(0, 0, s.DurationDays)
}

// DummyPaymentMethod — платёжные данные из JSON-запроса на оформление
// подписки. Номер карты и CVC участвуют только в валидации формы:
// дальше по коду передаётся исключительно маскированная сводка.
type DummyPaymentMethod struct {
	CardNumber     string `json:"card_number" validate:"required,len=16,numeric"`                             // Номер карты, ровно 16 цифр
	CardholderName string `json:"cardholder_name" validate:"required"`                                        // Имя держателя
	ExpiryMonth    string `json:"expiry_month" validate:"required,oneof=01 02 03 04 05 06 07 08 09 10 11 12"` // Месяц MM
	ExpiryYear     string `json:"expiry_year" validate:"required,len=4,numeric"`                              // Год YYYY
	CVC            string `json:"cvc" validate:"required,numeric,min=3,max=4"`                                // CVC, 3-4 цифры
}

// MaskedSummary возвращает строку с маскированной сводкой платёжного
// метода, пригодную для логов и ответов API.
func (p DummyPaymentMethod) MaskedSummary() string {
	return fmt.Sprintf("%s %s/%s", p.CardholderName, p.ExpiryMonth, p.ExpiryYear)
}

// DummySubscribe — JSON-тело запроса на оформление подписки.
type DummySubscribe struct {
	Tier          string             `json:"tier" validate:"required,oneof=tier1 tier2 tier3"` // Тариф
	PaymentMethod DummyPaymentMethod `json:"payment_method"`                                   // Платёжные данные
}

// SubscriptionView — представление записи подписки в ответах API.
// Платёжный метод отдаётся только маскированной сводкой.
type SubscriptionView struct {
	UID            string    `json:"uid"`
	OrderID        string    `json:"order_id"`
	Tier           string    `json:"tier"`
	AccountType    string    `json:"type"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	EndsAt         time.Time `json:"ends_at"`
	DurationDays   int       `json:"duration"`
	PaymentSummary string    `json:"payment_summary"`
}

// View строит SubscriptionView из записи подписки.
func (s *Subscription) View() SubscriptionView {
	return SubscriptionView{
		UID:            s.UID,
		OrderID:        s.OrderID,
		Tier:           s.Tier,
		AccountType:    s.AccountType,
		Amount:         s.Amount,
		Status:         string(s.Status),
		StartedAt:      s.StartedAt,
		EndsAt:         s.EndsAt(),
		DurationDays:   s.DurationDays,
		PaymentSummary: fmt.Sprintf("%s %s/%s", s.CardholderName, s.CardExpiryMonth, s.CardExpiryYear),
	}
}
