package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, uid, email, fullName, role string) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, full_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		uid, email, fullName, "hashedpassword", role)
	require.NoError(t, err)
}

// TestSubscriptionEntry возвращает запись подписки с заполненными полями
// для вставки через CreateSubscription.
func TestSubscriptionEntry(userUID, tier string, startedAt time.Time) models.Subscription {
	return models.Subscription{
		UID:             uuid.New().String(),
		UserUID:         userUID,
		UserName:        "Test User",
		AccountType:     models.AccountTypeStoreOwner,
		Tier:            tier,
		Amount:          25,
		Status:          models.StatusCompleted,
		StartedAt:       startedAt,
		DurationDays:    90,
		CardholderName:  "TEST USER",
		CardExpiryMonth: "09",
		CardExpiryYear:  "2028",
	}
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyUserEntitlement проверяет ссылку на подписку и счётчики квот
// учётной записи.
func (v *TestVerification) VerifyUserEntitlement(t *testing.T, userUID string, wantSubscriptionUID *string, wantCounters models.EntitlementCounters) {
	t.Helper()
	var subscriptionUID *string
	var counters models.EntitlementCounters
	err := v.storage.DB.QueryRow(`SELECT subscription_uid, total_promotions, used_promotions, total_scans
		FROM users WHERE uid = $1`, userUID).
		Scan(&subscriptionUID, &counters.TotalPromotions, &counters.UsedPromotions, &counters.TotalScans)
	require.NoError(t, err)
	require.Equal(t, wantSubscriptionUID, subscriptionUID)
	require.Equal(t, wantCounters, counters)
}

// VerifySubscriptionStatus проверяет статус записи подписки.
func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, subscriptionUID string, wantStatus models.SubscriptionStatus) {
	t.Helper()
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM subscriptions WHERE uid = $1", subscriptionUID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, string(wantStatus), status)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        CREATE TABLE users (
            uid TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL,
            store_name TEXT,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('admin', 'reseller', 'store_owner')),
            subscription_uid TEXT,
            subscription_end_time TIMESTAMPTZ,
            total_promotions INTEGER NOT NULL DEFAULT 0,
            used_promotions INTEGER NOT NULL DEFAULT 0,
            total_scans INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE plans (
            account_type TEXT NOT NULL CHECK (account_type IN ('reseller', 'store_owner')),
            tier TEXT NOT NULL CHECK (tier IN ('tier1', 'tier2', 'tier3')),
            amount NUMERIC(10, 2) NOT NULL CHECK (amount >= 0),
            duration_days INTEGER NOT NULL CHECK (duration_days >= 1),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (account_type, tier)
        );

        CREATE TABLE subscriptions (
            uid TEXT PRIMARY KEY,
            order_id TEXT NOT NULL UNIQUE,
            user_uid TEXT NOT NULL REFERENCES users (uid),
            user_name TEXT NOT NULL,
            account_type TEXT NOT NULL CHECK (account_type IN ('reseller', 'store_owner')),
            tier TEXT NOT NULL CHECK (tier IN ('tier1', 'tier2', 'tier3')),
            amount NUMERIC(10, 2) NOT NULL,
            status TEXT NOT NULL CHECK (status IN ('completed', 'pending', 'cancelled', 'payment_failed')),
            started_at TIMESTAMPTZ NOT NULL,
            duration_days INTEGER NOT NULL,
            cardholder_name TEXT NOT NULL,
            card_expiry_month TEXT NOT NULL,
            card_expiry_year TEXT NOT NULL
        );

        CREATE INDEX idx_subscriptions_user_uid ON subscriptions (user_uid);

        CREATE TABLE order_counters (
            year INTEGER PRIMARY KEY,
            value INTEGER NOT NULL
        );
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
