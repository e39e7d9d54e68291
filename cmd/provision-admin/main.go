// Команда provision-admin выполняет идемпотентный провижининг:
// создаёт админскую учётную запись и засеивает каталог планов
// стартовыми тарифами. Повторный запуск существующие записи не трогает.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/marketplace-backend/internal/config"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/password"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/migrations"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// Стартовый каталог: одна тарифная шкала для обоих типов аккаунтов.
var seedPlans = []models.Plan{
	{AccountType: models.AccountTypeReseller, Tier: models.TierOne, Amount: 10, DurationDays: 30},
	{AccountType: models.AccountTypeReseller, Tier: models.TierTwo, Amount: 25, DurationDays: 90},
	{AccountType: models.AccountTypeReseller, Tier: models.TierThree, Amount: 50, DurationDays: 180},
	{AccountType: models.AccountTypeStoreOwner, Tier: models.TierOne, Amount: 10, DurationDays: 30},
	{AccountType: models.AccountTypeStoreOwner, Tier: models.TierTwo, Amount: 25, DurationDays: 90},
	{AccountType: models.AccountTypeStoreOwner, Tier: models.TierThree, Amount: 50, DurationDays: 180},
}

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminName := os.Getenv("ADMIN_NAME")
	if adminEmail == "" || adminPassword == "" {
		logger.Error("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		os.Exit(1)
	}
	if adminName == "" {
		adminName = "Administrator"
	}

	ctx := context.Background()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	hash, err := password.GetHash(adminPassword)
	if err != nil {
		logger.Error("failed to hash admin password", sl.Err(err))
		os.Exit(1)
	}

	admin := models.User{
		UID:      uuid.New().String(),
		Email:    adminEmail,
		FullName: adminName,
		Role:     models.RoleAdmin,
	}
	created, err := db.CreateUser(ctx, admin, hash)
	if err != nil {
		logger.Error("failed to create admin user", sl.Err(err))
		os.Exit(1)
	}
	if created {
		logger.Info("admin user created", slog.String("email", adminEmail))
	} else {
		logger.Info("admin user already exists", slog.String("email", adminEmail))
	}

	seeded := 0
	for _, plan := range seedPlans {
		ok, err := db.SeedPlan(ctx, plan)
		if err != nil {
			logger.Error("failed to seed plan",
				slog.String("type", plan.AccountType),
				slog.String("tier", plan.Tier),
				sl.Err(err))
			os.Exit(1)
		}
		if ok {
			seeded++
		}
	}
	logger.Info("plan catalog seeded", slog.Int("created", seeded), slog.Int("total", len(seedPlans)))
}
