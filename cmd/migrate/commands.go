package main

import (
	"context"

	"paylite/internal/account"
	"paylite/internal/config"
	"paylite/internal/db"
	"paylite/internal/ledger"
	"paylite/internal/seed"
	"paylite/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// runSeed funds demo users through the ledger engine
func runSeed(ctx context.Context, cfg *config.Config, gdb *gorm.DB, count int) error {
	store := db.NewStore(gdb)
	accounts, err := account.NewService(store, utils.NewBcryptHasher(), cfg.DefaultCurrency)
	if err != nil {
		return err
	}
	engine := ledger.NewEngine(store, ledger.WithTimeout(cfg.OperationTimeout))
	created, err := seed.New(accounts, engine, nil).Run(ctx, count)
	logrus.WithField("created", created).WithField("requested", count).Info("Seed finished")
	return err
}

// createAdmin creates an admin account with an empty wallet
func createAdmin(ctx context.Context, cfg *config.Config, gdb *gorm.DB, email, username, password string) error {
	accounts, err := account.NewService(db.NewStore(gdb), utils.NewBcryptHasher(), cfg.DefaultCurrency)
	if err != nil {
		return err
	}
	user, err := accounts.Bootstrap(ctx, account.RegisterRequest{
		Firstname: "Admin",
		Lastname:  username,
		Username:  username,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("Admin created")
	return nil
}
