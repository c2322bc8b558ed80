package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/blisstech/pharmacy-api/internal/config"
	"github.com/blisstech/pharmacy-api/internal/model"
	"github.com/blisstech/pharmacy-api/internal/repository/postgres"
	authService "github.com/blisstech/pharmacy-api/internal/service/auth"
	"github.com/blisstech/pharmacy-api/pkg/logger"
)

// Seeds a development database with staff accounts, a small formulary and
// a few patients. Running it against a non-empty database fails on the
// unique constraints, which is the intended guard.
func main() {
	logger.Setup("pharmacy-seed", os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	medicationRepo := postgres.NewMedicationRepository(base)
	patientRepo := postgres.NewPatientRepository(base)

	ctx := context.Background()

	for _, u := range []struct {
		username, password string
		role               model.Role
	}{
		{"mchen", "pharmacist-dev-password", model.RolePharmacist},
		{"akaur", "admin-dev-password", model.RoleAdmin},
	} {
		hash, err := authService.HashPassword(u.password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash password")
		}
		user := &model.User{
			Username:     u.username,
			PasswordHash: hash,
			Role:         u.role,
		}
		user.ID = uuid.New()
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("failed to seed user")
		}
	}

	expiry := model.NewDate(2027, 6, 30)
	medications := []*model.Medication{
		{Name: "Amoxicillin 500mg", DIN: "00628115", Stock: 240, Price: 0.35, Expiration: expiry},
		{Name: "Lisinopril 10mg", DIN: "02217481", Stock: 30, Price: 0.22, Expiration: expiry},
		{Name: "Metformin 850mg", DIN: "02229656", Stock: 500, Price: 0.18, Expiration: expiry},
		{Name: "Atorvastatin 20mg", DIN: "02313707", Stock: 320, Price: 0.41, Expiration: expiry},
		{Name: "Sertraline 50mg", DIN: "02240485", Stock: 150, Price: 0.52, Expiration: expiry},
	}
	for _, med := range medications {
		med.ID = uuid.New()
		if err := medicationRepo.Create(ctx, med); err != nil {
			log.Fatal().Err(err).Str("din", med.DIN).Msg("failed to seed medication")
		}
	}

	patients := []*model.Patient{
		{Name: "Grace Olsen", BirthDate: model.NewDate(1951, 3, 12), Phone: "416-555-0183", HealthCardNum: "4421-887-203"},
		{Name: "Dev Raman", BirthDate: model.NewDate(1988, 11, 2), Phone: "416-555-0114", HealthCardNum: "9830-114-551"},
		{Name: "Lucille Park", BirthDate: model.NewDate(1964, 7, 29), Phone: "647-555-0192", HealthCardNum: "2275-630-948"},
		{Name: "Tomas Ibarra", BirthDate: model.NewDate(1979, 1, 16), Phone: "905-555-0147", HealthCardNum: "6612-409-377"},
		{Name: "Nadia Farouk", BirthDate: model.NewDate(1995, 9, 8), Phone: "416-555-0121", HealthCardNum: "8054-772-160"},
	}
	for _, p := range patients {
		p.ID = uuid.New()
		if err := patientRepo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("name", p.Name).Msg("failed to seed patient")
		}
	}

	log.Info().
		Int("users", 2).
		Int("medications", len(medications)).
		Int("patients", len(patients)).
		Msg("seed complete")
}
