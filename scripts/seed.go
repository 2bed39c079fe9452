package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/adapters/database"
	"github.com/openclinic/vaccine-scheduler/internal/application/services"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/postgres"
	"github.com/openclinic/vaccine-scheduler/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				appointments,
				availabilities,
				vaccines,
				users
			CASCADE`); err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	vaccineRepo := database.NewVaccineAdapter(pgClient)
	availabilityRepo := database.NewAvailabilityAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)

	accountService := services.NewAccountService(userRepo, cfg.Auth.JWTSecret, time.Hour)
	bookingService := services.NewBookingService(appointmentRepo, availabilityRepo, vaccineRepo)
	scheduleService := services.NewScheduleService(availabilityRepo, vaccineRepo, appointmentRepo)

	caregivers := []string{"alice", "bob", "carol"}
	for _, username := range caregivers {
		if _, err := accountService.Register(ctx, username, "changeme", entities.UserRoleCaregiver); err != nil {
			log.Printf("Skipping caregiver %s: %v", username, err)
		}
	}

	patients := []string{"dave", "erin"}
	for _, username := range patients {
		if _, err := accountService.Register(ctx, username, "changeme", entities.UserRolePatient); err != nil {
			log.Printf("Skipping patient %s: %v", username, err)
		}
	}

	vaccines := map[string]int{
		"Moderna": 50,
		"Pfizer":  40,
		"Janssen": 25,
	}
	for name, doses := range vaccines {
		if _, err := bookingService.AddDoses(ctx, name, doses); err != nil {
			log.Printf("Skipping vaccine %s: %v", name, err)
		}
	}

	start := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	for day := 0; day < 7; day++ {
		date := start.AddDate(0, 0, day)
		for _, username := range caregivers {
			if err := scheduleService.PublishAvailability(ctx, date, username); err != nil {
				log.Printf("Skipping slot %s/%s: %v", date.Format(entities.DateFormat), username, err)
			}
		}
	}

	log.Println("Seeding complete")
}
