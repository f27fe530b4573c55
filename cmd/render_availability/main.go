package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/app"
	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/config"
	botcontroller "github.com/Freeeeeet/appointment_service/internal/controller/bot"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/Freeeeeet/appointment_service/internal/repository/memory"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		out      string
		username string
	)

	cmd := &cobra.Command{
		Use:          "render-availability",
		Short:        "Render the doctor availability PNG sent by the bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				title string
				plan  *service.Availability
				err   error
			)
			if username == "" {
				title, plan, err = samplePlan(cmd.Context())
			} else {
				title, plan, err = databasePlan(cmd.Context(), username)
			}
			if err != nil {
				return err
			}

			imageData, err := botcontroller.GenerateAvailabilityImage(title, plan.SlotDetails)
			if err != nil {
				return fmt.Errorf("render image: %w", err)
			}
			if err := os.WriteFile(out, imageData, 0o644); err != nil {
				return fmt.Errorf("save image: %w", err)
			}

			fmt.Printf("✅ Изображение сохранено в %s\n", out)
			if n := len(plan.SlotDetails); n > 0 {
				fmt.Printf("📅 Период: %s - %s\n",
					plan.SlotDetails[0].Date.Format("02.01.2006"),
					plan.SlotDetails[n-1].Date.Format("02.01.2006"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "week.png", "Output PNG file")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Doctor username to load from the database; sample data when empty")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// samplePlan врач с заполненным шаблоном и парой записей в хранилище в памяти
func samplePlan(ctx context.Context) (string, *service.Availability, error) {
	store := memory.New()
	clk := clock.New(time.Local)
	logger := zap.NewNop()

	doctor := store.AddDoctor(
		model.User{Username: "dr-sample", FirstName: "Meera", LastName: "Rao"},
		model.DoctorProfile{Status: model.VerificationApproved, Mode: model.ModeVideoConsult, IsAvailableForDesk: true},
	)
	patient := store.AddUser(model.User{Username: "patient", FirstName: "Asha"})

	schedules := service.NewScheduleService(store.Doctors(), store.Schedules(), logger)
	_, err := schedules.Update(ctx, doctor.ID, service.ScheduleUpdate{
		OnlineSlots: []string{"09:00", "09:30", "10:00", "10:30", "18:00", "18:30"},
		DeskSlots:   []string{"12:00", "12:30", "13:00", "16:00"},
	})
	if err != nil {
		return "", nil, err
	}

	availability := service.NewAvailabilityService(store.Doctors(), store.Schedules(), store.Appointments(),
		clk, service.AvailabilityConfig{Days: 7}, nil, logger)
	booking := service.NewBookingService(availability, store.Appointments(), store.Users(), nil, logger)

	tomorrow := clock.Today(clk).AddDate(0, 0, 1)
	for _, req := range []service.BookRequest{
		{Slot: model.MustSlotTime("09:30"), Type: model.ModeVideoConsult},
		{Slot: model.MustSlotTime("12:30"), Type: model.ModeClinicVisit},
	} {
		req.DoctorProfileID, req.UserID, req.Date = doctor.ID, patient.ID, tomorrow
		if _, err := booking.Book(ctx, req); err != nil {
			return "", nil, err
		}
	}

	plan, err := availability.Plan(ctx, service.PlanRequest{DoctorID: doctor.ID})
	if err != nil {
		return "", nil, err
	}
	return doctor.FullName(), plan, nil
}

// databasePlan план врача из базы по конфигу окружения
func databasePlan(ctx context.Context, username string) (string, *service.Availability, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", nil, err
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	pool, err := app.NewPool(ctx, cfg, logger)
	if err != nil {
		return "", nil, err
	}
	defer pool.Close()

	availability := service.NewAvailabilityService(
		repository.NewDoctorRepository(pool),
		repository.NewScheduleRepository(pool, logger),
		repository.NewAppointmentRepository(pool),
		clock.New(cfg.Location),
		service.AvailabilityConfig{Days: 7, Consultation: cfg.Consultation},
		nil, logger,
	)

	plan, err := availability.Plan(ctx, service.PlanRequest{Username: username})
	if err != nil {
		return "", nil, err
	}
	return plan.Doctor.FullName(), plan, nil
}
