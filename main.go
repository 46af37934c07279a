package main

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"

	"gym-booking/config"
	"gym-booking/handlers"
	_ "gym-booking/migrations"
	"gym-booking/monitoring"
	"gym-booking/services"
	"gym-booking/store"
	"gym-booking/utils"
)

func main() {
	app := pocketbase.New()
	cfg := config.LoadConfig()

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)

	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pnConfig.NonSubscribeRequestTimeout = int(cfg.DeliveryTimeout.Seconds())
	pn := pubnub.NewPubNub(pnConfig)

	st := store.NewPBStore(app, cfg.LeadTimes)
	notifier := services.NewPubNubNotifier(pn)
	cache := services.NewScheduleCache(redisClient, cfg.ScheduleCacheTTL)
	mirrors := services.NewMirrors(cfg.MirrorTimeout, buildMirrorSinks(cfg, st)...)

	bookingService := services.NewBookingService(st, mirrors, notifier, cache, cfg)
	reminderService := services.NewReminderService(st, notifier, cfg)

	scheduleHandler := handlers.NewScheduleHandler(bookingService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	adminHandler := handlers.NewAdminHandler(bookingService)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())

	// New members start active with notifications on; both flags can be
	// turned off later through record updates.
	app.OnRecordCreate("users").BindFunc(func(e *core.RecordEvent) error {
		e.Record.Set("is_active", true)
		e.Record.Set("notifications_enabled", true)
		return e.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/api/gym/schedule", scheduleHandler.List)

		authed := se.Router.Group("/api/gym")
		authed.Bind(apis.RequireAuth())
		authed.POST("/bookings", bookingHandler.Book)
		authed.DELETE("/bookings/{id}", bookingHandler.Cancel)
		authed.GET("/my/bookings", bookingHandler.MyBookings)
		authed.POST("/trainings", adminHandler.CreateTraining)
		authed.DELETE("/trainings/{id}", adminHandler.CancelTraining)
		authed.GET("/trainings/{id}/participants", adminHandler.Participants)
		authed.POST("/bookings/{id}/attendance", adminHandler.MarkAttendance)
		authed.GET("/stats", adminHandler.Stats)

		reminderService.Run(schedulerCtx)

		if cfg.EnableMetrics {
			monitoring.StartMetricsServer(cfg.MetricsPort)
		}

		return se.Next()
	})

	app.OnTerminate().BindFunc(func(te *core.TerminateEvent) error {
		stopScheduler()
		if err := redisClient.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
		return te.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// buildMirrorSinks assembles the configured Google mirrors. Missing or
// invalid credentials disable the mirrors rather than failing startup.
func buildMirrorSinks(cfg *config.Config, st store.Store) []services.MirrorSink {
	if cfg.GoogleCredentialsBase64 == "" {
		return nil
	}

	credentials, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.GoogleCredentialsBase64))
	if err != nil {
		log.Printf("google mirrors disabled: invalid credentials encoding: %v", err)
		return nil
	}

	var sinks []services.MirrorSink
	ctx := context.Background()

	if cfg.GoogleCalendarID != "" {
		sink, err := services.NewCalendarSink(ctx, credentials, cfg.GoogleCalendarID, st)
		if err != nil {
			log.Printf("calendar mirror disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}

	if cfg.GoogleSpreadsheetID != "" {
		sink, err := services.NewSheetsSink(ctx, credentials, cfg.GoogleSpreadsheetID)
		if err != nil {
			log.Printf("sheets mirror disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}

	return sinks
}
