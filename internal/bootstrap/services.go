package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/opdqueue/config"
	"github.com/Domenick1991/opdqueue/internal/cache"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/Domenick1991/opdqueue/internal/metrics"
	"github.com/Domenick1991/opdqueue/internal/repository"
	"github.com/Domenick1991/opdqueue/internal/service/booking"
	"github.com/Domenick1991/opdqueue/internal/service/calendar"
	"github.com/Domenick1991/opdqueue/internal/service/directory"
	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// placeholderPositions bounds the random position source: 0 to 4 patients ahead.
const placeholderPositions = 5

// Deps are the infrastructure clients the services are built on. Producer may
// be nil, in which case no events are published.
type Deps struct {
	Pool     *pgxpool.Pool
	Cache    *cache.RedisCache
	Producer *kafka.Producer
	Metrics  *metrics.Metrics
}

func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

func NewServices(cfg *config.Config, log zerolog.Logger, deps Deps) Services {
	doctorRepo := repository.NewDoctorRepository(deps.Pool)
	bookingRepo := repository.NewBookingRepository(deps.Pool)
	eventRepo := repository.NewEventRepository(deps.Pool)

	var doctorCache directory.Cache
	if deps.Cache != nil {
		doctorCache = deps.Cache
	}
	directorySvc := directory.NewDirectoryService(doctorRepo, doctorCache, log)

	estimator := queue.Estimator{
		MinutesPerPatient: cfg.Queue.PerPatientMinutes,
		Source:            PositionSource(cfg.Queue, bookingRepo),
	}
	bookingSvc := booking.NewBookingService(bookingRepo, directorySvc, estimator, log, BookingOptions(cfg, deps)...)

	queueSvc := queue.NewQueueService(bookingRepo, cfg.Queue.AverageConsultMinutes,
		queue.WithExcludeCompleted(cfg.Queue.ExcludeCompletedFromWait))

	calendarOpts := []calendar.CalendarServiceOption{calendar.WithMetrics(deps.Metrics)}
	if deps.Producer != nil {
		calendarOpts = append(calendarOpts, calendar.WithProducer(deps.Producer, cfg.Kafka.QueueTopic))
	}
	calendarSvc := calendar.NewCalendarService(eventRepo, log, calendarOpts...)

	return Services{
		Directory: directorySvc,
		Bookings:  bookingSvc,
		Queue:     queueSvc,
		Calendar:  calendarSvc,
	}
}

// PositionSource picks the submission-time position source named in cfg.
func PositionSource(cfg config.QueueConfig, counter queue.ActiveCounter) queue.PositionSource {
	if cfg.PositionSource == config.PositionSourceRandom {
		return queue.RandomPlaceholder{Max: placeholderPositions}
	}
	return queue.LiveCount{Bookings: counter}
}

func BookingOptions(cfg *config.Config, deps Deps) []booking.BookingServiceOption {
	opts := []booking.BookingServiceOption{
		booking.WithStrictTransitions(cfg.Queue.StrictTransitions),
		booking.WithMetrics(deps.Metrics),
	}
	if deps.Producer != nil {
		opts = append(opts,
			booking.WithProducer(deps.Producer, cfg.Kafka.QueueTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	if cfg.Queue.TokenScope != config.TokenScopeNone {
		var claims booking.TokenClaims
		if deps.Cache != nil {
			claims = deps.Cache
		}
		opts = append(opts, booking.WithUniqueTokens(
			booking.TokenScope(cfg.Queue.TokenScope),
			cfg.Queue.TokenMaxAttempts,
			claims,
			time.Duration(cfg.Queue.TokenClaimTTLSeconds)*time.Second,
		))
	}
	return opts
}
