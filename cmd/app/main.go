package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Domenick1991/opdqueue/config"
	"github.com/Domenick1991/opdqueue/internal/auth"
	"github.com/Domenick1991/opdqueue/internal/bootstrap"
	"github.com/Domenick1991/opdqueue/internal/cache"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/kafka"
	"github.com/Domenick1991/opdqueue/internal/logger"
	"github.com/Domenick1991/opdqueue/internal/metrics"
	"github.com/Domenick1991/opdqueue/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "opdqueue",
		Short:         "OPD booking queue and doctor calendar service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(authCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func load(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Pretty), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST, gRPC and gateway servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := bootstrap.OpenDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Queue.DoctorsCacheTTLSeconds)*time.Second)
			defer redisCache.Close()
			if err := redisCache.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("redis unreachable, doctor cache and token claims will fail until it recovers")
			}

			deps := bootstrap.Deps{Pool: pool, Cache: redisCache, Metrics: metrics.New()}
			if len(cfg.Kafka.Brokers) > 0 {
				producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
				defer producer.Close()
				if err := producer.CheckConnection(ctx); err != nil {
					log.Warn().Err(err).Msg("kafka unreachable, events will be dropped")
				}
				deps.Producer = producer
			} else {
				log.Warn().Msg("no kafka brokers configured, events are not published")
			}

			if cfg.Auth.JWTSecret == "" {
				log.Warn().Msg("auth.jwt_secret is empty, doctor routes will reject every token")
			}
			authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			services := bootstrap.NewServices(cfg, log, deps)

			return bootstrap.Run(ctx, cfg, log, services, deps.Metrics, authenticator)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := bootstrap.OpenDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info().Msg("schema applied")
			return nil
		},
	}
}

func doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Manage the doctor roster",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			specialization, _ := cmd.Flags().GetString("specialization")
			uid, _ := cmd.Flags().GetString("uid")
			if strings.TrimSpace(name) == "" || strings.TrimSpace(uid) == "" {
				return fmt.Errorf("--name and --uid are required")
			}
			if strings.TrimSpace(specialization) == "" {
				specialization = domain.DefaultSpecialization
			}

			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := bootstrap.OpenDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			doctor := &domain.Doctor{
				ID:             uuid.NewString(),
				Name:           strings.TrimSpace(name),
				Specialization: strings.TrimSpace(specialization),
				AuthSubjectID:  strings.TrimSpace(uid),
			}
			if err := repository.NewDoctorRepository(pool).Create(ctx, doctor); err != nil {
				return fmt.Errorf("create doctor: %w", err)
			}

			redisCache := cache.NewRedisCache(cfg.Redis, 0)
			defer redisCache.Close()
			if err := redisCache.InvalidateDoctors(ctx); err != nil {
				log.Warn().Err(err).Msg("could not invalidate doctor cache")
			}

			log.Info().Str("doctor_id", doctor.ID).Str("name", doctor.Name).Msg("doctor registered")
			fmt.Fprintln(cmd.OutOrStdout(), doctor.ID)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "display name, without the Dr. title")
	addCmd.Flags().String("specialization", domain.DefaultSpecialization, "specialization shown to patients")
	addCmd.Flags().String("uid", "", "auth subject id the doctor signs in with")

	cmd.AddCommand(addCmd)
	return cmd
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, _ := cmd.Flags().GetString("uid")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, _, err := load(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
			}

			token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(uid, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().String("uid", "", "doctor auth subject id")
	tokenCmd.Flags().String("name", "", "optional display name claim")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime; defaults to auth.token_ttl_minutes")

	cmd.AddCommand(tokenCmd)
	return cmd
}
