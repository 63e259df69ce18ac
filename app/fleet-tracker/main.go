package main

import (
	"context"
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/app/fleet-tracker/tracker"
	"github.com/Biswayan2006/SIH2025-sub001/foundation/database"
	"github.com/ardanlabs/conf"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "FLEET_TRACKER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		Web  struct {
			Port            int           `conf:"default:8080"`
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:10s"`
			WSWriteWait     time.Duration `conf:"default:10s"`
			WSPongWait      time.Duration `conf:"default:60s"`
			WSPingInterval  time.Duration `conf:"default:50s"`
		}
		Hub struct {
			QueueSize int `conf:"default:128"`
		}
		Seed struct {
			File         string
			Url          string
			FetchTimeout time.Duration `conf:"default:30s"`
		}
		DB struct {
			Enabled    bool   `conf:"default:false"`
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Port       int
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		NATS struct {
			Url                   string
			LocationUpdateSubject string `conf:"default:vehicle-location-updates"`
			StateChangedSubject   string `conf:"default:vehicle-state-changed"`
		}
		Redis struct {
			Addr        string
			Password    string        `conf:"noprint"`
			DB          int           `conf:"default:0"`
			PositionKey string        `conf:"default:fleet:positions"`
			TTL         time.Duration `conf:"default:15m"`
		}
		Simulator struct {
			Enabled  bool          `conf:"default:false"`
			Interval time.Duration `conf:"default:3s"`
			Step     float64       `conf:"default:0.05"`
		}
		StatusLogInterval time.Duration `conf:"default:60s"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Track bus fleet state and broadcast accepted changes"
	const prefix = "FLEET"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			printUsage(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start Database

	var db *sqlx.DB
	if cfg.DB.Enabled {
		log.Println("main: Initializing database support")

		db, err = database.Open(database.Config{
			User:       cfg.DB.User,
			Password:   cfg.DB.Password,
			Host:       cfg.DB.Host,
			Port:       cfg.DB.Port,
			Name:       cfg.DB.Name,
			DisableTLS: cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer func() {
			log.Printf("main: Database Stopping : %s", cfg.DB.Host)
			err = db.Close()
			if err != nil {
				log.Printf("main: error closing database: %v", err)
			}
		}()
	}

	// =========================================================================
	// Load Fleet

	seed, err := tracker.LoadSeed(log, db, tracker.SeedSource{
		Url:          cfg.Seed.Url,
		File:         cfg.Seed.File,
		FetchTimeout: cfg.Seed.FetchTimeout,
	})
	if err != nil {
		return fmt.Errorf("loading seed: %w", err)
	}

	// =========================================================================
	// Start NATS

	var natsConn *nats.Conn
	if cfg.NATS.Url != "" {
		log.Printf("main: Connecting to NATS at %s", cfg.NATS.Url)
		natsConn, err = nats.Connect(cfg.NATS.Url)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer natsConn.Close()
	}

	// =========================================================================
	// Start Redis

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		log.Printf("main: Connecting to redis at %s", cfg.Redis.Addr)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("main: error closing redis client: %v", err)
			}
		}()
	}

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return tracker.StartServices(log, seed, natsConn, redisClient, tracker.Conf{
		Web: tracker.WebConf{
			Port:            cfg.Web.Port,
			ReadTimeout:     cfg.Web.ReadTimeout,
			WriteTimeout:    cfg.Web.WriteTimeout,
			IdleTimeout:     cfg.Web.IdleTimeout,
			ShutdownTimeout: cfg.Web.ShutdownTimeout,
			WebSocket: tracker.WebSocketConf{
				WriteWait:    cfg.Web.WSWriteWait,
				PongWait:     cfg.Web.WSPongWait,
				PingInterval: cfg.Web.WSPingInterval,
			},
		},
		HubQueueSize:          cfg.Hub.QueueSize,
		LocationUpdateSubject: cfg.NATS.LocationUpdateSubject,
		StateChangedSubject:   cfg.NATS.StateChangedSubject,
		RedisKey:              cfg.Redis.PositionKey,
		RedisTTL:              cfg.Redis.TTL,
		StatusLogInterval:     cfg.StatusLogInterval,
		Simulate:              cfg.Simulator.Enabled,
		SimulateInterval:      cfg.Simulator.Interval,
		SimulateStep:          cfg.Simulator.Step,
	}, shutdown)
}

func printUsage(confUsage string) {
	fmt.Println(confUsage)
}
