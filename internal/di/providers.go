package di

import (
	"context"
	"fmt"
	"time"

	"SmartRental/internal/domain/repository"
	"SmartRental/internal/handler/api"
	internalrepo "SmartRental/internal/repository"
	icache "SmartRental/internal/service/cache"
	"SmartRental/internal/service/ratelimit"
	"SmartRental/internal/services/artifacts"
	"SmartRental/internal/usecase"
	pkgch "SmartRental/pkg/clickhouse"
	"SmartRental/pkg/config"
	xhttp "SmartRental/pkg/http"
	pkgkafka "SmartRental/pkg/kafka"
	applogger "SmartRental/pkg/logger"
	"SmartRental/pkg/metrics"
	pkgmqtt "SmartRental/pkg/mqtt"
	pkgpg "SmartRental/pkg/postgres"
	"SmartRental/pkg/server"
)

const (
	connectTimeout   = 10 * time.Second
	maintenanceEvery = time.Minute
)

func noop() {}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideArtifactSource picks the store trained artifacts are read from.
func ProvideArtifactSource(cfg *config.Config) (repository.ArtifactSource, error) {
	switch cfg.Artifacts.Source {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		src, err := internalrepo.NewS3Artifacts(ctx, cfg.Artifacts.S3.Bucket, cfg.Artifacts.S3.Prefix, cfg.Artifacts.S3.Region)
		if err != nil {
			return nil, fmt.Errorf("s3 artifacts: %w", err)
		}
		return src, nil
	default:
		return internalrepo.NewFileArtifacts(cfg.Artifacts.Dir), nil
	}
}

// ProvideArtifactLoader creates the loader; with a remote URL the classifier
// and regressor are served by the model service.
func ProvideArtifactLoader(cfg *config.Config, src repository.ArtifactSource, l *applogger.Logger) *artifacts.Loader {
	var opts []artifacts.LoaderOption
	if cfg.Artifacts.Remote.URL != "" {
		remote := artifacts.NewRemoteModel(cfg.Artifacts.Remote.URL, cfg.Artifacts.Remote.Timeout, cfg.Artifacts.Remote.Attempts)
		opts = append(opts, artifacts.WithRemote(remote))
		l.Info("remote model backend enabled", applogger.String("url", cfg.Artifacts.Remote.URL))
	}
	return artifacts.NewLoader(src, cfg.Artifacts.EquipmentTypes, l, opts...)
}

// ProvideClickHouseClient creates a ClickHouse client and makes sure the ledger table exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(5, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.LedgerSchema(cfg.ClickHouse.Database+"."+cfg.Ledger.Table)...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvidePostgresClient creates a Postgres client.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithDSN(cfg.Postgres.DSN),
		pkgpg.WithPool(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns, cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	return client, nil
}

// ProvideLedgerSource picks the store the rental ledger is read from. The
// cleanup closes any database client it opened.
func ProvideLedgerSource(cfg *config.Config, l *applogger.Logger) (repository.LedgerSource, func(), error) {
	switch cfg.Ledger.Source {
	case "clickhouse":
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		src := internalrepo.NewCHLedger(client, cfg.ClickHouse.Database+"."+cfg.Ledger.Table)
		src.SetLogger(l)
		return src, func() {
			if err := client.Close(); err != nil {
				l.Warn("clickhouse close error", applogger.Error(err))
			}
		}, nil
	case "postgres":
		client, err := ProvidePostgresClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return internalrepo.NewPGLedger(client, cfg.Ledger.Table), func() {
			if err := client.Close(); err != nil {
				l.Warn("postgres close error", applogger.Error(err))
			}
		}, nil
	default:
		return internalrepo.NewCSVLedger(cfg.Ledger.CSVPath), noop, nil
	}
}

// ProvideKafkaProducer creates a Kafka producer for risk alerts.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	k := cfg.Alerts.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatchSize(1),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the configured risk alert backend, or nil when alerts are off.
func ProvideAlertPublisher(cfg *config.Config, l *applogger.Logger) (repository.AlertPublisher, func(), error) {
	var pub repository.AlertPublisher
	switch cfg.Alerts.Backend {
	case "kafka":
		producer, err := ProvideKafkaProducer(cfg)
		if err != nil {
			return nil, nil, err
		}
		pub = internalrepo.NewKafkaAlerts(producer, cfg.Alerts.Kafka.Topic)
	case "mqtt":
		m := cfg.Alerts.MQTT
		mp, err := pkgmqtt.NewPublisher(pkgmqtt.Config{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			QoS:      byte(m.QoS),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = internalrepo.NewMQTTAlerts(mp, m.Topic)
	default:
		return nil, noop, nil
	}

	l.Info("risk alerts enabled", applogger.String("backend", pub.Name()))
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("alert publisher close error", applogger.String("backend", pub.Name()), applogger.Error(err))
		}
	}, nil
}

func ProvideSnapshotHolder() *usecase.SnapshotHolder {
	return usecase.NewSnapshotHolder()
}

func ProvideSnapshotLoader(
	cfg *config.Config,
	al *artifacts.Loader,
	ledger repository.LedgerSource,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SnapshotLoader {
	return usecase.NewSnapshotLoader(al, ledger, m, l, cfg.Artifacts.LoadTimeout)
}

// ProvideFleetService creates the fleet query use case.
func ProvideFleetService(
	cfg *config.Config,
	holder *usecase.SnapshotHolder,
	alerts repository.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FleetService {
	opts := []usecase.FleetOption{usecase.WithMetrics(m)}
	if alerts != nil {
		opts = append(opts, usecase.WithAlerts(alerts, cfg.Alerts.Timeout))
	}
	return usecase.NewFleetService(holder, l, opts...)
}

// ProvideResponseCache creates the ledger response cache: shared Redis when
// enabled, in-process otherwise, nil when caching is off.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, noop, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return icache.NewTTLCache(), noop, nil
	}

	r := cfg.Cache.Redis
	rc := icache.NewRedisCache(icache.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix})
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis response cache enabled", applogger.String("addr", r.Addr))
	return rc, func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}, nil
}

// ProvideLimiter creates the per-client limiter for scoring endpoints, or nil when disabled.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideFleetHandler(
	cfg *config.Config,
	svc *usecase.FleetService,
	cache icache.BytesCache,
	rl *ratelimit.Limiter,
	l *applogger.Logger,
) *api.FleetEchoHandler {
	h := api.NewFleetEchoHandler(l, svc)
	if cache != nil {
		h.SetCache(cache, cfg.Cache.TTL)
	}
	if rl != nil {
		h.SetLimiter(rl)
	}
	return h
}

// ProvideHTTPServer creates the Echo server with the fleet routes registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.FleetEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	l *applogger.Logger,
	srv *xhttp.Server,
	holder *usecase.SnapshotHolder,
	loader *usecase.SnapshotLoader,
	svc *usecase.FleetService,
	cache icache.BytesCache,
	rl *ratelimit.Limiter,
) *server.App {
	app := server.New(l, srv, holder, loader, svc)
	if sw, ok := cache.(interface{ Sweep() int }); ok {
		app.AddSweeper("response_cache", sw.Sweep)
	}
	if rl != nil {
		app.AddSweeper("rate_limiter", func() int { return rl.Sweep(10 * maintenanceEvery) })
	}
	app.SetMaintenanceInterval(maintenanceEvery)
	return app
}
