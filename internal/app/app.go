package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/onlinestore/internal/cfg"
	v1Grpc "github.com/DRSN-tech/onlinestore/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/onlinestore/internal/delivery/v1/http"
	"github.com/DRSN-tech/onlinestore/internal/infrastructure/auth"
	"github.com/DRSN-tech/onlinestore/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/onlinestore/internal/infrastructure/minio"
	"github.com/DRSN-tech/onlinestore/internal/infrastructure/rabbitmq"
	s3Repo "github.com/DRSN-tech/onlinestore/internal/repository/minio"
	"github.com/DRSN-tech/onlinestore/internal/repository/mongodb"
	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/onlinestore/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/onlinestore/internal/repository/redis"
	redisConv "github.com/DRSN-tech/onlinestore/internal/repository/redis/converter"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/clients"
	"github.com/DRSN-tech/onlinestore/pkg/closer"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/DRSN-tech/onlinestore/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App собирает зависимости сервиса и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker

	// отменяется при остановке, прерывает фоновую очистку изображений
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(0, log),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("partial init cleanup: %v", closeErr)
		}
		bgCancel()
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(ctx, a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.closer.AddSimple("postgres", db.Close)

	mongoClient, err := clients.NewMongoClient(ctx, a.cfg.Mongo)
	if err != nil {
		a.logger.Errorf(err, "failed to connect to mongodb")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("mongodb", mongoClient.Close)

	cartRepo := mongodb.NewCartRepo(mongoClient.DB)
	if err := cartRepo.EnsureIndexes(ctx); err != nil {
		a.logger.Errorf(err, "failed to create cart indexes")
		return err
	}

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return err
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductConverter(), a.cfg.Redis, a.logger)

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return err
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return err
	}
	imagesInfra := minioInfra.NewMinioInfrastructure(s3Repo.NewImageRepo(minioClient), a.cfg.Minio, a.logger, a.bgCtx)

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(initTimeout); err != nil {
		// Топик может создаваться самим брокером, поэтому старт не прерываем.
		a.logger.Warnf("kafka topic %s not ensured: %v", a.cfg.Kafka.Topic, err)
	}

	publisher, err := a.initCartPublisher()
	if err != nil {
		return err
	}

	prConv := pgdbConv.NewProductConverter()
	productRepo := pgdb.NewProductRepo(db.Pool, prConv, pgdbConv.NewCategoryConverter())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())
	userRepo := pgdb.NewUserRepo(db.Pool, pgdbConv.NewUserConverter())

	var google usecase.GoogleVerifier
	if a.cfg.Google.Enabled {
		google = auth.NewGoogleVerifier(a.cfg.Google)
	}

	productUC := usecase.NewProductUC(productRepo, outboxRepo, db.Pool, imagesInfra, cacheRepo, a.logger)
	cartUC := usecase.NewCartUC(
		cartRepo,
		productRepo,
		productUC,
		publisher,
		usecase.RetryPolicy{
			MaxRetries: a.cfg.Cart.MaxRetries,
			BaseDelay:  a.cfg.Cart.RetryBaseDelay,
			MaxDelay:   a.cfg.Cart.RetryMaxDelay,
		},
		a.logger,
	)
	authUC := usecase.NewAuthUC(
		userRepo,
		auth.NewJWTManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTTTL),
		auth.NewBcryptHasher(a.cfg.Auth.BcryptCost),
		google,
		a.logger,
	)

	a.worker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.cfg.Outbox, db.Dsn)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(productUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger, a.cfg.Http, a.cfg.Auth).Init(productUC, cartUC, authUC, map[string]v1Http.HealthCheck{
		"postgres": db.Ping,
		"mongodb":  mongoClient.Ping,
		"redis":    redisClient.Ping,
	})
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	// Порядок закрытия обратный: сначала серверы, затем воркер и очистка изображений.
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)
	a.closer.AddSimple("outbox worker", a.worker.Stop)
	a.closer.Add("grpc server", func(ctx context.Context) error {
		if err := a.grpcSrv.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// initCartPublisher подключается к RabbitMQ. Без URL события корзины не публикуются.
func (a *App) initCartPublisher() (usecase.CartEventPublisher, error) {
	if a.cfg.Rabbit.URL == "" {
		a.logger.Infof("RABBITMQ_URL is empty, cart events are disabled")
		return rabbitmq.NoopPublisher{}, nil
	}

	conn, err := clients.NewRabbitMQConn(a.cfg.Rabbit)
	if err != nil {
		a.logger.Errorf(err, "failed to connect to rabbitmq")
		return nil, err
	}
	a.closer.Add("rabbitmq connection", func(context.Context) error { return conn.Close() })

	publisher, err := rabbitmq.NewPublisher(conn, a.cfg.Rabbit.Exchange)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize rabbitmq publisher")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("rabbitmq channel", func(context.Context) error { return publisher.Close() })

	return publisher, nil
}

// Run запускает серверы и outbox worker и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	a.worker.Start(a.bgCtx)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}
	a.bgCancel()

	a.logger.Infof("application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
