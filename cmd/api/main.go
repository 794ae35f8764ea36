package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/cache/redis"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/storage"
	"github.com/vfg2006/ads-dashboard-api/internal/api"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/account"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/connecting"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/creatives"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/mirroring"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-dashboard-api/pkg/crypto"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	connectionRepo := repository.NewConnectionRepository(pgConn)
	accountRepo := repository.NewAccountRepository(pgConn)
	entityCacheRepo := repository.NewEntityCacheRepository(pgConn)
	syncStateRepo := repository.NewSyncStateRepository(pgConn)
	syncJobRepo := repository.NewSyncJobRepository(pgConn)
	adInsightRepo := repository.NewAdInsightRepository(pgConn)
	creativeRepo := repository.NewCreativeRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, accountRepo, cfg)

	cipher, err := crypto.NewCipher(cfg.SecretKey)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao derivar a chave de cifragem dos tokens")
	}

	metaClient := metaclient.NewClient(cfg)

	// Cache desabilitado devolve nil; o resolver trata nil como tier ausente
	creativeCache, err := redis.NewCache(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar no Redis")
	}

	assetStorage := storage.NewClient(storage.Config{
		BaseURL:       cfg.AssetStorage.BaseURL,
		PublicBaseURL: cfg.AssetStorage.PublicBaseURL,
		APIKey:        cfg.AssetStorage.APIKey,
		Bucket:        cfg.AssetStorage.Bucket,
	})

	connectionService := connecting.NewService(connectionRepo, metaClient, cipher, cfg)
	accountService := account.NewService(accountRepo, connectionService, metaClient)
	mirrorService := mirroring.NewService(accountRepo, entityCacheRepo, connectionService, metaClient, cfg)
	syncService := syncing.NewService(
		accountRepo,
		syncStateRepo,
		syncJobRepo,
		adInsightRepo,
		connectionRepo,
		connectionService,
		metaClient,
		cfg,
	)
	creativeService := creatives.NewService(creativeRepo, creativeCache, assetStorage, connectionService, metaClient, cfg)

	// Agendador da sincronização diária de insights
	insightSyncService := scheduler.NewInsightSyncService(connectionRepo, syncService, cfg)
	if err := insightSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de insights")
	} else {
		logrus.Info("Agendador de sincronização de insights iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		connectionService,
		accountService,
		mirrorService,
		syncService,
		creativeService,
		authenticator,
		insightSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
