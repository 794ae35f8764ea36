package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing"
)

// InsightSyncConfig representa a configuração do agendador de sincronização de insights
type InsightSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// InsightSyncService gerencia o agendamento da sincronização diária de
// insights. A cada disparo percorre os workspaces com connection conectada
// e roda uma sincronização em modo daily para todas as contas habilitadas.
type InsightSyncService struct {
	scheduler           *gocron.Scheduler
	config              InsightSyncConfig
	connectionRepo      repository.ConnectionRepository
	syncService         syncing.SyncService
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewInsightSyncService cria uma nova instância do agendador de sincronização de insights
func NewInsightSyncService(
	connectionRepo repository.ConnectionRepository,
	syncService syncing.SyncService,
	appConfig *config.Config,
) *InsightSyncService {
	insightConfig := InsightSyncConfig{
		CronSchedule: appConfig.InsightSync.CronSchedule,
		SyncEnabled:  appConfig.InsightSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": insightConfig.CronSchedule,
		"sync_enabled":  insightConfig.SyncEnabled,
	}).Info("Configuração do agendador de sincronização de insights carregada")

	return &InsightSyncService{
		scheduler:      scheduler,
		config:         insightConfig,
		connectionRepo: connectionRepo,
		syncService:    syncService,
		syncRunning:    false,
	}
}

// Start inicia o agendador
func (s *InsightSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização agendada de insights desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de insights")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllWorkspaces()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de insights: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de insights")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllWorkspaces roda a sincronização diária para todos os workspaces
// com connection conectada
func (s *InsightSyncService) syncAllWorkspaces() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	startTime := time.Now()
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando sincronização agendada de insights")

	workspaces, err := s.connectionRepo.ListConnectedWorkspaces()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar workspaces para sincronização de insights")
		return
	}

	if len(workspaces) == 0 {
		logrus.Info("Nenhum workspace conectado encontrado para sincronização de insights")
		return
	}

	synced := 0
	failed := 0

	for _, workspaceID := range workspaces {
		result, err := s.syncService.RunSync(workspaceID, &domain.SyncRequest{
			AccountID: domain.SyncAllAccounts,
			Mode:      domain.SyncModeDaily,
		})
		if err != nil {
			failed++
			logrus.WithError(err).WithField("workspace_id", workspaceID).
				Error("Erro ao sincronizar insights do workspace")
			continue
		}

		synced++
		logrus.WithFields(logrus.Fields{
			"workspace_id":    workspaceID,
			"accounts_synced": result.AccountsSynced,
			"insights_synced": result.InsightsSynced,
			"account_errors":  len(result.Errors),
		}).Info("Workspace sincronizado")
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":   duration.String(),
		"workspaces": len(workspaces),
		"synced":     synced,
		"failed":     failed,
	}).Info("Sincronização agendada de insights concluída")
}

// TriggerManualSync inicia manualmente uma rodada de sincronização
func (s *InsightSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de insights")
	go s.syncAllWorkspaces()
}

// GetStatus retorna o status atual do agendador
func (s *InsightSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
