package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type fakeSyncService struct {
	calls   []string
	result  *domain.SyncResult
	failFor map[string]error

	// quando preenchidos, RunSync sinaliza started e bloqueia até release
	started chan struct{}
	release chan struct{}
}

func (f *fakeSyncService) RunSync(workspaceID string, request *domain.SyncRequest) (*domain.SyncResult, error) {
	f.calls = append(f.calls, workspaceID)
	if f.started != nil {
		close(f.started)
		f.started = nil
		<-f.release
	}
	if err, ok := f.failFor[workspaceID]; ok {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeSyncService) GetSyncStatus(workspaceID string) (*domain.SyncStatusResponse, error) {
	return nil, nil
}

func newTestScheduler(t *testing.T, syncService *fakeSyncService) (*InsightSyncService, *mocks.MockConnectionRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	connectionRepo := mocks.NewMockConnectionRepository(ctrl)

	cfg := &config.Config{
		InsightSync: config.InsightSync{
			CronSchedule: "0 3 * * *",
			Enabled:      true,
		},
	}

	return NewInsightSyncService(connectionRepo, syncService, cfg), connectionRepo
}

func TestSyncAllWorkspaces(t *testing.T) {
	t.Run("Sincroniza todos os workspaces conectados em modo daily", func(t *testing.T) {
		syncService := &fakeSyncService{
			result: &domain.SyncResult{AccountsSynced: 2, InsightsSynced: 10},
		}
		service, connectionRepo := newTestScheduler(t, syncService)

		connectionRepo.EXPECT().ListConnectedWorkspaces().Return([]string{"WS001", "WS002"}, nil)

		service.syncAllWorkspaces()

		assert.Equal(t, []string{"WS001", "WS002"}, syncService.calls)
		assert.False(t, service.lastSyncCompletedAt.IsZero())
	})

	t.Run("Erro em um workspace não impede os demais", func(t *testing.T) {
		syncService := &fakeSyncService{
			result:  &domain.SyncResult{},
			failFor: map[string]error{"WS001": assert.AnError},
		}
		service, connectionRepo := newTestScheduler(t, syncService)

		connectionRepo.EXPECT().ListConnectedWorkspaces().Return([]string{"WS001", "WS002"}, nil)

		service.syncAllWorkspaces()

		assert.Equal(t, []string{"WS001", "WS002"}, syncService.calls)
	})

	t.Run("Nenhum workspace conectado encerra sem sincronizar", func(t *testing.T) {
		syncService := &fakeSyncService{result: &domain.SyncResult{}}
		service, connectionRepo := newTestScheduler(t, syncService)

		connectionRepo.EXPECT().ListConnectedWorkspaces().Return([]string{}, nil)

		service.syncAllWorkspaces()

		assert.Empty(t, syncService.calls)
	})

	t.Run("Status é consistente durante uma rodada em andamento", func(t *testing.T) {
		syncService := &fakeSyncService{
			result:  &domain.SyncResult{},
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		service, connectionRepo := newTestScheduler(t, syncService)

		connectionRepo.EXPECT().ListConnectedWorkspaces().Return([]string{"WS001"}, nil)

		ready := syncService.started
		done := make(chan struct{})
		go func() {
			service.syncAllWorkspaces()
			close(done)
		}()

		<-ready

		status := service.GetStatus()
		assert.Equal(t, true, status["sync_running"])
		assert.False(t, status["last_sync_started_at"].(time.Time).IsZero())

		close(syncService.release)
		<-done

		status = service.GetStatus()
		assert.Equal(t, false, status["sync_running"])
		assert.False(t, status["last_sync_completed_at"].(time.Time).IsZero())
	})

	t.Run("Rodada em andamento não é duplicada", func(t *testing.T) {
		syncService := &fakeSyncService{result: &domain.SyncResult{}}
		service, _ := newTestScheduler(t, syncService)

		service.syncRunning = true
		service.syncAllWorkspaces()

		assert.Empty(t, syncService.calls)
	})
}

func TestGetStatus(t *testing.T) {
	syncService := &fakeSyncService{result: &domain.SyncResult{}}
	service, _ := newTestScheduler(t, syncService)

	status := service.GetStatus()

	assert.Equal(t, true, status["sync_enabled"])
	assert.Equal(t, "0 3 * * *", status["sync_cron"])
	assert.Equal(t, false, status["sync_running"])
}
