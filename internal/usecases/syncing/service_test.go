package syncing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	metamocks "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type fakeConnections struct {
	check *domain.TokenCheckResult
	token string
}

func (f *fakeConnections) CheckAndAutoRefresh(workspaceID string) (*domain.TokenCheckResult, error) {
	return f.check, nil
}

func (f *fakeConnections) ActiveConnection(workspaceID string) (*domain.Connection, string, error) {
	return &domain.Connection{ID: "CONN01", WorkspaceID: workspaceID, Status: domain.ConnectionStatusConnected}, f.token, nil
}

type testMocks struct {
	accountRepo    *mocks.MockAccountRepository
	syncStateRepo  *mocks.MockSyncStateRepository
	syncJobRepo    *mocks.MockSyncJobRepository
	insightRepo    *mocks.MockAdInsightRepository
	connectionRepo *mocks.MockConnectionRepository
	metaClient     *metamocks.MockClient
}

func newTestService(t *testing.T) (*Service, *testMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &testMocks{
		accountRepo:    mocks.NewMockAccountRepository(ctrl),
		syncStateRepo:  mocks.NewMockSyncStateRepository(ctrl),
		syncJobRepo:    mocks.NewMockSyncJobRepository(ctrl),
		insightRepo:    mocks.NewMockAdInsightRepository(ctrl),
		connectionRepo: mocks.NewMockConnectionRepository(ctrl),
		metaClient:     metamocks.NewMockClient(ctrl),
	}

	cfg := &config.Config{
		InsightSync: config.InsightSync{
			DefaultDaysBack:     30,
			BackfillMaxDays:     365,
			RequestDelaySeconds: 0,
		},
		Health: config.Health{
			StaleAfterHours:        24,
			RecentErrorWindowHours: 24,
		},
	}

	connections := &fakeConnections{
		check: &domain.TokenCheckResult{TokenValid: true, ExpiryStatus: domain.TokenExpiryValid},
		token: "token-ok",
	}

	service := NewService(
		m.accountRepo,
		m.syncStateRepo,
		m.syncJobRepo,
		m.insightRepo,
		m.connectionRepo,
		connections,
		m.metaClient,
		cfg,
	)
	service.sleep = func(time.Duration) {}

	return service, m
}

func accountFixture(id string) *domain.AdAccount {
	return &domain.AdAccount{
		ID:          id,
		WorkspaceID: "WS001",
		ExternalID:  "999" + id,
		Name:        "Conta " + id,
		Status:      domain.AdAccountStatusActive,
	}
}

func expectJobLifecycle(m *testMocks, status domain.SyncJobStatus) {
	m.syncJobRepo.EXPECT().Create(gomock.Any()).Return(nil)
	m.syncJobRepo.EXPECT().MarkRunning(gomock.Any()).Return(nil)
	m.syncJobRepo.EXPECT().Finish(gomock.Any(), status, gomock.Any(), gomock.Any()).Return(nil)
}

func TestRunSync_DailyWindow(t *testing.T) {
	service, m := newTestService(t)

	now := time.Date(2024, 1, 13, 15, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	lastSynced := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	state := &domain.SyncState{
		AccountID:           "ACC001",
		WorkspaceID:         "WS001",
		LastDailyDateSynced: &lastSynced,
		Enabled:             true,
	}

	m.accountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture("ACC001"), nil)
	m.syncStateRepo.EXPECT().Get("WS001", "ACC001").Return(state, nil)

	expectedStart := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)

	expectJobLifecycle(m, domain.SyncJobStatusSuccess)
	m.metaClient.EXPECT().
		GetInsights("token-ok", "999ACC001", domain.InsightLevelAccount, expectedStart, expectedEnd).
		Return([]metadomain.InsightRow{
			{AccountID: "999ACC001", DateStart: "2024-01-11", Spend: "120.50", Impressions: "1000", Clicks: "37"},
			{AccountID: "999ACC001", DateStart: "2024-01-12", Spend: "99.90", Impressions: "850", Clicks: "21"},
		}, nil)

	m.insightRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(entries []*domain.AdInsightEntry) error {
		assert.Len(t, entries, 2)
		assert.Equal(t, 120.50, entries[0].Spend)
		assert.Equal(t, int64(1000), entries[0].Impressions)
		assert.Equal(t, domain.InsightLevelAccount, entries[0].Level)
		return nil
	})

	m.syncStateRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(saved *domain.SyncState) error {
		assert.NotNil(t, saved.LastDailyDateSynced)
		assert.Equal(t, expectedEnd, *saved.LastDailyDateSynced)
		assert.Nil(t, saved.LastError)
		return nil
	})
	m.accountRepo.EXPECT().UpdateSyncStats("ACC001", gomock.Any(), gomock.Any(), 2).Return(nil)

	result, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncModeDaily,
		AccountID: "ACC001",
		Levels:    []domain.InsightLevel{domain.InsightLevelAccount},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.AccountsSynced)
	assert.Equal(t, 2, result.InsightsSynced)
	assert.Empty(t, result.Errors)
}

func TestRunSync_IntradayWindow(t *testing.T) {
	service, m := newTestService(t)

	now := time.Date(2024, 1, 13, 15, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }
	today := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)

	m.accountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture("ACC001"), nil)
	m.syncStateRepo.EXPECT().Get("WS001", "ACC001").Return(nil, nil)

	expectJobLifecycle(m, domain.SyncJobStatusSuccess)
	m.metaClient.EXPECT().
		GetInsights("token-ok", "999ACC001", domain.InsightLevelAccount, today, today).
		Return([]metadomain.InsightRow{
			{AccountID: "999ACC001", DateStart: "2024-01-13", Spend: "10"},
		}, nil)
	m.insightRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)

	m.syncStateRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(saved *domain.SyncState) error {
		assert.NotNil(t, saved.LastIntradaySyncAt)
		assert.Nil(t, saved.LastDailyDateSynced)
		return nil
	})
	m.accountRepo.EXPECT().UpdateSyncStats("ACC001", gomock.Any(), gomock.Any(), 1).Return(nil)

	result, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncModeIntraday,
		AccountID: "ACC001",
		Levels:    []domain.InsightLevel{domain.InsightLevelAccount},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.AccountsSynced)
}

func TestRunSync_BackfillClampsToMaxDays(t *testing.T) {
	service, m := newTestService(t)

	now := time.Date(2024, 1, 13, 15, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }
	today := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)

	m.accountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture("ACC001"), nil)
	m.syncStateRepo.EXPECT().Get("WS001", "ACC001").Return(nil, nil)

	expectJobLifecycle(m, domain.SyncJobStatusSuccess)
	m.metaClient.EXPECT().
		GetInsights("token-ok", "999ACC001", domain.InsightLevelAccount, today.AddDate(0, 0, -365), today).
		Return([]metadomain.InsightRow{}, nil)
	m.insightRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)
	m.syncStateRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)
	m.accountRepo.EXPECT().UpdateSyncStats("ACC001", gomock.Any(), gomock.Any(), 0).Return(nil)

	_, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncModeBackfill,
		AccountID: "ACC001",
		DaysBack:  1000,
		Levels:    []domain.InsightLevel{domain.InsightLevelAccount},
	})

	assert.NoError(t, err)
}

func TestRunSync_RequiresReconnectAborts(t *testing.T) {
	service, _ := newTestService(t)
	service.connections = &fakeConnections{
		check: &domain.TokenCheckResult{RequiresReconnect: true, ExpiryStatus: domain.TokenExpiryExpired},
	}

	_, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncModeDaily,
		AccountID: "ACC001",
	})

	assert.ErrorIs(t, err, ErrConnectionRevoked)
}

func TestRunSync_InvalidMode(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncMode("weekly"),
		AccountID: "ACC001",
	})

	assert.ErrorIs(t, err, ErrInvalidSyncMode)
}

func TestRunSync_ErrorInOneAccountDoesNotStopOthers(t *testing.T) {
	service, m := newTestService(t)

	now := time.Date(2024, 1, 13, 15, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return now }
	today := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)

	accounts := []*domain.AdAccount{accountFixture("ACC001"), accountFixture("ACC002")}

	m.accountRepo.EXPECT().
		ListAccounts("WS001", []domain.AdAccountStatus{domain.AdAccountStatusActive}).
		Return(accounts, nil)
	m.syncStateRepo.EXPECT().Get("WS001", gomock.Any()).Return(nil, nil).AnyTimes()

	// Primeira conta falha no origin
	expectJobLifecycle(m, domain.SyncJobStatusError)
	m.metaClient.EXPECT().
		GetInsights("token-ok", "999ACC001", domain.InsightLevelAccount, today, today).
		Return(nil, assert.AnError)

	// Segunda conta sincroniza normalmente
	expectJobLifecycle(m, domain.SyncJobStatusSuccess)
	m.metaClient.EXPECT().
		GetInsights("token-ok", "999ACC002", domain.InsightLevelAccount, today, today).
		Return([]metadomain.InsightRow{
			{AccountID: "999ACC002", DateStart: "2024-01-13", Spend: "50"},
		}, nil)
	m.insightRepo.EXPECT().SaveOrUpdate(gomock.Any()).Return(nil)

	// O estado das duas contas é atualizado: erro na primeira, sucesso na segunda
	m.syncStateRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(saved *domain.SyncState) error {
		if saved.AccountID == "ACC001" {
			assert.NotNil(t, saved.LastError)
		} else {
			assert.Nil(t, saved.LastError)
		}
		return nil
	}).Times(2)
	m.accountRepo.EXPECT().UpdateSyncStats("ACC002", gomock.Any(), gomock.Any(), 1).Return(nil)

	result, err := service.RunSync("WS001", &domain.SyncRequest{
		Mode:      domain.SyncModeIntraday,
		AccountID: domain.SyncAllAccounts,
		Levels:    []domain.InsightLevel{domain.InsightLevelAccount},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.AccountsSynced)
	assert.Equal(t, 1, result.InsightsSynced)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ACC001")
}

func TestGetSyncStatus(t *testing.T) {
	service, m := newTestService(t)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	lastSuccess := now.Add(-2 * time.Hour)

	m.connectionRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(&domain.Connection{
		ID:     "CONN01",
		Status: domain.ConnectionStatusConnected,
	}, nil)
	m.accountRepo.EXPECT().ListAccounts("WS001", nil).Return([]*domain.AdAccount{accountFixture("ACC001")}, nil)
	m.insightRepo.EXPECT().GetFreshness("WS001", "ACC001").Return(&domain.AccountFreshness{
		AccountID: "ACC001",
		RowCount:  420,
	}, nil)
	m.syncStateRepo.EXPECT().Get("WS001", "ACC001").Return(&domain.SyncState{
		AccountID:     "ACC001",
		LastSuccessAt: &lastSuccess,
		Enabled:       true,
	}, nil)
	m.syncJobRepo.EXPECT().CountRecentErrors("WS001", "ACC001", gomock.Any()).Return(0, nil)

	status, err := service.GetSyncStatus("WS001")
	assert.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusConnected, status.ConnectionStatus)
	assert.Equal(t, domain.HealthStatusHealthy, status.HealthStatus)
	assert.Len(t, status.Accounts, 1)
	assert.Equal(t, "Conta ACC001", status.Accounts[0].AccountName)
	assert.Equal(t, 0, status.RecentErrorCount)
}

func TestGetSyncStatus_NoConnection(t *testing.T) {
	service, m := newTestService(t)

	m.connectionRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(nil, nil)
	m.accountRepo.EXPECT().ListAccounts("WS001", nil).Return(nil, nil)

	status, err := service.GetSyncStatus("WS001")
	assert.NoError(t, err)
	assert.Equal(t, domain.HealthStatusDisconnected, status.HealthStatus)
}
