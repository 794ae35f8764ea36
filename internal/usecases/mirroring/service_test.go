package mirroring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	metamocks "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type fakeTokenProvider struct {
	token string
}

func (f *fakeTokenProvider) ActiveConnection(workspaceID string) (*domain.Connection, string, error) {
	return &domain.Connection{ID: "CONN01", WorkspaceID: workspaceID}, f.token, nil
}

func newTestService(t *testing.T) (*Service, *mocks.MockAccountRepository, *mocks.MockEntityCacheRepository, *metamocks.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockAccountRepo := mocks.NewMockAccountRepository(ctrl)
	mockEntityRepo := mocks.NewMockEntityCacheRepository(ctrl)
	mockClient := metamocks.NewMockClient(ctrl)

	cfg := &config.Config{
		EntitySync: config.EntitySync{TTLHours: 6},
	}

	service := NewService(mockAccountRepo, mockEntityRepo, &fakeTokenProvider{token: "token-ok"}, mockClient, cfg)

	return service, mockAccountRepo, mockEntityRepo, mockClient
}

func accountFixture() *domain.AdAccount {
	return &domain.AdAccount{
		ID:          "ACC001",
		WorkspaceID: "WS001",
		ExternalID:  "123456789",
		Name:        "Conta Principal",
		Status:      domain.AdAccountStatusActive,
	}
}

func TestSyncEntities(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Espelho dentro da janela não chama o origin", func(t *testing.T) {
		service, mockAccountRepo, mockEntityRepo, _ := newTestService(t)
		service.now = func() time.Time { return now }

		syncedAt := now.Add(-2 * time.Hour)
		mockAccountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture(), nil)
		mockEntityRepo.EXPECT().GetFreshness("WS001", "ACC001").Return(&repository.EntityFreshness{
			LastSyncedAt: &syncedAt,
			CountsByType: map[domain.EntityType]int{
				domain.EntityTypeCampaign: 4,
				domain.EntityTypeAdSet:    10,
				domain.EntityTypeAd:       25,
			},
		}, nil)

		result, err := service.SyncEntities("WS001", "ACC001", false)
		assert.NoError(t, err)
		assert.True(t, result.FromCache)
		assert.Equal(t, 4, result.Campaigns)
		assert.Equal(t, 10, result.AdSets)
		assert.Equal(t, 25, result.Ads)
		assert.Empty(t, result.Errors)
	})

	t.Run("Espelho vencido busca tudo do origin e converte budgets", func(t *testing.T) {
		service, mockAccountRepo, mockEntityRepo, mockClient := newTestService(t)
		service.now = func() time.Time { return now }

		syncedAt := now.Add(-7 * time.Hour)
		mockAccountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture(), nil)
		mockEntityRepo.EXPECT().GetFreshness("WS001", "ACC001").Return(&repository.EntityFreshness{
			LastSyncedAt: &syncedAt,
		}, nil)

		mockClient.EXPECT().GetCampaignsByAccountID("token-ok", "123456789").Return([]metadomain.Campaign{
			{ID: "c1", Name: "Campanha 1", EffectiveStatus: "ACTIVE", DailyBudget: "15000"},
		}, nil)
		mockClient.EXPECT().GetAdSetsByAccountID("token-ok", "123456789").Return([]metadomain.AdSet{
			{ID: "as1", Name: "Conjunto 1", EffectiveStatus: "ACTIVE", CampaignID: "c1", LifetimeBudget: "250000"},
		}, nil)
		mockClient.EXPECT().GetAdsByAccountID("token-ok", "123456789").Return([]metadomain.Ad{
			{ID: "ad1", Name: "Anúncio 1", EffectiveStatus: "ACTIVE", CampaignID: "c1", AdSetID: "as1"},
			{ID: "ad2", Name: "Anúncio 2", EffectiveStatus: "PAUSED", CampaignID: "c1", AdSetID: "as1"},
		}, nil)

		mockEntityRepo.EXPECT().UpsertBatch(gomock.Any()).DoAndReturn(func(records []*domain.EntityCacheRecord) error {
			assert.Len(t, records, 1)
			assert.Equal(t, domain.EntityTypeCampaign, records[0].EntityType)
			assert.NotNil(t, records[0].DailyBudget)
			assert.Equal(t, 150.0, *records[0].DailyBudget)
			return nil
		})
		mockEntityRepo.EXPECT().UpsertBatch(gomock.Any()).DoAndReturn(func(records []*domain.EntityCacheRecord) error {
			assert.Len(t, records, 1)
			assert.Equal(t, domain.EntityTypeAdSet, records[0].EntityType)
			assert.NotNil(t, records[0].LifetimeBudget)
			assert.Equal(t, 2500.0, *records[0].LifetimeBudget)
			return nil
		})
		mockEntityRepo.EXPECT().UpsertBatch(gomock.Any()).DoAndReturn(func(records []*domain.EntityCacheRecord) error {
			assert.Len(t, records, 2)
			assert.Equal(t, domain.EntityTypeAd, records[0].EntityType)
			assert.Equal(t, "as1", *records[0].AdSetID)
			return nil
		})

		result, err := service.SyncEntities("WS001", "ACC001", false)
		assert.NoError(t, err)
		assert.False(t, result.FromCache)
		assert.Equal(t, 1, result.Campaigns)
		assert.Equal(t, 1, result.AdSets)
		assert.Equal(t, 2, result.Ads)
		assert.Empty(t, result.Errors)
	})

	t.Run("Force ignora a janela de validade", func(t *testing.T) {
		service, mockAccountRepo, mockEntityRepo, mockClient := newTestService(t)
		service.now = func() time.Time { return now }

		mockAccountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture(), nil)

		mockClient.EXPECT().GetCampaignsByAccountID("token-ok", "123456789").Return([]metadomain.Campaign{}, nil)
		mockClient.EXPECT().GetAdSetsByAccountID("token-ok", "123456789").Return([]metadomain.AdSet{}, nil)
		mockClient.EXPECT().GetAdsByAccountID("token-ok", "123456789").Return([]metadomain.Ad{}, nil)
		mockEntityRepo.EXPECT().UpsertBatch(gomock.Any()).Return(nil).Times(3)

		result, err := service.SyncEntities("WS001", "ACC001", true)
		assert.NoError(t, err)
		assert.False(t, result.FromCache)
	})

	t.Run("Falha em um tipo não impede os demais", func(t *testing.T) {
		service, mockAccountRepo, mockEntityRepo, mockClient := newTestService(t)
		service.now = func() time.Time { return now }

		mockAccountRepo.EXPECT().GetAccountByID("WS001", "ACC001").Return(accountFixture(), nil)
		mockEntityRepo.EXPECT().GetFreshness("WS001", "ACC001").Return(nil, nil)

		mockClient.EXPECT().GetCampaignsByAccountID("token-ok", "123456789").Return(nil, assert.AnError)
		mockClient.EXPECT().GetAdSetsByAccountID("token-ok", "123456789").Return([]metadomain.AdSet{
			{ID: "as1", Name: "Conjunto 1", CampaignID: "c1"},
		}, nil)
		mockClient.EXPECT().GetAdsByAccountID("token-ok", "123456789").Return([]metadomain.Ad{
			{ID: "ad1", Name: "Anúncio 1", CampaignID: "c1", AdSetID: "as1"},
		}, nil)
		mockEntityRepo.EXPECT().UpsertBatch(gomock.Any()).Return(nil).Times(2)

		result, err := service.SyncEntities("WS001", "ACC001", false)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Campaigns)
		assert.Equal(t, 1, result.AdSets)
		assert.Equal(t, 1, result.Ads)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "campaign")
	})

	t.Run("Conta inexistente devolve erro", func(t *testing.T) {
		service, mockAccountRepo, _, _ := newTestService(t)

		mockAccountRepo.EXPECT().GetAccountByID("WS001", "ACC404").Return(nil, nil)

		_, err := service.SyncEntities("WS001", "ACC404", false)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestCentsToMajor(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *float64
	}{
		{name: "Valor em centavos vira unidade maior", raw: "15000", expected: floatPtr(150)},
		{name: "Valor com centavos quebrados", raw: "12345", expected: floatPtr(123.45)},
		{name: "String vazia vira nil", raw: "", expected: nil},
		{name: "Valor inválido vira nil", raw: "abc", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := centsToMajor(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, result)
			} else {
				assert.NotNil(t, result)
				assert.Equal(t, *tt.expected, *result)
			}
		})
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
