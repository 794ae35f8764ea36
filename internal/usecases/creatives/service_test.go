package creatives

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	redismocks "github.com/vfg2006/ads-dashboard-api/infrastructure/cache/redis/mocks"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	metamocks "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	storagemocks "github.com/vfg2006/ads-dashboard-api/infrastructure/storage/mocks"
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

type creativeMocks struct {
	repo     *mocks.MockCreativeRepository
	cache    *redismocks.MockCache
	uploader *storagemocks.MockUploader
	client   *metamocks.MockClient
}

func newTestService(t *testing.T) (*Service, *creativeMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &creativeMocks{
		repo:     mocks.NewMockCreativeRepository(ctrl),
		cache:    redismocks.NewMockCache(ctrl),
		uploader: storagemocks.NewMockUploader(ctrl),
		client:   metamocks.NewMockClient(ctrl),
	}

	cfg := &config.Config{
		Redis: config.Redis{Enabled: true, TTLMinutes: 60},
	}

	service := NewService(m.repo, m.cache, m.uploader, &fakeTokenProvider{token: "token-ok"}, m.client, cfg)

	// Fase dois roda em background em produção; nos testes roda inline
	service.runAsync = func(f func()) { f() }

	return service, m
}

func completeCreative(adID string) *domain.Creative {
	return &domain.Creative{
		AdID:        adID,
		WorkspaceID: "WS001",
		AccountID:   "ACC001",
		Type:        domain.CreativeTypeImage,
		ImageURL:    "https://cdn.example.com/" + adID + ".jpg",
		Title:       "Anúncio " + adID,
		FetchStatus: domain.CreativeFetchSuccess,
	}
}

func TestResolveBatch_HotTierHit(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	creative := completeCreative("ad1")
	raw, _ := json.Marshal(creative)

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(raw, nil)

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:     []string{"ad1"},
		AccountID: "ACC001",
	})

	assert.NoError(t, err)
	assert.Len(t, response.Creatives, 1)
	assert.Equal(t, "Anúncio ad1", response.Creatives["ad1"].Title)
	assert.Empty(t, response.Loading)
}

func TestResolveBatch_DurableTierPromotesToHotTier(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	creative := completeCreative("ad1")

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(nil, nil)
	m.repo.EXPECT().GetByAdIDs("WS001", []string{"ad1"}).Return(map[string]*domain.Creative{"ad1": creative}, nil)
	m.cache.EXPECT().Set(ctx, "creative:WS001:ad1", gomock.Any(), gomock.Any()).Return(nil)

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:     []string{"ad1"},
		AccountID: "ACC001",
	})

	assert.NoError(t, err)
	assert.Len(t, response.Creatives, 1)
	assert.Empty(t, response.Loading)
}

func TestResolveBatch_MissingGoesToOrigin(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(nil, nil)
	m.repo.EXPECT().GetByAdIDs("WS001", []string{"ad1"}).Return(map[string]*domain.Creative{}, nil)

	m.client.EXPECT().GetAdCreatives("token-ok", []string{"ad1"}).Return(map[string]*metadomain.AdCreative{
		"ad1": {
			ID:           "cr1",
			Title:        "Oferta de Verão",
			Body:         "Aproveite",
			ImageURL:     "https://cdn.fb.com/full.jpg",
			ThumbnailURL: "https://cdn.fb.com/thumb.jpg",
		},
	}, nil)

	m.uploader.EXPECT().
		CacheRemote("https://cdn.fb.com/full.jpg", "WS001/ad1").
		Return("https://assets.example.com/ad-creatives/WS001/ad1", nil)

	m.repo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(saved *domain.Creative) error {
		assert.Equal(t, "ad1", saved.AdID)
		assert.Equal(t, domain.CreativeTypeImage, saved.Type)
		assert.Equal(t, "https://assets.example.com/ad-creatives/WS001/ad1", saved.CachedURL)
		assert.Equal(t, domain.CreativeFetchSuccess, saved.FetchStatus)
		return nil
	})
	m.cache.EXPECT().Set(gomock.Any(), "creative:WS001:ad1", gomock.Any(), gomock.Any()).Return(nil)

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:     []string{"ad1"},
		AccountID: "ACC001",
		PreferHD:  true,
	})

	assert.NoError(t, err)
	assert.Empty(t, response.Creatives)
	assert.Equal(t, []string{"ad1"}, response.Loading)
}

func TestResolveBatch_OriginFailureKeepsStoredData(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	stored := &domain.Creative{
		AdID:          "ad1",
		WorkspaceID:   "WS001",
		AccountID:     "ACC001",
		Type:          domain.CreativeTypeImage,
		Title:         "Título preservado",
		ImageURL:      "https://cdn.example.com/ad1.jpg",
		FetchStatus:   domain.CreativeFetchSuccess,
		FetchAttempts: 1,
	}

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(nil, nil)
	m.repo.EXPECT().GetByAdIDs("WS001", []string{"ad1"}).Return(map[string]*domain.Creative{"ad1": stored}, nil).Times(2)
	m.cache.EXPECT().Set(ctx, "creative:WS001:ad1", gomock.Any(), gomock.Any()).Return(nil)

	m.client.EXPECT().GetAdCreatives("token-ok", []string{"ad1"}).Return(nil, assert.AnError)

	m.repo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(saved *domain.Creative) error {
		// A falha acumula tentativa e erro sem apagar o que já existia
		assert.Equal(t, "Título preservado", saved.Title)
		assert.Equal(t, "https://cdn.example.com/ad1.jpg", saved.ImageURL)
		assert.Equal(t, domain.CreativeFetchFailed, saved.FetchStatus)
		assert.Equal(t, 2, saved.FetchAttempts)
		assert.NotNil(t, saved.LastError)
		return nil
	})

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:        []string{"ad1"},
		AccountID:    "ACC001",
		ForceRefresh: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"ad1"}, response.Loading)
}

func TestResolveBatch_InflightBatchIsNotRefetched(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	// Simula outro resolver já buscando o mesmo lote
	service.registry.tryAcquire(inflightKey("WS001", []string{"ad1"}))

	asyncCalls := 0
	service.runAsync = func(f func()) { asyncCalls++ }

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(nil, nil)
	m.repo.EXPECT().GetByAdIDs("WS001", []string{"ad1"}).Return(map[string]*domain.Creative{}, nil)

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:     []string{"ad1"},
		AccountID: "ACC001",
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, asyncCalls)
	assert.Equal(t, []string{"ad1"}, response.Loading)
}

func TestResolveBatch_FailedWithMaxAttemptsIsNotRetried(t *testing.T) {
	service, m := newTestService(t)
	ctx := context.Background()

	message := "creative não encontrado no origin"
	stored := &domain.Creative{
		AdID:          "ad1",
		WorkspaceID:   "WS001",
		FetchStatus:   domain.CreativeFetchFailed,
		FetchAttempts: maxFetchAttempts,
		LastError:     &message,
	}

	m.cache.EXPECT().Get(ctx, "creative:WS001:ad1").Return(nil, nil)
	m.repo.EXPECT().GetByAdIDs("WS001", []string{"ad1"}).Return(map[string]*domain.Creative{"ad1": stored}, nil)

	response, err := service.ResolveBatch(ctx, "WS001", &domain.CreativeBatchRequest{
		AdIDs:     []string{"ad1"},
		AccountID: "ACC001",
	})

	assert.NoError(t, err)
	assert.Empty(t, response.Loading)
	assert.Equal(t, message, response.Errors["ad1"])
}

func TestResolveBatch_EmptyRequest(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ResolveBatch(context.Background(), "WS001", &domain.CreativeBatchRequest{})
	assert.ErrorIs(t, err, ErrNoAdIDs)
}

func TestBuildCreative(t *testing.T) {
	service, _ := newTestService(t)

	t.Run("Video tem prioridade na classificação", func(t *testing.T) {
		creative := service.buildCreative("WS001", "ACC001", "ad1", &metadomain.AdCreative{
			ID:      "cr1",
			VideoID: "v123",
		})
		assert.Equal(t, domain.CreativeTypeVideo, creative.Type)
	})

	t.Run("Texto minerado do story spec preenche campos vazios", func(t *testing.T) {
		spec := []byte(`{"link_data":{"link":"https://loja.example.com","message":"Corpo minerado","name":"Título minerado","picture":"https://cdn.fb.com/p.jpg","call_to_action":{"type":"SHOP_NOW"}}}`)
		creative := service.buildCreative("WS001", "ACC001", "ad1", &metadomain.AdCreative{
			ID:              "cr1",
			ObjectStorySpec: spec,
		})

		assert.Equal(t, "Título minerado", creative.Title)
		assert.Equal(t, "Corpo minerado", creative.Body)
		assert.Equal(t, "SHOP_NOW", creative.CallToAction)
		assert.Equal(t, "https://loja.example.com", creative.LinkURL)
		assert.Equal(t, "https://cdn.fb.com/p.jpg", creative.ImageURL)
		assert.Equal(t, domain.CreativeTypeImage, creative.Type)
		assert.Equal(t, domain.CreativeFetchSuccess, creative.FetchStatus)
	})

	t.Run("Creative sem asset nem texto fica partial", func(t *testing.T) {
		creative := service.buildCreative("WS001", "ACC001", "ad1", &metadomain.AdCreative{ID: "cr1"})
		assert.Equal(t, domain.CreativeTypeUnknown, creative.Type)
		assert.Equal(t, domain.CreativeFetchPartial, creative.FetchStatus)
	})
}
