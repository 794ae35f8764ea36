package creatives

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/cache/redis"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/storage"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

var (
	ErrNoAdIDs           = errors.New("ad ids are required")
	ErrDatabaseOperation = errors.New("database operation error")
)

// maxFetchAttempts limita as tentativas de busca por anúncio; depois disso
// o creative fica como failed até um force_refresh
const maxFetchAttempts = 3

// TokenProvider entrega a conexão default do workspace com o token já
// decifrado
type TokenProvider interface {
	ActiveConnection(workspaceID string) (*domain.Connection, string, error)
}

type CreativeService interface {
	ResolveBatch(ctx context.Context, workspaceID string, request *domain.CreativeBatchRequest) (*domain.CreativeBatchResponse, error)
}

// Service resolve creatives em duas fases: a primeira responde só com o
// que já está em cache (Redis e banco); a segunda busca o que falta no
// origin em background e alimenta os dois tiers.
type Service struct {
	creativeRepo repository.CreativeRepository
	cache        redis.Cache
	uploader     storage.Uploader
	connections  TokenProvider
	metaClient   metaclient.Client
	cfg          *config.Config
	registry     *inflightRegistry
	runAsync     func(func())
}

func NewService(
	creativeRepo repository.CreativeRepository,
	cache redis.Cache,
	uploader storage.Uploader,
	connections TokenProvider,
	metaClient metaclient.Client,
	cfg *config.Config,
) *Service {
	return &Service{
		creativeRepo: creativeRepo,
		cache:        cache,
		uploader:     uploader,
		connections:  connections,
		metaClient:   metaClient,
		cfg:          cfg,
		registry:     newInflightRegistry(),
		runAsync:     func(f func()) { go f() },
	}
}

// ResolveBatch devolve imediatamente o que o cache tem e agenda a busca do
// restante. O chamador consulta de novo mais tarde para pegar o que estava
// em loading.
func (s *Service) ResolveBatch(ctx context.Context, workspaceID string, request *domain.CreativeBatchRequest) (*domain.CreativeBatchResponse, error) {
	if len(request.AdIDs) == 0 {
		return nil, NewCreativeError(ErrNoAdIDs, apiErrors.ErrMissingRequiredData, "Nenhum anúncio informado")
	}

	response := &domain.CreativeBatchResponse{
		Creatives: make(map[string]*domain.Creative),
		Errors:    make(map[string]string),
	}

	missing := s.resolveFromCache(ctx, workspaceID, request, response)

	if request.ForceRefresh {
		missing = request.AdIDs
	}

	if len(missing) == 0 {
		return response, nil
	}

	key := inflightKey(workspaceID, missing)
	if s.registry.tryAcquire(key) {
		adIDs := missing
		s.runAsync(func() {
			defer s.registry.release(key)
			s.resolveFromOrigin(workspaceID, request.AccountID, adIDs, request.PreferHD)
		})
	}

	response.Loading = missing

	return response, nil
}

// resolveFromCache é a fase um: Redis primeiro, banco depois. Devolve os
// ids que ainda precisam do origin.
func (s *Service) resolveFromCache(ctx context.Context, workspaceID string, request *domain.CreativeBatchRequest, response *domain.CreativeBatchResponse) []string {
	pending := make([]string, 0, len(request.AdIDs))

	for _, adID := range request.AdIDs {
		creative := s.fromHotTier(ctx, workspaceID, adID)
		if creative.IsComplete() {
			response.Creatives[adID] = creative
			continue
		}
		pending = append(pending, adID)
	}

	if len(pending) == 0 {
		return nil
	}

	stored, err := s.creativeRepo.GetByAdIDs(workspaceID, pending)
	if err != nil {
		logrus.WithField("error", err).Error("creatives: error fetching creatives from database")
		return pending
	}

	missing := make([]string, 0, len(pending))
	for _, adID := range pending {
		creative, found := stored[adID]
		if found && creative.IsComplete() {
			response.Creatives[adID] = creative
			s.promoteToHotTier(ctx, workspaceID, creative)
			continue
		}

		if found && creative.FetchStatus == domain.CreativeFetchFailed {
			if creative.LastError != nil {
				response.Errors[adID] = *creative.LastError
			}
			if creative.FetchAttempts >= maxFetchAttempts && !request.ForceRefresh {
				continue
			}
		}

		missing = append(missing, adID)
	}

	return missing
}

func (s *Service) fromHotTier(ctx context.Context, workspaceID, adID string) *domain.Creative {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, hotTierKey(workspaceID, adID))
	if err != nil {
		logrus.WithField("error", err).Warn("creatives: error reading hot tier")
		return nil
	}
	if raw == nil {
		return nil
	}

	var creative domain.Creative
	if err := json.Unmarshal(raw, &creative); err != nil {
		logrus.WithField("error", err).Warn("creatives: corrupted hot tier entry")
		return nil
	}

	return &creative
}

func (s *Service) promoteToHotTier(ctx context.Context, workspaceID string, creative *domain.Creative) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(creative)
	if err != nil {
		return
	}

	ttl := time.Duration(s.cfg.Redis.TTLMinutes) * time.Minute
	if err := s.cache.Set(ctx, hotTierKey(workspaceID, creative.AdID), raw, ttl); err != nil {
		logrus.WithField("error", err).Warn("creatives: error writing hot tier")
	}
}

// resolveFromOrigin é a fase dois: busca o lote no Graph, grava os assets
// no storage durável e alimenta os dois tiers de cache. Erros aqui nunca
// apagam o que a fase um já tinha.
func (s *Service) resolveFromOrigin(workspaceID, accountID string, adIDs []string, preferHD bool) {
	_, token, err := s.connections.ActiveConnection(workspaceID)
	if err != nil {
		logrus.WithField("error", err).Error("creatives: no active connection for origin fetch")
		s.markFailed(workspaceID, adIDs, err)
		return
	}

	fetched, err := s.metaClient.GetAdCreatives(token, adIDs)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "creatives",
			"ads":       len(adIDs),
			"error":     err,
		}).Error("origin creative fetch failed")
		s.markFailed(workspaceID, adIDs, err)
		return
	}

	ctx := context.Background()
	resolved := 0

	for _, adID := range adIDs {
		adCreative, found := fetched[adID]
		if !found {
			s.markFailed(workspaceID, []string{adID}, fmt.Errorf("creative não encontrado no origin"))
			continue
		}

		creative := s.buildCreative(workspaceID, accountID, adID, adCreative)
		s.cacheAsset(creative, preferHD)

		if err := s.creativeRepo.SaveOrUpdate(creative); err != nil {
			logrus.WithField("error", err).Error("creatives: error saving creative")
			continue
		}

		s.promoteToHotTier(ctx, workspaceID, creative)
		resolved++
	}

	logrus.WithFields(logrus.Fields{
		"component": "creatives",
		"requested": len(adIDs),
		"resolved":  resolved,
	}).Info("creative batch resolved from origin")
}

// markFailed registra a falha sem descartar dados já resolvidos: linhas
// existentes apenas acumulam a tentativa e o erro
func (s *Service) markFailed(workspaceID string, adIDs []string, cause error) {
	stored, err := s.creativeRepo.GetByAdIDs(workspaceID, adIDs)
	if err != nil {
		logrus.WithField("error", err).Warn("creatives: error loading creatives to mark failure")
		stored = map[string]*domain.Creative{}
	}

	message := cause.Error()

	for _, adID := range adIDs {
		creative, found := stored[adID]
		if !found {
			creative = &domain.Creative{
				AdID:        adID,
				WorkspaceID: workspaceID,
				Type:        domain.CreativeTypeUnknown,
			}
		}

		creative.FetchStatus = domain.CreativeFetchFailed
		creative.FetchAttempts++
		creative.LastError = &message

		if err := s.creativeRepo.SaveOrUpdate(creative); err != nil {
			logrus.WithField("error", err).Warn("creatives: error persisting failure")
		}
	}
}

func (s *Service) buildCreative(workspaceID, accountID, adID string, adCreative *metadomain.AdCreative) *domain.Creative {
	mined := adCreative.MineStorySpec()

	creative := &domain.Creative{
		AdID:         adID,
		WorkspaceID:  workspaceID,
		AccountID:    accountID,
		ThumbnailURL: adCreative.ThumbnailURL,
		ImageURL:     mined.ImageURL,
		HDImageURL:   adCreative.ImageURL,
		Title:        adCreative.Title,
		Body:         adCreative.Body,
		Description:  mined.Description,
		CallToAction: mined.CallToAction,
		LinkURL:      mined.LinkURL,
	}

	if creative.Title == "" {
		creative.Title = mined.Title
	}
	if creative.Body == "" {
		creative.Body = mined.Body
	}

	switch {
	case adCreative.VideoID != "" || mined.IsVideo:
		creative.Type = domain.CreativeTypeVideo
	case mined.IsCarousel:
		creative.Type = domain.CreativeTypeCarousel
	case creative.HDImageURL != "" || creative.ImageURL != "" || creative.ThumbnailURL != "":
		creative.Type = domain.CreativeTypeImage
	default:
		creative.Type = domain.CreativeTypeUnknown
	}

	if creative.IsComplete() {
		creative.FetchStatus = domain.CreativeFetchSuccess
	} else {
		creative.FetchStatus = domain.CreativeFetchPartial
	}

	return creative
}

// cacheAsset grava a melhor imagem no storage durável; as URLs do CDN do
// origin expiram em poucas horas
func (s *Service) cacheAsset(creative *domain.Creative, preferHD bool) {
	if s.uploader == nil {
		return
	}

	sourceURL := creative.BestImageURL(preferHD)
	if sourceURL == "" {
		return
	}

	key := fmt.Sprintf("%s/%s", creative.WorkspaceID, creative.AdID)

	cachedURL, err := s.uploader.CacheRemote(sourceURL, key)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"ad_id": creative.AdID,
			"error": err,
		}).Warn("creatives: error caching asset to durable storage")
		return
	}

	creative.CachedURL = cachedURL
}

func hotTierKey(workspaceID, adID string) string {
	return fmt.Sprintf("creative:%s:%s", workspaceID, adID)
}

// CreativeError é um erro com contexto adicional para creatives
type CreativeError struct {
	Err     error
	Code    string
	Details string
}

func (e *CreativeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *CreativeError) Unwrap() error {
	return e.Err
}

func NewCreativeError(err error, code string, details string) *CreativeError {
	return &CreativeError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
