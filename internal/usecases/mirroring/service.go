package mirroring

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDatabaseOperation = errors.New("database operation error")
)

// TokenProvider entrega a conexão default do workspace com o token já
// decifrado
type TokenProvider interface {
	ActiveConnection(workspaceID string) (*domain.Connection, string, error)
}

type MirrorService interface {
	SyncEntities(workspaceID, accountID string, force bool) (*domain.EntitySyncResult, error)
	ListEntities(workspaceID, accountID string, entityTypes []domain.EntityType) ([]*domain.EntityCacheRecord, error)
}

type Service struct {
	accountRepo     repository.AccountRepository
	entityCacheRepo repository.EntityCacheRepository
	connections     TokenProvider
	metaClient      metaclient.Client
	cfg             *config.Config
	now             func() time.Time
}

func NewService(
	accountRepo repository.AccountRepository,
	entityCacheRepo repository.EntityCacheRepository,
	connections TokenProvider,
	metaClient metaclient.Client,
	cfg *config.Config,
) *Service {
	return &Service{
		accountRepo:     accountRepo,
		entityCacheRepo: entityCacheRepo,
		connections:     connections,
		metaClient:      metaClient,
		cfg:             cfg,
		now:             time.Now,
	}
}

// SyncEntities espelha campanhas, conjuntos e anúncios da conta. Enquanto o
// espelho estiver dentro da janela de validade, nenhuma chamada ao origin é
// feita; force ignora a janela. Falha em um tipo de entidade não derruba os
// demais.
func (s *Service) SyncEntities(workspaceID, accountID string, force bool) (*domain.EntitySyncResult, error) {
	account, err := s.getAccount(workspaceID, accountID)
	if err != nil {
		return nil, err
	}

	result := &domain.EntitySyncResult{AccountID: accountID}

	if !force {
		fresh, counts := s.checkFreshness(workspaceID, accountID)
		if fresh {
			result.FromCache = true
			result.Campaigns = counts[domain.EntityTypeCampaign]
			result.AdSets = counts[domain.EntityTypeAdSet]
			result.Ads = counts[domain.EntityTypeAd]
			return result, nil
		}
	}

	_, token, err := s.connections.ActiveConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	syncedAt := s.now()

	campaigns, err := s.metaClient.GetCampaignsByAccountID(token, account.ExternalID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("campaign: %v", err))
	} else {
		records := s.campaignRecords(workspaceID, accountID, campaigns, syncedAt)
		if err := s.entityCacheRepo.UpsertBatch(records); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("campaign: %v", err))
		} else {
			result.Campaigns = len(records)
		}
	}

	adSets, err := s.metaClient.GetAdSetsByAccountID(token, account.ExternalID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("adset: %v", err))
	} else {
		records := s.adSetRecords(workspaceID, accountID, adSets, syncedAt)
		if err := s.entityCacheRepo.UpsertBatch(records); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("adset: %v", err))
		} else {
			result.AdSets = len(records)
		}
	}

	ads, err := s.metaClient.GetAdsByAccountID(token, account.ExternalID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("ad: %v", err))
	} else {
		records := s.adRecords(workspaceID, accountID, ads, syncedAt)
		if err := s.entityCacheRepo.UpsertBatch(records); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ad: %v", err))
		} else {
			result.Ads = len(records)
		}
	}

	logrus.WithFields(logrus.Fields{
		"component":  "mirroring",
		"account_id": accountID,
		"campaigns":  result.Campaigns,
		"adsets":     result.AdSets,
		"ads":        result.Ads,
		"errors":     len(result.Errors),
	}).Info("entities mirrored")

	return result, nil
}

func (s *Service) ListEntities(workspaceID, accountID string, entityTypes []domain.EntityType) ([]*domain.EntityCacheRecord, error) {
	if _, err := s.getAccount(workspaceID, accountID); err != nil {
		return nil, err
	}

	records, err := s.entityCacheRepo.ListByAccount(workspaceID, accountID, entityTypes)
	if err != nil {
		logrus.WithField("error", err).Error("mirroring: error listing entities")
		return nil, NewMirrorError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao listar entidades no banco de dados")
	}

	return records, nil
}

func (s *Service) getAccount(workspaceID, accountID string) (*domain.AdAccount, error) {
	account, err := s.accountRepo.GetAccountByID(workspaceID, accountID)
	if err != nil {
		logrus.WithField("error", err).Error("mirroring: error fetching account")
		return nil, NewMirrorError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao buscar conta no banco de dados")
	}

	if account == nil {
		return nil, NewMirrorError(ErrAccountNotFound, apiErrors.ErrAccountUnknown, "Conta de anúncios não encontrada")
	}

	return account, nil
}

// checkFreshness devolve se o espelho inteiro ainda está dentro da janela
// de validade, junto com as contagens atuais por tipo
func (s *Service) checkFreshness(workspaceID, accountID string) (bool, map[domain.EntityType]int) {
	freshness, err := s.entityCacheRepo.GetFreshness(workspaceID, accountID)
	if err != nil {
		logrus.WithField("error", err).Warn("mirroring: error checking mirror freshness")
		return false, nil
	}

	if freshness == nil || freshness.LastSyncedAt == nil {
		return false, nil
	}

	ttl := time.Duration(s.cfg.EntitySync.TTLHours) * time.Hour
	if s.now().Sub(*freshness.LastSyncedAt) >= ttl {
		return false, nil
	}

	return true, freshness.CountsByType
}

func (s *Service) campaignRecords(workspaceID, accountID string, campaigns []metadomain.Campaign, syncedAt time.Time) []*domain.EntityCacheRecord {
	records := make([]*domain.EntityCacheRecord, 0, len(campaigns))
	for _, c := range campaigns {
		records = append(records, &domain.EntityCacheRecord{
			WorkspaceID:     workspaceID,
			AccountID:       accountID,
			EntityType:      domain.EntityTypeCampaign,
			EntityID:        c.ID,
			Name:            c.Name,
			EffectiveStatus: c.EffectiveStatus,
			DailyBudget:     centsToMajor(c.DailyBudget),
			LifetimeBudget:  centsToMajor(c.LifetimeBudget),
			LastSyncedAt:    syncedAt,
		})
	}
	return records
}

func (s *Service) adSetRecords(workspaceID, accountID string, adSets []metadomain.AdSet, syncedAt time.Time) []*domain.EntityCacheRecord {
	records := make([]*domain.EntityCacheRecord, 0, len(adSets))
	for _, a := range adSets {
		campaignID := a.CampaignID
		records = append(records, &domain.EntityCacheRecord{
			WorkspaceID:     workspaceID,
			AccountID:       accountID,
			EntityType:      domain.EntityTypeAdSet,
			EntityID:        a.ID,
			Name:            a.Name,
			EffectiveStatus: a.EffectiveStatus,
			CampaignID:      &campaignID,
			DailyBudget:     centsToMajor(a.DailyBudget),
			LifetimeBudget:  centsToMajor(a.LifetimeBudget),
			LastSyncedAt:    syncedAt,
		})
	}
	return records
}

func (s *Service) adRecords(workspaceID, accountID string, ads []metadomain.Ad, syncedAt time.Time) []*domain.EntityCacheRecord {
	records := make([]*domain.EntityCacheRecord, 0, len(ads))
	for _, a := range ads {
		campaignID := a.CampaignID
		adSetID := a.AdSetID
		records = append(records, &domain.EntityCacheRecord{
			WorkspaceID:     workspaceID,
			AccountID:       accountID,
			EntityType:      domain.EntityTypeAd,
			EntityID:        a.ID,
			Name:            a.Name,
			EffectiveStatus: a.EffectiveStatus,
			CampaignID:      &campaignID,
			AdSetID:         &adSetID,
			LastSyncedAt:    syncedAt,
		})
	}
	return records
}

// centsToMajor converte o budget devolvido pelo Graph (string em centavos)
// para a unidade maior da moeda
func centsToMajor(raw string) *float64 {
	if raw == "" {
		return nil
	}

	cents, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.WithField("value", raw).Warn("mirroring: unparseable budget value")
		return nil
	}

	value := cents / 100
	return &value
}

// MirrorError é um erro com contexto adicional para o espelho de entidades
type MirrorError struct {
	Err     error
	Code    string
	Details string
}

func (e *MirrorError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *MirrorError) Unwrap() error {
	return e.Err
}

func NewMirrorError(err error, code string, details string) *MirrorError {
	return &MirrorError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
