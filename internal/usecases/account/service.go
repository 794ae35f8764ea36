package account

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// metaAccountStatusActive é o único account_status do Graph tratado como
// conta ativa; os demais (disabled, unsettled etc.) viram INACTIVE
const metaAccountStatusActive = 1

// TokenProvider entrega a conexão default do workspace com o token já
// decifrado
type TokenProvider interface {
	ActiveConnection(workspaceID string) (*domain.Connection, string, error)
}

type AccountService interface {
	ListAdAccounts(workspaceID string, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error)
	SyncAccounts(workspaceID string) (*domain.SyncAccountsResponse, error)
	UpdateAccount(workspaceID string, request *domain.UpdateAdAccountRequest) (*domain.AdAccount, error)
}

type Service struct {
	accountRepository repository.AccountRepository
	connections       TokenProvider
	metaClient        metaclient.Client
}

func NewService(
	accountRepository repository.AccountRepository,
	connections TokenProvider,
	metaClient metaclient.Client,
) AccountService {
	return &Service{
		accountRepository: accountRepository,
		connections:       connections,
		metaClient:        metaClient,
	}
}

func (s *Service) ListAdAccounts(workspaceID string, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error) {
	accounts, err := s.accountRepository.ListAccounts(workspaceID, availableStatus)
	if err != nil {
		return nil, NewAccountError(ErrFetchAccounts, apiErrors.ErrDatabaseOperation, "Falha ao listar contas no banco de dados")
	}

	return accounts, nil
}

// SyncAccounts descobre as contas de anúncio do business manager da
// connection e espelha no banco. Contas já conhecidas são atualizadas pelo
// upsert; contas novas ganham um id próprio.
func (s *Service) SyncAccounts(workspaceID string) (*domain.SyncAccountsResponse, error) {
	connection, token, err := s.connections.ActiveConnection(workspaceID)
	if err != nil {
		return nil, NewAccountError(ErrNoConnection, apiErrors.ErrConnectionNotFound, "Nenhuma conexão ativa para o workspace")
	}

	fetched, err := s.metaClient.GetAdAccountsByBusinessID(token, connection.BusinessID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component":    "account",
			"workspace_id": workspaceID,
			"error":        err,
		}).Error("error fetching ad accounts from origin")
		return nil, NewAccountError(ErrMetaIntegration, apiErrors.ErrExternalService, "Falha ao obter contas da API do Meta")
	}

	existing, err := s.accountRepository.ListAccounts(workspaceID, nil)
	if err != nil {
		return nil, NewAccountError(ErrFetchAccounts, apiErrors.ErrDatabaseOperation, "Falha ao consultar contas existentes no banco de dados")
	}

	existingByExternalID := make(map[string]*domain.AdAccount, len(existing))
	for _, account := range existing {
		existingByExternalID[account.ExternalID] = account
	}

	created := 0
	accounts := make([]*domain.AdAccount, 0, len(fetched))
	for _, acc := range fetched {
		externalID := acc.AccountID
		if externalID == "" {
			externalID = strings.TrimPrefix(acc.ID, "act_")
		}

		accountID := ""
		if known, exists := existingByExternalID[externalID]; exists {
			accountID = known.ID
		} else {
			accountID, err = utils.GenerateID()
			if err != nil {
				return nil, NewAccountError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar identificador único para conta")
			}
			created++
		}

		status := domain.AdAccountStatusInactive
		if acc.Status == metaAccountStatusActive {
			status = domain.AdAccountStatusActive
		}

		accounts = append(accounts, &domain.AdAccount{
			ID:           accountID,
			WorkspaceID:  workspaceID,
			ConnectionID: connection.ID,
			ExternalID:   externalID,
			Name:         acc.Name,
			Currency:     acc.Currency,
			Timezone:     acc.Timezone,
			Status:       status,
		})
	}

	if err := s.accountRepository.SaveOrUpdate(accounts); err != nil {
		return nil, NewAccountError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao salvar contas")
	}

	logrus.WithFields(logrus.Fields{
		"component":    "account",
		"workspace_id": workspaceID,
		"total":        len(accounts),
		"created":      created,
	}).Info("ad accounts mirrored")

	return &domain.SyncAccountsResponse{
		Total:   len(accounts),
		Created: created,
		Message: fmt.Sprintf("%d contas sincronizadas (%d novas)", len(accounts), created),
	}, nil
}

func (s *Service) UpdateAccount(workspaceID string, request *domain.UpdateAdAccountRequest) (*domain.AdAccount, error) {
	if request.ID == "" {
		return nil, ErrAccountIDRequired
	}

	account, err := s.accountRepository.GetAccountByID(workspaceID, request.ID)
	if err != nil {
		logrus.Error("Error getting account by id on the repository:", err)
		return nil, NewAccountError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Erro ao buscar conta no banco de dados")
	}

	if account == nil {
		return nil, NewAccountErrorWithID(ErrAccountNotFound, apiErrors.ErrInvalidRequest, request.ID, "Conta não encontrada")
	}

	// Requisição sem campos é um no-op
	if request.Status == nil && request.ClientID == nil {
		return account, nil
	}

	if err := s.accountRepository.UpdateAccount(workspaceID, request); err != nil {
		logrus.Error("Error updating account on the repository:", err)
		return nil, NewAccountErrorWithID(ErrUpdateAccount, apiErrors.ErrDatabaseOperation, request.ID, "Falha ao atualizar conta no banco de dados")
	}

	if request.Status != nil {
		account.Status = *request.Status
	}
	if request.ClientID != nil {
		account.ClientID = request.ClientID
	}

	return account, nil
}
