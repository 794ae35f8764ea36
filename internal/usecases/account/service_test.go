package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	metamocks "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"go.uber.org/mock/gomock"
)

type fakeTokenProvider struct {
	connection *domain.Connection
	token      string
	err        error
}

func (f *fakeTokenProvider) ActiveConnection(workspaceID string) (*domain.Connection, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.connection, f.token, nil
}

func newTestService(t *testing.T) (*Service, *mocks.MockAccountRepository, *metamocks.MockClient, *fakeTokenProvider) {
	t.Helper()

	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	metaClient := metamocks.NewMockClient(ctrl)
	connections := &fakeTokenProvider{
		connection: &domain.Connection{ID: "CONN01", WorkspaceID: "WS001", BusinessID: "BM123"},
		token:      "token-ok",
	}

	service := NewService(accountRepo, connections, metaClient).(*Service)

	return service, accountRepo, metaClient, connections
}

func TestSyncAccounts(t *testing.T) {
	t.Run("Conta conhecida mantém o id e conta nova ganha id próprio", func(t *testing.T) {
		service, accountRepo, metaClient, _ := newTestService(t)

		metaClient.EXPECT().GetAdAccountsByBusinessID("token-ok", "BM123").Return([]metadomain.AdAccount{
			{ID: "act_111", AccountID: "111", Name: "Loja Centro", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: 1},
			{ID: "act_222", AccountID: "222", Name: "Loja Norte", Currency: "BRL", Timezone: "America/Sao_Paulo", Status: 2},
		}, nil)

		accountRepo.EXPECT().ListAccounts("WS001", nil).Return([]*domain.AdAccount{
			{ID: "ACC111", WorkspaceID: "WS001", ExternalID: "111"},
		}, nil)

		accountRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(accounts []*domain.AdAccount) error {
			assert.Len(t, accounts, 2)

			assert.Equal(t, "ACC111", accounts[0].ID)
			assert.Equal(t, "111", accounts[0].ExternalID)
			assert.Equal(t, domain.AdAccountStatusActive, accounts[0].Status)

			assert.NotEmpty(t, accounts[1].ID)
			assert.NotEqual(t, "ACC111", accounts[1].ID)
			assert.Equal(t, "222", accounts[1].ExternalID)
			assert.Equal(t, domain.AdAccountStatusInactive, accounts[1].Status)
			assert.Equal(t, "CONN01", accounts[1].ConnectionID)
			return nil
		})

		response, err := service.SyncAccounts("WS001")

		assert.NoError(t, err)
		assert.Equal(t, 2, response.Total)
		assert.Equal(t, 1, response.Created)
	})

	t.Run("Prefixo act_ é removido quando o Graph não devolve account_id", func(t *testing.T) {
		service, accountRepo, metaClient, _ := newTestService(t)

		metaClient.EXPECT().GetAdAccountsByBusinessID("token-ok", "BM123").Return([]metadomain.AdAccount{
			{ID: "act_333", Name: "Loja Sul", Status: 1},
		}, nil)
		accountRepo.EXPECT().ListAccounts("WS001", nil).Return([]*domain.AdAccount{}, nil)
		accountRepo.EXPECT().SaveOrUpdate(gomock.Any()).DoAndReturn(func(accounts []*domain.AdAccount) error {
			assert.Equal(t, "333", accounts[0].ExternalID)
			return nil
		})

		_, err := service.SyncAccounts("WS001")
		assert.NoError(t, err)
	})

	t.Run("Workspace sem conexão ativa retorna erro", func(t *testing.T) {
		service, _, _, connections := newTestService(t)
		connections.err = errors.New("connection não encontrada")

		_, err := service.SyncAccounts("WS001")
		assert.ErrorIs(t, err, ErrNoConnection)
	})

	t.Run("Erro do Graph não toca o banco", func(t *testing.T) {
		service, _, metaClient, _ := newTestService(t)

		metaClient.EXPECT().GetAdAccountsByBusinessID("token-ok", "BM123").Return(nil, assert.AnError)

		_, err := service.SyncAccounts("WS001")
		assert.ErrorIs(t, err, ErrMetaIntegration)
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("Atualiza status e devolve a conta atualizada", func(t *testing.T) {
		service, accountRepo, _, _ := newTestService(t)

		newStatus := domain.AdAccountStatusInactive
		request := &domain.UpdateAdAccountRequest{ID: "ACC111", Status: &newStatus}

		accountRepo.EXPECT().GetAccountByID("WS001", "ACC111").Return(&domain.AdAccount{
			ID:     "ACC111",
			Status: domain.AdAccountStatusActive,
		}, nil)
		accountRepo.EXPECT().UpdateAccount("WS001", request).Return(nil)

		account, err := service.UpdateAccount("WS001", request)

		assert.NoError(t, err)
		assert.Equal(t, domain.AdAccountStatusInactive, account.Status)
	})

	t.Run("Requisição sem campos devolve a conta sem tocar o banco", func(t *testing.T) {
		service, accountRepo, _, _ := newTestService(t)

		accountRepo.EXPECT().GetAccountByID("WS001", "ACC111").Return(&domain.AdAccount{
			ID:     "ACC111",
			Status: domain.AdAccountStatusActive,
		}, nil)

		account, err := service.UpdateAccount("WS001", &domain.UpdateAdAccountRequest{ID: "ACC111"})

		assert.NoError(t, err)
		assert.Equal(t, domain.AdAccountStatusActive, account.Status)
	})

	t.Run("Conta inexistente retorna not found", func(t *testing.T) {
		service, accountRepo, _, _ := newTestService(t)

		accountRepo.EXPECT().GetAccountByID("WS001", "ACC404").Return(nil, nil)

		_, err := service.UpdateAccount("WS001", &domain.UpdateAdAccountRequest{ID: "ACC404"})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("ID vazio é rejeitado", func(t *testing.T) {
		service, _, _, _ := newTestService(t)

		_, err := service.UpdateAccount("WS001", &domain.UpdateAdAccountRequest{})
		assert.ErrorIs(t, err, ErrAccountIDRequired)
	})
}

func TestListAdAccounts(t *testing.T) {
	service, accountRepo, _, _ := newTestService(t)

	accountRepo.EXPECT().
		ListAccounts("WS001", []domain.AdAccountStatus{domain.AdAccountStatusActive}).
		Return([]*domain.AdAccount{{ID: "ACC111"}}, nil)

	accounts, err := service.ListAdAccounts("WS001", []domain.AdAccountStatus{domain.AdAccountStatusActive})

	assert.NoError(t, err)
	assert.Len(t, accounts, 1)
}
