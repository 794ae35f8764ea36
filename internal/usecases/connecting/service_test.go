package connecting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	metamocks "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/crypto"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *mocks.MockConnectionRepository, *metamocks.MockClient, *crypto.Cipher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockConnectionRepository(ctrl)
	mockClient := metamocks.NewMockClient(ctrl)

	cipher, err := crypto.NewCipher("segredo-de-teste")
	assert.NoError(t, err)

	cfg := &config.Config{
		Meta: config.Meta{
			RequiredScopes: []string{"ads_read", "read_insights", "business_management"},
		},
	}

	service := NewService(mockRepo, mockClient, cipher, cfg)

	return service, mockRepo, mockClient, cipher
}

func connectionFixture(cipher *crypto.Cipher, token string) *domain.Connection {
	encrypted, _ := cipher.Encrypt(token)
	return &domain.Connection{
		ID:          "CONN01",
		WorkspaceID: "WS001",
		Status:      domain.ConnectionStatusConnected,
		BusinessID:  "123456",
		Scopes:      []string{"ads_read", "read_insights", "business_management"},
		AccessToken: encrypted,
		IsDefault:   true,
	}
}

func TestExpiryStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		expiresAt     *time.Time
		validatedAt   *time.Time
		expected      domain.TokenExpiryState
		expectedDays  int
		expectedEstim bool
	}{
		{
			name:         "Token com validade longa deve ser valid",
			expiresAt:    timePtr(now.AddDate(0, 0, 45)),
			expected:     domain.TokenExpiryValid,
			expectedDays: 45,
		},
		{
			name:         "Token a 3 dias do vencimento deve ser expiring_soon",
			expiresAt:    timePtr(now.AddDate(0, 0, 3)),
			expected:     domain.TokenExpiryExpiringSoon,
			expectedDays: 3,
		},
		{
			name:         "Token a exatamente 7 dias deve ser expiring_soon",
			expiresAt:    timePtr(now.AddDate(0, 0, 7)),
			expected:     domain.TokenExpiryExpiringSoon,
			expectedDays: 7,
		},
		{
			name:         "Token vencido deve ser expired com zero dias",
			expiresAt:    timePtr(now.AddDate(0, 0, -2)),
			expected:     domain.TokenExpiryExpired,
			expectedDays: 0,
		},
		{
			name:          "Sem data exata estima 60 dias a partir da última validação",
			validatedAt:   timePtr(now.AddDate(0, 0, -10)),
			expected:      domain.TokenExpiryValid,
			expectedDays:  50,
			expectedEstim: true,
		},
		{
			name:     "Sem data e sem validação o estado é unknown",
			expected: domain.TokenExpiryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockRepo, _, cipher := newTestService(t)
			service.now = func() time.Time { return now }

			connection := connectionFixture(cipher, "token-antigo")
			connection.TokenExpiresAt = tt.expiresAt
			connection.LastValidatedAt = tt.validatedAt

			mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)

			status, err := service.ExpiryStatus("WS001")
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, status.Status)
			assert.Equal(t, tt.expectedDays, status.DaysRemaining)
			assert.Equal(t, tt.expectedEstim, status.Estimated)
		})
	}
}

func TestCheckAndAutoRefresh(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Token válido não dispara renovação", func(t *testing.T) {
		service, mockRepo, _, cipher := newTestService(t)
		service.now = func() time.Time { return now }

		connection := connectionFixture(cipher, "token-valido")
		connection.TokenExpiresAt = timePtr(now.AddDate(0, 0, 30))

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)

		result, err := service.CheckAndAutoRefresh("WS001")
		assert.NoError(t, err)
		assert.True(t, result.TokenValid)
		assert.False(t, result.Refreshed)
		assert.False(t, result.RequiresReconnect)
		assert.Equal(t, domain.TokenExpiryValid, result.ExpiryStatus)
	})

	t.Run("Token perto de expirar renova exatamente uma vez", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)
		service.now = func() time.Time { return now }

		connection := connectionFixture(cipher, "token-quase-vencido")
		connection.TokenExpiresAt = timePtr(now.AddDate(0, 0, 3))

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().
			ExchangeLongLivedToken("token-quase-vencido").
			Return(&metadomain.TokenResponse{AccessToken: "token-novo", ExpiresIn: 5184000}, nil).
			Times(1)
		mockRepo.EXPECT().
			UpdateToken("CONN01", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := service.CheckAndAutoRefresh("WS001")
		assert.NoError(t, err)
		assert.True(t, result.TokenValid)
		assert.True(t, result.Refreshed)
		assert.False(t, result.RequiresReconnect)
		assert.Equal(t, domain.TokenExpiryValid, result.ExpiryStatus)
	})

	t.Run("Sessão invalidada exige reconexão e nunca reporta token válido", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)
		service.now = func() time.Time { return now }

		connection := connectionFixture(cipher, "token-revogado")
		connection.TokenExpiresAt = timePtr(now.AddDate(0, 0, -1))

		apiErr := &metaclient.APIError{
			StatusCode: 400,
			Body:       `{"error":{"message":"Error validating access token: The session has been invalidated"}}`,
			Response: &metadomain.ErrorResponse{
				Error: metadomain.ErrorDetails{
					Message: "Error validating access token: The session has been invalidated",
					Type:    "OAuthException",
					Code:    190,
				},
			},
		}

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().ExchangeLongLivedToken("token-revogado").Return(nil, apiErr)
		mockRepo.EXPECT().UpdateStatus("CONN01", domain.ConnectionStatusRevoked).Return(nil)

		result, err := service.CheckAndAutoRefresh("WS001")
		assert.NoError(t, err)
		assert.True(t, result.RequiresReconnect)
		assert.False(t, result.TokenValid)
		assert.False(t, result.Refreshed)
	})

	t.Run("Conexão já revogada não tenta renovar", func(t *testing.T) {
		service, mockRepo, _, cipher := newTestService(t)
		service.now = func() time.Time { return now }

		connection := connectionFixture(cipher, "token-qualquer")
		connection.Status = domain.ConnectionStatusRevoked
		connection.TokenExpiresAt = timePtr(now.AddDate(0, 0, 3))

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)

		result, err := service.CheckAndAutoRefresh("WS001")
		assert.NoError(t, err)
		assert.True(t, result.RequiresReconnect)
		assert.False(t, result.TokenValid)
	})

	t.Run("Falha transitória na renovação mantém token que ainda não venceu", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)
		service.now = func() time.Time { return now }

		connection := connectionFixture(cipher, "token-quase-vencido")
		connection.TokenExpiresAt = timePtr(now.AddDate(0, 0, 5))

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().
			ExchangeLongLivedToken("token-quase-vencido").
			Return(nil, assert.AnError)

		result, err := service.CheckAndAutoRefresh("WS001")
		assert.NoError(t, err)
		assert.True(t, result.TokenValid)
		assert.False(t, result.Refreshed)
		assert.False(t, result.RequiresReconnect)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Token aceito atualiza a validação e confere escopos", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)

		connection := connectionFixture(cipher, "token-valido")

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().DebugToken("token-valido").Return(&metadomain.DebugTokenInfo{
			IsValid: true,
			Scopes:  []string{"ads_read", "read_insights", "business_management"},
		}, nil)
		mockClient.EXPECT().
			GetAdAccountsByBusinessID("token-valido", "123456").
			Return([]metadomain.AdAccount{{ID: "act_1"}, {ID: "act_2"}}, nil)
		mockRepo.EXPECT().
			UpdateToken("CONN01", connection.AccessToken, gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := service.Validate("WS001")
		assert.NoError(t, err)
		assert.True(t, result.Connected)
		assert.Empty(t, result.MissingScopes)
		assert.Equal(t, 2, result.AdAccountCount)
	})

	t.Run("Escopo faltante aparece em missing_scopes", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)

		connection := connectionFixture(cipher, "token-sem-escopo")

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().DebugToken("token-sem-escopo").Return(&metadomain.DebugTokenInfo{
			IsValid: true,
			Scopes:  []string{"ads_read"},
		}, nil)
		mockClient.EXPECT().
			GetAdAccountsByBusinessID("token-sem-escopo", "123456").
			Return(nil, assert.AnError)
		mockRepo.EXPECT().
			UpdateToken("CONN01", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		result, err := service.Validate("WS001")
		assert.NoError(t, err)
		assert.True(t, result.Connected)
		assert.ElementsMatch(t, []string{"read_insights", "business_management"}, result.MissingScopes)
	})

	t.Run("Token recusado marca a conexão como revogada", func(t *testing.T) {
		service, mockRepo, mockClient, cipher := newTestService(t)

		connection := connectionFixture(cipher, "token-morto")

		mockRepo.EXPECT().GetDefaultByWorkspace("WS001").Return(connection, nil)
		mockClient.EXPECT().DebugToken("token-morto").Return(&metadomain.DebugTokenInfo{IsValid: false}, nil)
		mockRepo.EXPECT().UpdateStatus("CONN01", domain.ConnectionStatusRevoked).Return(nil)

		result, err := service.Validate("WS001")
		assert.NoError(t, err)
		assert.False(t, result.Connected)
	})

	t.Run("Workspace sem conexão devolve erro", func(t *testing.T) {
		service, mockRepo, _, _ := newTestService(t)

		mockRepo.EXPECT().GetDefaultByWorkspace("WS404").Return(nil, nil)

		_, err := service.Validate("WS404")
		assert.ErrorIs(t, err, ErrConnectionNotFound)
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
