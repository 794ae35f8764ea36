package connecting

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/crypto"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// expiringSoonDays define a janela em que o token ainda vale mas já deve
// ser renovado proativamente
const expiringSoonDays = 7

// estimatedTokenLifetimeDays é a validade típica de um token de longa
// duração quando a plataforma não informa a data exata
const estimatedTokenLifetimeDays = 60

type ConnectionService interface {
	Connect(workspaceID, accessToken, businessID string) (*domain.ConnectionResult, error)
	Validate(workspaceID string) (*domain.ConnectionResult, error)
	ExpiryStatus(workspaceID string) (*domain.TokenExpiryStatus, error)
	Refresh(workspaceID string) (*domain.RefreshResult, error)
	CheckAndAutoRefresh(workspaceID string) (*domain.TokenCheckResult, error)
	ActiveConnection(workspaceID string) (*domain.Connection, string, error)
}

type Service struct {
	connectionRepo repository.ConnectionRepository
	metaClient     metaclient.Client
	cipher         *crypto.Cipher
	cfg            *config.Config
	now            func() time.Time
}

func NewService(
	connectionRepo repository.ConnectionRepository,
	metaClient metaclient.Client,
	cipher *crypto.Cipher,
	cfg *config.Config,
) *Service {
	return &Service{
		connectionRepo: connectionRepo,
		metaClient:     metaClient,
		cipher:         cipher,
		cfg:            cfg,
		now:            time.Now,
	}
}

// Connect troca o token recebido do fluxo OAuth por um token de longa
// duração e registra a conexão do workspace
func (s *Service) Connect(workspaceID, accessToken, businessID string) (*domain.ConnectionResult, error) {
	if accessToken == "" {
		return nil, NewConnectionError(ErrTokenRequired, apiErrors.ErrMissingRequiredData, "Token de acesso é obrigatório")
	}

	tokenResp, err := s.metaClient.ExchangeLongLivedToken(accessToken)
	if err != nil {
		logrus.WithField("error", err).Error("connection: error exchanging token")
		return nil, NewConnectionError(ErrTokenExchange, apiErrors.ErrExternalService, "Falha ao trocar token junto à plataforma")
	}

	info, err := s.metaClient.DebugToken(tokenResp.AccessToken)
	if err != nil {
		logrus.WithField("error", err).Error("connection: error inspecting token")
		return nil, NewConnectionError(ErrTokenDebug, apiErrors.ErrExternalService, "Falha ao inspecionar token junto à plataforma")
	}

	encrypted, err := s.cipher.Encrypt(tokenResp.AccessToken)
	if err != nil {
		return nil, NewConnectionError(err, apiErrors.ErrInternalServer, "Falha ao cifrar token de acesso")
	}

	connectionID, err := utils.GenerateID()
	if err != nil {
		return nil, NewConnectionError(err, apiErrors.ErrInternalServer, "Falha ao gerar identificador da conexão")
	}

	expiresAt := s.tokenExpiration(tokenResp.ExpiresIn, info)
	validatedAt := s.now()

	connection := &domain.Connection{
		ID:              connectionID,
		WorkspaceID:     workspaceID,
		Status:          domain.ConnectionStatusConnected,
		BusinessID:      businessID,
		Scopes:          info.Scopes,
		AccessToken:     encrypted,
		TokenExpiresAt:  expiresAt,
		LastValidatedAt: &validatedAt,
		IsDefault:       true,
	}

	if err := s.connectionRepo.Save(connection); err != nil {
		logrus.WithField("error", err).Error("connection: error saving connection")
		return nil, NewConnectionError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao salvar conexão no banco de dados")
	}

	result := &domain.ConnectionResult{
		ConnectionID:  connectionID,
		Connected:     info.IsValid,
		MissingScopes: s.missingScopes(info.Scopes),
	}

	accounts, err := s.metaClient.GetAdAccountsByBusinessID(tokenResp.AccessToken, businessID)
	if err != nil {
		logrus.WithField("error", err).Warn("connection: error counting ad accounts")
	} else {
		result.AdAccountCount = len(accounts)
	}

	logrus.WithFields(logrus.Fields{
		"component":     "connecting",
		"workspace_id":  workspaceID,
		"connection_id": connectionID,
	}).Info("connection established")

	return result, nil
}

// Validate verifica junto à plataforma se o token ainda é aceito e se os
// escopos necessários continuam concedidos
func (s *Service) Validate(workspaceID string) (*domain.ConnectionResult, error) {
	connection, token, err := s.ActiveConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	result := &domain.ConnectionResult{ConnectionID: connection.ID}

	info, err := s.metaClient.DebugToken(token)
	if err != nil {
		if s.isReconnectError(err) {
			s.markRevoked(connection.ID)
			return result, nil
		}
		logrus.WithField("error", err).Error("connection: error validating token")
		return nil, NewConnectionError(ErrTokenDebug, apiErrors.ErrExternalService, "Falha ao validar token junto à plataforma")
	}

	if !info.IsValid {
		s.markRevoked(connection.ID)
		return result, nil
	}

	result.Connected = true
	result.MissingScopes = s.missingScopes(info.Scopes)

	accounts, err := s.metaClient.GetAdAccountsByBusinessID(token, connection.BusinessID)
	if err != nil {
		logrus.WithField("error", err).Warn("connection: error counting ad accounts")
	} else {
		result.AdAccountCount = len(accounts)
	}

	validatedAt := s.now()
	expiresAt := connection.TokenExpiresAt
	if t := info.ExpiresAtTime(); t != nil {
		expiresAt = t
	}

	if err := s.connectionRepo.UpdateToken(connection.ID, connection.AccessToken, expiresAt, validatedAt); err != nil {
		logrus.WithField("error", err).Warn("connection: error updating validation timestamp")
	}

	return result, nil
}

// ExpiryStatus calcula quanto tempo de vida resta ao token sem chamar a
// plataforma. Quando a data exata é desconhecida, estima a partir da
// última validação.
func (s *Service) ExpiryStatus(workspaceID string) (*domain.TokenExpiryStatus, error) {
	connection, err := s.getConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	status := s.expiryStatusFor(connection)
	return &status, nil
}

func (s *Service) expiryStatusFor(connection *domain.Connection) domain.TokenExpiryStatus {
	expiresAt := connection.TokenExpiresAt
	estimated := false

	if expiresAt == nil && connection.LastValidatedAt != nil {
		t := connection.LastValidatedAt.AddDate(0, 0, estimatedTokenLifetimeDays)
		expiresAt = &t
		estimated = true
	}

	if expiresAt == nil {
		return domain.TokenExpiryStatus{Status: domain.TokenExpiryUnknown}
	}

	remaining := expiresAt.Sub(s.now())
	daysRemaining := int(remaining.Hours() / 24)

	status := domain.TokenExpiryValid
	switch {
	case remaining <= 0:
		status = domain.TokenExpiryExpired
		daysRemaining = 0
	case daysRemaining <= expiringSoonDays:
		status = domain.TokenExpiryExpiringSoon
	}

	return domain.TokenExpiryStatus{
		Status:        status,
		DaysRemaining: daysRemaining,
		ExpiresAt:     expiresAt,
		Estimated:     estimated,
	}
}

// Refresh troca o token atual por um novo token de longa duração. Quando a
// plataforma recusa a troca por invalidação da sessão, a conexão é marcada
// como revogada e o workspace precisa reconectar manualmente.
func (s *Service) Refresh(workspaceID string) (*domain.RefreshResult, error) {
	connection, token, err := s.ActiveConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	return s.refreshConnection(connection, token), nil
}

func (s *Service) refreshConnection(connection *domain.Connection, token string) *domain.RefreshResult {
	tokenResp, err := s.metaClient.ExchangeLongLivedToken(token)
	if err != nil {
		if s.isReconnectError(err) {
			s.markRevoked(connection.ID)
			return &domain.RefreshResult{RequiresReconnect: true, Error: err.Error()}
		}

		logrus.WithFields(logrus.Fields{
			"component":     "connecting",
			"connection_id": connection.ID,
			"error":         err,
		}).Error("token refresh failed")

		return &domain.RefreshResult{Error: err.Error()}
	}

	encrypted, err := s.cipher.Encrypt(tokenResp.AccessToken)
	if err != nil {
		return &domain.RefreshResult{Error: err.Error()}
	}

	expiresAt := metaclient.CalculateTokenExpiration(tokenResp.ExpiresIn)
	validatedAt := s.now()

	if err := s.connectionRepo.UpdateToken(connection.ID, encrypted, &expiresAt, validatedAt); err != nil {
		logrus.WithField("error", err).Error("connection: error persisting refreshed token")
		return &domain.RefreshResult{Error: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"component":     "connecting",
		"connection_id": connection.ID,
		"expires_at":    expiresAt,
	}).Info("token refreshed")

	return &domain.RefreshResult{Refreshed: true, ExpiresAt: &expiresAt}
}

// CheckAndAutoRefresh aplica a política composta usada antes de cada sync:
// renova o token quando está expirado ou perto de expirar, no máximo uma
// vez, e nunca reporta token válido quando a reconexão manual é necessária.
func (s *Service) CheckAndAutoRefresh(workspaceID string) (*domain.TokenCheckResult, error) {
	connection, err := s.getConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	expiry := s.expiryStatusFor(connection)
	result := &domain.TokenCheckResult{ExpiryStatus: expiry.Status}

	if connection.Status == domain.ConnectionStatusRevoked {
		result.RequiresReconnect = true
		return result, nil
	}

	if expiry.Status != domain.TokenExpiryExpired && expiry.Status != domain.TokenExpiryExpiringSoon {
		result.TokenValid = connection.Status == domain.ConnectionStatusConnected
		return result, nil
	}

	token, err := s.cipher.Decrypt(connection.AccessToken)
	if err != nil {
		return nil, NewConnectionError(ErrTokenDecrypt, apiErrors.ErrInternalServer, "Falha ao decifrar token de acesso")
	}

	refresh := s.refreshConnection(connection, token)
	result.Refreshed = refresh.Refreshed

	if refresh.RequiresReconnect {
		result.RequiresReconnect = true
		return result, nil
	}

	if refresh.Refreshed {
		result.TokenValid = true
		result.ExpiryStatus = domain.TokenExpiryValid
		return result, nil
	}

	// Renovação falhou por erro transitório: o token atual ainda pode
	// servir se não estiver de fato expirado
	result.TokenValid = expiry.Status != domain.TokenExpiryExpired

	return result, nil
}

// ActiveConnection devolve a conexão default do workspace com o token já
// decifrado, pronto para uso nas chamadas ao Graph
func (s *Service) ActiveConnection(workspaceID string) (*domain.Connection, string, error) {
	connection, err := s.getConnection(workspaceID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.cipher.Decrypt(connection.AccessToken)
	if err != nil {
		return nil, "", NewConnectionError(ErrTokenDecrypt, apiErrors.ErrInternalServer, "Falha ao decifrar token de acesso")
	}

	return connection, token, nil
}

func (s *Service) getConnection(workspaceID string) (*domain.Connection, error) {
	connection, err := s.connectionRepo.GetDefaultByWorkspace(workspaceID)
	if err != nil {
		logrus.WithField("error", err).Error("connection: error fetching connection")
		return nil, NewConnectionError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao buscar conexão no banco de dados")
	}

	if connection == nil {
		return nil, NewConnectionError(ErrConnectionNotFound, apiErrors.ErrConnectionNotFound, "Workspace não possui conexão configurada")
	}

	return connection, nil
}

func (s *Service) missingScopes(granted []string) []string {
	grantedSet := make(map[string]bool, len(granted))
	for _, scope := range granted {
		grantedSet[scope] = true
	}

	var missing []string
	for _, required := range s.cfg.Meta.RequiredScopes {
		if !grantedSet[required] {
			missing = append(missing, required)
		}
	}

	return missing
}

func (s *Service) isReconnectError(err error) bool {
	var apiErr *metaclient.APIError
	return errors.As(err, &apiErr) && apiErr.RequiresReconnect()
}

func (s *Service) markRevoked(connectionID string) {
	if err := s.connectionRepo.UpdateStatus(connectionID, domain.ConnectionStatusRevoked); err != nil {
		logrus.WithField("error", err).Warn("connection: error marking connection as revoked")
	}
}

func (s *Service) tokenExpiration(expiresIn int64, info *metadomain.DebugTokenInfo) *time.Time {
	if t := info.ExpiresAtTime(); t != nil {
		return t
	}
	expiresAt := metaclient.CalculateTokenExpiration(expiresIn)
	return &expiresAt
}
