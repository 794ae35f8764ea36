package syncing

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrConnectionRevoked = errors.New("connection requires manual reconnect")
	ErrInvalidSyncMode   = errors.New("invalid sync mode")
	ErrDatabaseOperation = errors.New("database operation error")
	ErrNoAccountsToSync  = errors.New("no accounts enabled for sync")
	ErrTokenCheckFailed  = errors.New("token check failed before sync")
)

// ConnectionChecker cobre o que o orquestrador precisa da camada de
// credenciais: a política de renovação automática e o token decifrado
type ConnectionChecker interface {
	CheckAndAutoRefresh(workspaceID string) (*domain.TokenCheckResult, error)
	ActiveConnection(workspaceID string) (*domain.Connection, string, error)
}

type SyncService interface {
	RunSync(workspaceID string, request *domain.SyncRequest) (*domain.SyncResult, error)
	GetSyncStatus(workspaceID string) (*domain.SyncStatusResponse, error)
}

type Service struct {
	accountRepo    repository.AccountRepository
	syncStateRepo  repository.SyncStateRepository
	syncJobRepo    repository.SyncJobRepository
	insightRepo    repository.AdInsightRepository
	connectionRepo repository.ConnectionRepository
	connections    ConnectionChecker
	metaClient     metaclient.Client
	cfg            *config.Config
	now            func() time.Time
	sleep          func(time.Duration)
}

func NewService(
	accountRepo repository.AccountRepository,
	syncStateRepo repository.SyncStateRepository,
	syncJobRepo repository.SyncJobRepository,
	insightRepo repository.AdInsightRepository,
	connectionRepo repository.ConnectionRepository,
	connections ConnectionChecker,
	metaClient metaclient.Client,
	cfg *config.Config,
) *Service {
	return &Service{
		accountRepo:    accountRepo,
		syncStateRepo:  syncStateRepo,
		syncJobRepo:    syncJobRepo,
		insightRepo:    insightRepo,
		connectionRepo: connectionRepo,
		connections:    connections,
		metaClient:     metaClient,
		cfg:            cfg,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

// RunSync executa uma sincronização de insights. As contas são processadas
// sequencialmente para respeitar o rate limit do Graph; erro em uma conta
// não impede as demais.
func (s *Service) RunSync(workspaceID string, request *domain.SyncRequest) (*domain.SyncResult, error) {
	startedAt := s.now()
	result := &domain.SyncResult{StartedAt: startedAt, Errors: []string{}}

	if request.Mode != domain.SyncModeIntraday && request.Mode != domain.SyncModeDaily && request.Mode != domain.SyncModeBackfill {
		return nil, NewSyncError(ErrInvalidSyncMode, apiErrors.ErrInvalidRequest, fmt.Sprintf("Modo de sincronização desconhecido: %s", request.Mode))
	}

	check, err := s.connections.CheckAndAutoRefresh(workspaceID)
	if err != nil {
		return nil, err
	}

	if check.RequiresReconnect {
		return nil, NewSyncError(ErrConnectionRevoked, apiErrors.ErrConnectionRevoked, "A conexão precisa ser reautorizada antes de sincronizar")
	}

	if !check.TokenValid {
		return nil, NewSyncError(ErrTokenCheckFailed, apiErrors.ErrTokenRefreshFailed, "Token de acesso indisponível para sincronização")
	}

	_, token, err := s.connections.ActiveConnection(workspaceID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.resolveAccounts(workspaceID, request.AccountID)
	if err != nil {
		return nil, err
	}

	levels := request.Levels
	if len(levels) == 0 {
		levels = domain.AllInsightLevels
	}

	delay := time.Duration(s.cfg.InsightSync.RequestDelaySeconds) * time.Second

	for i, account := range accounts {
		if i > 0 && delay > 0 {
			s.sleep(delay)
		}

		rows, accountErr := s.syncAccount(workspaceID, token, account, request, levels)
		result.InsightsSynced += rows

		if accountErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", account.ID, accountErr))
			continue
		}

		result.AccountsSynced++
	}

	result.Duration = s.now().Sub(startedAt).String()

	logrus.WithFields(logrus.Fields{
		"component":       "syncing",
		"mode":            request.Mode,
		"accounts_synced": result.AccountsSynced,
		"insights_synced": result.InsightsSynced,
		"errors":          len(result.Errors),
		"duration":        result.Duration,
	}).Info("insight sync finished")

	return result, nil
}

func (s *Service) resolveAccounts(workspaceID, accountID string) ([]*domain.AdAccount, error) {
	if accountID != domain.SyncAllAccounts {
		account, err := s.accountRepo.GetAccountByID(workspaceID, accountID)
		if err != nil {
			return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao buscar conta no banco de dados")
		}
		if account == nil {
			return nil, NewSyncError(ErrAccountNotFound, apiErrors.ErrAccountUnknown, "Conta de anúncios não encontrada")
		}
		return []*domain.AdAccount{account}, nil
	}

	accounts, err := s.accountRepo.ListAccounts(workspaceID, []domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao listar contas no banco de dados")
	}

	enabled := make([]*domain.AdAccount, 0, len(accounts))
	for _, account := range accounts {
		state, err := s.syncStateRepo.Get(workspaceID, account.ID)
		if err != nil {
			logrus.WithField("error", err).Warn("syncing: error fetching sync state")
		}
		// Contas sem estado ainda não sincronizaram; entram habilitadas
		if state == nil || state.Enabled {
			enabled = append(enabled, account)
		}
	}

	if len(enabled) == 0 {
		return nil, NewSyncError(ErrNoAccountsToSync, apiErrors.ErrInvalidRequest, "Nenhuma conta habilitada para sincronização")
	}

	return enabled, nil
}

// syncAccount sincroniza os níveis pedidos de uma conta e atualiza o estado
// de progresso. Devolve o total de linhas gravadas.
func (s *Service) syncAccount(workspaceID, token string, account *domain.AdAccount, request *domain.SyncRequest, levels []domain.InsightLevel) (int, error) {
	state, err := s.syncStateRepo.Get(workspaceID, account.ID)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar sync state: %w", err)
	}

	startDate, endDate := s.dateWindow(request, state)
	syncStart := s.now()

	totalRows := 0
	var firstErr error

	for _, level := range levels {
		rows, levelErr := s.syncLevel(workspaceID, token, account, request.Mode, level, startDate, endDate)
		totalRows += rows
		if levelErr != nil && firstErr == nil {
			firstErr = levelErr
		}
	}

	s.updateState(workspaceID, account, request.Mode, endDate, firstErr, state)

	if firstErr == nil {
		if err := s.accountRepo.UpdateSyncStats(account.ID, s.now(), s.now().Sub(syncStart), totalRows); err != nil {
			logrus.WithField("error", err).Warn("syncing: error updating account sync stats")
		}
	}

	return totalRows, firstErr
}

// syncLevel busca e grava os insights de um nível, com o registro
// append-only do job acompanhando a execução
func (s *Service) syncLevel(workspaceID, token string, account *domain.AdAccount, mode domain.SyncMode, level domain.InsightLevel, startDate, endDate time.Time) (int, error) {
	jobID, err := utils.GenerateID()
	if err != nil {
		return 0, fmt.Errorf("erro ao gerar id do job: %w", err)
	}

	job := &domain.SyncJob{
		ID:          jobID,
		WorkspaceID: workspaceID,
		AccountID:   account.ID,
		Mode:        mode,
		Level:       level,
		Status:      domain.SyncJobStatusPending,
		StartDate:   startDate,
		EndDate:     endDate,
		StartedAt:   s.now(),
	}

	if err := s.syncJobRepo.Create(job); err != nil {
		return 0, fmt.Errorf("erro ao criar sync job: %w", err)
	}

	if err := s.syncJobRepo.MarkRunning(jobID); err != nil {
		logrus.WithField("error", err).Warn("syncing: error marking job as running")
	}

	rows, err := s.metaClient.GetInsights(token, account.ExternalID, level, startDate, endDate)
	if err != nil {
		s.finishJob(jobID, domain.SyncJobStatusError, 0, err)
		return 0, fmt.Errorf("nível %s: %w", level, err)
	}

	entries := s.buildEntries(workspaceID, account.ID, level, rows)

	if err := s.insightRepo.SaveOrUpdate(entries); err != nil {
		s.finishJob(jobID, domain.SyncJobStatusError, 0, err)
		return 0, fmt.Errorf("nível %s: %w", level, err)
	}

	s.finishJob(jobID, domain.SyncJobStatusSuccess, len(entries), nil)

	return len(entries), nil
}

func (s *Service) finishJob(jobID string, status domain.SyncJobStatus, rows int, jobErr error) {
	var message *string
	if jobErr != nil {
		m := jobErr.Error()
		message = &m
	}

	if err := s.syncJobRepo.Finish(jobID, status, rows, message); err != nil {
		logrus.WithField("error", err).Warn("syncing: error finishing job")
	}
}

// dateWindow calcula a janela de datas conforme o modo. O modo daily
// retoma do dia seguinte ao último dia sincronizado, cobrindo lacunas de
// execuções perdidas.
func (s *Service) dateWindow(request *domain.SyncRequest, state *domain.SyncState) (time.Time, time.Time) {
	today := truncateToDay(s.now())

	switch request.Mode {
	case domain.SyncModeIntraday:
		return today, today

	case domain.SyncModeBackfill:
		daysBack := request.DaysBack
		if daysBack <= 0 {
			daysBack = s.cfg.InsightSync.DefaultDaysBack
		}
		if max := s.cfg.InsightSync.BackfillMaxDays; max > 0 && daysBack > max {
			daysBack = max
		}
		return today.AddDate(0, 0, -daysBack), today

	default: // daily
		if state != nil && state.LastDailyDateSynced != nil {
			start := truncateToDay(*state.LastDailyDateSynced).AddDate(0, 0, 1)
			if start.After(today) {
				start = today
			}
			return start, today
		}
		return today.AddDate(0, 0, -s.cfg.InsightSync.DefaultDaysBack), today
	}
}

func (s *Service) updateState(workspaceID string, account *domain.AdAccount, mode domain.SyncMode, endDate time.Time, syncErr error, previous *domain.SyncState) {
	state := previous
	if state == nil {
		state = &domain.SyncState{
			AccountID:   account.ID,
			WorkspaceID: workspaceID,
			ClientID:    account.ClientID,
			Enabled:     true,
		}
	}

	now := s.now()

	if syncErr != nil {
		message := syncErr.Error()
		state.LastError = &message
	} else {
		state.LastError = nil
		state.LastSuccessAt = &now

		switch mode {
		case domain.SyncModeIntraday:
			state.LastIntradaySyncAt = &now
		default:
			end := endDate
			state.LastDailyDateSynced = &end
		}
	}

	if err := s.syncStateRepo.SaveOrUpdate(state); err != nil {
		logrus.WithField("error", err).Warn("syncing: error saving sync state")
	}
}

func (s *Service) buildEntries(workspaceID, accountID string, level domain.InsightLevel, rows []metadomain.InsightRow) []*domain.AdInsightEntry {
	entries := make([]*domain.AdInsightEntry, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		date, err := time.Parse("2006-01-02", row.DateStart)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"date_start": row.DateStart,
				"account_id": accountID,
			}).Warn("syncing: insight row with unparseable date skipped")
			continue
		}

		entityID := row.EntityID(string(level))
		if entityID == "" {
			entityID = accountID
		}

		entries = append(entries, &domain.AdInsightEntry{
			WorkspaceID: workspaceID,
			AccountID:   accountID,
			EntityID:    entityID,
			Level:       level,
			Date:        date,
			Spend:       metadomain.ParseFloat("spend", row.Spend),
			Impressions: metadomain.ParseInt("impressions", row.Impressions),
			Reach:       metadomain.ParseInt("reach", row.Reach),
			Clicks:      metadomain.ParseInt("clicks", row.Clicks),
			CTR:         metadomain.ParseFloat("ctr", row.CTR),
			CPC:         metadomain.ParseFloat("cpc", row.CPC),
			CPM:         metadomain.ParseFloat("cpm", row.CPM),
			Actions:     row.ActionsMap(),
		})
	}

	return entries
}

// GetSyncStatus agrega a visão de saúde consumida pelo dashboard: estado
// da conexão, frescor por conta e erros recentes
func (s *Service) GetSyncStatus(workspaceID string) (*domain.SyncStatusResponse, error) {
	connection, err := s.connectionRepo.GetDefaultByWorkspace(workspaceID)
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao buscar conexão no banco de dados")
	}

	connectionStatus := domain.ConnectionStatusInvalid
	if connection != nil {
		connectionStatus = connection.Status
	}

	accounts, err := s.accountRepo.ListAccounts(workspaceID, nil)
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao listar contas no banco de dados")
	}

	now := s.now()
	errorWindow := time.Duration(s.cfg.Health.RecentErrorWindowHours) * time.Hour
	since := now.Add(-errorWindow)

	response := &domain.SyncStatusResponse{
		ConnectionStatus: connectionStatus,
		Accounts:         make([]*domain.AccountFreshness, 0, len(accounts)),
	}

	var latestSuccess *time.Time

	for _, account := range accounts {
		freshness, err := s.insightRepo.GetFreshness(workspaceID, account.ID)
		if err != nil {
			logrus.WithField("error", err).Warn("syncing: error fetching account freshness")
			freshness = &domain.AccountFreshness{AccountID: account.ID}
		}
		freshness.AccountName = account.Name

		state, err := s.syncStateRepo.Get(workspaceID, account.ID)
		if err != nil {
			logrus.WithField("error", err).Warn("syncing: error fetching sync state")
		}
		if state != nil {
			freshness.LastSuccessAt = state.LastSuccessAt
			if state.LastSuccessAt != nil && (latestSuccess == nil || state.LastSuccessAt.After(*latestSuccess)) {
				latestSuccess = state.LastSuccessAt
			}
		}

		errorCount, err := s.syncJobRepo.CountRecentErrors(workspaceID, account.ID, since)
		if err != nil {
			logrus.WithField("error", err).Warn("syncing: error counting recent errors")
		}
		response.RecentErrorCount += errorCount

		response.Accounts = append(response.Accounts, freshness)
	}

	response.HealthStatus = DeriveHealthStatus(HealthInput{
		ConnectionStatus: connectionStatus,
		LastSuccessAt:    latestSuccess,
		RecentErrorCount: response.RecentErrorCount,
		Now:              now,
		StaleAfter:       time.Duration(s.cfg.Health.StaleAfterHours) * time.Hour,
	})

	return response, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SyncError é um erro com contexto adicional para a sincronização
type SyncError struct {
	Err     error
	Code    string
	Details string
}

func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(err error, code string, details string) *SyncError {
	return &SyncError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
