package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/account"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/mirroring"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

func AdAccountList(service account.AccountService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		filterStatus := r.URL.Query().Get("status")

		availableStatus := make([]domain.AdAccountStatus, 0)
		if filterStatus != "" {
			for _, status := range strings.Split(filterStatus, ",") {
				availableStatus = append(availableStatus, domain.AdAccountStatus(status))
			}
		}

		adAccounts, err := service.ListAdAccounts(workspaceID, availableStatus)
		if err != nil {
			logrus.Error("Error listing accounts:", err)

			// Verificar se é um AccountError para obter detalhes específicos do erro
			var accountErr *account.AccountError
			if errors.As(err, &accountErr) {
				apiErrors.WriteError(w, accountErr.Code, accountErr.Error(), nil)
				return
			}

			if errors.Is(err, account.ErrFetchAccounts) {
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar contas no banco de dados", nil)
			} else {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao listar contas", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(adAccounts); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// SyncAccounts descobre as contas do Business Manager conectado e espelha o
// resultado no banco
func SyncAccounts(service account.AccountService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		resp, err := service.SyncAccounts(workspaceID)
		if err != nil {
			logrus.Error("Error syncing accounts:", err)

			var accountErr *account.AccountError
			if errors.As(err, &accountErr) {
				apiErrors.WriteError(w, accountErr.Code, accountErr.Error(), nil)
				return
			}

			switch {
			case errors.Is(err, account.ErrNoConnection):
				apiErrors.WriteError(w, apiErrors.ErrConnectionNotFound, "Nenhuma conexão configurada para o workspace", nil)

			case errors.Is(err, account.ErrMetaIntegration):
				apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro ao obter contas do serviço Meta", nil)

			case errors.Is(err, account.ErrFetchAccounts) || errors.Is(err, account.ErrDatabaseOperation):
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar contas no banco de dados", nil)

			case errors.Is(err, account.ErrGenerateID):
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar identificadores únicos", nil)

			default:
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao sincronizar contas", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// TODO talvez adicionar qual usuário está modificando a conta a partir do token
func UpdateAdAccount(service account.AccountService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/json")

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da conta é obrigatório", nil)
			return
		}

		var updateRequest domain.UpdateAdAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		// Garante que o ID da URL seja usado
		updateRequest.ID = id

		resp, err := service.UpdateAccount(workspaceID, &updateRequest)
		if err != nil {
			logrus.Error("Error updating account:", err)

			var accountErr *account.AccountError
			if errors.As(err, &accountErr) {
				apiErrors.WriteError(w, accountErr.Code, accountErr.Error(), map[string]interface{}{
					"account_id": accountErr.AccountID,
					"error_type": accountErr.Err.Error(),
				})
				return
			}

			switch {
			case errors.Is(err, account.ErrAccountIDRequired):
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da conta é obrigatório", nil)

			case errors.Is(err, account.ErrAccountNotFound):
				apiErrors.WriteError(w, apiErrors.ErrAccountUnknown, "Conta não encontrada", map[string]interface{}{
					"account_id": id,
					"error_type": "account_not_found",
				})

			case errors.Is(err, account.ErrDatabaseOperation) || errors.Is(err, account.ErrUpdateAccount):
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao atualizar conta no banco de dados", nil)

			default:
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao atualizar conta", nil)
			}
			return
		}

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// AccountEntities devolve o espelho local de campanhas, conjuntos e anúncios
// da conta. O espelho é renovado antes da leitura quando a janela de validade
// expirou; force renova sempre.
func AccountEntities(service mirroring.MirrorService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da conta é obrigatório", nil)
			return
		}

		force := r.URL.Query().Get("force") == "true"

		entityTypes := make([]domain.EntityType, 0)
		if rawTypes := r.URL.Query().Get("types"); rawTypes != "" {
			for _, rawType := range strings.Split(rawTypes, ",") {
				switch entityType := domain.EntityType(strings.TrimSpace(rawType)); entityType {
				case domain.EntityTypeCampaign, domain.EntityTypeAdSet, domain.EntityTypeAd:
					entityTypes = append(entityTypes, entityType)
				default:
					apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Tipo de entidade inválido: "+rawType, nil)
					return
				}
			}
		}

		syncResult, err := service.SyncEntities(workspaceID, id, force)
		if err != nil {
			writeMirrorError(w, err, id)
			return
		}

		entities, err := service.ListEntities(workspaceID, id, entityTypes)
		if err != nil {
			writeMirrorError(w, err, id)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		response := domain.AccountEntitiesResponse{
			AccountID: id,
			Sync:      syncResult,
			Entities:  entities,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func writeMirrorError(w http.ResponseWriter, err error, accountID string) {
	logrus.Error("Error mirroring entities:", err)

	var mirrorErr *mirroring.MirrorError
	if errors.As(err, &mirrorErr) {
		apiErrors.WriteError(w, mirrorErr.Code, mirrorErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, mirroring.ErrAccountNotFound):
		apiErrors.WriteError(w, apiErrors.ErrAccountUnknown, "Conta não encontrada", map[string]interface{}{
			"account_id": accountID,
		})

	case errors.Is(err, mirroring.ErrDatabaseOperation):
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar o espelho de entidades", nil)

	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao espelhar entidades da conta", nil)
	}
}
