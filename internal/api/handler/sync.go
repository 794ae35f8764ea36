package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

// RunSync dispara uma sincronização de insights para o workspace. O corpo
// escolhe modo, conta (ou "all") e níveis.
func RunSync(service syncing.SyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		var request domain.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
			return
		}

		if request.AccountID == "" {
			request.AccountID = domain.SyncAllAccounts
		}

		result, err := service.RunSync(workspaceID, &request)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// SyncStatus devolve a visão agregada de saúde da sincronização
func SyncStatus(service syncing.SyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		status, err := service.GetSyncStatus(workspaceID)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func writeSyncError(w http.ResponseWriter, err error) {
	logrus.WithField("error", err).Error("sync: request failed")

	var syncErr *syncing.SyncError
	if errors.As(err, &syncErr) {
		apiErrors.WriteError(w, syncErr.Code, syncErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, syncing.ErrInvalidSyncMode):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Modo de sincronização inválido", nil)
	case errors.Is(err, syncing.ErrConnectionRevoked):
		apiErrors.WriteError(w, apiErrors.ErrConnectionRevoked, "Conexão exige reautorização manual", nil)
	case errors.Is(err, syncing.ErrAccountNotFound):
		apiErrors.WriteError(w, apiErrors.ErrAccountUnknown, "Conta de anúncios desconhecida", nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrSyncFailure, "Erro ao sincronizar insights", nil)
	}
}
