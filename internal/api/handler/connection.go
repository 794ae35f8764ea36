package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/connecting"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

type ConnectRequest struct {
	AccessToken string `json:"access_token"`
	BusinessID  string `json:"business_id"`
}

// Connect troca o token informado por um de longa duração e registra a
// conexão default do workspace
func Connect(service connecting.ConnectionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		var request ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
			return
		}

		result, err := service.Connect(workspaceID, request.AccessToken, request.BusinessID)
		if err != nil {
			writeConnectionError(w, err, "Erro ao estabelecer conexão")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// ValidateConnection confere o token junto à plataforma e devolve os
// scopes ausentes
func ValidateConnection(service connecting.ConnectionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		result, err := service.Validate(workspaceID)
		if err != nil {
			writeConnectionError(w, err, "Erro ao validar conexão")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// RefreshConnection renova o token de longa duração
func RefreshConnection(service connecting.ConnectionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		result, err := service.Refresh(workspaceID)
		if err != nil {
			writeConnectionError(w, err, "Erro ao renovar token")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// ConnectionStatus devolve a classificação de expiração do token
func ConnectionStatus(service connecting.ConnectionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		status, err := service.ExpiryStatus(workspaceID)
		if err != nil {
			writeConnectionError(w, err, "Erro ao consultar status da conexão")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func writeConnectionError(w http.ResponseWriter, err error, fallback string) {
	logrus.WithField("error", err).Error("connection: request failed")

	var connErr *connecting.ConnectionError
	if errors.As(err, &connErr) {
		apiErrors.WriteError(w, connErr.Code, connErr.Error(), nil)
		return
	}

	if errors.Is(err, connecting.ErrConnectionNotFound) {
		apiErrors.WriteError(w, apiErrors.ErrConnectionNotFound, "Nenhuma conexão configurada para o workspace", nil)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrInternalServer, fallback, nil)
}
