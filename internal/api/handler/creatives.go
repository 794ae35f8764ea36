package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/usecases/creatives"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

// ResolveCreativeBatch resolve um lote de creatives em duas fases: o que o
// cache tem volta na hora, o restante fica em loading e é buscado em
// background.
func ResolveCreativeBatch(service creatives.CreativeService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID, ok := workspaceFromRequest(w, r)
		if !ok {
			return
		}

		var request domain.CreativeBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
			return
		}

		response, err := service.ResolveBatch(r.Context(), workspaceID, &request)
		if err != nil {
			logrus.WithField("error", err).Error("creatives: request failed")

			var creativeErr *creatives.CreativeError
			if errors.As(err, &creativeErr) {
				apiErrors.WriteError(w, creativeErr.Code, creativeErr.Error(), nil)
				return
			}

			if errors.Is(err, creatives.ErrNoAdIDs) {
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nenhum anúncio informado", nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrCreativeResolution, "Erro ao resolver creatives", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
