package handler

import (
	"net/http"

	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/apiErrors"
)

// workspaceFromRequest lê o workspace que o middleware de autenticação
// gravou no contexto. Sem workspace não há operação possível no core.
func workspaceFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	workspaceID, ok := domain.WorkspaceIDFromContext(r.Context())
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token sem workspace associado", nil)
		return "", false
	}

	return workspaceID, true
}
