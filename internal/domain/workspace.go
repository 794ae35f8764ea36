package domain

import "context"

type workspaceContextKey string

const workspaceIDKey workspaceContextKey = "workspace_id"

// WithWorkspaceID grava o workspace da requisição no contexto. Toda
// operação do core lê o escopo daqui em vez de rederivar por chamada.
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDKey, workspaceID)
}

// WorkspaceIDFromContext devolve o workspace do contexto, se presente
func WorkspaceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(workspaceIDKey).(string)
	return id, ok && id != ""
}
