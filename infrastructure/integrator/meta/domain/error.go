package metadomain

import (
	"encoding/json"
	"strings"
)

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// reauthMessages são os trechos de mensagem que o Graph devolve quando o
// token não pode mais ser renovado automaticamente
var reauthMessages = []string{
	"Error validating access token",
	"Session has expired",
	"The session has been invalidated",
}

// RequiresReconnect verifica se o erro exige reautorização manual do
// usuário; nesse caso nenhuma renovação automática vai funcionar
func (e *ErrorResponse) RequiresReconnect() bool {
	if e.IsTokenExpired() {
		return true
	}
	return ContainsReauthMessage(e.Error.Message)
}

// ContainsReauthMessage verifica a mensagem crua de erro
func ContainsReauthMessage(message string) bool {
	for _, m := range reauthMessages {
		if strings.Contains(message, m) {
			return true
		}
	}
	return false
}

// ParseErrorResponse tenta parsear um erro da API do Meta
func ParseErrorResponse(body []byte) (*ErrorResponse, error) {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return nil, err
	}
	return &errorResp, nil
}
