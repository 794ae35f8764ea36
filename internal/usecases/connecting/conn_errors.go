package connecting

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de conexões
var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrTokenRequired      = errors.New("access token is required")
	ErrTokenDecrypt       = errors.New("error decrypting access token")
	ErrTokenExchange      = errors.New("error exchanging access token")
	ErrTokenDebug         = errors.New("error inspecting access token")
	ErrDatabaseOperation  = errors.New("database operation error")
)

// ConnectionError é um erro com contexto adicional para conexões
type ConnectionError struct {
	Err          error
	Code         string
	ConnectionID string
	Details      string
}

func (e *ConnectionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func NewConnectionError(err error, code string, details string) *ConnectionError {
	return &ConnectionError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
