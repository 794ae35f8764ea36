package metaclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=client.go -destination=../mocks/mock_client.go -package=metamocks

// Client é a superfície de acesso à API Graph. O token de acesso vem
// sempre do chamador: o client não guarda credenciais.
type Client interface {
	ExchangeLongLivedToken(shortLivedToken string) (*metadomain.TokenResponse, error)
	DebugToken(token string) (*metadomain.DebugTokenInfo, error)
	GetAdAccountsByBusinessID(token, businessID string) ([]metadomain.AdAccount, error)
	GetCampaignsByAccountID(token, accountID string) ([]metadomain.Campaign, error)
	GetAdSetsByAccountID(token, accountID string) ([]metadomain.AdSet, error)
	GetAdsByAccountID(token, accountID string) ([]metadomain.Ad, error)
	GetInsights(token, accountID string, level domain.InsightLevel, startDate, endDate time.Time) ([]metadomain.InsightRow, error)
	GetAdCreatives(token string, adIDs []string) (map[string]*metadomain.AdCreative, error)
}

type MetaClient struct {
	Cfg        *config.Config
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError carrega o erro estruturado devolvido pelo Graph
type APIError struct {
	StatusCode int
	Response   *metadomain.ErrorResponse
	Body       string
}

func (e *APIError) Error() string {
	if e.Response != nil && e.Response.Error.Message != "" {
		return fmt.Sprintf("erro na API do Meta (status %d, código %d): %s",
			e.StatusCode, e.Response.Error.Code, e.Response.Error.Message)
	}
	return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s", e.StatusCode, e.Body)
}

// RequiresReconnect indica que o token não pode ser renovado automaticamente
func (e *APIError) RequiresReconnect() bool {
	if e.Response != nil && e.Response.RequiresReconnect() {
		return true
	}
	return metadomain.ContainsReauthMessage(e.Body)
}

// get executa um GET e devolve o corpo, convertendo respostas de erro do
// Graph em *APIError
func (c *MetaClient) get(url string) ([]byte, error) {
	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("erro ao fazer a requisição: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	if errorResp, parseErr := metadomain.ParseErrorResponse(body); parseErr == nil {
		apiErr.Response = errorResp
	}

	return nil, apiErr
}

// getJSON executa um GET e decodifica a resposta em out
func (c *MetaClient) getJSON(url string, out any) error {
	body, err := c.get(url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("erro ao decodificar JSON: %w", err)
	}

	return nil
}
