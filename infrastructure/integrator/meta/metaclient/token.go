package metaclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/sirupsen/logrus"
)

// ExchangeLongLivedToken troca um token por um token de longa duração
// (fb_exchange_token). Também é o mecanismo de renovação: trocar um token
// de longa duração ainda válido devolve um novo com validade estendida.
func (c *MetaClient) ExchangeLongLivedToken(shortLivedToken string) (*metadomain.TokenResponse, error) {
	if shortLivedToken == "" {
		return nil, fmt.Errorf("token de acesso não pode ser vazio")
	}

	endpoint := fmt.Sprintf("%s/%s/oauth/access_token", c.Cfg.Meta.BaseURL, c.Cfg.Meta.Version)

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.Cfg.Meta.AppID)
	params.Add("client_secret", c.Cfg.Meta.AppSecret)
	params.Add("fb_exchange_token", shortLivedToken)

	var tokenResp metadomain.TokenResponse
	if err := c.getJSON(endpoint+"?"+params.Encode(), &tokenResp); err != nil {
		return nil, fmt.Errorf("erro ao obter token de longa duração: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("resposta de troca de token sem access_token")
	}

	logrus.WithField("expires_in", tokenResp.ExpiresIn).Debug("token: long lived token exchanged")

	return &tokenResp, nil
}

// DebugToken consulta o debug_token do Graph para obter validade, data de
// expiração e escopos concedidos ao token informado
func (c *MetaClient) DebugToken(token string) (*metadomain.DebugTokenInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("token de acesso não pode ser vazio")
	}

	endpoint := fmt.Sprintf("%s/debug_token", c.Cfg.Meta.URL)

	params := url.Values{}
	params.Add("input_token", token)
	params.Add("access_token", fmt.Sprintf("%s|%s", c.Cfg.Meta.AppID, c.Cfg.Meta.AppSecret))

	body, err := c.get(endpoint + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("erro ao obter informações do token: %w", err)
	}

	var response struct {
		Data metadomain.DebugTokenInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
	}

	return &response.Data, nil
}

// CalculateTokenExpiration converte o expires_in relativo em uma data
// absoluta, com uma folga de um dia para renovar antes do vencimento
func CalculateTokenExpiration(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		// Tokens de longa duração valem ~60 dias quando a API não informa
		return time.Now().AddDate(0, 0, 60)
	}

	return time.Now().Add(time.Duration(expiresIn)*time.Second - 24*time.Hour)
}
