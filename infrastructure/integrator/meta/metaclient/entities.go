package metaclient

import (
	"encoding/json"
	"fmt"
	"net/url"

	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/sirupsen/logrus"
)

// maxEntityPages limita o número de páginas seguidas por consulta para não
// ficar preso em paginação infinita de contas muito grandes
const maxEntityPages = 20

type pagedResponse struct {
	Data   json.RawMessage   `json:"data"`
	Paging metadomain.Paging `json:"paging"`
}

// fetchAllPages segue o cursor next do Graph acumulando o data de cada
// página em raw
func (c *MetaClient) fetchAllPages(firstURL string) ([]json.RawMessage, error) {
	pages := make([]json.RawMessage, 0, 1)
	nextURL := firstURL

	for page := 0; nextURL != "" && page < maxEntityPages; page++ {
		var response pagedResponse
		if err := c.getJSON(nextURL, &response); err != nil {
			return nil, err
		}

		if len(response.Data) > 0 {
			pages = append(pages, response.Data)
		}

		nextURL = response.Paging.Next
	}

	return pages, nil
}

func (c *MetaClient) entityURL(token, accountID, edge, fields string) string {
	baseURL := fmt.Sprintf("%s/act_%s/%s", c.Cfg.Meta.URL, accountID, edge)

	params := url.Values{}
	params.Add("fields", fields)
	params.Add("limit", fmt.Sprintf("%d", c.Cfg.Meta.PageLimit))
	params.Add("access_token", token)

	return baseURL + "?" + params.Encode()
}

// GetCampaignsByAccountID busca todas as campanhas da conta, paginando até
// o limite de páginas
func (c *MetaClient) GetCampaignsByAccountID(token, accountID string) ([]metadomain.Campaign, error) {
	pages, err := c.fetchAllPages(c.entityURL(token, accountID, "campaigns",
		"id,name,effective_status,daily_budget,lifetime_budget"))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar campanhas: %w", err)
	}

	campaigns := make([]metadomain.Campaign, 0)
	for _, page := range pages {
		var batch []metadomain.Campaign
		if err := json.Unmarshal(page, &batch); err != nil {
			return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
		}
		campaigns = append(campaigns, batch...)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"campaigns":  len(campaigns),
	}).Debug("entities: campaigns fetched from origin")

	return campaigns, nil
}

// GetAdSetsByAccountID busca todos os conjuntos de anúncios da conta
func (c *MetaClient) GetAdSetsByAccountID(token, accountID string) ([]metadomain.AdSet, error) {
	pages, err := c.fetchAllPages(c.entityURL(token, accountID, "adsets",
		"id,name,effective_status,campaign_id,daily_budget,lifetime_budget"))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar conjuntos de anúncios: %w", err)
	}

	adsets := make([]metadomain.AdSet, 0)
	for _, page := range pages {
		var batch []metadomain.AdSet
		if err := json.Unmarshal(page, &batch); err != nil {
			return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
		}
		adsets = append(adsets, batch...)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"adsets":     len(adsets),
	}).Debug("entities: adsets fetched from origin")

	return adsets, nil
}

// GetAdsByAccountID busca todos os anúncios da conta
func (c *MetaClient) GetAdsByAccountID(token, accountID string) ([]metadomain.Ad, error) {
	pages, err := c.fetchAllPages(c.entityURL(token, accountID, "ads",
		"id,name,effective_status,campaign_id,adset_id"))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar anúncios: %w", err)
	}

	ads := make([]metadomain.Ad, 0)
	for _, page := range pages {
		var batch []metadomain.Ad
		if err := json.Unmarshal(page, &batch); err != nil {
			return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
		}
		ads = append(ads, batch...)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"ads":        len(ads),
	}).Debug("entities: ads fetched from origin")

	return ads, nil
}

// GetAdAccountsByBusinessID lista as contas de anúncio do business manager
func (c *MetaClient) GetAdAccountsByBusinessID(token, businessID string) ([]metadomain.AdAccount, error) {
	baseURL := fmt.Sprintf("%s/%s/owned_ad_accounts", c.Cfg.Meta.URL, businessID)

	params := url.Values{}
	params.Add("fields", "id,account_id,name,currency,timezone_name,account_status")
	params.Add("limit", "100")
	params.Add("access_token", token)

	pages, err := c.fetchAllPages(baseURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar contas de anúncio: %w", err)
	}

	accounts := make([]metadomain.AdAccount, 0)
	for _, page := range pages {
		var batch []metadomain.AdAccount
		if err := json.Unmarshal(page, &batch); err != nil {
			return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
		}
		accounts = append(accounts, batch...)
	}

	return accounts, nil
}
