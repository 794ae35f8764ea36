package metaclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	metadomain "github.com/vfg2006/ads-dashboard-api/infrastructure/integrator/meta/domain"
	"github.com/sirupsen/logrus"
)

// creativeBatchSize é o máximo de ids aceito pelo parâmetro ids do Graph
const creativeBatchSize = 50

const creativeFields = "creative{id,name,title,body,thumbnail_url,image_url,video_id,object_story_spec}"

// GetAdCreatives busca os creatives de um lote de anúncios usando o
// endpoint de múltiplos ids. Ids ausentes na resposta simplesmente não
// aparecem no mapa; o chamador decide o que fazer com eles.
func (c *MetaClient) GetAdCreatives(token string, adIDs []string) (map[string]*metadomain.AdCreative, error) {
	creatives := make(map[string]*metadomain.AdCreative, len(adIDs))

	for start := 0; start < len(adIDs); start += creativeBatchSize {
		end := start + creativeBatchSize
		if end > len(adIDs) {
			end = len(adIDs)
		}

		batch, err := c.getCreativeBatch(token, adIDs[start:end])
		if err != nil {
			return nil, err
		}

		for adID, creative := range batch {
			creatives[adID] = creative
		}
	}

	logrus.WithFields(logrus.Fields{
		"requested": len(adIDs),
		"resolved":  len(creatives),
	}).Debug("creatives: ad creatives fetched from origin")

	return creatives, nil
}

func (c *MetaClient) getCreativeBatch(token string, adIDs []string) (map[string]*metadomain.AdCreative, error) {
	params := url.Values{}
	params.Add("ids", strings.Join(adIDs, ","))
	params.Add("fields", creativeFields)
	params.Add("access_token", token)

	body, err := c.get(c.Cfg.Meta.URL + "/?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar creatives: %w", err)
	}

	var response map[string]metadomain.AdWithCreative
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("erro ao decodificar JSON: %w", err)
	}

	batch := make(map[string]*metadomain.AdCreative, len(response))
	for adID, ad := range response {
		if ad.Creative != nil {
			batch[adID] = ad.Creative
		}
	}

	return batch, nil
}
