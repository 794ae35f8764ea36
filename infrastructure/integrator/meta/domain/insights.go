package metadomain

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow é uma linha de insights do Graph. Métricas numéricas chegam
// como strings; campos ausentes viram zero em vez de derrubar a linha.
type InsightRow struct {
	AccountID    string   `json:"account_id"`
	CampaignID   string   `json:"campaign_id,omitempty"`
	AdSetID      string   `json:"adset_id,omitempty"`
	AdID         string   `json:"ad_id,omitempty"`
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
	Spend        string   `json:"spend"`
	Impressions  string   `json:"impressions"`
	Reach        string   `json:"reach"`
	Clicks       string   `json:"clicks"`
	CTR          string   `json:"ctr"`
	CPC          string   `json:"cpc"`
	CPM          string   `json:"cpm"`
	Actions      []Action `json:"actions,omitempty"`
}

// EntityID devolve o id da entidade conforme o nível da consulta
func (r *InsightRow) EntityID(level string) string {
	switch level {
	case "campaign":
		return r.CampaignID
	case "adset":
		return r.AdSetID
	case "ad":
		return r.AdID
	default:
		return r.AccountID
	}
}

// ParseFloat converte uma métrica textual, tratando ausência como zero
func ParseFloat(field, value string) float64 {
	if value == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
			"error": err.Error(),
		}).Warn("insights: error converting metric to float")
		return 0
	}

	return parsed
}

// ParseInt converte uma métrica textual inteira, tratando ausência como zero
func ParseInt(field, value string) int64 {
	if value == "" {
		return 0
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
			"error": err.Error(),
		}).Warn("insights: error converting metric to integer")
		return 0
	}

	return parsed
}

// ActionsMap converte a lista de ações do Graph para um mapa tipo->valor
func (r *InsightRow) ActionsMap() map[string]float64 {
	if len(r.Actions) == 0 {
		return nil
	}

	actions := make(map[string]float64, len(r.Actions))
	for _, action := range r.Actions {
		actions[action.ActionType] = ParseFloat("action."+action.ActionType, action.Value)
	}

	return actions
}
