package domain

import "time"

type CreativeType string

const (
	CreativeTypeImage    CreativeType = "image"
	CreativeTypeVideo    CreativeType = "video"
	CreativeTypeCarousel CreativeType = "carousel"
	CreativeTypeDynamic  CreativeType = "dynamic"
	CreativeTypeUnknown  CreativeType = "unknown"
)

type CreativeFetchStatus string

const (
	CreativeFetchSuccess CreativeFetchStatus = "success"
	CreativeFetchPartial CreativeFetchStatus = "partial"
	CreativeFetchFailed  CreativeFetchStatus = "failed"
	CreativeFetchPending CreativeFetchStatus = "pending"
)

// Creative é o material visual e textual de um anúncio. As URLs da
// plataforma expiram; CachedURL aponta para o storage durável.
type Creative struct {
	AdID          string              `json:"ad_id"`
	WorkspaceID   string              `json:"workspace_id"`
	AccountID     string              `json:"account_id"`
	Type          CreativeType        `json:"type"`
	ThumbnailURL  string              `json:"thumbnail_url,omitempty"`
	ImageURL      string              `json:"image_url,omitempty"`
	HDImageURL    string              `json:"hd_image_url,omitempty"`
	VideoURL      string              `json:"video_url,omitempty"`
	CachedURL     string              `json:"cached_url,omitempty"`
	Title         string              `json:"title,omitempty"`
	Body          string              `json:"body,omitempty"`
	Description   string              `json:"description,omitempty"`
	CallToAction  string              `json:"call_to_action,omitempty"`
	LinkURL       string              `json:"link_url,omitempty"`
	FetchStatus   CreativeFetchStatus `json:"fetch_status"`
	FetchAttempts int                 `json:"fetch_attempts"`
	LastError     *string             `json:"last_error,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at,omitempty"`
}

// IsComplete indica se o creative tem pelo menos um asset visual ou um
// campo de texto preenchido
func (c *Creative) IsComplete() bool {
	if c == nil {
		return false
	}

	hasVisual := c.CachedURL != "" || c.ImageURL != "" || c.HDImageURL != "" ||
		c.ThumbnailURL != "" || c.VideoURL != ""
	hasText := c.Title != "" || c.Body != "" || c.Description != "" ||
		c.CallToAction != "" || c.LinkURL != ""

	return hasVisual || hasText
}

// BestImageURL devolve a melhor URL de imagem disponível seguindo a ordem
// de prioridade de resolução: cache durável, HD (quando pedido), imagem
// padrão e por fim thumbnail
func (c *Creative) BestImageURL(preferHD bool) string {
	if c.CachedURL != "" {
		return c.CachedURL
	}
	if preferHD && c.HDImageURL != "" {
		return c.HDImageURL
	}
	if c.ImageURL != "" {
		return c.ImageURL
	}
	return c.ThumbnailURL
}

// CreativeBatchRequest é a requisição de resolução em lote de creatives
type CreativeBatchRequest struct {
	AdIDs        []string `json:"ad_ids"`
	AccountID    string   `json:"account_id,omitempty"`
	ForceRefresh bool     `json:"force_refresh,omitempty"`
	PreferHD     bool     `json:"prefer_hd,omitempty"`
}

// CreativeBatchResponse devolve o que já está resolvido e o que ainda está
// carregando; erros vêm por anúncio, nunca como falha total do lote
type CreativeBatchResponse struct {
	Creatives map[string]*Creative `json:"creatives"`
	Errors    map[string]string    `json:"errors,omitempty"`
	Loading   []string             `json:"loading,omitempty"`
}
