package metadomain

import "encoding/json"

// AdCreative é o payload de creative de um anúncio no Graph. ObjectStorySpec
// chega como JSON cru porque o formato varia por tipo de anúncio.
type AdCreative struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Title           string          `json:"title,omitempty"`
	Body            string          `json:"body,omitempty"`
	ThumbnailURL    string          `json:"thumbnail_url,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	VideoID         string          `json:"video_id,omitempty"`
	ObjectStorySpec json.RawMessage `json:"object_story_spec,omitempty"`
}

// AdWithCreative liga o anúncio ao seu creative na resposta em lote
type AdWithCreative struct {
	ID       string      `json:"id"`
	Creative *AdCreative `json:"creative,omitempty"`
}

// storySpec é o subconjunto do object_story_spec que interessa para minerar
// uma URL de imagem e os campos de texto
type storySpec struct {
	LinkData *struct {
		Link        string `json:"link,omitempty"`
		Message     string `json:"message,omitempty"`
		Name        string `json:"name,omitempty"`
		Description string `json:"description,omitempty"`
		Picture     string `json:"picture,omitempty"`
		CallToAction *struct {
			Type string `json:"type,omitempty"`
		} `json:"call_to_action,omitempty"`
		ChildAttachments []struct {
			Picture string `json:"picture,omitempty"`
		} `json:"child_attachments,omitempty"`
	} `json:"link_data,omitempty"`
	VideoData *struct {
		ImageURL string `json:"image_url,omitempty"`
		Message  string `json:"message,omitempty"`
		Title    string `json:"title,omitempty"`
	} `json:"video_data,omitempty"`
}

// MinedAssets são os campos extraídos do object_story_spec cru
type MinedAssets struct {
	ImageURL     string
	LinkURL      string
	Title        string
	Body         string
	Description  string
	CallToAction string
	IsCarousel   bool
	IsVideo      bool
}

// MineStorySpec extrai, em melhor esforço, assets do object_story_spec.
// Qualquer formato inesperado devolve o zero value em vez de erro.
func (c *AdCreative) MineStorySpec() MinedAssets {
	var mined MinedAssets

	if len(c.ObjectStorySpec) == 0 {
		return mined
	}

	var spec storySpec
	if err := json.Unmarshal(c.ObjectStorySpec, &spec); err != nil {
		return mined
	}

	if spec.LinkData != nil {
		mined.ImageURL = spec.LinkData.Picture
		mined.LinkURL = spec.LinkData.Link
		mined.Title = spec.LinkData.Name
		mined.Body = spec.LinkData.Message
		mined.Description = spec.LinkData.Description
		if spec.LinkData.CallToAction != nil {
			mined.CallToAction = spec.LinkData.CallToAction.Type
		}
		if len(spec.LinkData.ChildAttachments) > 0 {
			mined.IsCarousel = true
			if mined.ImageURL == "" {
				mined.ImageURL = spec.LinkData.ChildAttachments[0].Picture
			}
		}
	}

	if spec.VideoData != nil {
		mined.IsVideo = true
		if mined.ImageURL == "" {
			mined.ImageURL = spec.VideoData.ImageURL
		}
		if mined.Title == "" {
			mined.Title = spec.VideoData.Title
		}
		if mined.Body == "" {
			mined.Body = spec.VideoData.Message
		}
	}

	return mined
}
