package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okrasa/Parley/internal/domain"
)

const DefaultEndpoint = "https://api.deepl.com/v2/translate"

// DeepL is a Translator backed by the DeepL v2 HTTP API.
type DeepL struct {
	endpoint string
	authKey  string
	client   *http.Client
}

func NewDeepL(endpoint, authKey string, timeout time.Duration) *DeepL {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &DeepL{
		endpoint: endpoint,
		authKey:  authKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (d *DeepL) Translate(ctx context.Context, text string, target domain.LangCode) (string, error) {
	body, err := json.Marshal(deeplRequest{
		Text:       []string{text},
		TargetLang: string(target),
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrTranslationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrTranslationFailed, err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Cap how much of the error body reaches the operator log.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrTranslationFailed, resp.StatusCode, snippet)
	}

	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranslationFailed, err)
	}
	if len(out.Translations) == 0 {
		return "", fmt.Errorf("%w: empty translations list", ErrTranslationFailed)
	}
	return out.Translations[0].Text, nil
}
