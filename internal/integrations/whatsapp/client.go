package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
)

// Client sends template messages through the Meta Graph API. Every send is a
// single POST to /<version>/<phone-number-id>/messages.
type Client struct {
	endpoint     string
	accessToken  string
	languageCode string
	httpClient   *http.Client
}

func NewClient(cfg config.WhatsAppConfig, timeout time.Duration) *Client {
	return &Client{
		endpoint:     fmt.Sprintf("%s/%s/%s/messages", cfg.BaseURL, cfg.APIVersion, cfg.PhoneNumberID),
		accessToken:  cfg.AccessToken,
		languageCode: cfg.LanguageCode,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Result reports one send attempt. A failed attempt is data, not an error:
// callers log it and move on.
type Result struct {
	Success      bool
	MessageID    string
	ErrorCode    string
	ErrorMessage string
}

type templatePayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Template         template `json:"template"`
}

type template struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendTemplate delivers one template message with positional body parameters.
func (c *Client) SendTemplate(ctx context.Context, to, templateName string, bodyParams []string) Result {
	params := make([]parameter, 0, len(bodyParams))
	for _, p := range bodyParams {
		params = append(params, parameter{Type: "text", Text: p})
	}

	payload := templatePayload{
		MessagingProduct: "whatsapp",
		To:               digitsOnly(to),
		Type:             "template",
		Template: template{
			Name:       templateName,
			Language:   language{Code: c.languageCode},
			Components: []component{{Type: "body", Parameters: params}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{ErrorCode: "MARSHAL_ERROR", ErrorMessage: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{ErrorCode: "REQUEST_ERROR", ErrorMessage: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ErrorLogger.WithField("template", templateName).Errorf("whatsapp send failed: %v", err)
		return Result{ErrorCode: "SEND_ERROR", ErrorMessage: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{
			ErrorCode:    "DECODE_ERROR",
			ErrorMessage: fmt.Sprintf("status %d: %v", resp.StatusCode, err),
		}
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		res := Result{ErrorCode: "SEND_ERROR", ErrorMessage: fmt.Sprintf("status %d", resp.StatusCode)}
		if parsed.Error != nil {
			res.ErrorCode = fmt.Sprintf("%d", parsed.Error.Code)
			res.ErrorMessage = parsed.Error.Message
		}
		logger.ErrorLogger.WithFields(map[string]any{
			"template": templateName,
			"code":     res.ErrorCode,
		}).Error("whatsapp api rejected message")
		return res
	}

	res := Result{Success: true}
	if len(parsed.Messages) > 0 {
		res.MessageID = parsed.Messages[0].ID
	}
	return res
}

// digitsOnly strips everything but digits from a phone number; the Graph API
// wants bare E.164 digits.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
