package services

import (
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// AgentClient fires server-to-server test calls at a supermarket's
// ordering-agent webhook, so integrations can be verified from the
// admin panel without tripping browser CORS rules.
type AgentClient struct {
	http *resty.Client
}

func NewAgentClient() *AgentClient {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &AgentClient{http: client}
}

type AgentTestResult struct {
	OK       bool        `json:"ok"`
	Status   int         `json:"status"`
	Response interface{} `json:"response"`
}

// TestWebhook POSTs the payload (or a sample order when none is given)
// to the target URL and relays the result.
func (a *AgentClient) TestWebhook(market *models.Supermarket, url string, payload interface{}, headers map[string]string) (*AgentTestResult, error) {
	if url == "" {
		return nil, utils.NewError(utils.KindValidation, "URL de integração é obrigatória")
	}
	if payload == nil {
		payload = samplePayload(market)
	}

	req := a.http.R().SetBody(payload)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Post(url)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "falha ao conectar ao webhook")
	}

	var body interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		body = map[string]string{"text": string(resp.Body())}
	}

	return &AgentTestResult{
		OK:       resp.IsSuccess(),
		Status:   resp.StatusCode(),
		Response: body,
	}, nil
}

func samplePayload(market *models.Supermarket) map[string]interface{} {
	return map[string]interface{}{
		"supermarket_id":   market.ID,
		"supermarket_name": market.Name,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"pedido_exemplo": map[string]interface{}{
			"cliente": map[string]interface{}{"nome": "Cliente Teste", "telefone": "000000000"},
			"itens": []map[string]interface{}{
				{"sku": "ABC123", "descricao": "Arroz 5kg", "quantidade": 1, "preco": 25.90},
				{"sku": "XYZ987", "descricao": "Feijão 1kg", "quantidade": 2, "preco": 8.50},
			},
			"total": 42.90,
		},
	}
}
