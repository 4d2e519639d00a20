package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// CEPInfo is the address data returned by ViaCEP for a postal code.
type CEPInfo struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Error        bool   `json:"erro,omitempty"`
}

// CEPClient resolves Brazilian postal codes against the public ViaCEP
// service, used by the admin UI to pre-fill tenant addresses.
type CEPClient struct {
	http *resty.Client
}

func NewCEPClient() *CEPClient {
	client := resty.New().
		SetBaseURL("https://viacep.com.br").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	return &CEPClient{http: client}
}

func (c *CEPClient) Lookup(cep string) (*CEPInfo, error) {
	clean := strings.NewReplacer("-", "", ".", "").Replace(cep)
	if len(clean) != 8 {
		return nil, utils.NewError(utils.KindValidation, "CEP deve ter 8 dígitos")
	}

	var info CEPInfo
	resp, err := c.http.R().
		SetResult(&info).
		Get(fmt.Sprintf("/ws/%s/json/", clean))
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "erro ao consultar serviço de CEP")
	}
	if resp.StatusCode() != 200 {
		return nil, utils.NewError(utils.KindValidation, "erro ao consultar CEP (status %d)", resp.StatusCode())
	}
	if info.Error {
		return nil, utils.NewError(utils.KindNotFound, "CEP %s não encontrado", cep)
	}
	return &info, nil
}
