package esplora

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/escrow-network/escrowd/pkg/circuitbreaker"
	"github.com/escrow-network/escrowd/pkg/explorer"
)

var client = &http.Client{Timeout: 30 * time.Second}

type esplora struct {
	apiURL string
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as an explorer.Service
// interface.
func NewService(apiURL string) (explorer.Service, error) {
	service := &esplora{
		apiURL: apiURL,
		cb:     circuitbreaker.NewCircuitBreaker("esplora"),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) BroadcastTransaction(txHex string) (string, error) {
	url := fmt.Sprintf("%s/tx", e.apiURL)
	resp, err := e.cb.Execute(func() (interface{}, error) {
		status, body, err := post(url, txHex)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("broadcast failed: %s", body)
		}
		return strings.TrimSpace(body), nil
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}

func (e *esplora) GetTransactionStatus(txId string) (*explorer.TxStatus, error) {
	url := fmt.Sprintf("%s/tx/%s/status", e.apiURL, txId)
	resp, err := e.cb.Execute(func() (interface{}, error) {
		status, body, err := get(url)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("getting tx status: %s", body)
		}

		txStatus := &explorer.TxStatus{}
		if err := json.Unmarshal([]byte(body), txStatus); err != nil {
			return nil, err
		}
		return txStatus, nil
	})
	if err != nil {
		return nil, err
	}
	return resp.(*explorer.TxStatus), nil
}

func (e *esplora) healthCheck() error {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	status, resp, err := get(url)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s", resp)
	}
	return nil
}

func get(url string) (int, string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(body), nil
}

func post(url, body string) (int, string, error) {
	resp, err := client.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(respBody), nil
}
