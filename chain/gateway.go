package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/rs/zerolog/log"
)

// Gateway talks to a contract gateway service over HTTP/JSON. Each
// request names the contract address, the ABI method, and its
// arguments; writes additionally carry the calling wallet address.
type Gateway struct {
	baseURL         string
	contractAddress string
	projectID       string
	httpClient      *http.Client
}

var _ Reader = (*Gateway)(nil)
var _ Writer = (*Gateway)(nil)

// NewGateway creates a gateway client from chain configuration.
func NewGateway(cfg config.ChainConfig) *Gateway {
	return &Gateway{
		baseURL:         cfg.GatewayURL,
		contractAddress: cfg.ContractAddress,
		projectID:       cfg.ProjectID,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
	}
}

// callRequest is the wire format for a contract invocation.
type callRequest struct {
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Params   []interface{} `json:"params"`
	Caller   string        `json:"caller,omitempty"`
}

// callResponse wraps the result or the provider's error message.
type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

func (g *Gateway) call(ctx context.Context, path, method, caller string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(callRequest{
		Contract: g.contractAddress,
		Method:   method,
		Params:   params,
		Caller:   caller,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-ID", g.projectID)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("Contract gateway request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded callResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%w: decoding response for %s: %v", ErrUnavailable, method, err)
	}

	// The provider's message is surfaced verbatim so the user sees
	// exactly why a transaction was rejected or reverted.
	if decoded.Error != "" {
		return errors.New(decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: gateway returned status %d for %s", ErrUnavailable, resp.StatusCode, method)
	}

	if out != nil {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("%w: decoding result for %s: %v", ErrUnavailable, method, err)
		}
	}
	return nil
}

func (g *Gateway) read(ctx context.Context, method string, params []interface{}, out interface{}) error {
	return g.call(ctx, "/call", method, "", params, out)
}

func (g *Gateway) write(ctx context.Context, method, caller string, params []interface{}) error {
	return g.call(ctx, "/send", method, caller, params, nil)
}

func (g *Gateway) GetAllUsers(ctx context.Context) ([]string, error) {
	var addresses []string
	if err := g.read(ctx, "getAllUsers", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (g *Gateway) GetUserDetails(ctx context.Context, address string) (model.User, error) {
	var user model.User
	err := g.read(ctx, "getUserDetails", []interface{}{address}, &user)
	return user, err
}

func (g *Gateway) GetMyDetails(ctx context.Context, caller string) (model.User, error) {
	var user model.User
	err := g.call(ctx, "/call", "getMyDetails", caller, nil, &user)
	return user, err
}

func (g *Gateway) GetUserDataArray(ctx context.Context, address string) ([]model.Link, error) {
	var links []model.Link
	if err := g.read(ctx, "getUserDataArray", []interface{}{address}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (g *Gateway) GetMyDataArray(ctx context.Context, caller string) ([]model.Link, error) {
	var links []model.Link
	if err := g.call(ctx, "/call", "getMyDataArray", caller, nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (g *Gateway) UserExists(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := g.read(ctx, "userExists", []interface{}{address}, &exists)
	return exists, err
}

func (g *Gateway) RegisterUser(ctx context.Context, caller, username string) error {
	return g.write(ctx, "registerUser", caller, []interface{}{username})
}

func (g *Gateway) AddUserData(ctx context.Context, caller, key, value string) error {
	return g.write(ctx, "addUserData", caller, []interface{}{key, value})
}

func (g *Gateway) AddMultipleUserData(ctx context.Context, caller string, keys, values []string) error {
	return g.write(ctx, "addMultipleUserData", caller, []interface{}{keys, values})
}

// Ping verifies the gateway answers at all, for health checks.
func (g *Gateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}
