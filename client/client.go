package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/jsonapi"
	"github.com/a-h/policychat/models"
)

func New(baseURL string) Client {
	return Client{
		baseURL: baseURL,
	}
}

type Client struct {
	baseURL string
}

// Error is returned when the server responds with an error envelope.
type Error struct {
	Status  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c Client) ChatPost(ctx context.Context, req models.ChatPostRequest) (resp models.ChatPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("chat").String()
	if err != nil {
		return resp, err
	}
	resp, err = jsonapi.Post[models.ChatPostRequest, models.ChatPostResponse](ctx, url, req)
	return resp, asError(err)
}

func (c Client) ContextPost(ctx context.Context, req models.ContextPostRequest) (resp models.ContextPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("context").String()
	if err != nil {
		return resp, err
	}
	resp, err = jsonapi.Post[models.ContextPostRequest, models.ContextPostResponse](ctx, url, req)
	return resp, asError(err)
}

// Health returns the state of the knowledge base. A server that is up but
// has no index is not an error.
func (c Client) Health(ctx context.Context) (resp models.HealthGetResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("health").String()
	if err != nil {
		return resp, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := jsonapi.Raw(httpReq)
	if err != nil {
		return resp, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusServiceUnavailable {
		return resp, Error{Status: res.StatusCode, Message: res.Status}
	}
	if err = json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func asError(err error) error {
	var ise jsonapi.InvalidStatusError
	if !errors.As(err, &ise) {
		return err
	}
	var body models.ErrorResponse
	if json.Unmarshal([]byte(ise.Body), &body) != nil || body.Error == "" {
		return err
	}
	return Error{Status: ise.Status, Message: body.Error}
}
