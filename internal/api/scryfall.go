package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"magic-counter/internal/config"
)

// CardClient talks to the external card-lookup API (Scryfall-shaped).
// The core only ever persists the subset of the response it keeps as
// commander metadata on a deck.
type CardClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewCardClient(cfg *config.Config) *CardClient {
	return &CardClient{
		baseURL: cfg.CardAPIURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// AutocompleteResponse lists candidate card names for a fragment.
type AutocompleteResponse struct {
	Data []string `json:"data"`
}

// CardResponse is the card detail payload.
type CardResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	TypeLine      string   `json:"type_line"`
	ColorIdentity []string `json:"color_identity"`
	ImageURIs     struct {
		ArtCrop string `json:"art_crop"`
	} `json:"image_uris"`
}

// Autocomplete returns candidate names for a free-text fragment.
func (c *CardClient) Autocomplete(ctx context.Context, query string) (*AutocompleteResponse, error) {
	u := fmt.Sprintf("%s/cards/autocomplete?q=%s", c.baseURL, url.QueryEscape(query))
	return doRequest[AutocompleteResponse](ctx, c, u)
}

// NamedCard fetches card detail by fuzzy name match.
func (c *CardClient) NamedCard(ctx context.Context, name string) (*CardResponse, error) {
	u := fmt.Sprintf("%s/cards/named?fuzzy=%s", c.baseURL, url.QueryEscape(name))
	return doRequest[CardResponse](ctx, c, u)
}

func doRequest[T any](ctx context.Context, client *CardClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("card API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
