package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

// Client talks to the Steam Web API. The game proves a player's
// identity by sending an auth session ticket with every request;
// AuthenticateTicket exchanges it for a steam ID.
type Client interface {
	AuthenticateTicket(ctx context.Context, ticket string) (int64, error)
	GetPlayerSummary(ctx context.Context, steamID int64) (*PlayerSummary, error)
}

type client struct {
	log     *logger.Logger
	http    *http.Client
	baseURL string
	apiKey  string
	appID   int
}

type Option func(*client)

// WithBaseURL points the client at a test double.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *client) { c.http = h }
}

func NewClient(log *logger.Logger, apiKey string, appID int, opts ...Option) Client {
	c := &client{
		log:     log.With("client", "SteamClient"),
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.steampowered.com",
		apiKey:  apiKey,
		appID:   appID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type PlayerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
	CountryCode string `json:"loccountrycode"`
}

type authTicketEnvelope struct {
	Response struct {
		Params *struct {
			Result          string `json:"result"`
			SteamID         string `json:"steamid"`
			OwnerSteamID    string `json:"ownersteamid"`
			VACBanned       bool   `json:"vacbanned"`
			PublisherBanned bool   `json:"publisherbanned"`
		} `json:"params"`
		Error *struct {
			ErrorCode int    `json:"errorcode"`
			ErrorDesc string `json:"errordesc"`
		} `json:"error"`
	} `json:"response"`
}

type playerSummariesEnvelope struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

var (
	ErrInvalidTicket = fmt.Errorf("steam: invalid auth ticket")
	ErrBanned        = fmt.Errorf("steam: player is banned")
)

func (c *client) AuthenticateTicket(ctx context.Context, ticket string) (int64, error) {
	if ticket == "" {
		return 0, ErrInvalidTicket
	}
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("appid", strconv.Itoa(c.appID))
	q.Set("ticket", ticket)

	var env authTicketEnvelope
	if err := c.getJSON(ctx, "/ISteamUserAuth/AuthenticateUserTicket/v1/", q, &env); err != nil {
		return 0, err
	}
	if env.Response.Error != nil {
		c.log.Warn("Ticket auth rejected by Steam",
			"errorcode", env.Response.Error.ErrorCode,
			"errordesc", env.Response.Error.ErrorDesc)
		return 0, ErrInvalidTicket
	}
	params := env.Response.Params
	if params == nil || params.Result != "OK" {
		return 0, ErrInvalidTicket
	}
	if params.VACBanned || params.PublisherBanned {
		return 0, ErrBanned
	}
	steamID, err := strconv.ParseInt(params.SteamID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("steam: parse steamid %q: %w", params.SteamID, err)
	}
	return steamID, nil
}

func (c *client) GetPlayerSummary(ctx context.Context, steamID int64) (*PlayerSummary, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", strconv.FormatInt(steamID, 10))

	var env playerSummariesEnvelope
	if err := c.getJSON(ctx, "/ISteamUser/GetPlayerSummaries/v2/", q, &env); err != nil {
		return nil, err
	}
	if len(env.Response.Players) == 0 {
		return nil, fmt.Errorf("steam: no summary for steamid %d", steamID)
	}
	return &env.Response.Players[0], nil
}

func (c *client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("steam: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Steam answers ticket failures with 403 plus a JSON error body, so
	// decode before judging the status.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("steam: %s returned status %d", path, resp.StatusCode)
		}
		return fmt.Errorf("steam: decode %s response: %w", path, err)
	}
	return nil
}
