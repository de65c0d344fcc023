package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

const graphEndpoint = "https://graph.microsoft.com/v1.0"

const defaultFetchLimit = 30

var graphScopes = []string{"Mail.Read", "offline_access"}

// GraphFetcher reads the Inbox of a Microsoft account through the Graph
// REST API. Tokens come from the device-code flow and are cached on disk so
// the user authorizes once.
type GraphFetcher struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	cachePath   string
}

func NewGraphFetcher(ctx context.Context, clientID, cachePath string) (*GraphFetcher, error) {
	if clientID == "" {
		return nil, fmt.Errorf("graph fetcher: GRAPH_CLIENT_ID is not set")
	}
	cfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: microsoft.AzureADEndpoint("common"),
		Scopes:   graphScopes,
	}

	token, err := loadToken(cachePath)
	if err != nil {
		token, err = authorizeDevice(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("graph fetcher: device authorization: %w", err)
		}
		if err := saveToken(cachePath, token); err != nil {
			return nil, fmt.Errorf("graph fetcher: caching token: %w", err)
		}
	}

	tokenSource := cfg.TokenSource(ctx, token)
	return &GraphFetcher{
		httpClient:  oauth2.NewClient(ctx, tokenSource),
		tokenSource: tokenSource,
		cachePath:   cachePath,
	}, nil
}

// authorizeDevice runs the OAuth device-code flow. The verification URL and
// code are printed to the terminal; the call blocks until the user approves
// or the context expires.
func authorizeDevice(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	deviceAuth, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Visit %s and enter the code %s to authorize mailbox access.\n",
		deviceAuth.VerificationURI, deviceAuth.UserCode)
	return cfg.DeviceAccessToken(ctx, deviceAuth)
}

type graphMessage struct {
	Subject          string    `json:"subject"`
	BodyPreview      string    `json:"bodyPreview"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	From             struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

func (f *GraphFetcher) Fetch(ctx context.Context, since time.Time, limit int) ([]domain.EmailRecord, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	params := url.Values{}
	params.Set("$top", strconv.Itoa(limit))
	params.Set("$select", "receivedDateTime,subject,from,bodyPreview")
	params.Set("$orderby", "receivedDateTime desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		graphEndpoint+"/me/mailFolders/Inbox/messages?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graph returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Value []graphMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	records := make([]domain.EmailRecord, 0, len(payload.Value))
	for _, msg := range payload.Value {
		if !since.IsZero() && msg.ReceivedDateTime.Before(since) {
			continue
		}
		records = append(records, domain.EmailRecord{
			Sender:   msg.From.EmailAddress.Address,
			Subject:  msg.Subject,
			Body:     msg.BodyPreview,
			Received: msg.ReceivedDateTime,
		})
	}

	// Persist refreshed tokens so the next run skips the device flow.
	if token, err := f.tokenSource.Token(); err == nil {
		_ = saveToken(f.cachePath, token)
	}
	return records, nil
}
