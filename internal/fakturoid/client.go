package fakturoid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"fsreport/internal/logger"
	"fsreport/pkg/models"
)

const (
	// DefaultBaseURL is the Fakturoid API v3 root.
	DefaultBaseURL = "https://app.fakturoid.cz/api/v3"

	// DefaultTimeout bounds every API request.
	DefaultTimeout = 10 * time.Second

	// pageSize is the number of records in a full list page.
	pageSize = 40

	userAgentApp = "fsreport"
)

// Config holds the account and credentials used by the client.
type Config struct {
	Slug         string
	ClientID     string
	ClientSecret string
	Email        string

	BaseURL string
	Timeout time.Duration
}

// Client lists documents of one Fakturoid account.
type Client struct {
	http *resty.Client
	cfg  Config
	auth *AuthSession
	now  func() time.Time
	fs   afero.Fs
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithFs overrides the filesystem the expense cache is read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// NewClient creates a Fakturoid API client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		cfg: cfg,
		now: time.Now,
		fs:  afero.NewOsFs(),
		log: logger.WithComponent("fakturoid"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", fmt.Sprintf("%s (%s)", userAgentApp, cfg.Email)).
		SetHeader("Accept", "application/json")

	return c
}

// Session returns the current auth session, nil before the first request.
func (c *Client) Session() *AuthSession {
	return c.auth
}

// ListInvoices returns all issued invoices of the account.
func (c *Client) ListInvoices(ctx context.Context) ([]models.InvoiceRecord, error) {
	return listAll[models.InvoiceRecord](ctx, c, "ListInvoices", "invoices.json")
}

// ListExpenses returns all received expenses of the account.
func (c *Client) ListExpenses(ctx context.Context) ([]models.ExpenseRecord, error) {
	return listAll[models.ExpenseRecord](ctx, c, "ListExpenses", "expenses.json")
}

// ListExpensesFromCache reads expense records from a JSON cache file.
func (c *Client) ListExpensesFromCache(_ context.Context, path string) ([]models.CachedExpenseRecord, error) {
	const op = "ListExpensesFromCache"

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrCacheUnavailable, err)
	}

	var records []models.CachedExpenseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w: invalid JSON in %s: %v", op, ErrCacheUnavailable, path, err)
	}

	c.log.Debug().Str("path", path).Int("records", len(records)).Msg("Read expense cache")
	return records, nil
}

func (c *Client) accountPath(resource string) string {
	return fmt.Sprintf("/accounts/%s/%s", c.cfg.Slug, resource)
}

// listAll pages through a list resource until an empty or short page.
func listAll[T any](ctx context.Context, c *Client, op, resource string) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		var records []T
		if err := c.get(ctx, op, c.accountPath(resource), page, &records); err != nil {
			return nil, err
		}

		all = append(all, records...)

		c.log.Debug().
			Str("resource", resource).
			Int("page", page).
			Int("records", len(records)).
			Msg("Fetched page")

		if len(records) < pageSize {
			break
		}
	}

	c.log.Info().Str("resource", resource).Int("records", len(all)).Msg("Listed documents")
	return all, nil
}

// get performs an authorized GET and decodes the JSON body into out.
// A rejected token is renewed once.
func (c *Client) get(ctx context.Context, op, path string, page int, out any) error {
	for attempt := 0; ; attempt++ {
		session, err := c.session(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthScheme(session.TokenType).
			SetAuthToken(session.AccessToken).
			SetQueryParam("page", strconv.Itoa(page)).
			ForceContentType("application/json").
			SetResult(out).
			Get(path)
		if err != nil {
			return fmt.Errorf("%s: request failed: %w", op, err)
		}

		if resp.StatusCode() == http.StatusUnauthorized && attempt == 0 {
			c.log.Debug().Msg("Access token rejected, renewing")
			c.auth = nil
			continue
		}
		if !resp.IsSuccess() {
			return newAPIError(op, resp.StatusCode(), resp.String())
		}
		return nil
	}
}
