package shab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
)

// maxBodyBytes caps response reads. Publication documents are tens of
// kilobytes; anything near this limit is not a publication.
const maxBodyBytes = 8 << 20

// Client fetches publication documents from the gazette API. Every call
// performs exactly one HTTP attempt; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pageSize   int
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a new API client from configuration.
func NewClient(cfg *config.SHABConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		pageSize:   cfg.PageSize,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), burst),
		log:        log,
	}
}

// FetchXML retrieves the raw XML document of one publication.
func (c *Client) FetchXML(ctx context.Context, publicationID string) ([]byte, error) {
	u := fmt.Sprintf("%s/publications/%s/xml", c.baseURL, url.PathEscape(publicationID))

	return c.get(ctx, publicationID, u, "application/xml, text/xml")
}

// OfficeDetail is the registration office record served by the publication
// detail endpoint. It supplements the XML-embedded office with phone,
// email and post-box data.
type OfficeDetail struct {
	ID                    string `json:"id"`
	DisplayName           string `json:"displayName"`
	Street                string `json:"street"`
	StreetNumber          string `json:"streetNumber"`
	SwissZipCode          string `json:"swissZipCode"`
	Town                  string `json:"town"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	ContainsPostOfficeBox bool   `json:"containsPostOfficeBox"`

	PostOfficeBox *models.PostOfficeBox `json:"postOfficeBox"`
}

type officeDetailEnvelope struct {
	Meta struct {
		RegistrationOffice OfficeDetail `json:"registrationOffice"`
	} `json:"meta"`
}

// FetchContactJSON retrieves the office contact record for a publication.
// The detail document lives at the publication URL and carries the
// registration office keyed by its office id. A missing document returns
// (nil, nil); transport failures return a FetchError.
func (c *Client) FetchContactJSON(ctx context.Context, publicationID string) (*OfficeDetail, error) {
	u := fmt.Sprintf("%s/publications/%s", c.baseURL, url.PathEscape(publicationID))

	body, err := c.get(ctx, publicationID, u, "application/json")
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	var envelope officeDetailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &FetchError{Identifier: publicationID, URL: u, Err: fmt.Errorf("decode office detail: %w", err)}
	}

	office := envelope.Meta.RegistrationOffice
	if office.ID == "" && office.DisplayName == "" {
		return nil, nil
	}

	return &office, nil
}

// PublicationRef identifies one published notice in a listing response.
type PublicationRef struct {
	ID              string
	PublicationDate models.Date
}

type publicationListPage struct {
	Content []struct {
		Meta struct {
			ID              string      `json:"id"`
			PublicationDate models.Date `json:"publicationDate"`
		} `json:"meta"`
	} `json:"content"`
	Total int `json:"total"`
}

// ListPublications pages through the published auction notices in the
// given date range (inclusive) and returns their identifiers in
// publication order.
func (c *Client) ListPublications(ctx context.Context, from, to models.Date) ([]PublicationRef, error) {
	rangeTag := from.String() + ".." + to.String()

	var refs []PublicationRef

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("publicationStates", "PUBLISHED")
		q.Set("subRubrics", subRubricAuction)
		q.Set("publicationDate.start", from.String())
		q.Set("publicationDate.end", to.String())
		q.Set("pageRequest.page", strconv.Itoa(page))
		q.Set("pageRequest.size", strconv.Itoa(c.pageSize))

		u := c.baseURL + "/publications?" + q.Encode()

		body, err := c.get(ctx, rangeTag, u, "application/json")
		if err != nil {
			return nil, err
		}

		var listPage publicationListPage
		if err := json.Unmarshal(body, &listPage); err != nil {
			return nil, &FetchError{Identifier: rangeTag, URL: u, Err: fmt.Errorf("decode publication list: %w", err)}
		}

		for _, item := range listPage.Content {
			refs = append(refs, PublicationRef{
				ID:              item.Meta.ID,
				PublicationDate: item.Meta.PublicationDate,
			})
		}

		if len(listPage.Content) < c.pageSize {
			break
		}
	}

	c.log.Debug("listed publications", "range", rangeTag, "count", len(refs))

	return refs, nil
}

// get performs a single GET attempt. The limiter spaces requests so batch
// ingestion stays polite to the source.
func (c *Client) get(ctx context.Context, identifier, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Identifier: identifier, URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{Identifier: identifier, URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Identifier: identifier, URL: rawURL, Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn("failed to close response body", "url", rawURL, "error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, &FetchError{Identifier: identifier, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Identifier: identifier, URL: rawURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, nil
}
