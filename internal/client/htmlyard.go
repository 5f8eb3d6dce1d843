package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"yardwatch/internal/misc"
	"yardwatch/internal/model"
)

// The "html" yard kind is a plain inventory site:
//
//	GET {base}/inventory?make=M[&model=D]  vehicle table page
//	GET {base}/makes                       page with a make <select>
//
// Inventory pages are cached in Redis for a short interval so a sweep over
// many saved searches does not hammer the upstream with near-identical
// requests.

var ErrHTMLYard = errors.New("HTML yard error")

const htmlYardCacheTTL = 10 * time.Minute

func (c Client) HTMLYardInventory(ctx context.Context, baseURL string, makeName string, modelName string) ([]model.InventoryRow, error) {
	q := url.Values{}
	q.Set("make", makeName)
	if modelName != "" {
		q.Set("model", modelName)
	}
	pageURL := baseURL + "/inventory?" + q.Encode()

	cacheKey := "HYI-" + pageURL
	if cached, err := c.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var rows []model.InventoryRow
		if err = json.Unmarshal([]byte(cached), &rows); err == nil {
			c.Logger.Debugf("HTMLYardInventory: Cache hit, key: %s", cacheKey)
			return rows, nil
		}
		c.Logger.Errorf("HTMLYardInventory: Error unmarshalling cache, key: %s, err: %v", cacheKey, err)
	} else if err != redis.Nil {
		c.Logger.Errorf("HTMLYardInventory: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
	}

	body, err := c.htmlYardGet(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	rows, err := htmlYardParseInventory(body)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing inventory page, pageURL: %s, body:\n%s",
			pageURL, misc.BytesLimit(body, 500))
	}

	if cacheVal, err := json.Marshal(rows); err == nil {
		if err = c.Redis.Set(ctx, cacheKey, cacheVal, htmlYardCacheTTL).Err(); err != nil {
			c.Logger.Errorf("HTMLYardInventory: Error setting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}
	return rows, nil
}

func (c Client) HTMLYardMakes(ctx context.Context, baseURL string) ([]string, error) {
	body, err := c.htmlYardGet(ctx, baseURL+"/makes")
	if err != nil {
		return nil, err
	}
	makes, err := htmlYardParseMakes(body)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing makes page, baseURL: %s, body:\n%s",
			baseURL, misc.BytesLimit(body, 500))
	}
	return makes, nil
}

// HTMLYardModels derives the model list from the make's inventory page;
// the site has no dedicated models endpoint.
func (c Client) HTMLYardModels(ctx context.Context, baseURL string, makeName string) ([]string, error) {
	rows, err := c.HTMLYardInventory(ctx, baseURL, makeName, "")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var models []string
	for _, r := range rows {
		if r.Model != "" && !seen[r.Model] {
			seen[r.Model] = true
			models = append(models, r.Model)
		}
	}
	return models, nil
}

func (c Client) htmlYardGet(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := newRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request from pageURL: %s", pageURL)
	}
	req = req.WithContext(ctx)

	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrHTMLYard, "error doing request to %s, err: %v", pageURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("htmlYardGet: Error closing response body, pageURL: %s, err: %v", pageURL, err)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 2*1024*1024))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading page response body, pageURL: %s", pageURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrHTMLYard, "unexpected status getting %s, status: %s, body:\n%s",
			pageURL, resp.Status, misc.BytesLimit(body, 500))
	}
	return body, nil
}

// htmlYardParseInventory scans the page for the inventory table and reads
// one vehicle per <tr>, cells ordered year, make, model, row.
func htmlYardParseInventory(body []byte) ([]model.InventoryRow, error) {
	z := html.NewTokenizer(bytes.NewReader(body))
	rows := []model.InventoryRow{}
	var inTable, inRow, inCell bool
	var cells []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				if inTable {
					return nil, errors.New("inventory table is not terminated")
				}
				return rows, nil
			}
			return nil, errors.Wrap(z.Err(), "tokenizer error")
		case html.StartTagToken:
			t := z.Token()
			switch t.Data {
			case "table":
				for _, a := range t.Attr {
					if a.Key == "class" && strings.Contains(a.Val, "inventory") {
						inTable = true
					}
				}
			case "tr":
				if inTable {
					inRow = true
					cells = nil
				}
			case "td":
				if inRow {
					inCell = true
					cells = append(cells, "")
				}
			}
		case html.TextToken:
			if inCell {
				cells[len(cells)-1] += strings.TrimSpace(html.UnescapeString(string(z.Text())))
			}
		case html.EndTagToken:
			t := z.Token()
			switch t.Data {
			case "table":
				if inTable {
					return rows, nil
				}
			case "tr":
				if inRow {
					inRow = false
					if len(cells) == 4 {
						year, err := strconv.Atoi(cells[0])
						if err != nil {
							// Header or malformed row, skip it.
							continue
						}
						rows = append(rows, model.InventoryRow{
							Year:  year,
							Make:  cells[1],
							Model: cells[2],
							Row:   cells[3],
						})
					}
				}
			case "td":
				inCell = false
			}
		}
	}
}

// htmlYardParseMakes collects the option values of the make <select>.
func htmlYardParseMakes(body []byte) ([]string, error) {
	z := html.NewTokenizer(bytes.NewReader(body))
	var makes []string
	var inSelect bool

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return makes, nil
			}
			return nil, errors.Wrap(z.Err(), "tokenizer error")
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.Data {
			case "select":
				for _, a := range t.Attr {
					if a.Key == "name" && a.Val == "make" {
						inSelect = true
					}
				}
			case "option":
				if inSelect {
					for _, a := range t.Attr {
						if a.Key == "value" && a.Val != "" {
							makes = append(makes, a.Val)
						}
					}
				}
			}
		case html.EndTagToken:
			if z.Token().Data == "select" {
				inSelect = false
			}
		}
	}
}
