package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"yardwatch/internal/misc"
	"yardwatch/internal/model"
)

// The "json" yard kind exposes a small inventory API:
//
//	GET {base}/api/v1/search?make=M[&model=D] -> {"vehicles":[...]}
//	GET {base}/api/v1/makes                   -> {"makes":[...]}
//	GET {base}/api/v1/models?make=M           -> {"models":[...]}

var ErrJSONYard = errors.New("JSON yard error")

type jsonYardSearchResponse struct {
	Vehicles []jsonYardVehicle `json:"vehicles"`
}

type jsonYardVehicle struct {
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Row   string `json:"row"`
}

type jsonYardMakesResponse struct {
	Makes []string `json:"makes"`
}

type jsonYardModelsResponse struct {
	Models []string `json:"models"`
}

func (c Client) JSONYardInventory(ctx context.Context, baseURL string, makeName string, modelName string) ([]model.InventoryRow, error) {
	q := url.Values{}
	q.Set("make", makeName)
	if modelName != "" {
		q.Set("model", modelName)
	}
	apiURL := baseURL + "/api/v1/search?" + q.Encode()

	var searchResp jsonYardSearchResponse
	if err := c.jsonYardGet(ctx, apiURL, &searchResp); err != nil {
		return nil, err
	}

	rows := make([]model.InventoryRow, 0, len(searchResp.Vehicles))
	for _, v := range searchResp.Vehicles {
		rows = append(rows, model.InventoryRow{
			Year:  v.Year,
			Make:  v.Make,
			Model: v.Model,
			Row:   v.Row,
		})
	}
	return rows, nil
}

func (c Client) JSONYardMakes(ctx context.Context, baseURL string) ([]string, error) {
	var makesResp jsonYardMakesResponse
	if err := c.jsonYardGet(ctx, baseURL+"/api/v1/makes", &makesResp); err != nil {
		return nil, err
	}
	return makesResp.Makes, nil
}

func (c Client) JSONYardModels(ctx context.Context, baseURL string, makeName string) ([]string, error) {
	q := url.Values{}
	q.Set("make", makeName)
	var modelsResp jsonYardModelsResponse
	if err := c.jsonYardGet(ctx, baseURL+"/api/v1/models?"+q.Encode(), &modelsResp); err != nil {
		return nil, err
	}
	return modelsResp.Models, nil
}

func (c Client) jsonYardGet(ctx context.Context, apiURL string, out any) error {
	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return errors.Wrapf(err, "error creating request from apiURL: %s", apiURL)
	}
	req = req.WithContext(ctx)

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrapf(ErrJSONYard, "error doing request to %s, err: %v", apiURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("jsonYardGet: Error closing response body, apiURL: %s, err: %v", apiURL, err)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return errors.Wrapf(err, "error reading response body, apiURL: %s, body:\n%s", apiURL, misc.BytesLimit(body, 500))
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrJSONYard, "unexpected status getting %s, status: %s, body:\n%s",
			apiURL, resp.Status, misc.BytesLimit(body, 500))
	}
	if err = json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "error unmarshalling response body, apiURL: %s, body:\n%s",
			apiURL, misc.BytesLimit(body, 500))
	}
	return nil
}
