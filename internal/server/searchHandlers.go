package server

import (
	"encoding/json"
	"net/http"

	"yardwatch/internal/model"
)

func (s Server) searchAll() http.HandlerFunc {
	type request struct {
		Make  string `json:"make"`
		Model string `json:"model"`
	}
	type query struct {
		Make  string `json:"make"`
		Model string `json:"model,omitempty"`
	}
	type response struct {
		Query   query                `json:"query"`
		Yards   []string             `json:"yards"`
		Count   int                  `json:"count"`
		Results []model.InventoryRow `json:"results"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("searchAll: Error decoding JSON, err: %v", err)
			s.writeJsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		rows, err := s.Aggregator.Search(r.Context(), req.Make, req.Model)
		if err != nil {
			s.Logger.Debugf("searchAll: Error aggregating, make: %s, model: %s, err: %v", req.Make, req.Model, err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, response{
			Query:   query{Make: req.Make, Model: req.Model},
			Yards:   s.Aggregator.YardNames(),
			Count:   len(rows),
			Results: rows,
		}, http.StatusOK)
	}
}

func (s Server) makesAll() http.HandlerFunc {
	type response struct {
		Count int      `json:"count"`
		Makes []string `json:"makes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		makes, err := s.Aggregator.Makes(r.Context())
		if err != nil {
			s.Logger.Errorf("makesAll: Error aggregating makes, err: %v", err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, response{Count: len(makes), Makes: makes}, http.StatusOK)
	}
}

func (s Server) modelsAll() http.HandlerFunc {
	type request struct {
		MakeName string `json:"makeName"`
	}
	type response struct {
		MakeName string   `json:"makeName"`
		Count    int      `json:"count"`
		Models   []string `json:"models"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("modelsAll: Error decoding JSON, err: %v", err)
			s.writeJsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		models, err := s.Aggregator.Models(r.Context(), req.MakeName)
		if err != nil {
			s.Logger.Debugf("modelsAll: Error aggregating models, makeName: %s, err: %v", req.MakeName, err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, response{MakeName: req.MakeName, Count: len(models), Models: models}, http.StatusOK)
	}
}
