package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"yardwatch/internal/alert"
	"yardwatch/internal/model"
)

func (s Server) alertList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oc, err := getOwnerContext(r.Context())
		if err != nil {
			s.Logger.Errorf("alertList: Error getting ownerContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		searches, err := s.Engine.List(r.Context(), oc.ownerKey)
		if err != nil {
			s.Logger.Errorf("alertList: Error listing saved searches, err: %v", err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, searches, http.StatusOK)
	}
}

func (s Server) alertCreate() http.HandlerFunc {
	type subscriptionKeys struct {
		Auth   string `json:"auth"`
		P256dh string `json:"p256dh"`
	}
	type subscription struct {
		Endpoint string           `json:"endpoint"`
		Keys     subscriptionKeys `json:"keys"`
	}
	type request struct {
		Make    string `json:"make"`
		Model   string `json:"model"`
		Year    *int   `json:"year"`
		MinYear *int   `json:"minYear"`
		MaxYear *int   `json:"maxYear"`

		Subscription *subscription `json:"subscription"`
		Endpoint     string        `json:"endpoint"`
		Auth         string        `json:"auth"`
		P256dh       string        `json:"p256dh"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		oc, err := getOwnerContext(r.Context())
		if err != nil {
			s.Logger.Errorf("alertCreate: Error getting ownerContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("alertCreate: Error decoding JSON, err: %v", err)
			s.writeJsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		in := alert.CreateInput{
			Make:     req.Make,
			Model:    req.Model,
			Year:     req.Year,
			MinYear:  req.MinYear,
			MaxYear:  req.MaxYear,
			Endpoint: req.Endpoint,
			Auth:     req.Auth,
			P256dh:   req.P256dh,
		}
		if req.Subscription != nil {
			in.Subscription = &model.PushSubscription{
				Endpoint: req.Subscription.Endpoint,
				Auth:     req.Subscription.Keys.Auth,
				P256dh:   req.Subscription.Keys.P256dh,
			}
		}

		created, err := s.Engine.Create(r.Context(), oc.ownerKey, in)
		if err != nil {
			s.Logger.Debugf("alertCreate: Error creating saved search, err: %v", err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, created, http.StatusCreated)
	}
}

func (s Server) alertDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		oc, err := getOwnerContext(r.Context())
		if err != nil {
			s.Logger.Errorf("alertDelete: Error getting ownerContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["id"]
		if id == "" {
			s.writeJsonError(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := s.Engine.Delete(r.Context(), oc.ownerKey, id); err != nil {
			s.Logger.Debugf("alertDelete: Error deleting saved search with ID: %s, err: %v", id, err)
			s.writeEngineError(w, err)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) alertNotification() http.HandlerFunc {
	type request struct {
		Endpoint string `json:"endpoint"`
	}
	type response struct {
		Notification           json.RawMessage `json:"notification"`
		LastNotifiedAt         string          `json:"lastNotifiedAt,omitempty"`
		LastNotificationStatus string          `json:"lastNotificationStatus,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("alertNotification: Error decoding JSON, err: %v", err)
			s.writeJsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.Endpoint == "" {
			s.writeJsonError(w, "endpoint is required", http.StatusBadRequest)
			return
		}

		result, err := s.Engine.PollNotification(r.Context(), req.Endpoint)
		if err != nil {
			s.Logger.Errorf("alertNotification: Error polling notification, err: %v", err)
			s.writeEngineError(w, err)
			return
		}
		if result == nil {
			s.writeJsonResponse(w, response{Notification: json.RawMessage("null")}, http.StatusOK)
			return
		}
		s.writeJsonResponse(w, response{
			Notification:           json.RawMessage(result.Payload),
			LastNotifiedAt:         result.NotifiedAt.Format(time.RFC3339),
			LastNotificationStatus: result.Status,
		}, http.StatusOK)
	}
}

func (s Server) alertPublicKey() http.HandlerFunc {
	type response struct {
		PublicKey string `json:"publicKey"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if s.VapidPublicKey == "" {
			s.Logger.Error("alertPublicKey: VAPID public key is not configured")
			s.writeJsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{PublicKey: s.VapidPublicKey}, http.StatusOK)
	}
}
