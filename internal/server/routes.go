package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.maxBytesMw)
	api.HandleFunc("/searchAll", s.searchAll()).Methods(http.MethodPost)
	api.HandleFunc("/makesAll", s.makesAll()).Methods(http.MethodPost)
	api.HandleFunc("/modelsAll", s.modelsAll()).Methods(http.MethodPost)
	api.PathPrefix("").Handler(http.NotFoundHandler())

	alerts := r.PathPrefix("/alerts").Subrouter()
	alerts.Use(s.maxBytesMw, s.ownerMw)
	alerts.HandleFunc("", s.alertList()).Methods(http.MethodGet)
	alerts.HandleFunc("", s.alertCreate()).Methods(http.MethodPost)
	alerts.HandleFunc("/notification", s.alertNotification()).Methods(http.MethodPost)
	alerts.HandleFunc("/public-key", s.alertPublicKey()).Methods(http.MethodGet)
	alerts.HandleFunc("/{id}", s.alertDelete()).Methods(http.MethodDelete)
	alerts.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
