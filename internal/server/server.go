package server

import (
	"yardwatch/internal/alert"
	"yardwatch/internal/inventory"
)

type Server struct {
	Engine         alert.Engine
	Aggregator     inventory.Aggregator
	VapidPublicKey string
	OwnerSalt      string
	Logger         logger
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
	Tracef(format string, v ...any)
}
