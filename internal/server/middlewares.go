package server

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"yardwatch/internal/alert"
)

type ownerContextKey struct{}
type ownerContext struct {
	ownerKey string
}

type traceContextKey struct{}
type traceContext struct {
	traceID string
}

func setOwnerContext(ctx context.Context, oc ownerContext) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, oc)
}
func getOwnerContext(ctx context.Context) (ownerContext, error) {
	oc, ok := ctx.Value(ownerContextKey{}).(ownerContext)
	if !ok {
		return oc, errors.New("failed to get OwnerContext")
	}
	return oc, nil
}

func setTraceContext(ctx context.Context, tc traceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}
func getTraceContext(ctx context.Context) traceContext {
	tc, _ := ctx.Value(traceContextKey{}).(traceContext)
	return tc
}

func (s Server) maxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, 3000)
}

func (s Server) loggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		s.Logger.Debugf("loggingMw: New incoming request %s %s from %s, UA: %s, Host: %#v, TraceID: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), r.Host, traceID)

		defer func() {
			if re := recover(); re != nil {
				s.Logger.Errorf("loggingMw: Handler crashed, err: %v, TraceID: %s, stack trace:\n%s", re, traceID, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		tc := traceContext{traceID: traceID}
		next.ServeHTTP(w, r.WithContext(setTraceContext(r.Context(), tc)))

		s.Logger.Tracef("loggingMw: Incoming request %s %s took %dms, TraceID: %s",
			r.Method, r.URL.Path, time.Since(start).Milliseconds(), traceID)
	})
}

// ownerMw derives the caller's pseudo-identity from its network address
// and declared client id. There is no authentication; this key only
// scopes saved searches per owner.
func (s Server) ownerMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		clientID := r.Header.Get("X-Client-ID")

		ownerKey := alert.OwnerKey(s.OwnerSalt, ip, clientID)
		s.Logger.Debugf("ownerMw: OwnerKey: %s, TraceID: %s", ownerKey, tid)

		oc := ownerContext{ownerKey: ownerKey}
		next.ServeHTTP(w, r.WithContext(setOwnerContext(r.Context(), oc)))
	})
}
