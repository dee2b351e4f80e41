package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Serve exposes the hub on /ws until ctx is done. The caller runs the hub.
func Serve(ctx context.Context, addr string, h *Hub) (err error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWs)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()
	log.WithField("addr", addr).Info("monitor listening on /ws")
	if err = srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return
}
