package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/stats"
)

// StatusFetcher reports the state of a running transfer.
type StatusFetcher interface {
	Status() TransferStatus
}

type WebServerConfig struct {
	Addr   net.IP
	Port   int // 0 picks a free port.
	Stats  stats.StatsFetcher
	Status StatusFetcher
	Stop   context.CancelFunc // cancels the transfer on GET /stop.
}

// WebServer serves stats for one transfer while it runs.
type WebServer struct {
	log      logger.Logger
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewRouter returns the routes of the web server.
func NewRouter(log logger.Logger, web *WebServerConfig) *mux.Router {
	r := mux.NewRouter()
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/stats").HandlerFunc(GetHandlerTransferStats(log, web.Stats))
	r.Path("/status").HandlerFunc(GetHandlerTransferStatus(log, web.Status))
	r.Path("/stop").HandlerFunc(GetHandlerStopTransfer(log, web.Stop))
	return r
}

// RunWebServer starts listening and serves requests in the background until Shutdown.
func RunWebServer(log logger.Logger, web *WebServerConfig) (*WebServer, error) {
	if web == nil {
		return nil, errors.New("nil pointer to web server config supplied")
	}
	addr := ""
	if web.Addr != nil {
		addr = web.Addr.String()
	}
	l, err := net.Listen("tcp", net.JoinHostPort(addr, fmt.Sprint(web.Port)))
	if err != nil {
		return nil, errors.Wrap(err, "unable to start web server")
	}
	s := &WebServer{
		log:      log,
		listener: l,
		done:     make(chan struct{}),
		srv: &http.Server{ // timeouts guard against slow clients.
			WriteTimeout: time.Second * 15,
			ReadTimeout:  time.Second * 15,
			IdleTimeout:  time.Second * 60,
			Handler:      NewRouter(log, web),
		},
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Error("web server error: ", err)
		}
	}()
	log.Info(fmt.Sprintf("Listening on http://%v", l.Addr()))
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *WebServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting up to 15 seconds for open requests.
func (s *WebServer) Shutdown() error {
	s.log.Info("Shutting down web server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
