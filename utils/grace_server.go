package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Zero-downtime serving: SIGTERM drains and exits, SIGUSR2 forks a
// replacement process that inherits the listener fd, then drains. The child
// detects inheritance through the environment marker.

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = defaultReadTimeout
	shutdownGrace       = 30 * time.Second

	inheritEnvKey  = "BHISHMA_INHERIT_LISTENER"
	inheritEnvPair = inheritEnvKey + "=1"
	inheritedFD    = 3
)

// Server wraps http.Server with drain-on-signal shutdown and fd handoff.
type Server struct {
	*http.Server

	listener     net.Listener
	inherited    bool
	signalChan   chan os.Signal
	shutdownChan chan struct{}
}

// NewServer builds a Server for the given address and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		inherited:    os.Getenv(inheritEnvKey) != "",
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// ListenAndServe binds (or inherits) the listener and serves until drained.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := srv.acquireListener(addr)
	if err != nil {
		return err
	}
	srv.listener = ln
	return srv.serve()
}

// ListenAndServeTLS is ListenAndServe over TLS.
func (srv *Server) ListenAndServeTLS(certFile, keyFile string) error {
	addr := srv.Addr
	if addr == "" {
		addr = ":https"
	}

	cfg := &tls.Config{}
	if srv.TLSConfig != nil {
		cfg = srv.TLSConfig.Clone()
	}
	if cfg.NextProtos == nil {
		cfg.NextProtos = []string{"http/1.1"}
	}
	var err error
	cfg.Certificates = make([]tls.Certificate, 1)
	cfg.Certificates[0], err = tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}

	ln, err := srv.acquireListener(addr)
	if err != nil {
		return err
	}
	srv.listener = tls.NewListener(ln, cfg)
	return srv.serve()
}

func (srv *Server) serve() error {
	go srv.handleSignals()
	err := srv.Server.Serve(srv.listener)
	// Serve returns the moment Shutdown starts; wait for the drain to finish.
	<-srv.shutdownChan
	return err
}

func (srv *Server) acquireListener(addr string) (net.Listener, error) {
	if srv.inherited {
		file := os.NewFile(inheritedFD, "")
		ln, err := net.FileListener(file)
		if err != nil {
			return nil, fmt.Errorf("inherit listener fd: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *Server) handleSignals() {
	signal.Notify(srv.signalChan, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range srv.signalChan {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Infow("draining on SIGTERM")
			srv.drain()
		case syscall.SIGUSR2:
			Sugar.Infow("restarting on SIGUSR2")
			pid, err := srv.forkSuccessor()
			if err != nil {
				Sugar.Errorw("restart failed, continuing to serve", "error", err)
				continue
			}
			Sugar.Infow("successor started, draining old server", "pid", pid)
			srv.drain()
		}
	}
}

func (srv *Server) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorw("server shutdown error", "error", err)
	} else {
		Sugar.Infow("server drained")
	}
	close(srv.shutdownChan)
}

// forkSuccessor re-executes the binary with the listener fd at a fixed slot
// and the inherit marker set.
func (srv *Server) forkSuccessor() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("dup listener fd: %w", err)
	}

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != inheritEnvPair {
			envs = append(envs, e)
		}
	}
	envs = append(envs, inheritEnvPair)

	attr := &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	}
	pid, err := syscall.ForkExec(os.Args[0], os.Args, attr)
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}

// GraceServer serves HTTP with drain-on-signal shutdown and restart.
func GraceServer(addr string, handler http.Handler) error {
	return NewServer(addr, handler, defaultReadTimeout, defaultWriteTimeout).ListenAndServe()
}

// GraceServerTLS is GraceServer over TLS.
func GraceServerTLS(addr, certFile, keyFile string, handler http.Handler) error {
	return NewServer(addr, handler, defaultReadTimeout, defaultWriteTimeout).ListenAndServeTLS(certFile, keyFile)
}
