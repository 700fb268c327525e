package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/discovery"
	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/store"
	"github.com/muurk/orderdesk/internal/version"
)

// DefaultShutdownTimeout bounds graceful shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host         string
	Port         int
	CertPath     string // Path to certificate file (TLS is off unless set or GenerateCert)
	KeyPath      string // Path to private key file
	GenerateCert bool   // If true, serve TLS with an in-memory self-signed certificate
	Token        string // Bearer token required on every API call (empty = no auth)
	DBPath       string // SQLite database path (store.MemoryPath for a throwaway catalog)
	SeedPath     string // YAML seed applied to an empty catalog (empty = embedded seed)
	Advertise    bool   // Announce the backend over mDNS
	InstanceName string // mDNS instance name
	LogLevel     string
}

// Server is the demo platform backend
type Server struct {
	config      *Config
	store       *store.Store
	hub         *Hub
	tlsConfig   *tls.Config
	httpServer  *http.Server
	listener    net.Listener
	unadvertise func()
}

// New creates a server, opening and if necessary seeding the store
func New(config *Config) (*Server, error) {
	if config.LogLevel != "" {
		if err := logging.Initialize(config.LogLevel); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	dbPath := config.DBPath
	if dbPath == "" {
		dbPath = store.MemoryPath
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := seedIfEmpty(context.Background(), st, config.SeedPath); err != nil {
		_ = st.Close()
		return nil, err
	}

	var tlsConfig *tls.Config
	switch {
	case config.GenerateCert:
		logging.Info("Generating self-signed server certificate")
		tlsConfig, err = NewSelfSignedTLSConfig(DefaultCertParams(config.Host))
	case config.CertPath != "" || config.KeyPath != "":
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
	}
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	return NewWithStore(config, st, tlsConfig), nil
}

// NewWithStore creates a server around an already opened store
func NewWithStore(config *Config, st *store.Store, tlsConfig *tls.Config) *Server {
	s := &Server{
		config:    config,
		store:     st,
		hub:       NewHub(),
		tlsConfig: tlsConfig,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func seedIfEmpty(ctx context.Context, st *store.Store, seedPath string) error {
	n, err := st.CountProducts(ctx, "", "")
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Info("Catalog already populated", zap.Int("products", n))
		return nil
	}

	var seed *store.Seed
	if seedPath != "" {
		seed, err = store.LoadSeed(seedPath)
	} else {
		seed, err = store.DefaultSeed()
	}
	if err != nil {
		return err
	}
	return st.Apply(ctx, seed)
}

// Scheme returns "https" when TLS is configured
func (s *Server) Scheme() string {
	if s.tlsConfig != nil {
		return "https"
	}
	return "http"
}

// Hub returns the order event hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Listen binds the configured address
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the HTTP server on the bound listener until Shutdown
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start starts the server and blocks until a shutdown signal or a fatal error
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Starting orderdesk platform server",
		zap.String("addr", s.Addr().String()),
		zap.String("scheme", s.Scheme()),
		zap.Bool("auth", s.config.Token != ""),
		zap.String("db", s.store.Path()),
	)
	if s.tlsConfig != nil {
		logging.Info("TLS Configuration", zap.Any("tls_info", GetTLSInfo(s.tlsConfig)))
	}

	if s.config.Advertise {
		s.advertise()
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

func (s *Server) advertise() {
	port := s.config.Port
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	name := s.config.InstanceName
	if name == "" {
		host, _ := os.Hostname()
		name = "orderdesk-" + host
	}

	txt := map[string]string{
		"version": version.Version,
		"scheme":  s.Scheme(),
	}
	if s.config.Token != "" {
		txt["auth"] = "bearer"
	}

	stop, err := discovery.Advertise(name, port, txt)
	if err != nil {
		logging.Warn("mDNS advertisement failed", zap.Error(err))
		return
	}
	s.unadvertise = stop
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.unadvertise != nil {
		s.unadvertise()
		s.unadvertise = nil
	}

	// websocket connections are hijacked and not tracked by http.Server
	s.hub.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = s.httpServer.Close()
	}

	if err := s.store.Close(); err != nil {
		logging.Error("Error closing store", zap.Error(err))
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of event feed subscribers
func (s *Server) GetActiveConnections() int {
	return s.hub.Count()
}
