package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// shareManifestEntry is one file in the /latest manifest.
type shareManifestEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
}

// ShareServer exposes the most recent drop batch to the LAN: a JSON manifest
// at /latest, file content at /file/{index}, and an mDNS announcement so
// other devices can find the endpoint. Only the latest batch is ever served;
// a new drop replaces the previous one.
type ShareServer struct {
	mu      sync.Mutex
	batch   DropBatch
	srv     *http.Server
	mdnsSrv *mdns.Server
	port    int
	running bool
}

func NewShareServer(port int) *ShareServer {
	return &ShareServer{port: port}
}

// SetBatch replaces the shared batch. Called from a drop stream subscriber;
// HTTP reads run concurrently, hence the lock.
func (s *ShareServer) SetBatch(batch DropBatch) {
	s.mu.Lock()
	s.batch = batch
	s.mu.Unlock()
}

// Running reports whether the share endpoint is up.
func (s *ShareServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Port returns the port actually bound (may differ from the configured one
// after fallback).
func (s *ShareServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Start binds the HTTP listener and registers the mDNS service. If the
// configured port is taken the next ten ports are tried before giving up.
// Idempotent while running.
func (s *ShareServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	basePort := s.port
	s.mu.Unlock()

	var lastErr error
	for offset := 0; offset <= 10; offset++ {
		tryPort := basePort + offset
		srv := &http.Server{Addr: fmt.Sprintf(":%d", tryPort), Handler: s.handler()}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			lastErr = err
			continue
		case <-time.After(200 * time.Millisecond):
			// listener held the port; treat as bound
		}

		s.mu.Lock()
		s.srv = srv
		s.port = tryPort
		s.running = true
		s.mu.Unlock()

		if tryPort != basePort {
			Log.Info("share server using fallback port", "configured", basePort, "actual", tryPort)
		}
		s.announce(tryPort)
		Log.Info("share server started", "port", tryPort)
		return nil
	}
	return fmt.Errorf("share server failed to bind near port %d: %v", basePort, lastErr)
}

// Stop shuts down the HTTP listener and withdraws the mDNS announcement.
// Safe to call multiple times.
func (s *ShareServer) Stop() {
	s.mu.Lock()
	srv := s.srv
	mdnsSrv := s.mdnsSrv
	s.srv = nil
	s.mdnsSrv = nil
	s.running = false
	s.mu.Unlock()

	if mdnsSrv != nil {
		if err := mdnsSrv.Shutdown(); err != nil {
			Log.Warn("mdns shutdown failed", "error", err)
		}
	}
	if srv != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}
}

// announce registers the _dropdock._tcp service so LAN peers can discover
// the share endpoint. Announcement failure is non-fatal: the HTTP endpoint
// still works by direct address.
func (s *ShareServer) announce(port int) {
	host, _ := os.Hostname()
	info := []string{
		fmt.Sprintf("version=%s", AppVersion),
		fmt.Sprintf("host=%s", host),
	}

	service, err := mdns.NewMDNSService(
		fmt.Sprintf("dropdock-%s", host), // instance name
		"_dropdock._tcp",                 // service type
		"",                               // domain (default: local)
		"",                               // host (default: hostname)
		port,                             // port
		nil,                              // IPs (nil = all interfaces)
		info,                             // TXT records
	)
	if err != nil {
		Log.Warn("mdns service creation failed", "error", err)
		return
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		Log.Warn("mdns server start failed", "error", err)
		return
	}

	s.mu.Lock()
	s.mdnsSrv = server
	s.mu.Unlock()
	Log.Info("mdns service registered", "service", "_dropdock._tcp", "port", port)
}

// handler builds the share endpoint routes. Split out so tests can drive the
// routes without binding a listener.
func (s *ShareServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest", s.handleLatest)
	mux.HandleFunc("/file/", s.handleFile)
	return mux
}

func (s *ShareServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	batch := s.batch
	s.mu.Unlock()

	manifest := make([]shareManifestEntry, 0, len(batch))
	for i, ref := range batch {
		entry := shareManifestEntry{Index: i, Name: ref.Name}
		if fi, err := os.Stat(ref.Path); err == nil {
			entry.Size = fi.Size()
		}
		manifest = append(manifest, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(manifest)
}

func (s *ShareServer) handleFile(w http.ResponseWriter, r *http.Request) {
	idxStr := strings.TrimPrefix(r.URL.Path, "/file/")
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	batch := s.batch
	s.mu.Unlock()

	if idx < 0 || idx >= len(batch) {
		http.NotFound(w, r)
		return
	}
	ref := batch[idx]
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ref.Name))
	http.ServeFile(w, r, ref.Path)
}
