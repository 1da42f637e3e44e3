// Package testutil provides shared testing utilities and fakes for the
// mercetto-go test suite.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ScriptedResponse describes one canned response served by a
// ScriptedServer.
type ScriptedResponse struct {
	StatusCode  int
	Body        string
	ContentType string
	Headers     map[string]string
}

// ScriptedServer is an httptest server that plays back a fixed sequence
// of responses and records every request it receives. Once the script is
// exhausted the last response repeats.
type ScriptedServer struct {
	mu       sync.Mutex
	script   []ScriptedResponse
	requests []*http.Request
	bodies   [][]byte
	server   *httptest.Server
}

// NewScriptedServer starts a server playing back the given script.
func NewScriptedServer(script ...ScriptedResponse) *ScriptedServer {
	s := &ScriptedServer{script: script}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *ScriptedServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	index := len(s.requests)
	body := readBody(r)
	s.requests = append(s.requests, r.Clone(r.Context()))
	s.bodies = append(s.bodies, body)
	if index >= len(s.script) {
		index = len(s.script) - 1
	}
	resp := s.script[index]
	s.mu.Unlock()

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(resp.Body))
}

func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	defer func() { _ = r.Body.Close() }()
	data, _ := io.ReadAll(r.Body)
	return data
}

// URL returns the server's base URL.
func (s *ScriptedServer) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *ScriptedServer) Close() {
	s.server.Close()
}

// Requests returns the recorded requests in arrival order.
func (s *ScriptedServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Bodies returns the recorded request bodies in arrival order.
func (s *ScriptedServer) Bodies() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bodies...)
}

// Count returns how many requests the server has received.
func (s *ScriptedServer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
