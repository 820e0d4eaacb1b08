// Package testbed runs an in-process redis server for tests.
//
// The server speaks enough of the protocol to exercise a pipelined client:
// strings, lists and hashes, MULTI/EXEC/DISCARD with queue-time validation,
// INFO, SCAN. State is shared between connections, so a test can mutate data
// through the client under test and verify it through an independent
// connection.
package testbed

import (
	"net"
	"strconv"
	"sync"
)

// Server is an in-process redis server.
type Server struct {
	// Port to listen on (127.0.0.1). Zero picks a free port on Start.
	Port uint16

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	dbs    map[int]*database
	closed bool
}

// PortStr is the port as a string.
func (s *Server) PortStr() string {
	return strconv.Itoa(int(s.Port))
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return "127.0.0.1:" + s.PortStr()
}

// Start begins accepting connections. Calling Start on a running server is
// a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", "127.0.0.1:"+s.PortStr())
	if err != nil {
		return err
	}
	s.ln = ln
	s.closed = false
	s.Port = uint16(ln.Addr().(*net.TCPAddr).Port)
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	if s.dbs == nil {
		s.dbs = make(map[int]*database)
	}
	go s.acceptLoop(ln)
	return nil
}

// Stop closes the listener and every open connection. Data survives a
// Stop/Start cycle.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	s.ln = nil
	for c := range s.conns {
		c.Close()
	}
	s.conns = make(map[net.Conn]struct{})
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			c.Close()
			return
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()
		go s.serve(c)
	}
}

func (s *Server) forget(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) database(n int) *database {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[n]
	if !ok {
		db = newDatabase()
		s.dbs[n] = db
	}
	return db
}
