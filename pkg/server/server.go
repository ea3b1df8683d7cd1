package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/wordguard/internal/logger"
	"github.com/bastiangx/wordguard/pkg/config"
	"github.com/bastiangx/wordguard/pkg/filter"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Engine is what the server queries. *wordguard.Dictionary satisfies it.
type Engine interface {
	Search(text string) (filter.Result, error)
	Replace(text string, sub filter.Substitution) (string, error)
	Stats() map[string]int
}

// Server handles msgpack IPC for one engine.
type Server struct {
	engine   Engine
	config   *config.Config
	dec      *msgpack.Decoder
	out      *bufio.Writer
	enc      *msgpack.Encoder
	log      *log.Logger
	requests int
}

// NewServer creates a server that reads stdin and writes stdout.
func NewServer(engine Engine, cfg *config.Config) *Server {
	return NewServerWithIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams.
func NewServerWithIO(engine Engine, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := bufio.NewWriter(w)
	return &Server{
		engine: engine,
		config: cfg,
		dec:    msgpack.NewDecoder(bufio.NewReader(r)),
		out:    out,
		enc:    msgpack.NewEncoder(out),
		log:    newServerLogger(),
	}
}

// newServerLogger reports caller and time in debug mode only.
func newServerLogger() *log.Logger {
	if log.GetLevel() == log.DebugLevel {
		return logger.NewWithConfig("server", log.DebugLevel, true, true, log.TextFormatter)
	}
	return logger.New("server")
}

// Start processes requests until the input ends.
// A clean EOF returns nil; a stream that can no longer be framed returns the error.
func (s *Server) Start() error {
	s.log.Debug("Starting server", "maxTextLen", s.config.Server.MaxTextLen)
	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.log.Errorf("Reading request stream: %v", err)
			return err
		}
		s.requests++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Warnf("Malformed request: %v", err)
			if err := s.sendError("", "malformed request", CodeBadRequest); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// Requests returns how many messages have been read so far.
func (s *Server) Requests() int {
	return s.requests
}

// handleRequest dispatches on the action and writes exactly one response.
func (s *Server) handleRequest(req Request) error {
	switch req.Action {
	case ActionSearch, ActionReplace:
		if len(req.Text) > s.config.Server.MaxTextLen {
			return s.sendError(req.ID,
				fmt.Sprintf("text exceeds maximum length of %d bytes", s.config.Server.MaxTextLen),
				CodeTooLarge)
		}
		if req.Action == ActionSearch {
			return s.handleSearch(req)
		}
		return s.handleReplace(req)
	case ActionInfo:
		return s.handleInfo(req)
	case "":
		return s.sendError(req.ID, "missing action", CodeBadRequest)
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeBadRequest)
	}
}

func (s *Server) handleSearch(req Request) error {
	start := time.Now()
	res, err := s.engine.Search(req.Text)
	if err != nil {
		s.log.Errorf("Search %s: %v", req.ID, err)
		return s.sendError(req.ID, err.Error(), CodeInternal)
	}
	elapsed := time.Since(start)

	matches := make([]Match, 0, len(res))
	for _, w := range res.Words() {
		m := res[w]
		matches = append(matches, Match{Word: w, Value: m.Value, Count: m.Count})
	}
	return s.send(SearchResponse{
		ID:        req.ID,
		Matches:   matches,
		Count:     len(matches),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleReplace(req Request) error {
	sub := filter.ValueOf()
	if !req.UseValue {
		to := s.config.Filter.Replacement
		if req.To != nil {
			to = *req.To
		}
		sub = filter.Literal(to)
	}

	start := time.Now()
	out, err := s.engine.Replace(req.Text, sub)
	if err != nil {
		s.log.Errorf("Replace %s: %v", req.ID, err)
		return s.sendError(req.ID, err.Error(), CodeInternal)
	}
	return s.send(ReplaceResponse{
		ID:        req.ID,
		Result:    out,
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleInfo(req Request) error {
	stats := s.engine.Stats()
	return s.send(InfoResponse{
		ID:          req.ID,
		RootCount:   stats["rootEntries"],
		ValueWidth:  stats["valueWidth"],
		RecordWidth: stats["recordWidth"],
		Cached:      stats["cachedNodes"],
	})
}

// send encodes one response and flushes it so the client sees it right away.
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return s.out.Flush()
}

func (s *Server) sendError(id, message string, code int) error {
	s.log.Debug("Request failed", "id", id, "code", code, "error", message)
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
