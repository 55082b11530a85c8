package serve

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/enum"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server manages the streaming parser
type Server struct {
	core    *engine.Core
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a new streaming server
func NewServer(core *engine.Core, in io.Reader, out io.Writer) *Server {
	return &Server{
		core:    core,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	// Send ready signal
	s.sendReady()

	// Use buffered channels for incoming requests
	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until stdin closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					// No more pending requests
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "parse":
		s.handleParse(req.Payload)
	case "parse_batch":
		s.handleParseBatch(ctx, req.Payload)
	case "layouts":
		s.sendData("layouts", LayoutsData{Layouts: s.core.Layouts().Layouts()})
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.sendData("ready", ReadyData{
		Version:        Version,
		Discriminators: s.core.Layouts().Discriminators(),
	})
}

func (s *Server) handleParse(payload json.RawMessage) {
	var p ParsePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("parse", err.Error())
		return
	}

	text, err := payloadText(p)
	if err != nil {
		s.sendError("parse", err.Error())
		return
	}

	result, err := s.core.Parse(text, p.Source)
	if err != nil {
		s.sendError("parse", err.Error())
		return
	}

	if p.ResultOnly {
		s.sendData("parse", result.Result)
		return
	}
	s.sendData("parse", result)
}

// payloadText returns the feed text of a parse payload.
func payloadText(p ParsePayload) (string, error) {
	if p.ContentBase64 == "" {
		return p.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(p.ContentBase64)
	if err != nil {
		return "", fmt.Errorf("decoding contentBase64: %w", err)
	}
	return enum.DecodeText(raw, p.Encoding)
}

func (s *Server) handleParseBatch(ctx context.Context, payload json.RawMessage) {
	var p ParseBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("parse_batch", err.Error())
		return
	}

	result, err := s.core.ParseBatch(ctx, p.Items)
	if err != nil {
		s.sendError("parse_batch", err.Error())
		return
	}

	s.sendData("parse_batch", result)
}

func (s *Server) sendData(respType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(respType, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    respType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
