package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/KomaiX512/insightdeck/internal/config"
	"github.com/KomaiX512/insightdeck/internal/decoder"
	"github.com/KomaiX512/insightdeck/internal/jsondoc"
	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// DecoderOptions maps service configuration onto decoding options.
func DecoderOptions(cfg config.Config) decoder.Options {
	opts := decoder.DefaultOptions()
	opts.MaxNestingLevel = cfg.MaxNestingLevel
	opts.CacheSize = cfg.TokenCacheSize
	opts.SkipDecodingForElements = cfg.SkipElements
	opts.CustomClassPrefix = cfg.ClassPrefix
	opts.EnableDebugLogging = cfg.DebugDecoding
	return opts
}

// decodeOptions are per-request overrides; nil fields keep server defaults.
type decodeOptions struct {
	EnableBoldFormatting    *bool    `json:"enableBoldFormatting"`
	EnableItalicFormatting  *bool    `json:"enableItalicFormatting"`
	EnableHighlighting      *bool    `json:"enableHighlighting"`
	EnableQuotes            *bool    `json:"enableQuotes"`
	EnableEmphasis          *bool    `json:"enableEmphasis"`
	MaxNestingLevel         *int     `json:"maxNestingLevel"`
	SkipDecodingForElements []string `json:"skipDecodingForElements"`
	CustomClassPrefix       *string  `json:"customClassPrefix"`
	EnableDebugLogging      *bool    `json:"enableDebugLogging"`
}

func (o *decodeOptions) apply(base decoder.Options) decoder.Options {
	if o == nil {
		return base
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&base.EnableBoldFormatting, o.EnableBoldFormatting)
	setBool(&base.EnableItalicFormatting, o.EnableItalicFormatting)
	setBool(&base.EnableHighlighting, o.EnableHighlighting)
	setBool(&base.EnableQuotes, o.EnableQuotes)
	setBool(&base.EnableEmphasis, o.EnableEmphasis)
	setBool(&base.EnableDebugLogging, o.EnableDebugLogging)
	if o.MaxNestingLevel != nil && *o.MaxNestingLevel > 0 {
		base.MaxNestingLevel = *o.MaxNestingLevel
	}
	if o.SkipDecodingForElements != nil {
		base.SkipDecodingForElements = o.SkipDecodingForElements
	}
	if o.CustomClassPrefix != nil {
		base.CustomClassPrefix = *o.CustomClassPrefix
	}
	return base
}

type decodeRequest struct {
	Payload json.RawMessage `json:"payload"`
	Options *decodeOptions  `json:"options"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Payload) == 0 {
		jsonError(w, "payload is required", http.StatusBadRequest)
		return
	}

	value, err := jsondoc.Parse(req.Payload)
	if err != nil {
		jsonError(w, "payload is not valid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	dec := s.dec
	if req.Options != nil {
		dec = decoder.New(req.Options.apply(DecoderOptions(s.cfg)), s.log)
	}

	start := time.Now()
	sections := dec.Decode(value)
	elapsed := time.Since(start)

	s.stats.Record(elapsed.Milliseconds(), len(sections))
	ObserveDecode(elapsed, len(sections))

	s.writeSections(w, dec, sections, elapsed)
}

func (s *Server) handleDecodeMarkdown(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readTextBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	sections := s.dec.DecodeMarkdown(src)
	elapsed := time.Since(start)

	s.stats.Record(elapsed.Milliseconds(), len(sections))
	ObserveDecode(elapsed, len(sections))

	s.writeSections(w, s.dec, sections, elapsed)
}

func (s *Server) handleDecodeHTML(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readTextBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	sections := s.dec.DecodeHTML(bytes.NewReader(src))
	elapsed := time.Since(start)

	s.stats.Record(elapsed.Milliseconds(), len(sections))
	ObserveDecode(elapsed, len(sections))

	s.writeSections(w, s.dec, sections, elapsed)
}

func (s *Server) readTextBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		jsonError(w, "body is required", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func (s *Server) writeSections(w http.ResponseWriter, dec *decoder.Decoder, sections []secdoc.Section, elapsed time.Duration) {
	resp := map[string]any{
		"sections":    sections,
		"count":       len(sections),
		"duration_ms": elapsed.Milliseconds(),
	}
	if prefix := dec.Options().CustomClassPrefix; prefix != "" {
		resp["class_prefix"] = prefix
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
