package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/hospital-receptionist/internal/telephony"
)

// speechPaths answer with TwiML; a failed upstream still gets a spoken apology.
var speechPaths = map[string]bool{
	"/api/twilio/voice":      true,
	"/api/twilio/transcribe": true,
}

const statusPath = "/api/twilio/status"

type config struct {
	upstreamBaseURL string
	upstreamTimeout time.Duration
	voice           telephony.Voice
}

func loadConfig() (config, error) {
	baseURL := strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL"))
	if baseURL == "" {
		return config{}, errors.New("UPSTREAM_BASE_URL is required")
	}

	// Twilio abandons a webhook after 15s.
	timeout := 12 * time.Second
	if raw := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
		}
		timeout = parsed
	}

	return config{
		upstreamBaseURL: strings.TrimRight(baseURL, "/"),
		upstreamTimeout: timeout,
		voice: telephony.Voice{
			Name:     envOr("TWILIO_TTS_VOICE", "Polly.Amy"),
			Language: envOr("TWILIO_TTS_LANG", "en-GB"),
		},
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	client := &http.Client{Timeout: cfg.upstreamTimeout}
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, cfg, client, evt)
	})
}

func handle(ctx context.Context, cfg config, client *http.Client, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if !speechPaths[path] && path != statusPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}
	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	upstreamURL := cfg.upstreamBaseURL + path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		upstreamURL += "?" + qs
	}

	reqCtx, cancel := context.WithTimeout(ctx, cfg.upstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, upstreamURL, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	if ct := headerValue(evt.Headers, "content-type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	copyHeader(req.Header, evt.Headers, "x-twilio-signature")

	// The upstream validates the signature against the public URL Twilio called.
	host := strings.TrimSpace(evt.RequestContext.DomainName)
	if host == "" {
		host = strings.TrimSpace(headerValue(evt.Headers, "host"))
	}
	proto := strings.TrimSpace(headerValue(evt.Headers, "x-forwarded-proto"))
	if proto == "" {
		proto = "https"
	}
	if host != "" {
		req.Header.Set("X-Forwarded-Host", host)
	}
	req.Header.Set("X-Forwarded-Proto", proto)

	resp, err := client.Do(req)
	if err != nil {
		return upstreamFailure(cfg, path), nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return upstreamFailure(cfg, path), nil
	}
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
		Headers:    map[string]string{},
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		out.Headers["content-type"] = ct
	}
	return out, nil
}

// upstreamFailure keeps the caller from hearing Twilio's generic error.
func upstreamFailure(cfg config, path string) events.APIGatewayV2HTTPResponse {
	if !speechPaths[path] {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadGateway, Body: "upstream error"}
	}
	doc, err := cfg.voice.Farewell(telephony.TechnicalIssueText).Marshal()
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadGateway, Body: "upstream error"}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Body:       string(doc),
		Headers:    map[string]string{"content-type": "application/xml"},
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func copyHeader(dst http.Header, src map[string]string, header string) {
	if value := strings.TrimSpace(headerValue(src, header)); value != "" {
		dst.Set(header, value)
	}
}
