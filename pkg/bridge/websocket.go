// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketOptions configures a WebSocket bridge connection
type WebSocketOptions struct {
	URL           string
	Username      string
	Password      string
	SkipSSLVerify bool
	AckTimeout    time.Duration
}

// WebSocketBridge forwards reports to a bridge over WebSocket, one binary
// message per transfer.
//
// A failed read or write closes the connection; the next Send dials again
// with the same options.
type WebSocketBridge struct {
	opts WebSocketOptions
	conn *websocket.Conn
}

// DialWebSocket opens a WebSocket connection with optional HTTP Basic auth
func DialWebSocket(ctx context.Context, opts WebSocketOptions) (*WebSocketBridge, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}

	w := &WebSocketBridge{opts: opts}
	if err := w.connect(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WebSocketBridge) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u, err := url.Parse(w.opts.URL); err == nil && u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: w.opts.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if w.opts.Username != "" && w.opts.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(w.opts.Username + ":" + w.opts.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, w.opts.URL, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("WebSocket connection failed: %w", err)
	}

	w.conn = conn
	return nil
}

// drop closes a connection that can no longer be used
func (w *WebSocketBridge) drop() {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

// String describes the connection
func (w *WebSocketBridge) String() string {
	return "WebSocket: " + w.opts.URL
}

// Send writes one transfer and waits for the bridge's reply
func (w *WebSocketBridge) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := MarshalTransfer(NewReportTransfer(frame))
	if err != nil {
		return err
	}

	if w.conn == nil {
		if err := w.connect(ctx); err != nil {
			return fmt.Errorf("reconnect failed: %w", err)
		}
	}

	if err := w.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		w.drop()
		return fmt.Errorf("websocket write failed: %w", err)
	}

	deadline := time.Now().Add(w.opts.AckTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := w.conn.SetReadDeadline(deadline); err != nil {
		w.drop()
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// gorilla connections are unusable after any read error
			w.drop()
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return ErrAckTimeout
			}
			return fmt.Errorf("websocket read failed: %w", err)
		}

		// Replies are binary; skip anything else
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		switch data[0] {
		case Ack:
			return nil
		case Nak:
			return ErrNak
		default:
			return fmt.Errorf("unexpected bridge reply: 0x%02X", data[0])
		}
	}
}

// Close sends a close message and closes the connection
func (w *WebSocketBridge) Close() error {
	if w.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}
