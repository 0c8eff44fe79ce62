// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/miractl/miractl/pkg/mira"
)

// readTimeout bounds a single status read on every transport
const readTimeout = 2 * time.Second

// Connection carries command frames to a monitor and status frames back
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// ErrReadTimeout is returned when the monitor sends nothing within readTimeout
var ErrReadTimeout = errors.New("read timed out")

//////////////////////////////////////////////////////////////
// Serial bridge
//////////////////////////////////////////////////////////////

// SerialConnection wraps a serial port to a USB HID bridge. Frames are
// passed through unchanged in both directions.
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && err == nil {
		return 0, ErrReadTimeout
	}
	return n, err
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

//////////////////////////////////////////////////////////////
// WebSocket bridge
//////////////////////////////////////////////////////////////

// WebSocketConnection wraps a WebSocket connection to an HID bridge.
// Each binary message carries one frame.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool // Track if connection has failed/closed
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Return immediately if connection is known to be closed
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// If we have buffered data, return it first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	if err := w.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return 0, err
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			// gorilla/websocket connections are unusable after a read error
			w.closed = true
			return 0, err
		}

		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (*WebSocketConnection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword retrieves the bridge password from MIRA_PASSWORD or prompts
// for it
func GetPassword() (string, error) {
	if pw := os.Getenv("MIRA_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal, read a plain line instead
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

//////////////////////////////////////////////////////////////
// Selection
//////////////////////////////////////////////////////////////

type connectionKind int

const (
	connHID connectionKind = iota
	connSerial
	connWebSocket
	connSimulator
)

func (k connectionKind) String() string {
	switch k {
	case connSerial:
		return "serial"
	case connWebSocket:
		return "websocket"
	case connSimulator:
		return "simulator"
	default:
		return "hid"
	}
}

// connectionOptions is the resolved set of connection flags
type connectionOptions struct {
	hidPath     string
	port        string
	baud        int
	url         string
	username    string
	noSSLVerify bool
	simulate    bool
}

func currentConnectionOptions() connectionOptions {
	return connectionOptions{
		hidPath:     hidPath,
		port:        portName,
		baud:        baudRate,
		url:         wsURL,
		username:    wsUsername,
		noSSLVerify: wsNoSSLVerify,
		simulate:    simulate,
	}
}

// kind picks the transport: simulator, then WebSocket, then serial, then HID
func (o connectionOptions) kind() connectionKind {
	switch {
	case o.simulate:
		return connSimulator
	case o.url != "":
		return connWebSocket
	case o.port != "":
		return connSerial
	default:
		return connHID
	}
}

// sharedSimulator backs --simulate for the lifetime of the process
var sharedSimulator = mira.NewSimulator()

// OpenConnection opens the connection selected by the flags and returns
// it with a one-line description
func OpenConnection() (Connection, string, error) {
	return openConnection(currentConnectionOptions())
}

func openConnection(o connectionOptions) (Connection, string, error) {
	logger.Verbose("opening %s connection", o.kind())

	switch o.kind() {
	case connSimulator:
		return sharedSimulator, "Simulator", nil

	case connWebSocket:
		password := ""
		if o.username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(o.url, o.username, password, o.noSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", o.url), nil

	case connSerial:
		conn, err := OpenSerialConnection(o.port, o.baud)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", o.port, o.baud), nil

	default:
		conn, info, err := OpenHIDConnection(o.hidPath)
		if err != nil {
			return nil, "", err
		}
		return conn, info, nil
	}
}

// openSession opens the selected connection and wraps it in a session
// configured from the config file and logger
func openSession() (*mira.Session, Connection, string, error) {
	conn, info, err := OpenConnection()
	if err != nil {
		return nil, nil, "", connectionFailed(err)
	}
	logger.Info("connected: %s", info)
	return newSession(conn), conn, info, nil
}

func newSession(conn Connection) *mira.Session {
	s := mira.NewSession(conn)
	s.ApplyDelay = applyDelay()
	s.Trace = logger.LogFrame
	return s
}
