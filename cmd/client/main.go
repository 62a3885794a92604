// Terminal chat client. Logs in (registering on first use), joins the
// global room, and renders the live event stream. Lines typed at the prompt
// are broadcast; /msg sends a private message, /history prints the latest
// page of the room's history.
package main

import (
	"bufio"
	"bytes"
	"chat-hub/infrastructure/ws"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := obtainToken(config)
	if err != nil {
		return exitRuntime, err
	}

	wsURL := url.URL{Scheme: "ws", Host: config.ServerAddress, Path: "/ws",
		RawQuery: url.Values{"token": {token}}.Encode()}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerAddress, err)
	}
	defer conn.Close()

	if err := send(conn, ws.EventJoin, ws.JoinPayload{Username: config.Username}); err != nil {
		return exitRuntime, err
	}

	go receive(conn, config.Username)

	color.Cyan.Printf("Connected to %s as %s. /msg <user> <text>, /history, /quit\n",
		config.ServerAddress, config.Username)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return exitOK, nil
		case line == "/history":
			if err := printHistory(config); err != nil {
				color.Red.Println("history:", err)
			}
		case strings.HasPrefix(line, "/msg "):
			parts := strings.SplitN(line, " ", 3)
			if len(parts) < 3 {
				color.Red.Println("usage: /msg <user> <text>")
				continue
			}
			err = send(conn, ws.EventPrivate, ws.PrivatePayload{
				To: parts[1], From: config.Username, Message: parts[2]})
		default:
			err = send(conn, ws.EventChat, ws.ChatPayload{
				From:      config.Username,
				Message:   line,
				Timestamp: time.Now().Format("15:04:05"),
			})
		}
		if err != nil {
			return exitRuntime, fmt.Errorf("send failed: %w", err)
		}
	}
	return exitOK, scanner.Err()
}

// obtainToken logs in, falling back to registration for a fresh username.
func obtainToken(config Config) (string, error) {
	token, err := postCredentials(config, "/api/auth/login")
	if err == nil {
		return token, nil
	}
	return postCredentials(config, "/api/auth/register")
}

func postCredentials(config Config, path string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": config.Username,
		"password": config.Password,
	})
	resp, err := http.Post("http://"+config.ServerAddress+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s refused: %s", path, resp.Status)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

func send(conn *websocket.Conn, eventName string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(ws.Envelope{Event: eventName, Data: data})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func receive(conn *websocket.Conn, self string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			color.Red.Println("Disconnected:", err)
			return
		}
		var envelope ws.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		render(envelope, self)
	}
}

func render(envelope ws.Envelope, self string) {
	switch envelope.Event {
	case "chat-message":
		var m struct {
			From      string `json:"from"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
			System    bool   `json:"system"`
		}
		if json.Unmarshal(envelope.Data, &m) != nil {
			return
		}
		if m.System {
			color.Yellow.Printf("[%s] * %s\n", m.Timestamp, m.Message)
		} else if m.From == self {
			color.Gray.Printf("[%s] %s: %s\n", m.Timestamp, m.From, m.Message)
		} else {
			color.Green.Printf("[%s] %s: %s\n", m.Timestamp, m.From, m.Message)
		}
	case "private-message":
		var m struct {
			From      string `json:"from"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
			Self      bool   `json:"self"`
		}
		if json.Unmarshal(envelope.Data, &m) != nil {
			return
		}
		prefix := "from"
		if m.Self {
			prefix = "to"
		}
		color.Magenta.Printf("[%s] (private %s %s) %s\n", m.Timestamp, prefix, m.From, m.Message)
	case "user-list":
		var users []string
		if json.Unmarshal(envelope.Data, &users) != nil {
			return
		}
		color.Cyan.Printf("Online: %s\n", strings.Join(users, ", "))
	case "user-typing":
		var username string
		if json.Unmarshal(envelope.Data, &username) == nil {
			color.Gray.Printf("%s is typing...\n", username)
		}
	case "message-status":
		var status struct {
			Status    string `json:"status"`
			Delivered *bool  `json:"delivered"`
			Error     string `json:"error"`
		}
		if json.Unmarshal(envelope.Data, &status) != nil {
			return
		}
		if status.Status != "ok" {
			color.Red.Printf("Message not saved: %s\n", status.Error)
		} else if status.Delivered != nil && !*status.Delivered {
			color.Yellow.Println("Saved, recipient offline")
		}
	}
}

func printHistory(config Config) error {
	resp, err := http.Get(fmt.Sprintf("http://%s/api/messages?room=global&page=1&limit=%d",
		config.ServerAddress, config.HistoryLimit))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var messages []struct {
		From      string `json:"from"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "From", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, m := range messages {
		table.Append([]string{m.Timestamp, m.From, m.Message})
	}
	table.Render()
	return nil
}
