package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	cli "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain"
	"github.com/SalinCodes/VoxVision/internal/api"
)

func main() {
	serverURL := cli.StringP("url", "u", "http://localhost:5000", "Server base URL")
	audioFile := cli.StringP("file", "f", "", "Recorded utterance to send")
	serial := cli.StringP("serial", "s", "", "Device serial number, enables token auth")
	secret := cli.String("secret", "", "Device secret")
	timeout := cli.DurationP("timeout", "t", 2*time.Minute, "How long to wait for the reply")
	cli.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	base, err := url.Parse(strings.TrimRight(*serverURL, "/"))
	if err != nil {
		logger.Fatal("Invalid server URL", zap.Error(err))
	}

	header := http.Header{}
	if *serial != "" {
		token, err := authenticate(base.String(), *serial, *secret)
		if err != nil {
			logger.Fatal("Failed to authenticate device", zap.Error(err))
		}
		header.Set("Authorization", "Bearer "+token)
		logger.Info("Authenticated", zap.String("serial", *serial))
	}

	wsURL := *base
	wsURL.Scheme = "ws"
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), header)
	if err != nil {
		if resp != nil {
			logger.Fatal("WebSocket connection failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		}
		logger.Fatal("WebSocket connection failed", zap.Error(err))
	}
	defer conn.Close()

	var msg interface{} = map[string]string{"type": domain.EventPing, "data": time.Now().Format(time.RFC3339)}
	if *audioFile != "" {
		audio, err := os.ReadFile(*audioFile)
		if err != nil {
			logger.Fatal("Failed to read audio file", zap.Error(err))
		}
		msg = domain.ProcessAudioMessage{
			Type:      domain.EventProcessAudio,
			AudioData: base64.StdEncoding.EncodeToString(audio),
			Encoding:  strings.TrimPrefix(filepath.Ext(*audioFile), "."),
		}
		logger.Info("Sending utterance", zap.String("file", *audioFile), zap.Int("bytes", len(audio)))
	}

	if err := conn.WriteJSON(msg); err != nil {
		logger.Fatal("Failed to send message", zap.Error(err))
	}

	conn.SetReadDeadline(time.Now().Add(*timeout))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		logger.Fatal("Failed to read reply", zap.Error(err))
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, reply, "", "  ") != nil {
		pretty.Write(reply)
	}
	fmt.Println(pretty.String())
}

func authenticate(serverURL, serial, secret string) (string, error) {
	body, _ := json.Marshal(api.DeviceAuthRequest{SerialNumber: serial, SecretKey: secret})

	resp, err := http.Post(serverURL+"/api/v1/device/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentication failed with status %d", resp.StatusCode)
	}

	var authResp api.DeviceAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	return authResp.Token, nil
}
