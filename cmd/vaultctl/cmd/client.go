package cmd

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient is a minimal wrapper around the standard client, kept
// separate from internal/transport's types so vaultctl only depends
// on the wire shapes it actually marshals, not the server's handler
// internals.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		// cmd/vaultd itself serves plain HTTP. This setting only
		// matters when --server is an https:// endpoint (for example a
		// TLS proxy in front of vaultd), where it accepts a
		// self-signed certificate without verifying it.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	},
}

func postJSON(path string, req, res any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("vaultctl: failed to marshal request: %w", err)
	}
	resp, err := httpClient.Post(serverAddr+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("vaultctl: request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeOrError(resp, res)
}

func getJSON(path string, res any) error {
	resp, err := httpClient.Get(serverAddr + path)
	if err != nil {
		return fmt.Errorf("vaultctl: request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeOrError(resp, res)
}

func decodeOrError(resp *http.Response, res any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vaultctl: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Code   string `json:"code"`
			Reason string `json:"reason"`
			Msg    string `json:"msg"`
		}
		_ = json.Unmarshal(body, &errBody)
		return fmt.Errorf("vaultctl: server returned %d: %s %s: %s", resp.StatusCode, errBody.Code, errBody.Reason, errBody.Msg)
	}
	if res == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, res); err != nil {
		return fmt.Errorf("vaultctl: failed to unmarshal response: %w", err)
	}
	return nil
}
