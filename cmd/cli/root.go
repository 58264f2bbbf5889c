// Package cli implements the kam-admin command line interface. It talks to a
// running kam server over its HTTP API.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/pkg/version"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:     "kam-admin",
	Short:   "Administer a running kam server",
	Version: fmt.Sprintf("%s (%s)", version.Version, version.Commit),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "base URL of the kam server")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(historyCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func apiClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// callAPI performs one request against the server and decodes the response
// envelope. A non-success envelope is returned as an error.
func callAPI(method, path string, body interface{}) (*dto.APIResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := apiClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope dto.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", path, err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return nil, fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}
	return &envelope, nil
}

func decodeData(envelope *dto.APIResponse, out interface{}) error {
	data, err := json.Marshal(envelope.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
