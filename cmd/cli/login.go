package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/constants"
)

var (
	loginStartURL string
	loginRegion   string
	loginWait     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a device authorization session",
	Long: "Starts the OAuth 2.0 device authorization flow on the server and prints " +
		"the verification URL to open in a browser.",
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginStartURL, "start-url", "", "identity portal start URL (server default when empty)")
	loginCmd.Flags().StringVar(&loginRegion, "region", "", "identity provider region (server default when empty)")
	loginCmd.Flags().BoolVar(&loginWait, "wait", false, "wait until the session reaches a terminal state")
}

func runLogin(cmd *cobra.Command, args []string) error {
	envelope, err := callAPI(http.MethodPost, "/api/v1/auth/start", dto.BeginAuthRequest{
		StartURL: loginStartURL,
		Region:   loginRegion,
	})
	if err != nil {
		return err
	}

	var resp dto.DeviceAuthResponse
	if err := decodeData(envelope, &resp); err != nil {
		return err
	}

	fmt.Printf("User code: %s\n", resp.UserCode)
	fmt.Printf("Open in a browser: %s\n", resp.VerificationURIComplete)

	if !loginWait {
		return nil
	}

	for {
		time.Sleep(2 * time.Second)
		statusEnvelope, err := callAPI(http.MethodGet, "/api/v1/auth/status", nil)
		if err != nil {
			return err
		}
		var snapshot models.SessionSnapshot
		if err := decodeData(statusEnvelope, &snapshot); err != nil {
			return err
		}

		switch snapshot.State {
		case constants.SessionStateRequested, constants.SessionStatePolling:
			continue
		case constants.SessionStateSucceeded:
			fmt.Printf("Login succeeded: %s\n", snapshot.Email)
			return nil
		default:
			return fmt.Errorf("session ended: %s %s", snapshot.State, snapshot.Error)
		}
	}
}
