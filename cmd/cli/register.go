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
	registerCount    int
	registerInterval int
	registerFollow   bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Manage batch registration runs",
}

var registerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a batch registration run",
	RunE:  runRegisterStart,
}

var registerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request a cooperative stop of the active run",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := callAPI(http.MethodPost, "/api/v1/register/stop", nil)
		if err == nil {
			fmt.Println("Stop requested; the in-flight item will finish first.")
		}
		return err
	},
}

var registerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of the current run",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := fetchProgress()
		if err != nil {
			return err
		}
		printProgress(snapshot)
		return nil
	},
}

func init() {
	registerStartCmd.Flags().IntVar(&registerCount, "count", 1, "number of accounts to register (1-100)")
	registerStartCmd.Flags().IntVar(&registerInterval, "interval", 5, "seconds between items (at least 5)")
	registerStartCmd.Flags().BoolVar(&registerFollow, "follow", false, "poll and print progress until the run ends")
	registerCmd.AddCommand(registerStartCmd)
	registerCmd.AddCommand(registerStopCmd)
	registerCmd.AddCommand(registerStatusCmd)
}

func runRegisterStart(cmd *cobra.Command, args []string) error {
	_, err := callAPI(http.MethodPost, "/api/v1/register/start", dto.StartBatchRequest{
		Count:           registerCount,
		IntervalSeconds: registerInterval,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Started a run of %d account(s).\n", registerCount)

	if !registerFollow {
		return nil
	}

	for {
		time.Sleep(2 * time.Second)
		snapshot, err := fetchProgress()
		if err != nil {
			return err
		}
		printProgress(snapshot)

		switch snapshot.Status {
		case constants.JobStatusRunning:
			continue
		case constants.JobStatusError:
			return fmt.Errorf("run failed: %s", snapshot.Error)
		default:
			return nil
		}
	}
}

func fetchProgress() (*models.ProgressSnapshot, error) {
	envelope, err := callAPI(http.MethodGet, "/api/v1/register/progress", nil)
	if err != nil {
		return nil, err
	}
	var snapshot models.ProgressSnapshot
	if err := decodeData(envelope, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func printProgress(s *models.ProgressSnapshot) {
	fmt.Printf("%s %d/%d (%s)\n", s.Status, s.Current, s.Total, s.Step)
}
