package cli

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/kam/internal/application/dto"
)

var historyExportPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the registration history ledger",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		envelope, err := callAPI(http.MethodGet, "/api/v1/history", nil)
		if err != nil {
			return err
		}
		var records []dto.HistoryRecordDTO
		if err := decodeData(envelope, &records); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tSTATUS\tEMAIL\tERROR")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Timestamp, r.Status, r.Email, r.Error)
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every record from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := callAPI(http.MethodDelete, "/api/v1/history", nil)
		if err == nil {
			fmt.Println("History cleared.")
		}
		return err
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to a file on the server host",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := callAPI(http.MethodPost, "/api/v1/history/export", dto.ExportRequest{Path: historyExportPath})
		if err == nil {
			fmt.Printf("Exported to %s\n", historyExportPath)
		}
		return err
	},
}

func init() {
	historyExportCmd.Flags().StringVar(&historyExportPath, "path", "history.csv", "destination file (.csv or .json)")
	_ = historyExportCmd.MarkFlagRequired("path")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
}
