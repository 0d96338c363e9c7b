package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/reports"
	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/internal/kernel"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/collection"
	"github.com/shashiranjanraj/supplydesk/pkg/storage"
)

// operator is the identity CLI commands act as.
var operator = auth.Identity{Subject: "cli", Role: auth.RoleAdmin}

var (
	listSummary bool
	exportDisk  string
	exportPath  string
)

// supplydesk requests:list
var requestsListCmd = &cobra.Command{
	Use:   "requests:list",
	Short: "Print every request in id order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		reqs, err := a.Requests.List(cmd.Context(), operator)
		if err != nil {
			return err
		}
		if listSummary {
			return printSummary(os.Stdout, reqs)
		}
		return printRequests(os.Stdout, reqs)
	},
}

// supplydesk requests:export [--disk local|s3] [--path exports/x.csv]
var requestsExportCmd = &cobra.Command{
	Use:   "requests:export",
	Short: "Write every request to a CSV file on a storage disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if exportDisk == "" {
			exportDisk = config.Get("STORAGE_DISK", "local")
		}
		disk, err := storage.Open(cmd.Context(), exportDisk)
		if err != nil {
			return err
		}
		path := exportPath
		if path == "" {
			path = reports.DefaultPath(time.Now())
		}

		n, err := reports.Export(cmd.Context(), a.Requests, operator, disk, path)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d request(s) to %s\n", n, disk.URL(path))
		return nil
	},
}

// supplydesk requests:status <id> <status>
var requestsStatusCmd = &cobra.Command{
	Use:   "requests:status <id> <Pending|Approved|Rejected>",
	Short: "Set a request's status and notify the requester",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		receipt, err := a.Requests.ChangeStatus(cmd.Context(), operator, id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Request %d is now %s\n", receipt.Request.ID, receipt.Request.Status)
		if !receipt.Notified {
			fmt.Printf("warning: requester not notified: %s\n", receipt.NoticeError)
		}
		return nil
	},
}

// supplydesk requests:delete <id>
var requestsDeleteCmd = &cobra.Command{
	Use:   "requests:delete <id>",
	Short: "Delete a request and renumber the rest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Requests.Remove(cmd.Context(), operator, id); err != nil {
			return err
		}
		fmt.Printf("Deleted request %d\n", id)
		return nil
	},
}

// supplydesk notify <email> <message...>
var notifyCmd = &cobra.Command{
	Use:   "notify <email> <message...>",
	Short: "Mail an admin message to a requester",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Requests.Broadcast(cmd.Context(), operator, args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("Message sent to %s\n", args[0])
		return nil
	},
}

func init() {
	requestsListCmd.Flags().BoolVar(&listSummary, "summary", false, "print a count per status instead of the rows")
	requestsExportCmd.Flags().StringVar(&exportDisk, "disk", "", "storage disk: local or s3 (default STORAGE_DISK)")
	requestsExportCmd.Flags().StringVar(&exportPath, "path", "", "file path on the disk (default exports/requests-<time>.csv)")
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return uint(n), nil
}

func printRequests(out io.Writer, reqs []models.Request) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tDESCRIPTION")
	for _, r := range reqs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Status, strings.Join(r.Description.Items(), "; "))
	}
	return w.Flush()
}

func printSummary(out io.Writer, reqs []models.Request) error {
	groups := collection.GroupBy(reqs, func(r models.Request) models.Status { return r.Status })

	statuses := make([]string, 0, len(groups))
	for s := range groups {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%d\n", s, len(groups[models.Status(s)]))
	}
	fmt.Fprintf(w, "total\t%d\n", len(reqs))
	return w.Flush()
}
