// claimsctl is a small operator CLI for the claims gateway API.
package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	gatewayURL string
	httpClient = &http.Client{Timeout: 10 * time.Second}
)

func main() {
	root := &cobra.Command{
		Use:   "claimsctl",
		Short: "Inspect and exercise the claims gateway",
	}
	root.PersistentFlags().StringVar(&gatewayURL, "gateway", "http://localhost:8080", "base URL of the claims gateway")

	root.AddCommand(listCmd(), getCmd(), submitCmd(), chatCmd(), healthCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	var page int
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims, one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/claims/api/claims/?page=%d", page)
			if search != "" {
				path += "&search=" + search
			}
			return getAndPrint(path)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "substring search over ic number, vehicle make and description")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one claim by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/claims/api/claims/" + args[0] + "/")
		},
	}
}

func submitCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a claim draft from a JSON file (or stdin with -)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if file == "-" {
				raw, err = io.ReadAll(os.Stdin)
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			return postAndPrint("/claims/api/claims/", raw)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "path to the draft JSON")
	return cmd
}

func chatCmd() *cobra.Command {
	var claimID, session string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the support assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{
				"session_id": session,
				"claim_id":   claimID,
				"message":    args[0],
			})
			if err != nil {
				return err
			}
			return postAndPrint("/claims/api/chat/", payload)
		},
	}
	cmd.Flags().StringVar(&claimID, "claim", "", "claim id to scope the conversation to")
	cmd.Flags().StringVar(&session, "session", "cli", "chat session id")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check gateway health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/health")
		},
	}
}

func getAndPrint(path string) error {
	resp, err := httpClient.Get(gatewayURL + path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func postAndPrint(path string, body []byte) error {
	resp, err := httpClient.Post(gatewayURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	fmt.Println(pretty.String())

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}
	return nil
}
