package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/internal/models"
	httpclient "newsgraph/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

var (
	submitLink   string
	submitDesc   string
	submitSource string
)

func newClient() *httpclient.Client {
	return httpclient.NewClient(config.CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, SuccessThreshold: 1, Timeout: "30s"}, 30*time.Second)
}

var submitCmd = &cobra.Command{
	Use:   "submit [title]",
	Short: "Queue an article on a running pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := json.Marshal(models.Article{
			Title:       args[0],
			Link:        submitLink,
			Date:        time.Now(),
			Description: submitDesc,
			Source:      submitSource,
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, strings.TrimRight(serverURL, "/")+"/api/v1/articles", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		return doAndPrint(cmd, req, http.StatusAccepted)
	},
}

var relationsCmd = &cobra.Command{
	Use:   "relations [entity]",
	Short: "List the current outgoing edges of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("%s/api/v1/entities/%s/relations", strings.TrimRight(serverURL, "/"), url.PathEscape(args[0]))
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		return doAndPrint(cmd, req, http.StatusOK)
	},
}

func doAndPrint(cmd *cobra.Command, req *http.Request, want int) error {
	resp, err := newClient().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(data)))
	return nil
}

func init() {
	submitCmd.Flags().StringVar(&submitLink, "link", "", "article link (required)")
	submitCmd.Flags().StringVar(&submitDesc, "description", "", "article description")
	submitCmd.Flags().StringVar(&submitSource, "source", "cli", "source name")
	_ = submitCmd.MarkFlagRequired("link")
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(relationsCmd)
}
