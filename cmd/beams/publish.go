package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmerrifield20/beams/pkg/beams"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	publishFile      string
	publishPayload   string
	publishInterests []string
	publishUsers     []string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a push notification",
	Long: `Publish sends a notification to interests or users.

Send a complete publish body (it must contain "interests" or "users"):

  beams publish --file body.json

Or target interests/users with flags and read the payload from a file:

  beams publish interests --interest donuts --payload apns.json
  beams publish users --user user-0001 --user user-0002 --payload web.json

Use "-" to read from stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if publishFile == "" {
			return fmt.Errorf("--file is required (or use the interests/users subcommands)")
		}
		body, err := readJSONObject(cmd.InOrStdin(), publishFile)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		resp, err := c.Publish(cmd.Context(), body)
		if err != nil {
			return err
		}
		logPublished(resp)
		return render(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var publishInterestsCmd = &cobra.Command{
	Use:   "interests",
	Short: "Publish to devices subscribed to any of the given interests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		resp, err := c.PublishToInterests(cmd.Context(), publishInterests, req)
		if err != nil {
			return err
		}
		logPublished(resp)
		return render(cmd.OutOrStdout(), outputFormat, resp)
	},
}

var publishUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Publish to devices of the given users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		resp, err := c.PublishToUsers(cmd.Context(), publishUsers, req)
		if err != nil {
			return err
		}
		logPublished(resp)
		return render(cmd.OutOrStdout(), outputFormat, resp)
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "JSON file with the full publish body, or - for stdin")

	publishInterestsCmd.Flags().StringArrayVarP(&publishInterests, "interest", "i", nil, "interest to publish to (repeatable)")
	publishInterestsCmd.Flags().StringVarP(&publishPayload, "payload", "p", "", "JSON file with the notification payload, or - for stdin")
	_ = publishInterestsCmd.MarkFlagRequired("payload")

	publishUsersCmd.Flags().StringArrayVarP(&publishUsers, "user", "u", nil, "user ID to publish to (repeatable)")
	publishUsersCmd.Flags().StringVarP(&publishPayload, "payload", "p", "", "JSON file with the notification payload, or - for stdin")
	_ = publishUsersCmd.MarkFlagRequired("payload")

	publishCmd.AddCommand(publishInterestsCmd)
	publishCmd.AddCommand(publishUsersCmd)
}

func readPayload(stdin io.Reader) (beams.PublishRequest, error) {
	obj, err := readJSONObject(stdin, publishPayload)
	if err != nil {
		return nil, err
	}
	return beams.PublishRequest(obj), nil
}

// readJSONObject decodes a JSON object from path, or from stdin when path is
// "-". A literal null yields a nil map.
func readJSONObject(stdin io.Reader, path string) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return obj, nil
}

func logPublished(resp beams.Response) {
	if id, ok := resp["publishId"].(string); ok {
		logger.Info("notification published", zap.String("publish_id", id))
	}
}
