package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/a-h/policychat/client"
	"github.com/a-h/policychat/models"
)

type ContextCommand struct {
	ServerURL string `help:"The URL of the policy chat server." env:"POLICYCHAT_URL" default:"http://localhost:5000"`
	Text      string `arg:"" help:"The text to find segments for."`
	K         int    `help:"The number of segments to return. Zero uses the server default." default:"0"`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true" negatable:""`
}

func (c ContextCommand) Run(ctx context.Context) (err error) {
	pcc := client.New(c.ServerURL)
	resp, err := pcc.ContextPost(ctx, models.ContextPostRequest{
		Text: c.Text,
		K:    c.K,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
