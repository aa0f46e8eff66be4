package main

import (
	"context"
	"fmt"

	"github.com/a-h/policychat/client"
)

type HealthCommand struct {
	ServerURL string `help:"The URL of the policy chat server." env:"POLICYCHAT_URL" default:"http://localhost:5000"`
}

func (c HealthCommand) Run(ctx context.Context) (err error) {
	resp, err := client.New(c.ServerURL).Health(ctx)
	if err != nil {
		return err
	}
	if !resp.Ready {
		return fmt.Errorf("knowledge base is not ready")
	}
	fmt.Printf("ready: %d segments, built at %s\n", resp.Segments, resp.BuiltAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
