package main

import (
	"context"
	"fmt"

	"github.com/a-h/policychat/client"
	"github.com/a-h/policychat/models"
)

type AskCommand struct {
	ServerURL string `help:"The URL of the policy chat server." env:"POLICYCHAT_URL" default:"http://localhost:5000"`
	Question  string `arg:"" help:"The question to ask."`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	pcc := client.New(c.ServerURL)
	resp, err := pcc.ChatPost(ctx, models.ChatPostRequest{
		Messages: []models.ChatMessage{newMessage(models.ChatRoleUser, c.Question)},
	})
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}
