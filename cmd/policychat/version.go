package main

import (
	"context"
	"fmt"

	"github.com/a-h/policychat"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(policychat.Version)
	return nil
}
