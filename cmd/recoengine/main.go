package main

import (
	"github.com/rcliao/recoengine/cmd/cmd"
	"github.com/rcliao/recoengine/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
