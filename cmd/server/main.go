package main

import (
	"os"

	"aix-chat/backend/internal/app"
)

// @title           AIX Chat API
// @version         1.0
// @description     Conversation store with streaming assistant replies.
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
