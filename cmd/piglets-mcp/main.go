package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	pigletsmcp "atomicpiglets/internal/mcp"
)

func main() {
	_ = godotenv.Load()

	s := server.NewMCPServer("atomicpiglets", "1.0.0")
	pigletsmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
