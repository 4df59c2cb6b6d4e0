// Command mcp serves the studio tools and assistants over the Model Context Protocol on stdio.
package main

import (
	"os"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"studiodesk/internal/bootstrap"
)

func main() {
	c := bootstrap.NewContainer()
	c.MustInitCore()
	c.MustInitMCP()
	c.MustInitBackground()

	if err := c.Start(); err != nil {
		c.Log.Errorf("Failed to start: %v", err)
		c.Shutdown()
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		c.Cancel()
	}()

	c.Log.Info("Serving MCP on stdio")
	if err := c.Application.MCPServer.Run(c.Context, &mcpsdk.StdioTransport{}); err != nil && c.Context.Err() == nil {
		c.Log.Errorw("MCP server stopped", "error", err)
	}

	c.Shutdown()
}
