// Package client is a small HTTP client for the executor agent API, used by
// the status command.
//
//	c, err := client.NewClient("http://localhost:8000")
//	status, err := c.GetExecutorStatus(ctx)
package client
