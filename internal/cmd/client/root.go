package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the pagelog client.
// It registers the append, health and segments commands.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "pagelog",
		Short: "pagelog client commands",
	}
	for _, c := range Commands(baseURL) {
		root.AddCommand(c)
	}
	return root
}

// Commands returns the client commands for embedding in another root.
func Commands(baseURL BaseURLFunc) []*cobra.Command {
	return []*cobra.Command{
		newAppendCommand(baseURL),
		newHealthCommand(baseURL),
		newSegmentsCommand(baseURL),
	}
}
