// Package cmd contains the wallet and mining client.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeURL string
	idFile  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&idFile, "id-file", "i", "my_id.txt", "Path to the file holding your id.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet and miner",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
