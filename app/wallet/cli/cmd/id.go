package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print your id, creating it the first time",
	Run:   idRun,
}

func init() {
	rootCmd.AddCommand(idCmd)
}

func idRun(cmd *cobra.Command, args []string) {
	id, err := loadOrCreateID(idFile)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(id)
}

// loadOrCreateID returns the id stored in the file. If the file doesn't
// exist a new id is generated and written to it.
func loadOrCreateID(path string) (string, error) {
	id, err := loadID(path)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	id = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := os.WriteFile(path, []byte(id), 0600); err != nil {
		return "", fmt.Errorf("writing id: %w", err)
	}

	return id, nil
}

// loadID reads the id stored in the file.
func loadID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading id: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("id file %q is empty", path)
	}

	return id, nil
}

// participant returns the id given on the command line or the local one.
func participant(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	return loadID(idFile)
}
