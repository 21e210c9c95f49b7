package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

var usersDir string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List configured user profiles",
	Long: `Users loads every profile in the users directory and reports the
ones that could not be used.

Examples:
  jobmatch users
  jobmatch users --dir ./profiles -o json`,
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().StringVar(&usersDir, "dir", "", "Directory of user profiles (default: users.dir)")
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	dir := usersDir
	if dir == "" {
		dir = cfg.Users.Dir
	}

	users, err := config.LoadUsers(dir)
	if errors.Is(err, config.ErrNoUsers) {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return output.Output(outputFmt, users)
}
