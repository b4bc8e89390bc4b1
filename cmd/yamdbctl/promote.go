// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
)

var (
	promoteRole      string
	promoteSuperuser bool
)

var promoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Set the role and superuser flag of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := postgres.NewPool(cmd.Context(), cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		service := account.NewService(account.NewAccountRepository(pool), log)
		user, err := service.Promote(cmd.Context(), args[0], sec.Role(promoteRole), promoteSuperuser)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: role=%s superuser=%t\n", user.Username, user.Role, user.IsSuperuser)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(sec.RoleAdmin), "one of user, moderator, admin")
	promoteCmd.Flags().BoolVar(&promoteSuperuser, "superuser", false, "grant superuser")

	rootCmd.AddCommand(promoteCmd)
}
