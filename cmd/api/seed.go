package main

import (
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	"github.com/spf13/cobra"
)

var seedUser struct {
	email, password, name, role, department, position string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a portal account if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.store.Close()

		return database.SeedUser(cmd.Context(), a.store, models.User{
			Email:      seedUser.email,
			Name:       seedUser.name,
			Role:       seedUser.role,
			Department: seedUser.department,
			Position:   seedUser.position,
		}, seedUser.password, a.log)
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedUser.email, "email", "", "account email")
	f.StringVar(&seedUser.password, "password", "", "initial password")
	f.StringVar(&seedUser.name, "name", "", "display name")
	f.StringVar(&seedUser.role, "role", models.RoleEmployee, "employee, hr or admin")
	f.StringVar(&seedUser.department, "department", "", "department")
	f.StringVar(&seedUser.position, "position", "", "position")
	seedCmd.MarkFlagRequired("email")
	seedCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(seedCmd)
}
