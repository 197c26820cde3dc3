package main

import (
	"fmt"

	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/logging"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators",
	}

	//
	grantCmd = &cobra.Command{
		Use:   "grant <email>",
		Short: "Give the admin role to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withUsers(func(users *service.UserService, _ *config.Config) error {
				user, err := users.Grant(args[0])
				if err != nil {
					return err
				}

				fmt.Println("Admin role granted to", user.Email)
				return nil
			})
		},
	}

	//
	createAdminCmd = &cobra.Command{
		Use:   "create <email>",
		Short: "Create an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			password, err := readline.Password("Password: ")
			if err != nil {
				return errors.Wrap(err, "could not read password")
			}
			confirmation, err := readline.Password("Confirm password: ")
			if err != nil {
				return errors.Wrap(err, "could not read password")
			}
			if string(password) != string(confirmation) {
				return errors.New("passwords do not match")
			}

			return withUsers(func(users *service.UserService, _ *config.Config) error {
				user, err := users.Register(service.RegisterParams{
					Email:    args[0],
					Password: string(password),
				})
				if err != nil {
					return err
				}

				if _, err = users.Grant(user.Email); err != nil {
					return err
				}

				fmt.Println("Administrator created:", user.ID)
				return nil
			})
		},
	}
)

func withUsers(fn func(users *service.UserService, konf *config.Config) error) error {
	konf, err := config.Load(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(konf.Log)
	if err != nil {
		return err
	}

	db, err := database.StormOpen(konf.DatabaseFile())
	if err != nil {
		return errors.Wrap(err, "could not open database")
	}
	defer db.Close()

	return fn(service.NewUser(db, konf.IsAdminEmail, logger), konf)
}
