package main

import (
	"context"
	"fmt"
	"hash"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/imaging"
	"github.com/Kapsk2801/Lost-Found/internal/legacy"
	"github.com/Kapsk2801/Lost-Found/internal/live"
	"github.com/Kapsk2801/Lost-Found/internal/logging"
	"github.com/Kapsk2801/Lost-Found/internal/notify"
	"github.com/Kapsk2801/Lost-Found/internal/server"
	"github.com/Kapsk2801/Lost-Found/internal/storage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/sync/errgroup"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &cobra.Command{
		Use:     "lostfound",
		Short:   "Campus lost and found server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)
	c.AddCommand(importCmd)

	adminCmd.AddCommand(grantCmd)
	adminCmd.AddCommand(createAdminCmd)
	c.AddCommand(adminCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, []byte("lostfound access token"))
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}

func mailer(konf *config.Config) notify.Mailer {
	// Keep the interface nil when mails are disabled.
	if smtp := notify.NewSMTP(konf.Mail); smtp != nil {
		return smtp
	}
	return nil
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			return database.StormInit(konf.DatabaseFile())
		},
	}

	//
	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			return database.StormReIndex(konf.DatabaseFile())
		},
	}

	//
	importCmd = &cobra.Command{
		Use:   "import <export.json>",
		Short: "Import a legacy JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			logger, err := logging.New(konf.Log)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "could not read export")
			}

			store, err := storage.New(cmd.Context(), konf.Storage)
			if err != nil {
				return errors.Wrap(err, "could not open storage")
			}

			db, err := database.StormOpen(konf.DatabaseFile())
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			importer := legacy.NewImporter(db, imaging.NewProcessor(konf.Image.MaxDimension, konf.Image.JPEGQuality), store, logger)
			report, err := importer.Import(cmd.Context(), data)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d users, %d items, %d claims and %d images\n", report.Users, report.Items, report.Claims, report.Images)
			if len(report.Skipped) > 0 {
				fmt.Println("Skipped users:", strings.Join(report.Skipped, ", "))
			}
			if len(report.Inconsistent) > 0 {
				fmt.Println("Inconsistent items:", strings.Join(report.Inconsistent, ", "))
			}
			return nil
		},
	}

	//
	//
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}
			if err = konf.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(konf.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := storage.New(ctx, konf.Storage)
			if err != nil {
				return errors.Wrap(err, "could not open storage")
			}
			var imagesRoot string
			if local, ok := store.(*storage.Local); ok {
				imagesRoot = local.Root()
			}

			db, err := database.StormOpen(konf.DatabaseFile())
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			hub := live.NewHub(db.FindItems, konf.Live.Debounce, logger)
			defer hub.Close()

			notifier := notify.New(db, mailer(konf), konf.Mail.AdminEmails, logger)
			defer notifier.Wait() // pending mails

			engine := server.EchoEngine(server.IOC{
				Version:                    version,
				Database:                   db,
				Logger:                     logger,
				NoRegistration:             konf.NoRegistration,
				IsAdmin:                    konf.IsAdminEmail,
				SigningKey:                 kdf(32, []byte(konf.SecretKey)),
				AccessTokenExpirationTime:  konf.Session.AccessTokenTTL,
				RefreshTokenExpirationTime: konf.Session.RefreshTokenTTL,
				Images:                     imaging.NewProcessor(konf.Image.MaxDimension, konf.Image.JPEGQuality),
				Store:                      store,
				MaxUpload:                  konf.Image.MaxUpload,
				ImagesRoot:                 imagesRoot,
				Notifier:                   notifier,
				Hub:                        hub,
			})
			server.PrintRoutes(engine)

			listener, cleanup, err := listen(konf.Address, logger.Printf)
			if err != nil {
				return err
			}
			defer cleanup()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Printf("Server listening on %s", konf.Address)
				err := engine.Server.Serve(listener)
				if err == http.ErrServerClosed {
					return nil
				}
				return errors.Wrap(err, "could not run server")
			})
			g.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down")

				// Live streams only end when the hub is closed.
				hub.Close()

				shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return errors.Wrap(engine.Shutdown(shutdown), "could not shutdown server")
			})
			return g.Wait()
		},
	}
)

// listen supports "unix:/path/to/socket" addresses.
func listen(address string, printf func(string, ...any)) (net.Listener, func(), error) {
	parts := strings.Split(address, ":")
	if len(parts) == 2 && parts[0] == "unix" {
		socketFile := parts[1]
		if _, err := os.Stat(socketFile); err == nil {
			printf("Removing existing %s", socketFile)
			os.Remove(socketFile)
		}

		listener, err := net.Listen(parts[0], socketFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not listen")
		}
		return listener, func() { os.Remove(socketFile) }, nil
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not listen")
	}
	return listener, func() {}, nil
}
