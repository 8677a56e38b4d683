package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/github"
	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/githubcli"
	"github.com/ericfisherdev/pulldeck/internal/application"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored GitHub token",
	}

	cmd.AddCommand(
		newTokenSetCmd(),
		newTokenImportCmd(),
		newTokenClearCmd(),
		newTokenStatusCmd(),
	)
	return cmd
}

func newTokenSetCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a GitHub token (from --token or stdin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := cmd.Context()

			token := strings.TrimSpace(tokenFlag)
			if token == "" {
				fmt.Print("Token: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New("no token provided")
			}

			if ok, err := confirmOverwrite(ctx, d); err != nil || !ok {
				return err
			}

			return validateAndSave(ctx, d, token)
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "token value (reads from stdin when omitted)")
	return cmd
}

func newTokenImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the token from the gh CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := cmd.Context()

			token, err := githubcli.NewImporter().ImportToken(ctx)
			if err != nil {
				return errors.New(application.UserMessage(err))
			}

			if ok, err := confirmOverwrite(ctx, d); err != nil || !ok {
				return err
			}

			return validateAndSave(ctx, d, token)
		},
	}
}

func newTokenClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.creds.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Token cleared.")
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a token is stored and who it authenticates as",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cleanup, err := buildDeps()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx := cmd.Context()

			has, err := d.creds.Has(ctx)
			if err != nil {
				return err
			}
			if !has {
				fmt.Println("No token stored.")
				return nil
			}

			token, err := d.creds.Token(ctx)
			if err != nil {
				return err
			}

			login, err := github.NewClient(d.cfg.Settings.GraphQLEndpoint, token).ValidateToken(ctx)
			if err != nil {
				fmt.Println("A token is stored but validation failed:", application.UserMessage(err))
				return nil
			}
			fmt.Printf("Token stored; authenticated as %s.\n", login)
			return nil
		},
	}
}

// confirmOverwrite asks before replacing an existing token. It returns false
// when the user declines.
func confirmOverwrite(ctx context.Context, d *deps) (bool, error) {
	has, err := d.creds.Has(ctx)
	if err != nil {
		return false, err
	}
	if !has {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     "A token is already stored. Overwrite",
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			fmt.Println("Aborted.")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// validateAndSave checks the token against the GraphQL endpoint before
// persisting it.
func validateAndSave(ctx context.Context, d *deps, token string) error {
	login, err := github.NewClient(d.cfg.Settings.GraphQLEndpoint, token).ValidateToken(ctx)
	if err != nil {
		return errors.New(application.UserMessage(err))
	}

	if err := d.creds.Save(ctx, token); err != nil {
		return err
	}
	fmt.Printf("Token saved; authenticated as %s.\n", login)
	return nil
}
