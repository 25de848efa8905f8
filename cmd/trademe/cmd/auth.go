package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/trademe/internal/app"
	"github.com/donaldgifford/trademe/internal/store"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

func authCmd() *cobra.Command {
	authRoot := &cobra.Command{
		Use:   "auth",
		Short: "Authorize against a Trade Me account",
		Long: "Run the OAuth handshake against Trade Me and manage the stored\n" +
			"access token used for member endpoints.",
	}

	authRoot.AddCommand(
		authLoginCmd(),
		authStatusCmd(),
		authLogoutCmd(),
	)

	return authRoot
}

func authLoginCmd() *cobra.Command {
	var verifier string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this client and store the access token",
		Long: "Requests a temporary token, prints the Trade Me authorization URL,\n" +
			"then exchanges the verification code shown after you approve access\n" +
			"for a long-lived access token.",
		Example: `  # Interactive: open the URL, approve, paste the code
  trademe auth login

  # Production account
  trademe auth login --environment production`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				authURL, err := s.client.BeginAuthorization(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Open this URL in a browser and approve access:\n\n  %s\n\n", authURL)

				code := verifier
				if code == "" {
					code, err = promptVerifier(cmd.InOrStdin(), out)
					if err != nil {
						return err
					}
				}

				if err := s.client.CompleteAuthorization(ctx, code); err != nil {
					return err
				}
				if err := app.SaveAccessToken(ctx, s.store, s.client); err != nil {
					return err
				}

				fmt.Fprintln(out, "Authorized. Access token stored.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&verifier, "verifier", "", "verification code (prompted for when omitted)")

	return cmd
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an access token is stored and valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				out := cmd.OutOrStdout()
				state := s.client.State()
				if state != trademe.Authenticated {
					fmt.Fprintf(out, "Environment:\t%s\nState:\t%s\n", s.cfg.TradeMe.Environment, state)
					fmt.Fprintln(out, "Run `trademe auth login` to authorize.")
					return nil
				}

				summary, err := s.client.MyTradeMe.Summary(ctx)
				if err != nil {
					return fmt.Errorf("checking access token: %w", err)
				}

				tw := newTabWriter(out)
				tw.writef("Environment:\t%s\n", s.cfg.TradeMe.Environment)
				tw.writef("State:\t%s\n", state)
				tw.writef("Member:\t%s (%d)\n", summary.Nickname, summary.MemberID)
				return tw.finish()
			})
		},
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				err := s.store.DeleteToken(ctx, s.cfg.TradeMe.ConsumerKey)
				switch {
				case errors.Is(err, store.ErrNotFound):
					fmt.Fprintln(cmd.OutOrStdout(), "No access token stored.")
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Access token removed.")
				return nil
			})
		},
	}
}

// promptVerifier reads one line from in. An empty answer is passed through
// so the client reports the missing verifier.
func promptVerifier(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Verification code: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading verification code: %w", err)
	}
	return strings.TrimSpace(line), nil
}
