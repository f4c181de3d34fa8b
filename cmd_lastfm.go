package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavedj/internal/errmsg"
	"github.com/llehouerou/wavedj/internal/lastfm"
	"github.com/llehouerou/wavedj/internal/state"
)

var lastfmUnlink bool

var lastfmAuthCmd = &cobra.Command{
	Use:   "lastfm-auth",
	Short: "Link a Last.fm account for scrobbling",
	Long:  "Open the Last.fm authorization page, wait for the browser callback and store the session key.",
	RunE:  runLastfmAuth,
}

func init() {
	lastfmAuthCmd.Flags().BoolVar(&lastfmUnlink, "unlink", false, "forget the linked account")
}

func runLastfmAuth(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	stateMgr, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer stateMgr.Close()

	if lastfmUnlink {
		if err := stateMgr.DeleteLastfmSession(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmSession, err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Last.fm account unlinked.")
		return nil
	}

	if !cfg.HasLastfmConfig() {
		return errors.New("no Last.fm API credentials: set [lastfm] api_key and api_secret in config.toml")
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	username, sessionKey, err := authorize(ctx, client, cmd)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
	}
	if err := stateMgr.SaveLastfmSession(username, sessionKey); err != nil {
		return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
	}

	logger.Info().Str("user", username).Msg("last.fm account linked")
	fmt.Fprintf(cmd.OutOrStdout(), "Linked Last.fm account %s.\n", username)
	return nil
}

func authorize(ctx context.Context, client *lastfm.Client, cmd *cobra.Command) (string, string, error) {
	srv, err := lastfm.StartAuthServer(lastfm.DefaultCallbackAddr)
	if err != nil {
		return "", "", err
	}
	defer srv.Shutdown()

	token, err := client.GetToken()
	if err != nil {
		return "", "", err
	}
	authURL := client.GetAuthURL(token, srv.CallbackURL())

	fmt.Fprintln(cmd.OutOrStdout(), "Authorize wavedj in your browser. If it does not open, visit:")
	fmt.Fprintln(cmd.OutOrStdout(), authURL)
	if err := lastfm.OpenBrowser(authURL); err != nil {
		logger.Debug().Err(err).Msg("could not open browser")
	}

	callbackToken, err := srv.WaitToken(ctx)
	if err != nil {
		return "", "", err
	}
	return client.GetSession(callbackToken)
}
