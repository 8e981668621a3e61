// certitrack is the command-line client for the CertiTrack API. One
// session manager spans the process, with credentials persisted in the
// user's credential file between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/credentials/filestore"
	"github.com/certitrack/client-go/internal/config"
	"github.com/certitrack/client-go/internal/utils"
	"github.com/certitrack/client-go/session"
	"github.com/certitrack/client-go/transport"
	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const passphraseEnvVar = "CERTITRACK_PASSPHRASE"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "certitrack: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	if len(args) == 0 {
		usage()
		return nil
	}

	c := config.New()

	logLevel := zerolog.WarnLevel
	if c.GetEnv() == "DEV" {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel).With().Timestamp().Logger()

	mgr, err := buildSession(c, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	mgr.Initialize(ctx)

	switch args[0] {
	case "login":
		return loginCmd(ctx, mgr, args[1:])
	case "register":
		return registerCmd(ctx, mgr, args[1:])
	case "whoami":
		return whoamiCmd(mgr)
	case "refresh":
		return refreshCmd(ctx, mgr)
	case "logout":
		return logoutCmd(ctx, mgr)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// buildSession wires the stack explicitly: file store → interceptor →
// api client → manager. Nothing is registered globally.
func buildSession(c config.Config, logger zerolog.Logger) (*session.Manager, error) {
	storeOptions := []filestore.Option{
		filestore.WithAccessHorizon(c.GetAccessTokenHorizon()),
		filestore.WithRefreshHorizon(c.GetRefreshTokenHorizon()),
	}
	if passphrase := os.Getenv(passphraseEnvVar); passphrase != "" {
		storeOptions = append(storeOptions, filestore.WithPassphrase(passphrase))
	}
	store := filestore.New(c.GetCredentialsFile(), storeOptions...)

	exchange := api.New(c.GetAPIBaseURL(), api.WithLogger(logger))

	var mgr *session.Manager
	interceptor := transport.New(store, exchange,
		transport.WithLogger(logger),
		transport.WithProactiveRefresh(time.Minute),
		transport.WithOnExpired(func() {
			if mgr != nil {
				mgr.HandleSessionExpired()
			}
		}),
	)

	client := api.New(c.GetAPIBaseURL(),
		api.WithHTTPClient(&http.Client{Transport: interceptor, Timeout: 30 * time.Second}),
		api.WithLogger(logger),
	)

	mgr, err := session.New(store, client,
		session.WithLogger(logger),
		session.WithNavigateToLogin(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `certitrack login`")
		}),
	)
	if err != nil {
		return nil, err
	}
	return mgr, nil
}

func loginCmd(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	if err := mgr.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", utils.Value(mgr.User()).Email)
	return nil
}

func registerCmd(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	phone := fs.String("phone", "", "phone number (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" || *firstName == "" || *lastName == "" {
		return fmt.Errorf("register requires -email, -password, -first-name and -last-name")
	}

	req := api.RegisterRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
	}
	if err := mgr.Register(ctx, req); err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s\n", utils.Value(mgr.User()).Email)
	return nil
}

func whoamiCmd(mgr *session.Manager) error {
	if !mgr.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}
	user := mgr.User()
	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
	fmt.Printf("Role: %s\n", user.Role)
	if expiry, err := mgr.TokenExpiry(); err == nil {
		fmt.Printf("Access token expires: %s\n", expiry.Local().Format(time.RFC1123))
	}
	return nil
}

func refreshCmd(ctx context.Context, mgr *session.Manager) error {
	if err := mgr.Refresh(ctx); err != nil {
		return err
	}
	fmt.Println("Tokens refreshed")
	return nil
}

func logoutCmd(ctx context.Context, mgr *session.Manager) error {
	mgr.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func usage() {
	figure.NewFigure("CertiTrack", "cybermedium", true).Print()
	fmt.Println()
	fmt.Println("Usage: certitrack <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login     -email -password        authenticate and store tokens")
	fmt.Println("  register  -email -password -first-name -last-name [-phone]")
	fmt.Println("  whoami                            show the current session")
	fmt.Println("  refresh                           rotate the token pair")
	fmt.Println("  logout                            clear stored credentials")
}
