package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/callback"
	"dailyattendance/internal/client"
	"dailyattendance/internal/config"
	"dailyattendance/internal/gateway"
	"dailyattendance/internal/logger"
	"dailyattendance/internal/redirect"
	"dailyattendance/internal/session"
	"dailyattendance/internal/ui"
)

func main() {
	apiURL := flag.String("api", "", "attendance API base URL (overrides ATTEND_API_URL)")
	callbackURL := flag.String("callback-url", "", "redirected address carrying #access_token=...")
	noBrowser := flag.Bool("no-browser", false, "do not open the login page in a browser")
	flag.Parse()

	config.LoadDotEnv()
	if *apiURL != "" {
		_ = os.Setenv("ATTEND_API_URL", *apiURL)
	}
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logger.FromEnv(cfg.Env).WithComponent("attend")
	// The loopback server shares stdout with the console.
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *callbackURL, !*noBrowser); err != nil {
		log.Fatalf("attend: %v", err)
	}
}

func run(ctx context.Context, cfg config.Client, log logger.Logger, callbackURL string, openBrowser bool) error {
	loginURL, err := redirect.AuthorizeURL(cfg.IdPURL, cfg.ClientID, cfg.FrontendURL)
	if err != nil {
		return fmt.Errorf("build login url: %w", err)
	}

	sess := session.New()
	gw := gateway.New(cfg.APIURL, sess, gateway.WithLogger(log))

	var console *ui.Console
	svc := client.NewService(gw, sess, func(recs []attendance.Record) { console.ShowRecords(recs) }, log)
	tokens := redirect.NewHandler(sess, func(ctx context.Context) { svc.Refresh(ctx) }, log)
	capture := func(ctx context.Context, raw string) bool {
		return tokens.Handle(ctx, &redirect.StaticLocation{URL: raw})
	}
	console = ui.NewConsole(os.Stdout, svc, sess.IsAuthenticated, capture, loginURL)
	sess.OnChange(console.SessionChanged)

	probed := svc.ProbeHealth(ctx)

	if callbackURL != "" && !capture(ctx, callbackURL) {
		log.Warnf("--callback-url carries no access token")
	}

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		if err := callback.New(tokens, cfg.FrontendURL, log).Run(srvCtx, cfg.ListenAddr()); err != nil {
			log.Warnf("login callback server on %s failed: %v; log in with: callback <redirected url>", cfg.ListenAddr(), err)
		}
	}()

	if openBrowser && !sess.IsAuthenticated() {
		if err := browse(loginURL); err != nil {
			log.Debugf("open browser: %v", err)
		}
	}

	err = console.Run(ctx, os.Stdin)
	cancel()
	<-probed
	<-srvDone
	return err
}

func browse(u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		if strings.TrimSpace(os.Getenv("DISPLAY")) == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("no display")
		}
		cmd = exec.Command("xdg-open", u)
	}
	return cmd.Start()
}
