package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// serve runs srv on lis until ctx is canceled, then gives it a grace period
// to drain in-flight requests before returning. name is only used for
// logging ("PeerApi", "UserApi").
func serve(ctx context.Context, name string, lis net.Listener, srv *http.Server) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		guacLog.Infof("%s listening on %s", name, lis.Addr())
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// guacdMain is the true entry point for guacd. This function is required
// since defers created in the top-level scope of a main method aren't
// executed if os.Exit() is called.
func guacdMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer backendLog.Flush()

	guacLog.Infof("guacd starting, account %s", cfg.MyAddress)

	g, err := newGuac(cfg)
	if err != nil {
		return fmt.Errorf("initializing guac: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	peerLis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening for peers on %s: %w", cfg.ListenAddr, err)
	}
	userLis, err := net.Listen("tcp", cfg.UserAPIAddr)
	if err != nil {
		return fmt.Errorf("listening for UserApi on %s: %w", cfg.UserAPIAddr, err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serve(gctx, "PeerApi", peerLis, &http.Server{Handler: g.PeerServer})
	})
	group.Go(func() error {
		return serve(gctx, "UserApi", userLis, &http.Server{Handler: g.UserServer})
	})

	err = group.Wait()
	guacLog.Info("shut down")
	return err
}

const shutdownGrace = 5 * time.Second

func main() {
	if err := guacdMain(); err != nil {
		guacLog.Errorf("%v", err)
		os.Exit(1)
	}
}
