package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/rspack/internal/bundler"
	"github.com/efebarandurmaz/rspack/internal/devserver"
	"github.com/efebarandurmaz/rspack/internal/observability"
	"github.com/efebarandurmaz/rspack/internal/plugins"
	"github.com/efebarandurmaz/rspack/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr, healthAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build once and serve <context>/dist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(g, addr, healthAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", fmt.Sprintf("Listen address (default %s)", devserver.DefaultAddr))
	cmd.Flags().StringVar(&healthAddr, "health-addr", "", "Health and metrics address; disabled when empty")
	return cmd
}

func runServe(g *globalFlags, addr, healthAddr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := setup(ctx, g)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = env.cfg.DevServer.Addr
	}
	if healthAddr == "" {
		healthAddr = env.cfg.DevServer.HealthAddr
	}

	opts, err := env.cfg.CompilerOptions(plugins.DefaultRegistry())
	if err != nil {
		env.close(ctx)
		return err
	}

	gs := server.NewGracefulServer(&server.HealthConfig{Version: version}, nil)
	done := make(chan struct{})
	gs.Shutdown.Register(server.DevServerShutdownHook(cancel, done))
	gs.Shutdown.Register(server.TracingShutdownHook(env.tracer.Shutdown))
	gs.Shutdown.Register(server.AuditLoggerShutdownHook(env.audit.Close))

	srvOpts := []devserver.Option{
		devserver.WithAuditLogger(env.audit),
		devserver.WithOnReady(func(string) { gs.Health.SetReady(true) }),
	}
	if addr != "" {
		srvOpts = append(srvOpts, devserver.WithAddr(addr))
	}
	srv := bundler.NewDevServer(opts, nil, srvOpts...)
	env.audit.LogAssemble(opts.Target.Platform.String(), pluginNames(srv))

	gs.Health.MountMetrics(observability.Metrics().Handler())
	gs.Health.RegisterCheck("build", server.BuildHealthChecker(func() error {
		if srv.Compiler().LastCompilation() == nil {
			return errors.New("no successful build")
		}
		return nil
	}))
	gs.Health.RegisterCheck("output", server.OutputDirHealthChecker(srv.Root()))
	if err := gs.Start(healthAddr); err != nil {
		env.close(ctx)
		return err
	}

	serveErr := srv.Serve(ctx)
	close(done)
	gs.Shutdown.Shutdown()
	gs.Wait()
	return serveErr
}

func pluginNames(srv *devserver.Server) []string {
	ps := srv.Compiler().Plugins()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}
