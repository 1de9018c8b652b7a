// Command rpc-server runs a demo mini-rpc server: it loads a "rpc.*" YAML
// config, registers a small built-in echo service, and serves it over TCP,
// optionally announcing itself to an etcd-backed registry. This is a
// demonstration harness, not where the framework's logic lives — grounded
// on the teacher's main.go being just test/bench entry points and on
// PwzXxm-raft-lite/main.go's urfave/cli command shape.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mini-rpc/config"
	"mini-rpc/registry"
	"mini-rpc/server"
)

// echoService is the demo service this binary exposes.
type echoService struct{}

func (echoService) Echo(msg string) (string, error) { return msg, nil }

func main() {
	app := &cli.App{
		Name:  "rpc-server",
		Usage: "run a demo mini-rpc server exposing an echo service",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "config", Usage: "path to a rpc.* YAML config file"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("rpc-server exited")
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	if path := c.Path("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	svr := server.NewServer()
	if err := svr.Register(&echoService{}); err != nil {
		return err
	}

	var reg registry.Registry
	if len(cfg.RegistryConfig.Address) > 0 {
		etcdReg, err := registry.NewEtcdRegistry(registry.Config{
			Endpoints:   cfg.RegistryConfig.Address,
			DialTimeout: time.Duration(cfg.RegistryConfig.Timeout) * time.Millisecond,
		})
		if err != nil {
			return err
		}
		defer etcdReg.Destroy()
		reg = etcdReg

		go func() {
			ticker := time.NewTicker(registry.HeartbeatInterval)
			defer ticker.Stop()
			for range ticker.C {
				reg.Heartbeat()
			}
		}()
	}

	advertiseAddr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	logrus.WithField("addr", advertiseAddr).Info("rpc-server listening")
	return svr.Serve("tcp", fmt.Sprintf(":%d", cfg.ServerPort), advertiseAddr, reg)
}
