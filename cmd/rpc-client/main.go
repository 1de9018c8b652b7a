// Command rpc-client calls the demo echo service exposed by rpc-server,
// assembling its balancer/retry/tolerant strategies from the plugin loader
// using the config keys spec.md §6 documents. Demonstration harness only.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mini-rpc/client"
	"mini-rpc/codec"
	"mini-rpc/config"
	"mini-rpc/fault/retry"
	"mini-rpc/fault/tolerant"
	"mini-rpc/loadbalance"
	"mini-rpc/plugin"
	"mini-rpc/registry"
)

func main() {
	app := &cli.App{
		Name:  "rpc-client",
		Usage: "call the demo echo service exposed by rpc-server",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "config", Usage: "path to a rpc.* YAML config file"},
			&cli.StringFlag{Name: "message", Usage: "message to echo", Value: "hello"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("rpc-client exited")
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
	if len(cfg.RegistryConfig.Address) == 0 {
		return fmt.Errorf("rpc-client requires registryConfig.address to discover the server")
	}

	etcdReg, err := registry.NewEtcdRegistry(registry.Config{
		Endpoints:   cfg.RegistryConfig.Address,
		DialTimeout: time.Duration(cfg.RegistryConfig.Timeout) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer etcdReg.Destroy()

	plugin.RegisterDefaults(plugin.Default)

	balancer, err := plugin.Default.GetInstance(loadbalance.Iface, cfg.LoadBalancer)
	if err != nil {
		return err
	}
	retryStrategy, err := plugin.Default.GetInstance(retry.Iface, cfg.RetryStrategy)
	if err != nil {
		return err
	}
	tolerantStrategy, err := plugin.Default.GetInstance(tolerant.Iface, cfg.TolerantStrategy)
	if err != nil {
		return err
	}
	serializer, err := codec.ByName(codec.Name(cfg.Serializer))
	if err != nil {
		return err
	}

	proxy := client.NewProxy(etcdReg, balancer.(loadbalance.Balancer),
		client.WithRetry(retryStrategy.(retry.Strategy)),
		client.WithTolerant(tolerantStrategy.(tolerant.Strategy)),
		client.WithCodec(serializer),
		client.WithVersion(cfg.Version))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.Invoke[string](ctx, proxy, "echoService", "Echo", c.String("message"))
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
