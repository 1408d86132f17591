package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	serverapp "github.com/aggrestream/aggrestream/internal/server/app"
)

func main() {
	var (
		natsHost    = flag.String("host", "localhost", "NATS server host")
		natsPort    = flag.String("port", "4222", "NATS server port")
		consistency = flag.String("consistency", "", "consistency mode: base or acid (default from env)")
	)
	flag.Parse()

	ctx := context.Background()
	if err := serverapp.Run(ctx, serverapp.Options{
		NATSHost:    *natsHost,
		NATSPort:    *natsPort,
		Consistency: *consistency,
	}); err != nil {
		slog.Error("manager exited with error", "error", err)
		os.Exit(1)
	}
}
