/*
Package gatecore hydrates gateway events into typed records and delivers
them to listeners, backed by an in-process entity cache.

# Overview

A Client wires the pieces together:

  - cache.Memory holds guilds, channels and users by identifier
  - cache.Maintainer keeps the cache in step with gateway events
  - event.Dispatcher hydrates events and calls listeners
  - droplog records events dropped for malformed data
  - shard.Shard feeds one connection's frames through all of the above

# Basic Usage

	cfg, err := config.LoadClient("gatecore.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	client, err := gatecore.New(cfg, gatecore.WithLogger(logger))
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

	event.On(client.Dispatcher(), event.KindTypingStart,
	    func(ctx context.Context, e *event.TypingStart) error {
	        log.Println(e.UserID, "started typing")
	        return nil
	    })

	conn, _, err := websocket.Dial(ctx, cfg.GatewayURL, nil)
	if err != nil {
	    log.Fatal(err)
	}
	err = client.Shard(0).Run(ctx, shard.NewWebsocketReader(conn))

Identify, heartbeats and reconnects are left to the caller's transport;
the shard only consumes frames.

# Listener Failures

Listeners run synchronously on the shard goroutine. A listener that
returns an error or panics is logged and counted, and the remaining
listeners still receive the event.

# Observability

Metrics and tracing use the global OpenTelemetry providers when enabled
in config.Client. Both are no-ops otherwise.
*/
package gatecore
