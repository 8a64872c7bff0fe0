// Package broker runs the TCP accept loop and per-connection request
// dispatch for the broker.
package broker

import (
	"bufio"
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/codecrafters-io/kafka-broker-go/internal/brokerlog"
	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
	"github.com/codecrafters-io/kafka-broker-go/internal/config"
	"github.com/codecrafters-io/kafka-broker-go/internal/handlers"
	"github.com/codecrafters-io/kafka-broker-go/internal/metadata"
	"github.com/codecrafters-io/kafka-broker-go/internal/protocol"
)

// Broker owns the listener and the read-only cluster metadata
// snapshot every connection dispatches against.
type Broker struct {
	cfg  *config.Config
	snap *metadata.Snapshot
	log  brokerlog.Logger
}

// New builds a Broker ready to Serve.
func New(cfg *config.Config, snap *metadata.Snapshot, log brokerlog.Logger) *Broker {
	return &Broker{cfg: cfg, snap: snap, log: log}
}

// Serve binds the configured address and accepts connections until ctx
// is canceled, handling each on its own goroutine. It returns nil on a
// clean shutdown and a non-nil error if the listener could not bind.
func (b *Broker) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	l, err := lc.Listen(ctx, "tcp", b.cfg.ListenAddr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	b.log.Info("listening", zap.String("addr", b.cfg.ListenAddr))

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				b.log.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		go b.handleConn(conn)
	}
}

// handleConn serves one connection sequentially: read a request,
// dispatch it, write the response, repeat. A connection is never
// shared across goroutines, so the dispatch path needs no locking
// beyond the Snapshot's own immutability.
func (b *Broker) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	remote := conn.RemoteAddr().String()
	for {
		req, err := protocol.ReadRequest(r)
		if err != nil {
			if err != protocol.ErrClientDisconnected {
				b.log.Debug("connection closed", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		body := b.dispatch(req)
		if err := protocol.WriteResponse(conn, req.APIKey, req.CorrelationID, body); err != nil {
			b.log.Warn("write failed", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}

// dispatch routes a decoded request to its handler by api_key. An
// api_key this broker does not recognize gets an unsupported-version
// body rather than a dropped connection — mirrors how a real broker
// answers requests for APIs it has not implemented.
func (b *Broker) dispatch(req *protocol.Request) []byte {
	switch req.APIKey {
	case handlers.APIKeyApiVersions:
		return handlers.ApiVersions(req.APIVersion)
	case handlers.APIKeyDescribeTopicPartitions:
		return handlers.DescribeTopicPartitions(req.APIVersion, req.Body, b.snap)
	case handlers.APIKeyFetch:
		return handlers.Fetch(req.APIVersion, req.Body, b.snap)
	default:
		return codec.AppendInt16(nil, handlers.ErrUnsupportedVersion)
	}
}
