package broker

import (
	"context"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codecrafters-io/kafka-broker-go/internal/brokerlog"
	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
	"github.com/codecrafters-io/kafka-broker-go/internal/config"
	"github.com/codecrafters-io/kafka-broker-go/internal/handlers"
	"github.com/codecrafters-io/kafka-broker-go/internal/metadata"
	"github.com/codecrafters-io/kafka-broker-go/internal/protocol"
)

func emptySnapshot(t *testing.T) *metadata.Snapshot {
	t.Helper()
	path := t.TempDir() + "/empty.log"
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	snap, err := metadata.Load(path)
	require.NoError(t, err)
	return snap
}

func TestServeAnswersApiVersionsOverRealSocket(t *testing.T) {
	cfg := &config.Config{ListenAddr: "127.0.0.1:0"}
	b := New(cfg, emptySnapshot(t), brokerlog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lc := net.ListenConfig{}
	l, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()
	cfg.ListenAddr = addr

	errCh := make(chan error, 1)
	go func() { errCh <- b.Serve(ctx) }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	var req []byte
	req = codec.AppendInt16(req, handlers.APIKeyApiVersions)
	req = codec.AppendInt16(req, 4)
	req = codec.AppendInt32(req, 7) // correlation_id
	req = codec.AppendInt16(req, -1) // client_id: null
	req = codec.AppendUVarint(req, 0) // tag buffer

	var frame []byte
	frame = codec.AppendInt32(frame, int32(len(req)))
	frame = append(frame, req...)

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write(frame)
	require.NoError(t, err)

	var sizeBuf [4]byte
	_, err = io.ReadFull(conn, sizeBuf[:])
	require.NoError(t, err)
	size := codec.NewReader(sizeBuf[:]).Uint32()
	require.Greater(t, size, uint32(0))

	payload := make([]byte, size)
	_, err = io.ReadFull(conn, payload)
	require.NoError(t, err)

	r := codec.NewReader(payload)
	require.EqualValues(t, 7, r.Int32()) // correlation_id echoed back
	require.EqualValues(t, handlers.ErrNone, r.Int16())

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestDispatchUnknownAPIKey(t *testing.T) {
	b := New(&config.Config{}, emptySnapshot(t), brokerlog.Nop())
	body := b.dispatch(&protocol.Request{APIKey: 9999, APIVersion: 0})
	require.Equal(t, codec.AppendInt16(nil, handlers.ErrUnsupportedVersion), body)
}
