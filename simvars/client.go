package simvars

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"instrument-panel/log"
)

const (
	dialTimeout = 5 * time.Second
	retryDelay  = time.Second
)

// Client streams readings from a telemetry server into a Store,
// re-opening the stream whenever it drops.
type Client struct {
	addr  string
	opts  []grpc.DialOption
	store *Store
	lg    *log.Logger

	mu        sync.Mutex
	conn      *grpc.ClientConn
	ctx       context.Context
	cancel    context.CancelFunc
	streaming bool
	done      chan struct{}
}

// NewClient creates a client for addr. opts are added to the default dial
// options.
func NewClient(addr string, store *Store, lg *log.Logger, opts ...grpc.DialOption) *Client {
	return &Client{
		addr:  addr,
		opts:  opts,
		store: store,
		lg:    lg.With(slog.String("addr", addr)),
	}
}

// Connect dials the server, waiting up to five seconds for it to answer.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, c.opts...)
	conn, err := grpc.DialContext(ctx, c.addr, opts...)
	if err != nil {
		return err
	}

	c.conn = conn
	c.lg.Info("connected to telemetry server")
	return nil
}

// Disconnect stops streaming and closes the connection.
func (c *Client) Disconnect() {
	c.StopStream()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// StartStream begins copying readings into the store in the background.
func (c *Client) StartStream() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		return
	}
	c.streaming = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.done = make(chan struct{})
	go c.stream(c.ctx, c.done)
}

// StopStream cancels the stream and waits for it to wind down.
func (c *Client) StopStream() {
	c.mu.Lock()
	if !c.streaming {
		c.mu.Unlock()
		return
	}
	c.streaming = false
	c.cancel()
	done := c.done
	c.mu.Unlock()

	<-done
}

func (c *Client) stream(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil || ctx.Err() != nil {
			return
		}

		if err := c.watch(ctx, conn); err != nil && ctx.Err() == nil {
			c.lg.Warn("telemetry stream", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

// watch runs one Watch call until the server ends it.
func (c *Client) watch(ctx context.Context, conn *grpc.ClientConn) error {
	stream, err := conn.NewStream(ctx, &serviceDesc.Streams[0], watchMethod)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		c.store.SetMany(fromStruct(msg))
	}
}
