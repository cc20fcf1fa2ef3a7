package simvars

import (
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"instrument-panel/log"
)

// DefaultPublishRate is how often Server checks the store for new readings.
const DefaultPublishRate = 50 * time.Millisecond

// Server publishes a Store's readings to every Watch stream. A snapshot is
// sent on connect and again whenever the store changes.
type Server struct {
	store *Store
	rate  time.Duration
	lg    *log.Logger
	gs    *grpc.Server
}

func NewServer(store *Store, rate time.Duration, lg *log.Logger, opts ...grpc.ServerOption) *Server {
	if rate <= 0 {
		rate = DefaultPublishRate
	}
	s := &Server{
		store: store,
		rate:  rate,
		lg:    lg,
		gs:    grpc.NewServer(opts...),
	}
	s.gs.RegisterService(&serviceDesc, s)
	return s
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.lg.Info("telemetry server listening", slog.String("addr", lis.Addr().String()))
	return s.gs.Serve(lis)
}

// Stop closes every open stream and listener.
func (s *Server) Stop() {
	s.gs.Stop()
}

func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	var last time.Time
	sent := false
	for {
		if u := s.store.LastUpdate(); !sent || !u.Equal(last) {
			msg, err := toStruct(s.store.Snapshot())
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
			last, sent = u, true
		}

		select {
		case <-stream.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}
