package main

import (
	"context"
	"math"
	"sync"

	"github.com/hashicorp/go-plugin"

	detectorrpc "nadi/internal/modules/detect/adapter/out/rpc"
)

// server simulates a camera detector with a slow posture drift: deviation
// swings sinusoidally so a session exercises every scoring band without any
// hardware. Every tenth frame drops the face, and eyes blink open on a
// shorter period.
type server struct {
	mu sync.Mutex
	n  int
}

func (s *server) GetMetadata(_ context.Context, _ *detectorrpc.Empty) (*detectorrpc.Metadata, error) {
	return &detectorrpc.Metadata{
		Name:         "simdetector",
		Version:      "1.0.0",
		Capabilities: []string{"posture", "eyes"},
	}, nil
}

func (s *server) Sample(_ context.Context, _ *detectorrpc.Empty) (*detectorrpc.SampleResponse, error) {
	s.mu.Lock()
	n := s.n
	s.n++
	s.mu.Unlock()

	if n%10 == 9 {
		return &detectorrpc.SampleResponse{FaceVisible: false}, nil
	}
	drift := 0.06 * (1 + math.Sin(float64(n)/7))
	return &detectorrpc.SampleResponse{
		FaceVisible:      true,
		PostureDeviation: drift,
		HeadDeviation:    drift / 2,
		EyesOpen:         n%5 == 0,
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: detectorrpc.HandshakeConfig,
		Plugins:         detectorrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
