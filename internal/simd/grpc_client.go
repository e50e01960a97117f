package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvolutionClient calls EvolutionService over a client connection
type EvolutionClient struct {
	cc grpc.ClientConnInterface
}

func NewEvolutionClient(cc grpc.ClientConnInterface) *EvolutionClient {
	return &EvolutionClient{cc: cc}
}

func (c *EvolutionClient) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+EvolutionServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRun creates and starts a run from YAML config. An empty runID lets
// the server generate one.
func (c *EvolutionClient) CreateRun(ctx context.Context, runID, configYAML, mode string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateRun", map[string]any{
		"run_id":      runID,
		"config_yaml": configYAML,
		"mode":        mode,
	}, opts...)
}

func (c *EvolutionClient) GetRun(ctx context.Context, runID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRun", map[string]any{"run_id": runID}, opts...)
}

func (c *EvolutionClient) ListRuns(ctx context.Context, limit int, status RunStatus, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListRuns", map[string]any{"limit": limit, "status": string(status)}, opts...)
}

func (c *EvolutionClient) StopRun(ctx context.Context, runID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopRun", map[string]any{"run_id": runID}, opts...)
}

func (c *EvolutionClient) GetRunMetrics(ctx context.Context, runID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetRunMetrics", map[string]any{"run_id": runID}, opts...)
}
