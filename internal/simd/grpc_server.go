package simd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvolutionServiceName is the fully qualified gRPC service name
const EvolutionServiceName = "evolution.v1.EvolutionService"

// EvolutionServer is the server API of EvolutionService. Requests and
// responses are google.protobuf.Struct messages carrying the same fields as
// the HTTP API.
type EvolutionServer interface {
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRunMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EvolutionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvolutionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + EvolutionServiceName + "/" + name,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvolutionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EvolutionServiceDesc describes EvolutionService for grpc.Server
var EvolutionServiceDesc = grpc.ServiceDesc{
	ServiceName: EvolutionServiceName,
	HandlerType: (*EvolutionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: unaryHandler("CreateRun", EvolutionServer.CreateRun)},
		{MethodName: "GetRun", Handler: unaryHandler("GetRun", EvolutionServer.GetRun)},
		{MethodName: "ListRuns", Handler: unaryHandler("ListRuns", EvolutionServer.ListRuns)},
		{MethodName: "StopRun", Handler: unaryHandler("StopRun", EvolutionServer.StopRun)},
		{MethodName: "GetRunMetrics", Handler: unaryHandler("GetRunMetrics", EvolutionServer.GetRunMetrics)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "evolution/v1/evolution.proto",
}

// RegisterEvolutionServer registers srv on s
func RegisterEvolutionServer(s grpc.ServiceRegistrar, srv EvolutionServer) {
	s.RegisterService(&EvolutionServiceDesc, srv)
}

// EvolutionGRPCServer implements EvolutionServer using a RunStore backend.
type EvolutionGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

// NewEvolutionGRPCServer creates a new EvolutionGRPCServer with the provided RunStore and RunExecutor.
func NewEvolutionGRPCServer(store *RunStore, executor *RunExecutor) *EvolutionGRPCServer {
	return &EvolutionGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func (s *EvolutionGRPCServer) CreateRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &RunInput{
		ConfigYAML:     stringField(req, "config_yaml"),
		Mode:           stringField(req, "mode"),
		CallbackURL:    stringField(req, "callback_url"),
		CallbackSecret: stringField(req, "callback_secret"),
	}

	rec, err := createAndStart(s.store, s.Executor, stringField(req, "run_id"), input)
	if err != nil {
		return nil, grpcError(err)
	}

	logger.Info("run created", "run_id", rec.Run.ID)
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *EvolutionGRPCServer) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *EvolutionGRPCServer) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 50
	if n := int(numberField(req, "limit")); n > 0 {
		limit = n
	}
	var filter RunStatus
	if st := stringField(req, "status"); st != "" {
		if filter = ParseRunStatus(st); filter == "" {
			return nil, status.Errorf(codes.InvalidArgument, "invalid status: %s", st)
		}
	}

	recs := s.store.List(limit, 0, filter)
	runs := make([]*Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	return toStruct(map[string]any{"runs": runs})
}

func (s *EvolutionGRPCServer) StopRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run cancelled", "run_id", runID)
	return toStruct(map[string]any{"run": updated.Run})
}

func (s *EvolutionGRPCServer) GetRunMetrics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID := stringField(req, "run_id")
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	if _, ok := s.store.Get(runID); !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	collector, ok := s.store.GetCollector(runID)
	if !ok {
		return nil, status.Error(codes.FailedPrecondition, "metrics not available")
	}
	return toStruct(map[string]any{
		"summary":     collector.Summary(),
		"generations": collector.History(),
	})
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRunIDMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func numberField(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

// toStruct converts a JSON-encodable value into a Struct via its JSON form so
// field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
