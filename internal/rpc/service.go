package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ResultServer is the interface a gamayun ingestion endpoint implements: the
// three message kinds spawned jobs report back with, per gamayun.proto.
type ResultServer interface {
	ReportResult(context.Context, *JobResult) (*Empty, error)
	ReportNoResult(context.Context, *RunInformation) (*Empty, error)
	ReportError(context.Context, *JobError) (*Empty, error)
}

// RegisterResultServer registers srv against a *grpc.Server, the same call
// shape protoc-gen-go-grpc generates.
func RegisterResultServer(s grpc.ServiceRegistrar, srv ResultServer) {
	s.RegisterService(&resultServiceDesc, srv)
}

func resultReportResultHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(JobResult)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResultServer).ReportResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gamayun.Result/ReportResult"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResultServer).ReportResult(ctx, req.(*JobResult))
	}
	return interceptor(ctx, in, info, handler)
}

func resultReportNoResultHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RunInformation)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResultServer).ReportNoResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gamayun.Result/ReportNoResult"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResultServer).ReportNoResult(ctx, req.(*RunInformation))
	}
	return interceptor(ctx, in, info, handler)
}

func resultReportErrorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(JobError)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResultServer).ReportError(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/gamayun.Result/ReportError"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResultServer).ReportError(ctx, req.(*JobError))
	}
	return interceptor(ctx, in, info, handler)
}

var resultServiceDesc = grpc.ServiceDesc{
	ServiceName: "gamayun.Result",
	HandlerType: (*ResultServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReportResult", Handler: resultReportResultHandler},
		{MethodName: "ReportNoResult", Handler: resultReportNoResultHandler},
		{MethodName: "ReportError", Handler: resultReportErrorHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamayun.proto",
}

// ResultClient is a thin client stub over the same contract, mirroring the
// generator's usual client/server pair.
type ResultClient interface {
	ReportResult(ctx context.Context, in *JobResult, opts ...grpc.CallOption) (*Empty, error)
	ReportNoResult(ctx context.Context, in *RunInformation, opts ...grpc.CallOption) (*Empty, error)
	ReportError(ctx context.Context, in *JobError, opts ...grpc.CallOption) (*Empty, error)
}

type resultClient struct {
	cc grpc.ClientConnInterface
}

// NewResultClient builds a ResultClient over an existing connection.
func NewResultClient(cc grpc.ClientConnInterface) ResultClient {
	return &resultClient{cc: cc}
}

func (c *resultClient) ReportResult(ctx context.Context, in *JobResult, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/gamayun.Result/ReportResult", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resultClient) ReportNoResult(ctx context.Context, in *RunInformation, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/gamayun.Result/ReportNoResult", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resultClient) ReportError(ctx context.Context, in *JobError, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/gamayun.Result/ReportError", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
