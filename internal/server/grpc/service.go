package grpc

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DocVerifyServer is the server side of docverify.v1.DocVerifyService.
type DocVerifyServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FinalizeDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StampDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSignatures(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LookupCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterDocVerifyServer(s grpc.ServiceRegistrar, srv DocVerifyServer) {
	s.RegisterService(&serviceDesc, srv)
}

type structCall func(DocVerifyServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func structMethod(name string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DocVerifyServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DocVerifyServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DocVerifyServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(api.MethodPing)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DocVerifyServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*DocVerifyServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: api.MethodPing, Handler: pingHandler},
		structMethod(api.MethodRegister, DocVerifyServer.Register),
		structMethod(api.MethodLogin, DocVerifyServer.Login),
		structMethod(api.MethodRefreshToken, DocVerifyServer.RefreshToken),
		structMethod(api.MethodCreateDocument, DocVerifyServer.CreateDocument),
		structMethod(api.MethodFinalizeDocument, DocVerifyServer.FinalizeDocument),
		structMethod(api.MethodSignDocument, DocVerifyServer.SignDocument),
		structMethod(api.MethodStampDocument, DocVerifyServer.StampDocument),
		structMethod(api.MethodListSignatures, DocVerifyServer.ListSignatures),
		structMethod(api.MethodLookupCode, DocVerifyServer.LookupCode),
	},
	Streams: []grpc.StreamDesc{},
}
