package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/dmitrijs2005/docverify/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// invoker is the part of *grpc.ClientConn the client calls through.
type invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          invoker

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(api.TokenPair)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.currentTokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" || method == api.FullMethod(api.MethodRefreshToken) {
		return err
	}

	if rerr := s.refresh(ctx, refresh); rerr != nil {
		return rerr
	}

	// tokens refreshed, retrying with the new access token
	access, _ = s.currentTokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) error {
	var pair api.TokenPair
	if err := s.call(ctx, api.MethodRefreshToken, api.RefreshTokenRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return err
	}
	s.SetTokens(pair)
	s.notify(pair)
	return nil
}

func NewDocVerifyClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.cc = conn
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) currentTokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) Tokens() api.TokenPair {
	access, refresh := s.currentTokens()
	return api.TokenPair{AccessToken: access, RefreshToken: refresh}
}

func (s *GRPCClient) SetTokens(tokens api.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
}

func (s *GRPCClient) OnTokensChanged(fn func(api.TokenPair)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

func (s *GRPCClient) notify(pair api.TokenPair) {
	s.mu.Lock()
	fn := s.onTokens
	s.mu.Unlock()
	if fn != nil {
		fn(pair)
	}
}

// call sends in as a Struct and decodes the Struct reply into out.
func (s *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	req, err := api.ToStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := s.cc.Invoke(ctx, api.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}
	return api.FromStruct(resp, out)
}

func (s *GRPCClient) authedCall(ctx context.Context, method string, in, out any) error {
	if access, _ := s.currentTokens(); access == "" {
		return ErrNotLoggedIn
	}
	return s.call(ctx, method, in, out)
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp := new(wrapperspb.StringValue)
	if err := s.cc.Invoke(ctx, api.FullMethod(api.MethodPing), &emptypb.Empty{}, resp); err != nil {
		return s.mapError(err)
	}

	if resp.GetValue() != api.PingStatus {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var out api.RegisterResponse
	if err := s.call(ctx, api.MethodRegister, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) error {

	var pair api.TokenPair
	if err := s.call(ctx, api.MethodLogin, api.LoginRequest{Username: username, Password: password}, &pair); err != nil {
		return err
	}

	s.SetTokens(pair)
	s.notify(pair)

	return nil

}

func (s *GRPCClient) CreateDocument(ctx context.Context, title string) (*api.Document, error) {
	var out api.Document
	if err := s.authedCall(ctx, api.MethodCreateDocument, api.CreateDocumentRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) FinalizeDocument(ctx context.Context, documentID int64) (*api.FinalizeResponse, error) {
	var out api.FinalizeResponse
	if err := s.authedCall(ctx, api.MethodFinalizeDocument, api.DocumentRequest{DocumentID: documentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) SignDocument(ctx context.Context, req api.SignRequest) (*api.SignResponse, error) {
	var out api.SignResponse
	if err := s.authedCall(ctx, api.MethodSignDocument, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) StampDocument(ctx context.Context, documentID int64, pdf []byte) ([]byte, error) {
	var out api.StampResponse
	if err := s.authedCall(ctx, api.MethodStampDocument, api.StampRequest{DocumentID: documentID, PDF: pdf}, &out); err != nil {
		return nil, err
	}
	return out.PDF, nil
}

func (s *GRPCClient) ListSignatures(ctx context.Context, documentID int64) ([]api.Signature, error) {
	var out api.ListSignaturesResponse
	if err := s.authedCall(ctx, api.MethodListSignatures, api.DocumentRequest{DocumentID: documentID}, &out); err != nil {
		return nil, err
	}
	return out.Signatures, nil
}

func (s *GRPCClient) LookupCode(ctx context.Context, code string) (*api.LookupResponse, error) {
	var out api.LookupResponse
	if err := s.call(ctx, api.MethodLookupCode, api.LookupRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
