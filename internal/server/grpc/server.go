// Package grpc exposes the document services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/services"
	"github.com/dmitrijs2005/docverify/internal/verification"
	"google.golang.org/grpc"
)

type userService interface {
	Register(ctx context.Context, username, fullName, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type documentService interface {
	Create(ctx context.Context, ownerID int64, title string) (*models.Document, error)
	Finalize(ctx context.Context, ownerID, documentID int64) (*services.FinalizeResult, error)
	Stamp(ctx context.Context, ownerID, documentID int64, pdf []byte) ([]byte, error)
}

type signatureService interface {
	Sign(ctx context.Context, signerID, documentID int64, method verification.SignatureMethod, platform verification.Platform) (*services.SignResult, error)
	List(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error)
}

type lookupService interface {
	Lookup(ctx context.Context, code string) (*models.LookupResult, error)
}

// Services bundles the business services the gRPC API dispatches to.
type Services struct {
	Users      userService
	Documents  documentService
	Signatures signatureService
	Lookup     lookupService
}

type GRPCServer struct {
	address    string
	users      userService
	documents  documentService
	signatures signatureService
	lookup     lookupService
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		users:      svc.Users,
		documents:  svc.Documents,
		signatures: svc.Signatures,
		lookup:     svc.Lookup,
		jwtSecret:  []byte(secretKey),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	RegisterDocVerifyServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
