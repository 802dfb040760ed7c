package grpc

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/verification"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func decode(req *structpb.Struct, v any) error {
	if err := api.FromStruct(req, v); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	return nil
}

func (s *GRPCServer) encode(ctx context.Context, method string, v any) (*structpb.Struct, error) {
	resp, err := api.ToStruct(v)
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {

	return wrapperspb.String(api.PingStatus), nil

}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in api.RegisterRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registration request", "username", in.Username)

	user, err := s.users.Register(ctx, in.Username, in.FullName, in.Email, in.Password)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRegister, err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "user_id", user.ID)
	return s.encode(ctx, api.MethodRegister, api.RegisterResponse{UserID: user.ID, Username: user.UserName})

}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in api.LoginRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	tokens, err := s.users.Login(ctx, in.Username, in.Password)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodLogin, err)
	}

	return s.encode(ctx, api.MethodLogin, api.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})

}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in api.RefreshTokenRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	tokens, err := s.users.RefreshToken(ctx, in.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRefreshToken, err)
	}

	return s.encode(ctx, api.MethodRefreshToken, api.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})

}

func (s *GRPCServer) CreateDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in api.CreateDocumentRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	doc, err := s.documents.Create(ctx, userID, in.Title)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodCreateDocument, err)
	}

	s.logger.Info(ctx, "Document created", "document_id", doc.ID, "owner_id", userID)
	return s.encode(ctx, api.MethodCreateDocument, toAPIDocument(doc))

}

func (s *GRPCServer) FinalizeDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in api.DocumentRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := s.documents.Finalize(ctx, userID, in.DocumentID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodFinalizeDocument, err)
	}

	return s.encode(ctx, api.MethodFinalizeDocument, api.FinalizeResponse{
		DocumentID:      res.Record.DocumentID,
		Code:            res.Record.Code,
		VerificationURL: res.VerificationURL,
		QRSVG:           res.QRSVG,
		QRURL:           res.QRURL,
		CreatedAt:       res.Record.CreatedAt,
	})

}

func (s *GRPCServer) SignDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in api.SignRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	method, err := verification.ParseSignatureMethod(in.Method)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodSignDocument, err)
	}
	platform, err := verification.ParsePlatform(in.Platform)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodSignDocument, err)
	}

	res, err := s.signatures.Sign(ctx, userID, in.DocumentID, method, platform)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodSignDocument, err)
	}

	return s.encode(ctx, api.MethodSignDocument, api.SignResponse{
		Signature: toAPISignature(res.Record),
		Block:     res.Block,
		BlockURL:  res.BlockURL,
	})

}

func (s *GRPCServer) StampDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in api.StampRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	pdf, err := s.documents.Stamp(ctx, userID, in.DocumentID, in.PDF)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodStampDocument, err)
	}

	return s.encode(ctx, api.MethodStampDocument, api.StampResponse{PDF: pdf})

}

func (s *GRPCServer) ListSignatures(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	if _, err := userIDFromContext(ctx); err != nil {
		return nil, err
	}

	var in api.DocumentRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	recs, err := s.signatures.List(ctx, in.DocumentID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListSignatures, err)
	}

	out := api.ListSignaturesResponse{Signatures: make([]api.Signature, 0, len(recs))}
	for i := range recs {
		out.Signatures = append(out.Signatures, toAPISignature(&recs[i]))
	}

	return s.encode(ctx, api.MethodListSignatures, out)

}

func (s *GRPCServer) LookupCode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in api.LookupRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	res, err := s.lookup.Lookup(ctx, in.Code)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodLookupCode, err)
	}

	return s.encode(ctx, api.MethodLookupCode, toAPILookup(res))

}

func toAPIDocument(d *models.Document) api.Document {
	return api.Document{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

func toAPISignature(r *verification.SignatureRecord) api.Signature {
	return api.Signature{
		ID:               r.ID,
		SignerID:         r.SignerID,
		DocumentID:       r.DocumentID,
		Timestamp:        r.Timestamp,
		VerificationCode: r.VerificationCode,
		Method:           string(r.Method),
		Platform:         string(r.Platform),
		Verified:         r.Verified,
	}
}

func toAPILookup(r *models.LookupResult) api.LookupResponse {
	out := api.LookupResponse{Verified: r.Verified}
	if r.DocumentInfo != nil {
		out.DocumentInfo = &api.DocumentInfo{
			Title:              r.DocumentInfo.Title,
			SignerName:         r.DocumentInfo.SignerName,
			SignatureTimestamp: r.DocumentInfo.SignatureTimestamp,
		}
	}
	return out
}
