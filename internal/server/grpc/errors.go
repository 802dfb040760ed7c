package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/docverify/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Unknown errors are
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, common.ErrInvalidSignatureData):
		return status.Error(codes.InvalidArgument, clientMessage(err))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrDocumentNotFinalized):
		return status.Error(codes.FailedPrecondition, common.ErrDocumentNotFinalized.Error())
	case errors.Is(err, common.ErrCodeSpaceExhausted):
		s.logger.Error(ctx, "verification code space exhausted", "method", method)
		return status.Error(codes.ResourceExhausted, common.ErrCodeSpaceExhausted.Error())
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

// clientMessage keeps the part of a validation error meant for the caller:
// the wrapping layers in front of the sentinel are dropped.
func clientMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, common.ErrInvalidArgument.Error()+": "); i >= 0 {
		return msg[i:]
	}
	return msg
}
