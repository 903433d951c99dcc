package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrNoProducts), errors.Is(err, e.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrProductNotFound):
		return status.Error(codes.NotFound, e.ErrProductNotFound.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// loggingInterceptor пишет метод, код ответа и длительность каждого unary-вызова.
func loggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		if code == codes.Internal || code == codes.Unknown {
			log.Errorf(err, "grpc %s %s %s", info.FullMethod, code, time.Since(start))
		} else {
			log.Debugf("grpc %s %s %s", info.FullMethod, code, time.Since(start))
		}

		return resp, err
	}
}
