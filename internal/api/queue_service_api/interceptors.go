package queue_service_api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/opdqueue/internal/auth"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type DoctorResolver interface {
	FindDoctorByUID(ctx context.Context, uid string) (*domain.Doctor, error)
}

type doctorKey struct{}

// publicMethods need no doctor identity.
var publicMethods = map[string]bool{
	MethodListDoctors:   true,
	MethodSubmitBooking: true,
}

func WithDoctor(ctx context.Context, doctor *domain.Doctor) context.Context {
	return context.WithValue(ctx, doctorKey{}, doctor)
}

func DoctorFromContext(ctx context.Context) (*domain.Doctor, bool) {
	d, ok := ctx.Value(doctorKey{}).(*domain.Doctor)
	return d, ok && d != nil
}

// AuthInterceptor resolves the bearer token in the "authorization" metadata
// to a doctor for every QueueService method that is not public.
func AuthInterceptor(tokens TokenParser, doctors DoctorResolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if publicMethods[info.FullMethod] || !isQueueMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, auth.ErrMissingToken.Error())
		}
		raw, err := auth.BearerToken(values[0])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		doctor, err := doctors.FindDoctorByUID(ctx, claims.Subject)
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, status.Error(codes.PermissionDenied, "token subject is not a registered doctor")
		}
		if err != nil {
			return nil, toStatus(err)
		}
		return handler(WithDoctor(ctx, doctor), req)
	}
}

func isQueueMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/"+ServiceName+"/")
}

// LoggingInterceptor logs one line per unary call.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := log.Info()
		if code != codes.OK {
			event = log.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("latency", time.Since(start)).
			Msg("grpc call")
		return resp, err
	}
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var ve *domain.ValidationError
	code := codes.Internal
	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrInvalidStatus):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrDoctorNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrDuplicateEvent):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrInvalidTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrIntake):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
