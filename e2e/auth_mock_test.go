//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"

	authpb "github.com/vibast-solutions/ms-go-auth/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	defaultCallerAPIKey   = "onboarding-caller-key"
	defaultNoAccessAPIKey = "onboarding-no-access-key"
	defaultAppAPIKey      = "onboarding-app-api-key"
	authMockAddr          = "127.0.0.1:38083"
)

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func callerAPIKey() string   { return envOrDefault("ONBOARDING_CALLER_API_KEY", defaultCallerAPIKey) }
func noAccessAPIKey() string { return envOrDefault("ONBOARDING_NO_ACCESS_API_KEY", defaultNoAccessAPIKey) }
func appAPIKey() string      { return envOrDefault("ONBOARDING_APP_API_KEY", defaultAppAPIKey) }

// authGRPCServer answers the internal access checks the service makes on
// every /internal request and gRPC call.
type authGRPCServer struct {
	authpb.UnimplementedAuthServiceServer
}

func (s *authGRPCServer) ValidateInternalAccess(ctx context.Context, req *authpb.ValidateInternalAccessRequest) (*authpb.ValidateInternalAccessResponse, error) {
	if incomingAPIKey(ctx) != appAPIKey() {
		return nil, status.Error(codes.Unauthenticated, "unauthorized caller")
	}

	switch strings.TrimSpace(req.GetApiKey()) {
	case callerAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "dashboard-gateway",
			AllowedAccess: []string{"onboarding-service", "profile-service"},
		}, nil
	case noAccessAPIKey():
		return &authpb.ValidateInternalAccessResponse{
			ServiceName:   "dashboard-gateway",
			AllowedAccess: []string{"profile-service"},
		}, nil
	default:
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}
}

func incomingAPIKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func TestMain(m *testing.M) {
	listener, err := net.Listen("tcp", authMockAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start auth grpc mock: %v\n", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, &authGRPCServer{})

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	exitCode := m.Run()

	grpcServer.GracefulStop()
	_ = listener.Close()

	os.Exit(exitCode)
}
