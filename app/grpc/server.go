package grpc

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/mapper"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	pricingService *service.PricingService
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewServer(pricingService *service.PricingService, billingService *service.BillingService) *Server {
	return &Server{
		pricingService: pricingService,
		billingService: billingService,
		logger:         factory.NewModuleLogger("grpc-server"),
	}
}

func (s *Server) ListPlans(ctx context.Context, req *types.ListPlansRequest) (*types.ListPlansResponse, error) {
	if err := req.Validate(); err != nil {
		loggerWithContext(ctx).WithError(err).Debug("List plans validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	items, err := s.pricingService.ListPlans(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, "List plans", err)
	}

	return mapper.ListPlansResponse(items, s.pricingService.Currencies()), nil
}

func (s *Server) GetOrganizationSubscription(ctx context.Context, req *types.OrganizationRequest) (*types.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.billingService.GetSubscription(ctx, req.GetOrganizationId())
	if err != nil {
		return nil, s.toStatus(ctx, "Get organization subscription", err)
	}
	return &types.SubscriptionResponse{Subscription: mapper.SubscriptionToProto(item)}, nil
}

func (s *Server) CancelOrganizationSubscription(ctx context.Context, req *types.OrganizationRequest) (*types.CancelSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.billingService.CancelSubscription(ctx, req.GetOrganizationId())
	if err != nil {
		return nil, s.toStatus(ctx, "Cancel organization subscription", err)
	}
	return &types.CancelSubscriptionResponse{
		Subscription: mapper.SubscriptionToProto(result.Subscription),
		Immediate:    result.Immediate,
		Message:      result.Message,
	}, nil
}

func (s *Server) ListOrganizationOrders(ctx context.Context, req *types.OrganizationRequest) (*types.ListOrdersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	items, err := s.billingService.ListOrders(ctx, req.GetOrganizationId())
	if err != nil {
		return nil, s.toStatus(ctx, "List organization orders", err)
	}
	return &types.ListOrdersResponse{Orders: mapper.OrdersToProto(items)}, nil
}

func (s *Server) toStatus(ctx context.Context, operation string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidCycle),
		errors.Is(err, service.ErrUnsupportedCurrency):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound):
		return status.Error(codes.NotFound, "subscription not found")
	case errors.Is(err, service.ErrPlanNotFound):
		return status.Error(codes.NotFound, "plan not found")
	case errors.Is(err, service.ErrNothingToCancel):
		return status.Error(codes.FailedPrecondition, "subscription is not cancellable")
	case errors.Is(err, service.ErrGatewayUnavailable):
		return status.Error(codes.Unavailable, "payment gateway unavailable")
	default:
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).Error(operation + " failed")
		return status.Error(codes.Internal, "internal server error")
	}
}
