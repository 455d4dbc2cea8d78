package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-onboarding/app/types"
	"google.golang.org/grpc"
)

const serviceName = "onboarding.OnboardingService"

// OnboardingServiceServer is the internal API other services call.
type OnboardingServiceServer interface {
	ListPlans(context.Context, *types.ListPlansRequest) (*types.ListPlansResponse, error)
	GetOrganizationSubscription(context.Context, *types.OrganizationRequest) (*types.SubscriptionResponse, error)
	CancelOrganizationSubscription(context.Context, *types.OrganizationRequest) (*types.CancelSubscriptionResponse, error)
	ListOrganizationOrders(context.Context, *types.OrganizationRequest) (*types.ListOrdersResponse, error)
}

var OnboardingServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OnboardingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListPlans",
			Handler: unaryHandler("ListPlans", func(srv OnboardingServiceServer, ctx context.Context, req *types.ListPlansRequest) (*types.ListPlansResponse, error) {
				return srv.ListPlans(ctx, req)
			}),
		},
		{
			MethodName: "GetOrganizationSubscription",
			Handler: unaryHandler("GetOrganizationSubscription", func(srv OnboardingServiceServer, ctx context.Context, req *types.OrganizationRequest) (*types.SubscriptionResponse, error) {
				return srv.GetOrganizationSubscription(ctx, req)
			}),
		},
		{
			MethodName: "CancelOrganizationSubscription",
			Handler: unaryHandler("CancelOrganizationSubscription", func(srv OnboardingServiceServer, ctx context.Context, req *types.OrganizationRequest) (*types.CancelSubscriptionResponse, error) {
				return srv.CancelOrganizationSubscription(ctx, req)
			}),
		},
		{
			MethodName: "ListOrganizationOrders",
			Handler: unaryHandler("ListOrganizationOrders", func(srv OnboardingServiceServer, ctx context.Context, req *types.OrganizationRequest) (*types.ListOrdersResponse, error) {
				return srv.ListOrganizationOrders(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "onboarding",
}

func RegisterOnboardingServiceServer(s grpc.ServiceRegistrar, srv OnboardingServiceServer) {
	s.RegisterService(&OnboardingServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

func unaryHandler[Req any, Resp any](
	method string,
	call func(OnboardingServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OnboardingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(OnboardingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// OnboardingServiceClient calls the internal API with the json codec.
type OnboardingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOnboardingServiceClient(cc grpc.ClientConnInterface) *OnboardingServiceClient {
	return &OnboardingServiceClient{cc: cc}
}

func (c *OnboardingServiceClient) ListPlans(ctx context.Context, in *types.ListPlansRequest, opts ...grpc.CallOption) (*types.ListPlansResponse, error) {
	out := new(types.ListPlansResponse)
	if err := c.invoke(ctx, "ListPlans", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OnboardingServiceClient) GetOrganizationSubscription(ctx context.Context, in *types.OrganizationRequest, opts ...grpc.CallOption) (*types.SubscriptionResponse, error) {
	out := new(types.SubscriptionResponse)
	if err := c.invoke(ctx, "GetOrganizationSubscription", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OnboardingServiceClient) CancelOrganizationSubscription(ctx context.Context, in *types.OrganizationRequest, opts ...grpc.CallOption) (*types.CancelSubscriptionResponse, error) {
	out := new(types.CancelSubscriptionResponse)
	if err := c.invoke(ctx, "CancelOrganizationSubscription", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OnboardingServiceClient) ListOrganizationOrders(ctx context.Context, in *types.OrganizationRequest, opts ...grpc.CallOption) (*types.ListOrdersResponse, error) {
	out := new(types.ListOrdersResponse)
	if err := c.invoke(ctx, "ListOrganizationOrders", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OnboardingServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}
