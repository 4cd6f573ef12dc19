package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "wealthtrack.v1.WealthTrackService"

// WealthTrackServer is the server API of the WealthTrack service
// Every method exchanges google.protobuf.Struct messages
type WealthTrackServer interface {
	// Reads
	GetTotals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAllocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCashFlowTrend(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMonthlyCashFlow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetExpensesByCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSpendingTimeline(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHoldingsBreakdown(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCryptoBreakdown(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshots(context.Context, *structpb.Struct) (*structpb.Struct, error)

	// Background work on demand
	RefreshPrices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TakeSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)

	// Mutations
	AddTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddInvestment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateInvestment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteInvestment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddCrypto(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCrypto(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCrypto(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteLiability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearAllData(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(WealthTrackServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryDesc(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(WealthTrackServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(WealthTrackServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the WealthTrack service
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WealthTrackServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryDesc("GetTotals", WealthTrackServer.GetTotals),
		unaryDesc("GetRecords", WealthTrackServer.GetRecords),
		unaryDesc("GetAllocation", WealthTrackServer.GetAllocation),
		unaryDesc("GetCashFlowTrend", WealthTrackServer.GetCashFlowTrend),
		unaryDesc("GetMonthlyCashFlow", WealthTrackServer.GetMonthlyCashFlow),
		unaryDesc("GetExpensesByCategory", WealthTrackServer.GetExpensesByCategory),
		unaryDesc("GetSpendingTimeline", WealthTrackServer.GetSpendingTimeline),
		unaryDesc("GetHoldingsBreakdown", WealthTrackServer.GetHoldingsBreakdown),
		unaryDesc("GetCryptoBreakdown", WealthTrackServer.GetCryptoBreakdown),
		unaryDesc("GetSnapshots", WealthTrackServer.GetSnapshots),
		unaryDesc("RefreshPrices", WealthTrackServer.RefreshPrices),
		unaryDesc("TakeSnapshot", WealthTrackServer.TakeSnapshot),
		unaryDesc("AddTransaction", WealthTrackServer.AddTransaction),
		unaryDesc("DeleteTransaction", WealthTrackServer.DeleteTransaction),
		unaryDesc("AddInvestment", WealthTrackServer.AddInvestment),
		unaryDesc("UpdateInvestment", WealthTrackServer.UpdateInvestment),
		unaryDesc("DeleteInvestment", WealthTrackServer.DeleteInvestment),
		unaryDesc("AddCrypto", WealthTrackServer.AddCrypto),
		unaryDesc("UpdateCrypto", WealthTrackServer.UpdateCrypto),
		unaryDesc("DeleteCrypto", WealthTrackServer.DeleteCrypto),
		unaryDesc("AddLiability", WealthTrackServer.AddLiability),
		unaryDesc("UpdateLiability", WealthTrackServer.UpdateLiability),
		unaryDesc("DeleteLiability", WealthTrackServer.DeleteLiability),
		unaryDesc("ClearAllData", WealthTrackServer.ClearAllData),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterWealthTrackServer registers srv on the given gRPC server
func RegisterWealthTrackServer(s grpc.ServiceRegistrar, srv WealthTrackServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls WealthTrack methods over an existing connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new Client instance
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with the given request fields
func (c *Client) Call(ctx context.Context, method string, fields map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
