// Package protocol describes the ledger session service.
// Messages are google.protobuf.Struct values, numbers travel as decimal strings
package protocol

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"context"
)

// ServiceName is the fully qualified grpc service name
const ServiceName = "papertrade.Ledger"

const sessionMethod = "/" + ServiceName + "/Session"

// Acts of a session
const (
	ActInit      = "INIT"
	ActBalance   = "BALANCE"
	ActBuy       = "BUY"
	ActSell      = "SELL"
	ActPortfolio = "PORTFOLIO"
	ActPrice     = "PRICE"
)

// Message fields
const (
	FieldAct          = "act"
	FieldUserID       = "user_id"
	FieldAsset        = "asset"
	FieldAmount       = "amount"
	FieldError        = "error"
	FieldMessage      = "message"
	FieldBalance      = "balance"
	FieldUnitPrice    = "unit_price"
	FieldCost         = "cost"
	FieldRevenue      = "revenue"
	FieldPrice        = "price"
	FieldLines        = "lines"
	FieldBuyPrice     = "buy_price"
	FieldInvested     = "invested"
	FieldCurrentValue = "current_value"
	FieldProfitLoss   = "profit_loss"
)

// LedgerServer is the server API of the service
type LedgerServer interface {
	Session(Ledger_SessionServer) error
}

// Ledger_SessionServer is the server side of a session stream
type Ledger_SessionServer interface {
	Send(*structpb.Struct) error
	Recv() (*structpb.Struct, error)
	grpc.ServerStream
}

// Ledger_SessionClient is the client side of a session stream
type Ledger_SessionClient interface {
	Send(*structpb.Struct) error
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

// LedgerServiceDesc is the grpc.ServiceDesc of the service
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Session",
			Handler:       sessionHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "papertrade/ledger",
}

// RegisterLedgerServer registers srv on s
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

func sessionHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(LedgerServer).Session(&sessionServer{stream})
}

type sessionServer struct {
	grpc.ServerStream
}

func (x *sessionServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func (x *sessionServer) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// LedgerClient is the client API of the service
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerClient is constructor
func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

// Session opens a session stream
func (c *LedgerClient) Session(ctx context.Context, opts ...grpc.CallOption) (Ledger_SessionClient, error) {
	stream, err := c.cc.NewStream(ctx, &LedgerServiceDesc.Streams[0], sessionMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &sessionClient{stream}, nil
}

type sessionClient struct {
	grpc.ClientStream
}

func (x *sessionClient) Send(m *structpb.Struct) error {
	return x.ClientStream.SendMsg(m)
}

func (x *sessionClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// String returns a string field of m or ""
func String(m *structpb.Struct, field string) string {
	if m == nil {
		return ""
	}
	v, ok := m.GetFields()[field]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// NewMessage builds a message from act and string fields
func NewMessage(act string, fields map[string]string) *structpb.Struct {
	m := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields)+1)}
	m.Fields[FieldAct] = structpb.NewStringValue(act)
	for k, v := range fields {
		m.Fields[k] = structpb.NewStringValue(v)
	}
	return m
}
