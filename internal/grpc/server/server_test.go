package server

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/chucky-1/papertrade/internal/oracle"
	"github.com/chucky-1/papertrade/internal/repository"
	"github.com/chucky-1/papertrade/internal/service"
	"github.com/chucky-1/papertrade/protocol"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"context"
	"net"
	"sync"
	"testing"
	"time"
)

type mapOracle struct {
	mu     sync.Mutex
	prices map[string]string
}

func (o *mapOracle) set(asset, price string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[asset] = price
}

func (o *mapOracle) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.prices[asset]
	if !ok {
		return decimal.Zero, oracle.ErrNotFound
	}
	return decimal.RequireFromString(p), nil
}

func startServer(t *testing.T, o oracle.Oracle) *protocol.LedgerClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	srv := service.NewService(repository.NewMemory(), o, decimal.NewFromInt(10000), time.Second)
	protocol.RegisterLedgerServer(s, NewServer(srv))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithInsecure())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return protocol.NewLedgerClient(conn)
}

func session(t *testing.T, client *protocol.LedgerClient, userID string) protocol.Ledger_SessionClient {
	t.Helper()
	stream, err := client.Session(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(protocol.NewMessage(protocol.ActInit, map[string]string{protocol.FieldUserID: userID})))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, protocol.ActInit, protocol.String(resp, protocol.FieldAct))
	return stream
}

func exchange(t *testing.T, stream protocol.Ledger_SessionClient, act string, fields map[string]string) *structpb.Struct {
	t.Helper()
	require.NoError(t, stream.Send(protocol.NewMessage(act, fields)))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, act, protocol.String(resp, protocol.FieldAct))
	return resp
}

func TestServer_Session(t *testing.T) {
	o := &mapOracle{prices: map[string]string{"coin-a": "2"}}
	stream := session(t, startServer(t, o), "42")

	resp := exchange(t, stream, protocol.ActBalance, nil)
	assert.Equal(t, "10000", protocol.String(resp, protocol.FieldBalance))

	resp = exchange(t, stream, protocol.ActBuy, map[string]string{protocol.FieldAsset: "COIN-A", protocol.FieldAmount: "10"})
	assert.Empty(t, protocol.String(resp, protocol.FieldError))
	assert.Equal(t, "coin-a", protocol.String(resp, protocol.FieldAsset))
	assert.Equal(t, "2", protocol.String(resp, protocol.FieldUnitPrice))
	assert.Equal(t, "20", protocol.String(resp, protocol.FieldCost))

	resp = exchange(t, stream, protocol.ActBalance, nil)
	assert.Equal(t, "9980", protocol.String(resp, protocol.FieldBalance))

	o.set("coin-a", "3")
	resp = exchange(t, stream, protocol.ActPortfolio, nil)
	lines := resp.GetFields()[protocol.FieldLines].GetListValue().GetValues()
	require.Len(t, lines, 1)
	line := lines[0].GetStructValue()
	assert.Equal(t, "coin-a", protocol.String(line, protocol.FieldAsset))
	assert.Equal(t, "30", protocol.String(line, protocol.FieldCurrentValue))
	assert.Equal(t, "10", protocol.String(line, protocol.FieldProfitLoss))

	resp = exchange(t, stream, protocol.ActSell, map[string]string{protocol.FieldAsset: "coin-a", protocol.FieldAmount: "10"})
	assert.Equal(t, "30", protocol.String(resp, protocol.FieldRevenue))

	resp = exchange(t, stream, protocol.ActPrice, map[string]string{protocol.FieldAsset: "Coin-A"})
	assert.Equal(t, "coin-a", protocol.String(resp, protocol.FieldAsset))
	assert.Equal(t, "3", protocol.String(resp, protocol.FieldPrice))

	resp = exchange(t, stream, protocol.ActPortfolio, nil)
	assert.Empty(t, resp.GetFields()[protocol.FieldLines].GetListValue().GetValues())

	require.NoError(t, stream.CloseSend())
}

func TestServer_Errors(t *testing.T) {
	o := &mapOracle{prices: map[string]string{"btc": "6000"}}
	stream := session(t, startServer(t, o), "7")

	testTable := []struct {
		name   string
		act    string
		fields map[string]string
		expect string
	}{
		{name: "unknown asset", act: protocol.ActBuy, fields: map[string]string{protocol.FieldAsset: "nope", protocol.FieldAmount: "1"}, expect: model.ReasonAssetNotFound},
		{name: "too expensive", act: protocol.ActBuy, fields: map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "2"}, expect: model.ReasonInsufficientBalance},
		{name: "not a number", act: protocol.ActBuy, fields: map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "many"}, expect: model.ReasonInvalidArgument},
		{name: "huge exponent", act: protocol.ActBuy, fields: map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "1e10000000"}, expect: model.ReasonInvalidArgument},
		{name: "dust amount", act: protocol.ActBuy, fields: map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "1e-10000000"}, expect: model.ReasonInvalidArgument},
		{name: "nothing to sell", act: protocol.ActSell, fields: map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "1"}, expect: model.ReasonInsufficientHoldings},
		{name: "price without asset", act: protocol.ActPrice, fields: map[string]string{protocol.FieldAsset: " "}, expect: model.ReasonInvalidArgument},
		{name: "price of unknown", act: protocol.ActPrice, fields: map[string]string{protocol.FieldAsset: "nope"}, expect: model.ReasonAssetNotFound},
		{name: "unknown act", act: "SHORT", fields: nil, expect: model.ReasonInvalidArgument},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			resp := exchange(t, stream, testCase.act, testCase.fields)
			assert.Equal(t, testCase.expect, protocol.String(resp, protocol.FieldError))
		})
	}

	// the session survives failed acts
	resp := exchange(t, stream, protocol.ActBalance, nil)
	assert.Equal(t, "10000", protocol.String(resp, protocol.FieldBalance))
}

func TestServer_PortfolioUnresolvedLine(t *testing.T) {
	o := &mapOracle{prices: map[string]string{"btc": "10", "eth": "5"}}
	stream := session(t, startServer(t, o), "1")

	exchange(t, stream, protocol.ActBuy, map[string]string{protocol.FieldAsset: "btc", protocol.FieldAmount: "1"})
	exchange(t, stream, protocol.ActBuy, map[string]string{protocol.FieldAsset: "eth", protocol.FieldAmount: "1"})
	o.mu.Lock()
	delete(o.prices, "eth")
	o.mu.Unlock()

	resp := exchange(t, stream, protocol.ActPortfolio, nil)
	lines := resp.GetFields()[protocol.FieldLines].GetListValue().GetValues()
	require.Len(t, lines, 2)
	eth := lines[1].GetStructValue()
	assert.Equal(t, model.ReasonAssetNotFound, protocol.String(eth, protocol.FieldError))
	_, ok := eth.GetFields()[protocol.FieldCurrentValue]
	assert.False(t, ok)
	assert.Equal(t, "5", protocol.String(eth, protocol.FieldInvested))
}

func TestServer_Init(t *testing.T) {
	client := startServer(t, &mapOracle{prices: map[string]string{}})

	testTable := []struct {
		name string
		msg  *structpb.Struct
	}{
		{name: "Failed if first act is not INIT", msg: protocol.NewMessage(protocol.ActBalance, nil)},
		{name: "Failed if user id is not a number", msg: protocol.NewMessage(protocol.ActInit, map[string]string{protocol.FieldUserID: "bob"})},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			stream, err := client.Session(context.Background())
			require.NoError(t, err)
			require.NoError(t, stream.Send(testCase.msg))
			_, err = stream.Recv()
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}
