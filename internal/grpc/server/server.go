// Package server implements the server side of grpc
package server

import (
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/chucky-1/papertrade/internal/request"
	"github.com/chucky-1/papertrade/protocol"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"context"
	"errors"
	"io"
)

// Ledger is what a session needs from the ledger engine
type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Buy(ctx context.Context, r *request.Trade) (*model.BuyResult, error)
	Sell(ctx context.Context, r *request.Trade) (*model.SellResult, error)
	Portfolio(ctx context.Context, userID int64) ([]*model.PortfolioLine, error)
	Price(ctx context.Context, asset string) (*model.Quote, error)
}

// Server contains methods of application on service side of grpc
type Server struct {
	srv Ledger
}

// NewServer is constructor
func NewServer(srv Ledger) *Server {
	return &Server{srv: srv}
}

// Session listens commands from client and does work
func (s *Server) Session(stream protocol.Ledger_SessionServer) error {
	recv, err := stream.Recv()
	if err != nil {
		log.Error(err)
		return status.Error(codes.InvalidArgument, "initialization error")
	}
	if protocol.String(recv, protocol.FieldAct) != protocol.ActInit {
		return status.Error(codes.InvalidArgument, "initialization error: first act must be INIT")
	}
	userID, err := request.ParseUserID(protocol.String(recv, protocol.FieldUserID))
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	err = stream.Send(protocol.NewMessage(protocol.ActInit, map[string]string{
		protocol.FieldMessage: "You have successfully logged into the system",
	}))
	if err != nil {
		log.Error(err)
		return err
	}

	for {
		recv, err = stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if status.Code(err) != codes.Canceled {
				log.Error(err)
			}
			return err
		}
		err = stream.Send(s.handle(stream.Context(), userID, recv))
		if err != nil {
			log.Error(err)
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, userID int64, recv *structpb.Struct) *structpb.Struct {
	act := protocol.String(recv, protocol.FieldAct)
	switch act {
	case protocol.ActBalance:
		balance, err := s.srv.GetBalance(ctx, userID)
		if err != nil {
			return failure(act, err)
		}
		return protocol.NewMessage(act, map[string]string{protocol.FieldBalance: balance.String()})

	case protocol.ActBuy:
		r, err := request.NewTrade(userID, protocol.String(recv, protocol.FieldAsset), protocol.String(recv, protocol.FieldAmount))
		if err != nil {
			return failure(act, err)
		}
		result, err := s.srv.Buy(ctx, r)
		if err != nil {
			return failure(act, err)
		}
		return protocol.NewMessage(act, map[string]string{
			protocol.FieldAsset:     result.Asset,
			protocol.FieldAmount:    result.Amount.String(),
			protocol.FieldUnitPrice: result.UnitPrice.String(),
			protocol.FieldCost:      result.Cost.String(),
		})

	case protocol.ActSell:
		r, err := request.NewTrade(userID, protocol.String(recv, protocol.FieldAsset), protocol.String(recv, protocol.FieldAmount))
		if err != nil {
			return failure(act, err)
		}
		result, err := s.srv.Sell(ctx, r)
		if err != nil {
			return failure(act, err)
		}
		return protocol.NewMessage(act, map[string]string{
			protocol.FieldAsset:     result.Asset,
			protocol.FieldAmount:    result.Amount.String(),
			protocol.FieldUnitPrice: result.UnitPrice.String(),
			protocol.FieldRevenue:   result.Revenue.String(),
		})

	case protocol.ActPortfolio:
		lines, err := s.srv.Portfolio(ctx, userID)
		if err != nil {
			return failure(act, err)
		}
		return portfolio(lines)

	case protocol.ActPrice:
		quote, err := s.srv.Price(ctx, protocol.String(recv, protocol.FieldAsset))
		if err != nil {
			return failure(act, err)
		}
		return protocol.NewMessage(act, map[string]string{
			protocol.FieldAsset: quote.Asset,
			protocol.FieldPrice: quote.Price.String(),
		})
	}
	return protocol.NewMessage(act, map[string]string{protocol.FieldError: model.ReasonInvalidArgument})
}

func failure(act string, err error) *structpb.Struct {
	reason := model.Reason(err)
	if reason == model.ReasonStoreFailure {
		log.Errorf("%s failed: %v", act, err)
	}
	return protocol.NewMessage(act, map[string]string{protocol.FieldError: reason})
}

func portfolio(lines []*model.PortfolioLine) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(lines))
	for _, line := range lines {
		fields := map[string]*structpb.Value{
			protocol.FieldAsset:    structpb.NewStringValue(line.Asset),
			protocol.FieldAmount:   structpb.NewStringValue(line.Amount.String()),
			protocol.FieldBuyPrice: structpb.NewStringValue(line.BuyPrice.String()),
			protocol.FieldInvested: structpb.NewStringValue(line.Invested.String()),
		}
		if line.Err != nil {
			fields[protocol.FieldError] = structpb.NewStringValue(model.Reason(line.Err))
		} else {
			fields[protocol.FieldCurrentValue] = structpb.NewStringValue(line.CurrentValue.String())
			fields[protocol.FieldProfitLoss] = structpb.NewStringValue(line.ProfitLoss.String())
		}
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: fields}))
	}
	m := protocol.NewMessage(protocol.ActPortfolio, nil)
	m.Fields[protocol.FieldLines] = structpb.NewListValue(&structpb.ListValue{Values: values})
	return m
}
