package main

import (
	"github.com/chucky-1/papertrade/protocol"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"context"
	"flag"
	"fmt"
	"time"
)

var (
	addr     = flag.String("addr", "localhost:10000", "Address of the papertrade server")
	userID   = flag.String("user", "", "Your user id")
	currency = flag.String("currency", "USD", "Currency used to display money")
	timeout  = flag.Duration("timeout", 10*time.Second, "Time limit of one command")
)

// exchange opens a session for the user, performs one act and returns the reply
func exchange(ctx context.Context, act string, fields map[string]string) (*structpb.Struct, error) {
	if *userID == "" {
		return nil, fmt.Errorf("-user is required")
	}
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, *addr, grpc.WithInsecure(), grpc.WithBlock())
	if err != nil {
		return nil, fmt.Errorf("fail to dial: %w", err)
	}
	defer conn.Close()

	stream, err := protocol.NewLedgerClient(conn).Session(ctx)
	if err != nil {
		return nil, err
	}
	err = stream.Send(protocol.NewMessage(protocol.ActInit, map[string]string{protocol.FieldUserID: *userID}))
	if err != nil {
		return nil, err
	}
	if _, err = stream.Recv(); err != nil {
		return nil, err
	}
	if err = stream.Send(protocol.NewMessage(act, fields)); err != nil {
		return nil, err
	}
	resp, err := stream.Recv()
	if err != nil {
		return nil, err
	}
	return resp, stream.CloseSend()
}
