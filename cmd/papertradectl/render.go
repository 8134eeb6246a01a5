package main

import (
	"github.com/Rhymond/go-money"
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/chucky-1/papertrade/protocol"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"fmt"
	"math"
	"strings"
)

var messages = map[string]string{
	model.ReasonAssetNotFound:        "Coin not found.",
	model.ReasonInsufficientBalance:  "Not enough balance.",
	model.ReasonInsufficientHoldings: "You don't own enough of this coin.",
	model.ReasonInvalidArgument:      "Amount must be a positive number.",
	model.ReasonPriceUnavailable:     "Prices are unavailable right now, try again later.",
	model.ReasonStoreFailure:         "Something went wrong, nothing was changed.",
}

// message turns a reason code into a sentence
func message(reason string) string {
	if m, ok := messages[reason]; ok {
		return m
	}
	return "Unexpected error: " + reason
}

// go-money counts minor units in int64 and negates negative amounts
var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(-math.MaxInt64)
)

// formatMoney rounds a decimal string to the currency's minor unit and formats it
func formatMoney(value, code string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	cur := money.New(0, code).Currency()
	minor := d.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	if !minor.IsInteger() || minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return d.StringFixed(int32(cur.Fraction)) + " " + strings.ToUpper(code)
	}
	return money.New(minor.IntPart(), code).Display()
}

// unitPrice keeps every digit; coin prices can be far below the minor unit
func unitPrice(value, code string) string {
	return value + " " + strings.ToUpper(code)
}

func renderBalance(resp *structpb.Struct, code string) string {
	if reason := protocol.String(resp, protocol.FieldError); reason != "" {
		return message(reason)
	}
	return "Your balance: " + formatMoney(protocol.String(resp, protocol.FieldBalance), code)
}

func renderBuy(resp *structpb.Struct, code string) string {
	if reason := protocol.String(resp, protocol.FieldError); reason != "" {
		return message(reason)
	}
	return fmt.Sprintf("Bought %s %s at %s each.",
		protocol.String(resp, protocol.FieldAmount),
		strings.ToUpper(protocol.String(resp, protocol.FieldAsset)),
		unitPrice(protocol.String(resp, protocol.FieldUnitPrice), code))
}

func renderSell(resp *structpb.Struct, code string) string {
	if reason := protocol.String(resp, protocol.FieldError); reason != "" {
		return message(reason)
	}
	return fmt.Sprintf("Sold %s %s at %s each. Revenue: %s",
		protocol.String(resp, protocol.FieldAmount),
		strings.ToUpper(protocol.String(resp, protocol.FieldAsset)),
		unitPrice(protocol.String(resp, protocol.FieldUnitPrice), code),
		formatMoney(protocol.String(resp, protocol.FieldRevenue), code))
}

func renderPrice(resp *structpb.Struct, code string) string {
	if reason := protocol.String(resp, protocol.FieldError); reason != "" {
		return message(reason)
	}
	return fmt.Sprintf("%s price: %s",
		strings.ToUpper(protocol.String(resp, protocol.FieldAsset)),
		unitPrice(protocol.String(resp, protocol.FieldPrice), code))
}

func renderPortfolio(resp *structpb.Struct, code string) string {
	if reason := protocol.String(resp, protocol.FieldError); reason != "" {
		return message(reason)
	}
	lines := resp.GetFields()[protocol.FieldLines].GetListValue().GetValues()
	if len(lines) == 0 {
		return "Your portfolio is empty."
	}

	var b strings.Builder
	b.WriteString("Your Portfolio:\n")
	for _, v := range lines {
		line := v.GetStructValue()
		asset := strings.ToUpper(protocol.String(line, protocol.FieldAsset))
		amount := protocol.String(line, protocol.FieldAmount)
		if reason := protocol.String(line, protocol.FieldError); reason != "" {
			fmt.Fprintf(&b, "%s: %s | Current: n/a | P/L: n/a (%s)\n", asset, amount, message(reason))
			continue
		}
		fmt.Fprintf(&b, "%s: %s | Current: %s | P/L: %s\n", asset, amount,
			formatMoney(protocol.String(line, protocol.FieldCurrentValue), code),
			formatMoney(protocol.String(line, protocol.FieldProfitLoss), code))
	}
	return strings.TrimRight(b.String(), "\n")
}
