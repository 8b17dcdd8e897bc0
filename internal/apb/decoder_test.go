package apb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcdwatch/vcdwatch/internal/apb"
	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

func clock4() *wave.Cursor {
	return wave.NewCursor([]wave.Sample{
		{Timestamp: 10, Value: bitval.FromToken("0", 1)},
		{Timestamp: 20, Value: bitval.FromToken("1", 1)},
		{Timestamp: 30, Value: bitval.FromToken("0", 1)},
		{Timestamp: 40, Value: bitval.FromToken("1", 1)},
	}, 1)
}

func scalarAt(t uint64, v string) *wave.Cursor {
	return wave.NewCursor([]wave.Sample{{Timestamp: t, Value: bitval.FromToken(v, 1)}}, 1)
}

// Concrete scenario: APB write.
func TestDecoder_Write(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"pclock":  clock4(),
		"psel":    scalarAt(15, "1"),
		"penable": wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 25, Value: bitval.FromToken("1", 1)}}, 1),
		"pready":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 35, Value: bitval.FromToken("1", 1)}}, 1),
		"paddr":   wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("b00001111", 8)}}, 8),
		"pprot":   wave.Unbound(3),
		"pnse":    wave.Unbound(1),
		"pwrite":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("1", 1)}}, 1),
		"pstrb":   wave.Unbound(4),
		"pwdata":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("b10101010", 8)}}, 8),
		"prdata":  wave.Unbound(8),
		"pslverr": wave.Unbound(1),
	}
	d := apb.NewDecoder(cursors, nil)
	txn, ok := d.NextTransaction()
	require.True(t, ok)
	assert.Equal(t, apb.Write, txn.Kind)
	assert.EqualValues(t, 30, txn.RequestTimestamp)
	assert.EqualValues(t, 40, txn.ResponseTimestamp)
	assert.Equal(t, "0F", txn.Addr.ToHex())
	assert.Equal(t, "AA", txn.WriteData.ToHex())
}

// Concrete scenario: X on pwrite yields Error.
func TestDecoder_XOnPwriteYieldsError(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"pclock":  clock4(),
		"psel":    scalarAt(15, "1"),
		"penable": wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 25, Value: bitval.FromToken("1", 1)}}, 1),
		"pready":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 35, Value: bitval.FromToken("1", 1)}}, 1),
		"paddr":   wave.Unbound(8),
		"pprot":   wave.Unbound(3),
		"pnse":    wave.Unbound(1),
		"pwrite":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("x", 1)}}, 1),
		"pstrb":   wave.Unbound(4),
		"pwdata":  wave.Unbound(8),
		"prdata":  wave.Unbound(8),
		"pslverr": wave.Unbound(1),
	}
	d := apb.NewDecoder(cursors, nil)
	txn, ok := d.NextTransaction()
	require.True(t, ok)
	assert.Equal(t, apb.Error, txn.Kind)
	assert.EqualValues(t, 30, txn.RequestTimestamp)
	assert.EqualValues(t, 40, txn.ResponseTimestamp)
}

// Concrete scenario: end of sequence after a single yield.
func TestDecoder_EndOfSequenceAfterOneTransaction(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"pclock":  clock4(),
		"psel":    scalarAt(15, "1"),
		"penable": wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 25, Value: bitval.FromToken("1", 1)}}, 1),
		"pready":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}, {Timestamp: 35, Value: bitval.FromToken("1", 1)}}, 1),
		"paddr":   wave.Unbound(8),
		"pprot":   wave.Unbound(3),
		"pnse":    wave.Unbound(1),
		"pwrite":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 1)}}, 1),
		"pstrb":   wave.Unbound(4),
		"pwdata":  wave.Unbound(8),
		"prdata":  wave.Unbound(8),
		"pslverr": wave.Unbound(1),
	}
	d := apb.NewDecoder(cursors, nil)
	count := 0
	for range d.Transactions() {
		count++
	}
	assert.Equal(t, 1, count)
}

// Property 6: successive emitted transactions have non-decreasing
// request timestamps.
func TestDecoder_MonotonicEmission(t *testing.T) {
	penable := wave.NewCursor([]wave.Sample{
		{Timestamp: 15, Value: bitval.FromToken("0", 1)},
		{Timestamp: 25, Value: bitval.FromToken("1", 1)},
		{Timestamp: 55, Value: bitval.FromToken("0", 1)},
		{Timestamp: 65, Value: bitval.FromToken("1", 1)},
	}, 1)
	clk := wave.NewCursor([]wave.Sample{
		{Timestamp: 10, Value: bitval.FromToken("0", 1)},
		{Timestamp: 20, Value: bitval.FromToken("1", 1)},
		{Timestamp: 30, Value: bitval.FromToken("0", 1)},
		{Timestamp: 40, Value: bitval.FromToken("1", 1)},
		{Timestamp: 50, Value: bitval.FromToken("0", 1)},
		{Timestamp: 60, Value: bitval.FromToken("1", 1)},
		{Timestamp: 70, Value: bitval.FromToken("0", 1)},
		{Timestamp: 80, Value: bitval.FromToken("1", 1)},
	}, 1)
	pready := wave.NewCursor([]wave.Sample{
		{Timestamp: 15, Value: bitval.FromToken("0", 1)},
		{Timestamp: 35, Value: bitval.FromToken("1", 1)},
		{Timestamp: 55, Value: bitval.FromToken("0", 1)},
		{Timestamp: 75, Value: bitval.FromToken("1", 1)},
	}, 1)
	pwrite := wave.NewCursor([]wave.Sample{
		{Timestamp: 15, Value: bitval.FromToken("0", 1)},
		{Timestamp: 55, Value: bitval.FromToken("1", 1)},
	}, 1)

	d := apb.NewDecoder(map[string]*wave.Cursor{
		"pclock": clk, "penable": penable, "pready": pready, "pwrite": pwrite,
		"paddr": wave.Unbound(8), "pprot": wave.Unbound(3), "pnse": wave.Unbound(1),
		"pstrb": wave.Unbound(4), "pwdata": wave.Unbound(8), "prdata": wave.Unbound(8),
		"pslverr": wave.Unbound(1),
	}, nil)

	last := uint64(0)
	for txn := range d.Transactions() {
		assert.GreaterOrEqual(t, txn.RequestTimestamp, last)
		last = txn.RequestTimestamp
	}
}
