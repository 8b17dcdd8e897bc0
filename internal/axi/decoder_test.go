package axi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcdwatch/vcdwatch/internal/axi"
	"github.com/vcdwatch/vcdwatch/internal/bitval"
	"github.com/vcdwatch/vcdwatch/internal/wave"
)

func aclock(n int) *wave.Cursor {
	samples := make([]wave.Sample, 0, n)
	ts := uint64(10)
	for i := 0; i < n; i++ {
		v := "0"
		if i%2 == 1 {
			v = "1"
		}
		samples = append(samples, wave.Sample{Timestamp: ts, Value: bitval.FromToken(v, 1)})
		ts += 10
	}
	return wave.NewCursor(samples, 1)
}

func scalarAt(t uint64, v string) *wave.Cursor {
	return wave.NewCursor([]wave.Sample{{Timestamp: t, Value: bitval.FromToken(v, 1)}}, 1)
}

func twoPulse(t1 uint64, t2 uint64) *wave.Cursor {
	return wave.NewCursor([]wave.Sample{
		{Timestamp: t1, Value: bitval.FromToken("0", 1)},
		{Timestamp: t2, Value: bitval.FromToken("1", 1)},
	}, 1)
}

// Single-beat write burst: awlen == 0.
func TestDecoder_SingleBeatWrite(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"aclock":  aclock(12),
		"awvalid": scalarAt(15, "1"),
		"awready": scalarAt(15, "1"),
		"awid":    wave.Unbound(4),
		"awaddr":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("b00010000", 8)}}, 8),
		"awlen":   wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 8)}}, 8),
		"awsize":  wave.Unbound(3),
		"awburst": wave.Unbound(2),
		"awprot":  wave.Unbound(3),
		"wvalid":  scalarAt(25, "1"),
		"wready":  scalarAt(25, "1"),
		"wdata":   wave.NewCursor([]wave.Sample{{Timestamp: 25, Value: bitval.FromToken("b11110000", 8)}}, 8),
		"wstrb":   wave.Unbound(1),
		"wlast":   scalarAt(25, "1"),
		"bvalid":  scalarAt(35, "1"),
		"bready":  scalarAt(35, "1"),
		"bid":     wave.Unbound(4),
		"bresp":   wave.NewCursor([]wave.Sample{{Timestamp: 35, Value: bitval.FromToken("0", 2)}}, 2),
	}
	d := axi.NewDecoder(cursors)
	txn, ok := d.NextWriteTransaction()
	require.True(t, ok)
	assert.Equal(t, axi.Write, txn.Kind)
	assert.Equal(t, "10", txn.Addr.ToHex())
	assert.Equal(t, "F0", txn.Data.ToHex())
	assert.Equal(t, txn.FirstBeatTimestamp, txn.LastBeatTimestamp)
}

// Two-beat read burst: arlen == 1, verifying first-beat-least-significant
// concatenation order.
func TestDecoder_TwoBeatReadBurstOrdering(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"aclock":  aclock(20),
		"arvalid": scalarAt(15, "1"),
		"arready": scalarAt(15, "1"),
		"arid":    wave.Unbound(4),
		"araddr":  wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("0", 8)}}, 8),
		"arlen":   wave.NewCursor([]wave.Sample{{Timestamp: 15, Value: bitval.FromToken("1", 8)}}, 8),
		"arsize":  wave.Unbound(3),
		"arburst": wave.Unbound(2),
		"arprot":  wave.Unbound(3),
		"rvalid":  twoPulse(20, 35),
		"rready":  twoPulse(20, 35),
		"rid":     wave.Unbound(4),
		"rresp":   wave.Unbound(2),
		"rdata": wave.NewCursor([]wave.Sample{
			{Timestamp: 35, Value: bitval.FromToken("b00000001", 8)},
			{Timestamp: 45, Value: bitval.FromToken("b00000010", 8)},
		}, 8),
		"rlast": twoPulse(20, 45),
	}
	d := axi.NewDecoder(cursors)
	txn, ok := d.NextReadTransaction()
	require.True(t, ok)
	assert.Equal(t, axi.Read, txn.Kind)
	assert.NotEqual(t, txn.FirstBeatTimestamp, txn.LastBeatTimestamp)
	assert.Equal(t, "0201", txn.Data.ToHex())
}

// Property 6 analogue: successive write transactions have non-decreasing
// address timestamps.
func TestDecoder_WriteMonotonicEmission(t *testing.T) {
	cursors := map[string]*wave.Cursor{
		"aclock":  aclock(40),
		"awvalid": twoPulse(15, 55),
		"awready": twoPulse(15, 55),
		"awid":    wave.Unbound(4),
		"awaddr":  wave.Unbound(8),
		"awlen":   wave.Unbound(8),
		"awsize":  wave.Unbound(3),
		"awburst": wave.Unbound(2),
		"awprot":  wave.Unbound(3),
		"wvalid":  twoPulse(25, 65),
		"wready":  twoPulse(25, 65),
		"wdata":   wave.Unbound(8),
		"wstrb":   wave.Unbound(1),
		"wlast":   twoPulse(25, 65),
		"bvalid":  twoPulse(35, 75),
		"bready":  twoPulse(35, 75),
		"bid":     wave.Unbound(4),
		"bresp":   wave.Unbound(2),
	}
	d := axi.NewDecoder(cursors)
	last := uint64(0)
	for txn := range d.WriteTransactions() {
		assert.GreaterOrEqual(t, txn.AddressTimestamp, last)
		last = txn.AddressTimestamp
	}
}
