package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(ReservationsTotal.WithLabelValues("accepted"))
	RecordReservation("accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(ReservationsTotal.WithLabelValues("accepted")))

	demo := testutil.ToFloat64(InventoryLoadsTotal.WithLabelValues("demo"))
	RecordInventoryLoad("demo", 20*time.Millisecond)
	assert.Equal(t, demo+1, testutil.ToFloat64(InventoryLoadsTotal.WithLabelValues("demo")))

	handoffs := testutil.ToFloat64(HandOffsTotal.WithLabelValues("published"))
	RecordHandOff("published")
	assert.Equal(t, handoffs+1, testutil.ToFloat64(HandOffsTotal.WithLabelValues("published")))
}
