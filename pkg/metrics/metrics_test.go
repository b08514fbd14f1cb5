package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestObserveReservation(t *testing.T) {
	before := counterValue(t, StockReservationsTotal.WithLabelValues(ResultInsufficient))

	ObserveReservation(ResultInsufficient)
	ObserveReservation(ResultInsufficient)

	after := counterValue(t, StockReservationsTotal.WithLabelValues(ResultInsufficient))
	assert.Equal(t, before+2, after)
}

func TestCounterVec_LabelsAreIndependent(t *testing.T) {
	get := HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/orders", "200")
	post := HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "201")
	g0, p0 := counterValue(t, get), counterValue(t, post)

	get.Inc()
	get.Inc()
	post.Inc()

	assert.Equal(t, g0+2, counterValue(t, get))
	assert.Equal(t, p0+1, counterValue(t, post))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	OrdersPlacedTotal.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders_placed_total")
	assert.Contains(t, rec.Body.String(), "stock_reservations_total")
}
