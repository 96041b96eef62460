package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(LoadRunsTotal.WithLabelValues("ok"))
	pagesBefore := testutil.ToFloat64(PagesFetchedTotal)
	dupBefore := testutil.ToFloat64(RecordsTotal.WithLabelValues("duplicate"))

	RecordLoad("ok", 2, 5, 3, 0.4, 1698700000)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(LoadRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, pagesBefore+2, testutil.ToFloat64(PagesFetchedTotal))
	assert.Equal(t, dupBefore+2, testutil.ToFloat64(RecordsTotal.WithLabelValues("duplicate")))
	assert.Equal(t, float64(1698700000), testutil.ToFloat64(LastSuccessfulLoad))

	RecordLoad("failed", 1, 0, 0, 0.1, 1698800000)
	assert.Equal(t, float64(1698700000), testutil.ToFloat64(LastSuccessfulLoad), "failed runs keep the last success")
}

func TestRecordReportBuildAndError(t *testing.T) {
	before := testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("cache"))
	RecordReportBuild("cache")
	assert.Equal(t, before+1, testutil.ToFloat64(ReportBuildsTotal.WithLabelValues("cache")))

	errBefore := testutil.ToFloat64(ErrorsTotal.WithLabelValues("load"))
	RecordError("load")
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ErrorsTotal.WithLabelValues("load")))
}
