package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	success := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	failure := testutil.ToFloat64(RunsTotal.WithLabelValues("failure"))

	RecordRun(nil, 1.5, 1700000000)
	RecordRun(errors.New("boom"), 0.5, 1700000100)

	assert.Equal(t, success+1, testutil.ToFloat64(RunsTotal.WithLabelValues("success")))
	assert.Equal(t, failure+1, testutil.ToFloat64(RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(LastSuccess))
}

func TestRecordCounters(t *testing.T) {
	accepted := testutil.ToFloat64(ArticlesTotal.WithLabelValues(OutcomeAccepted))
	dups := testutil.ToFloat64(DuplicateAnnouncementsTotal)
	purged := testutil.ToFloat64(PurgedTotal)

	RecordArticle(OutcomeAccepted)
	RecordDuplicate()
	RecordPurge(3)
	RecordSourceFailure("Sifted")
	RecordDigest("sent")

	assert.Equal(t, accepted+1, testutil.ToFloat64(ArticlesTotal.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, dups+1, testutil.ToFloat64(DuplicateAnnouncementsTotal))
	assert.Equal(t, purged+3, testutil.ToFloat64(PurgedTotal))
	assert.GreaterOrEqual(t, testutil.ToFloat64(SourceFailuresTotal.WithLabelValues("Sifted")), float64(1))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordDigest("skipped")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "fundingscanner_digests_total"))
}
