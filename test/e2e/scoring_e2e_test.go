package e2e

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hive-corporation/creditrisk/internal/adapter/exporter"
	"github.com/hive-corporation/creditrisk/internal/adapter/handler"
	"github.com/hive-corporation/creditrisk/internal/adapter/httpclient"
	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/adapter/notifier"
	"github.com/hive-corporation/creditrisk/internal/adapter/source"
	"github.com/hive-corporation/creditrisk/internal/batch"
	"github.com/hive-corporation/creditrisk/internal/config"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

var applicant = map[string]int{
	"ExternalRiskEstimate":   74,
	"MSinceOldestTradeOpen":  200,
	"NumInqLast6M":           4,
	"PercentTradesNeverDelq": 95,
	"NumTotalTrades":         250, // clamped to 110
}

func TestREST_And_GRPC_Agree(t *testing.T) {
	// REST
	api := httptest.NewServer(handler.NewRouter(handler.NewRestHandler("e2e"), ""))
	defer api.Close()

	body, err := json.Marshal(handler.ScoreRequest{Attributes: applicant, Explain: true})
	require.NoError(t, err)

	resp, err := http.Post(api.URL+"/api/v1/score", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var viaREST handler.ScoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&viaREST))

	// gRPC
	lis := bufconn.Listen(1 << 20)
	srv := handler.NewServer(handler.NewGrpcServer(), "e2e", false)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	req, err := handler.NewScoreRequest(applicant, true)
	require.NoError(t, err)
	out, err := handler.NewScoringServiceClient(conn).Score(context.Background(), req)
	require.NoError(t, err)
	viaGRPC, err := handler.DecodeScoreResponse(out)
	require.NoError(t, err)

	assert.NotEqual(t, viaREST.RequestID, viaGRPC.RequestID)
	viaGRPC.RequestID = viaREST.RequestID
	assert.Equal(t, viaREST, viaGRPC)
	assert.Equal(t, 110, viaREST.Attributes["NumTotalTrades"])

	// Both render to the same report
	var a, b bytes.Buffer
	require.NoError(t, exporter.NewReportExporter(false).Export(&a, viaREST.Evaluation()))
	require.NoError(t, exporter.NewReportExporter(false).Export(&b, viaGRPC.Evaluation()))
	assert.Equal(t, a.String(), b.String())
}

func TestBatch_CSVToResultsAndSlack(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "heloc.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"RiskPerformance,ExternalRiskEstimate,MSinceOldestTradeOpen,AverageMInFile,NumTotalTrades,PercentTradesNeverDelq\n"+
			"Bad,55,144,84,23,83\n"+
			"Good,90,300,120,30,100\n"+
			"Bad,-9,-9,-9,-9,-9\n",
	), 0o600))

	var posted notifier.SlackMessage
	slack := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&posted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer slack.Close()

	n := notifier.NewSlackNotifier(
		config.SlackConfig{BotToken: "xoxb-e2e", Channel: "#risk", APIURL: slack.URL},
		httpclient.NewResilientClient("slack", config.ResilienceConfig{MaxRetries: 0, RequestTimeout: time.Second}),
	)

	var results bytes.Buffer
	runner := batch.NewRunner(source.NewCSVSource(in), exporter.NewCSVExporter(&results), n, slog.New(slog.NewTextHandler(io.Discard, nil)))

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scored)
	assert.Equal(t, 3, summary.Labelled)
	assert.Equal(t, summary.Accepted+summary.Rejected, summary.Scored)

	rows, err := csv.NewReader(&results).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exporter.Header(), rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, []string{rows[1][0], rows[2][0], rows[3][0]})
	assert.Equal(t, "ExternalRiskEstimate;MSinceOldestTradeOpen;AverageMinFile;NumTotalTrades;PercentTradesNeverDelq", rows[3][10])

	assert.Equal(t, "#risk", posted.Channel)
	assert.Contains(t, posted.Text, "csv:heloc.csv scored 3 applicants")
}
