package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hive-corporation/creditrisk/internal/adapter/exporter"
	"github.com/hive-corporation/creditrisk/internal/adapter/handler"
	"github.com/hive-corporation/creditrisk/internal/adapter/source"
	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string     { return strings.Join(*a, ",") }
func (a *assignments) Set(v string) error { *a = append(*a, v); return nil }

func main() {
	var sets assignments
	applicantFile := flag.String("file", "", "Applicant file with one Field=value per line")
	flag.Var(&sets, "set", "Override one attribute, as Field=value (repeatable)")
	serverAddr := flag.String("server", "localhost:50051", "Address of the credit risk gRPC API")
	local := flag.Bool("local", false, "Score in-process instead of calling the server")
	explain := flag.Bool("explain", false, "Show per-attribute contributions")
	failOnReject := flag.Bool("fail-on-reject", false, "Exit with status 1 when the recommendation is Reject")
	flag.Parse()

	raw := map[string]int{}
	if *applicantFile != "" {
		fromFile, err := source.ReadAttributeFile(*applicantFile)
		if err != nil {
			log.Fatalf("❌ error reading applicant: %v", err)
		}
		for k, v := range fromFile {
			raw[k] = v
		}
	}
	overrides, err := source.ParseAssignments(sets)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	for k, v := range overrides {
		raw[k] = v
	}

	var ev domain.Evaluation
	if *local {
		fmt.Println("🔍 scoring applicant locally...")
		ev, err = domain.Evaluate(raw)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	} else {
		fmt.Printf("🔍 scoring applicant against %s...\n", *serverAddr)
		ev, err = scoreRemote(*serverAddr, raw, *explain)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	fmt.Println()

	if err := exporter.NewReportExporter(*explain).Export(os.Stdout, ev); err != nil {
		log.Fatalf("❌ error writing report: %v", err)
	}

	if *failOnReject && ev.Decision.Recommendation == domain.Reject {
		os.Exit(1)
	}
}

func scoreRemote(addr string, raw map[string]int, explain bool) (domain.Evaluation, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("error connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := handler.NewScoreRequest(raw, explain)
	if err != nil {
		return domain.Evaluation{}, err
	}

	out, err := handler.NewScoringServiceClient(conn).Score(ctx, req)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("score request failed: %w", err)
	}

	resp, err := handler.DecodeScoreResponse(out)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return resp.Evaluation(), nil
}
