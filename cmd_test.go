package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soocke/login-bot-go/metrics"
)

func TestParseRegions(t *testing.T) {
	got, err := parseRegions([]string{"10,20,30,40", " 1, 2, 3, 4"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0].Name != "region-1" || got[1].Name != "region-2" {
		t.Fatalf("unexpected regions: %+v", got)
	}
	if got[0].Left != 10 || got[0].Bottom != 40 || got[1].Right != 3 {
		t.Fatalf("unexpected bounds: %+v", got)
	}
	if _, err := parseRegions([]string{"1,2,3"}); err == nil {
		t.Fatalf("expected error for three values")
	}
}

func TestMetricsHandler(t *testing.T) {
	rec := metrics.New()
	rec.OCRResult("sms", "hit")

	srv := httptest.NewServer(metricsHandler(rec))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body strings.Builder
	if _, err := io.Copy(&body, resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(body.String(), `autologin_ocr_results_total{region="sms",result="hit"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", body.String())
	}
}
