package gripd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GripSim-25-26J-441/control-core/internal/vision"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *RunStore) {
	t.Helper()
	store := NewRunStore()
	exec := NewRunExecutor(store, config.DefaultTable())
	srv := httptest.NewServer(NewHTTPServer(store, exec, vision.NewColorHeuristic()).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestHandleHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected ok status, got %q", body["status"])
	}
}

func TestHandleTissues(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/v1/tissues")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Tissues []config.TissueProfile `json:"tissues"`
	}
	decodeBody(t, resp, &body)
	if len(body.Tissues) != 4 {
		t.Fatalf("expected 4 tissue profiles, got %d", len(body.Tissues))
	}
}

func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestHandleClassify(t *testing.T) {
	srv, _ := newTestServer(t)

	// Dark saturated red reads as liver
	scan := solidPNG(t, color.NRGBA{R: 90, G: 30, B: 30, A: 255})
	resp, err := http.Post(srv.URL+"/v1/classify", "image/png", bytes.NewReader(scan))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Detected string               `json:"detected"`
		Profile  config.TissueProfile `json:"profile"`
	}
	decodeBody(t, resp, &body)
	if body.Detected != "Liver" {
		t.Fatalf("expected Liver, got %q", body.Detected)
	}
	if body.Profile.Name != "Liver" {
		t.Fatalf("expected Liver profile, got %q", body.Profile.Name)
	}
}

func TestHandleClassifyUndecodableDegradesToUnknown(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/classify", "application/octet-stream",
		strings.NewReader("not an image"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Detected string `json:"detected"`
	}
	decodeBody(t, resp, &body)
	if body.Detected != config.UnknownTissue {
		t.Fatalf("expected Unknown, got %q", body.Detected)
	}
}

func TestHandleCreateRun(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/runs", map[string]any{
		"run_id": "run-1",
		"input":  RunInput{Detected: "Liver", TargetN: 3.0},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var body struct {
		Run RunRecord `json:"run"`
	}
	decodeBody(t, resp, &body)
	if body.Run.ID != "run-1" {
		t.Fatalf("expected run-1, got %s", body.Run.ID)
	}
	if body.Run.Status != models.RunStatusPending {
		t.Fatalf("expected pending, got %s", body.Run.Status)
	}

	// Duplicate IDs conflict
	resp = postJSON(t, srv.URL+"/v1/runs", map[string]any{
		"run_id": "run-1",
		"input":  RunInput{},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}
}

func TestHandleCreateRunRejectsMissingInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/runs", map[string]any{"run_id": "run-1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleListRuns(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-a", &RunInput{})
	store.Create("run-b", &RunInput{})

	resp := get(t, srv.URL+"/v1/runs?limit=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Runs []RunRecord `json:"runs"`
	}
	decodeBody(t, resp, &body)
	if len(body.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(body.Runs))
	}
}

func TestRunLifecycleOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/runs", map[string]any{
		"run_id": "run-1",
		"input":  RunInput{Detected: "Intestine", TargetN: 1.5},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/v1/runs/run-1:start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	final := waitTerminal(t, store, "run-1")
	if final.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", final.Status, final.Error)
	}

	// GET /v1/runs/{id}
	resp = get(t, srv.URL+"/v1/runs/run-1")
	var runBody struct {
		Run RunRecord `json:"run"`
	}
	decodeBody(t, resp, &runBody)
	if runBody.Run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed over HTTP, got %s", runBody.Run.Status)
	}

	// GET /v1/runs/{id}/result
	resp = get(t, srv.URL+"/v1/runs/run-1/result")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on result, got %d", resp.StatusCode)
	}
	var resultBody struct {
		Result RunResult `json:"result"`
	}
	decodeBody(t, resp, &resultBody)
	if resultBody.Result.Tissue != "Intestine" {
		t.Fatalf("expected Intestine, got %s", resultBody.Result.Tissue)
	}

	// GET /v1/runs/{id}/series
	resp = get(t, srv.URL+"/v1/runs/run-1/series")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on series, got %d", resp.StatusCode)
	}
	var seriesBody struct {
		TargetN        float64 `json:"target_n"`
		BreakingPointN float64 `json:"breaking_point_n"`
		WarnLevelN     float64 `json:"warn_level_n"`
		Samples        []struct {
			TimeS  float64 `json:"time_s"`
			ForceN float64 `json:"force_n"`
			Band   string  `json:"band"`
		} `json:"samples"`
	}
	decodeBody(t, resp, &seriesBody)
	if seriesBody.BreakingPointN != 2.0 {
		t.Fatalf("expected Intestine breaking point 2.0, got %g", seriesBody.BreakingPointN)
	}
	if seriesBody.WarnLevelN != 1.2 {
		t.Fatalf("expected default warn level 1.2, got %g", seriesBody.WarnLevelN)
	}
	if len(seriesBody.Samples) == 0 {
		t.Fatalf("expected samples")
	}
	if seriesBody.Samples[0].Band == "" {
		t.Fatalf("expected a band on each sample")
	}

	// GET /v1/runs/{id}/log
	resp = get(t, srv.URL+"/v1/runs/run-1/log")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on log, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected plain text log, got %q", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	resp.Body.Close()
	if !strings.Contains(buf.String(), "Profile in effect: Intestine") {
		t.Fatalf("expected decision log content, got:\n%s", buf.String())
	}
}

func TestRunSeriesCustomWarnFraction(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-1", &RunInput{Detected: "Intestine", TargetN: 1.5})

	resp := postJSON(t, srv.URL+"/v1/runs/run-1:start", nil)
	resp.Body.Close()
	waitTerminal(t, store, "run-1")

	resp = get(t, srv.URL+"/v1/runs/run-1/series?warn_fraction=0.5")
	var body struct {
		WarnLevelN float64 `json:"warn_level_n"`
	}
	decodeBody(t, resp, &body)
	if body.WarnLevelN != 1.0 {
		t.Fatalf("expected warn level 1.0 at fraction 0.5, got %g", body.WarnLevelN)
	}

	resp = get(t, srv.URL+"/v1/runs/run-1/series?warn_fraction=bogus")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad warn_fraction, got %d", resp.StatusCode)
	}
}

func TestRunEndpointErrors(t *testing.T) {
	srv, store := newTestServer(t)

	resp := get(t, srv.URL+"/v1/runs/missing")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/v1/runs/missing:start", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on start of missing run, got %d", resp.StatusCode)
	}

	// Result before execution conflicts
	store.Create("run-1", &RunInput{Detected: "Liver", TargetN: 3.0})
	resp = get(t, srv.URL+"/v1/runs/run-1/result")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for pending result, got %d", resp.StatusCode)
	}

	// Wrong methods
	resp = get(t, srv.URL+"/v1/runs/run-1:start")
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on :start, got %d", resp.StatusCode)
	}
	resp = postJSON(t, srv.URL+"/v1/runs/run-1/series", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST on series, got %d", resp.StatusCode)
	}
}

func TestStopRunOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-1", &RunInput{Detected: "Liver", TargetN: 3.0})

	resp := postJSON(t, srv.URL+"/v1/runs/run-1:stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d", resp.StatusCode)
	}
	var body struct {
		Run RunRecord `json:"run"`
	}
	decodeBody(t, resp, &body)
	if body.Run.Status != models.RunStatusCancelled {
		t.Fatalf("expected cancelled, got %s", body.Run.Status)
	}
}
