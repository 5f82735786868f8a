package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
	"sahamwatch/internal/store"
)

type fakeGateway struct {
	quotes  map[string]float64
	faults  map[string]bool
	calls   int
	onFetch func()
}

func (g *fakeGateway) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	g.calls++
	if g.onFetch != nil {
		g.onFetch()
	}
	if g.faults[symbol] {
		return nil, errors.NewGatewayError("quote", symbol, fmt.Errorf("connection refused"))
	}
	price, ok := g.quotes[symbol]
	if !ok {
		return nil, errors.ErrQuoteNotFound
	}
	return &models.Quote{Symbol: symbol, LastPrice: price}, nil
}

type sentMessage struct {
	userID string
	text   string
}

type fakeNotifier struct {
	sent    []sentMessage
	failFor map[string]bool
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, text string) error {
	if n.failFor[userID] {
		return errors.NewGatewayError("notify", "", fmt.Errorf("chat not found"))
	}
	n.sent = append(n.sent, sentMessage{userID: userID, text: text})
	return nil
}

func newTestEngine(t *testing.T, gw *fakeGateway, n *fakeNotifier) (*Engine, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "bot_data.json"), zerolog.Nop())
	eng := New(fs, gw, n, nil, zerolog.Nop(), DefaultOptions())
	return eng, fs
}

func setAlerts(t *testing.T, fs *store.FileStore, alerts map[string][]models.Alert) {
	t.Helper()
	err := fs.Update(func(doc *models.Document) (bool, error) {
		for userID, list := range alerts {
			doc.Alerts[userID] = list
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("seeding alerts failed: %v", err)
	}
}

func TestScanTriggersNotifiesAndRemoves(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{"BBCA": 9500}}
	n := &fakeNotifier{}
	eng, fs := newTestEngine(t, gw, n)

	// Price exactly on target: the inclusive bound fires.
	setAlerts(t, fs, map[string][]models.Alert{
		"1001": {{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}},
	})

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(n.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(n.sent))
	}
	if n.sent[0].userID != "1001" || !strings.Contains(n.sent[0].text, "BBCA") {
		t.Errorf("unexpected notification: %+v", n.sent[0])
	}

	doc := fs.Load()
	if len(doc.Alerts["1001"]) != 0 {
		t.Errorf("fired alert not removed: %+v", doc.Alerts)
	}

	// A second tick with the unchanged price must not re-notify.
	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if len(n.sent) != 1 {
		t.Errorf("alert fired twice: %d notifications", len(n.sent))
	}
}

func TestScanFailedDispatchKeepsAlert(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{"BBCA": 9600}}
	n := &fakeNotifier{failFor: map[string]bool{"1001": true}}
	eng, fs := newTestEngine(t, gw, n)

	alert := models.Alert{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}
	setAlerts(t, fs, map[string][]models.Alert{"1001": {alert}})

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	doc := fs.Load()
	if len(doc.Alerts["1001"]) != 1 || !doc.Alerts["1001"][0].Equal(alert) {
		t.Errorf("alert with failed dispatch must remain unchanged: %+v", doc.Alerts)
	}
}

func TestScanQuoteNotFoundKeepsAlert(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{}}
	n := &fakeNotifier{}
	eng, fs := newTestEngine(t, gw, n)

	alert := models.Alert{Symbol: "XYZZ", Direction: models.DirectionBelow, TargetPrice: 100}
	setAlerts(t, fs, map[string][]models.Alert{"1001": {alert}})

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(n.sent) != 0 {
		t.Errorf("no notification expected, got %d", len(n.sent))
	}
	doc := fs.Load()
	if len(doc.Alerts["1001"]) != 1 {
		t.Errorf("alert without quote must remain: %+v", doc.Alerts)
	}
}

func TestScanGatewayFaultKeepsAlert(t *testing.T) {
	gw := &fakeGateway{faults: map[string]bool{"BBCA": true}}
	n := &fakeNotifier{}
	eng, fs := newTestEngine(t, gw, n)

	setAlerts(t, fs, map[string][]models.Alert{
		"1001": {{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}},
	})

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan must not abort on a gateway fault: %v", err)
	}

	doc := fs.Load()
	if len(doc.Alerts["1001"]) != 1 {
		t.Errorf("alert must survive a gateway fault: %+v", doc.Alerts)
	}
}

func TestScanNoAlertsMakesNoQuoteCalls(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{"BBCA": 9500}}
	n := &fakeNotifier{}
	eng, _ := newTestEngine(t, gw, n)

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no quote calls with no alerts, got %d", gw.calls)
	}
}

func TestScanRemovesOnlyFiredInstances(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{"BBCA": 9600, "TLKM": 3400}}
	n := &fakeNotifier{failFor: map[string]bool{"2002": true}}
	eng, fs := newTestEngine(t, gw, n)

	fired := models.Alert{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}
	dormant := models.Alert{Symbol: "TLKM", Direction: models.DirectionBelow, TargetPrice: 3000}
	unlucky := models.Alert{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9400}

	setAlerts(t, fs, map[string][]models.Alert{
		"1001": {fired, dormant},
		"2002": {unlucky}, // triggers too, but this user's dispatch fails
	})

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	doc := fs.Load()
	if len(doc.Alerts["1001"]) != 1 || !doc.Alerts["1001"][0].Equal(dormant) {
		t.Errorf("only the fired BBCA alert should be removed for 1001: %+v", doc.Alerts["1001"])
	}
	if len(doc.Alerts["2002"]) != 1 || !doc.Alerts["2002"][0].Equal(unlucky) {
		t.Errorf("alert for failed dispatch must remain for 2002: %+v", doc.Alerts["2002"])
	}
	if len(n.sent) != 1 || n.sent[0].userID != "1001" {
		t.Errorf("expected exactly one delivered notification to 1001, got %+v", n.sent)
	}
}

func TestScanPreservesCommandWritesDuringScan(t *testing.T) {
	gw := &fakeGateway{quotes: map[string]float64{"BBCA": 9600}}
	n := &fakeNotifier{}
	eng, fs := newTestEngine(t, gw, n)

	setAlerts(t, fs, map[string][]models.Alert{
		"1001": {{Symbol: "BBCA", Direction: models.DirectionAbove, TargetPrice: 9500}},
	})

	// A command-layer write lands while the scan is between its load and its
	// removal pass. The removal re-loads under the store lock instead of
	// saving the engine's stale snapshot, so the write must survive.
	gw.onFetch = func() {
		err := fs.Update(func(doc *models.Document) (bool, error) {
			doc.Portfolios["1001"] = append(doc.Portfolios["1001"], models.Position{Symbol: "ASII", Lots: 2, BuyPrice: 5000})
			return true, nil
		})
		if err != nil {
			t.Errorf("mid-scan update failed: %v", err)
		}
	}

	if err := eng.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	doc := fs.Load()
	if len(doc.Portfolios["1001"]) != 1 {
		t.Errorf("command-layer write lost: %+v", doc.Portfolios)
	}
	if len(doc.Alerts["1001"]) != 0 {
		t.Errorf("fired alert not removed: %+v", doc.Alerts)
	}
}
