package netatmo

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
)

const accountHomesBody = `{"status":"ok","body":{
	"homes": [{
		"id": "h1",
		"name": "Main House",
		"rooms": [{"id": "r1", "name": "Living Room", "module_ids": ["plug1"]}],
		"modules": [
			{"id": "gw1", "type": "NLG", "name": "Gateway"},
			{"id": "plug1", "type": "NLP", "name": "Plug", "bridge": "gw1", "room_id": "r1"}
		],
		"schedules": [{"id": "sch1", "name": "Week", "type": "therm", "selected": true}]
	}],
	"user": {"email": "owner@example.com"}
}}`

const accountStatusBody = `{"status":"ok","body":{
	"home": {
		"id": "h1",
		"modules": [{"id": "plug1", "on": true, "power": 42, "reachable": true}],
		"rooms": []
	}
}}`

func newAccountServerClient(t *testing.T) (*Client, *atomic.Int32) {
	t.Helper()
	var setStateCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/homesdata":
			w.Write([]byte(accountHomesBody))
		case "/api/homestatus":
			w.Write([]byte(accountStatusBody))
		case "/api/setstate":
			setStateCalls.Add(1)
			w.Write([]byte(`{"status":"ok"}`))
		case "/api/switchhomeschedule":
			w.Write([]byte(`{"status":"ok"}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	return client, &setStateCalls
}

func TestAccountUpdateAll(t *testing.T) {
	client, _ := newAccountServerClient(t)
	account := NewAccount(client)

	if account.Snapshot() != nil {
		t.Fatal("Snapshot before any update should be nil")
	}

	snap, err := account.UpdateAll(context.Background())
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if snap != account.Snapshot() {
		t.Error("UpdateAll result should be the current snapshot")
	}

	plug := snap.FindModuleByID("plug1")
	if plug == nil {
		t.Fatal("plug1 missing")
	}
	if on, ok := plug.SwitchedOn(); !ok || !on {
		t.Errorf("SwitchedOn = %v, %v; want true from the status overlay", on, ok)
	}
	if power, ok := plug.Power(); !ok || power != 42 {
		t.Errorf("Power = %d, %v", power, ok)
	}
	if reachable, ok := plug.IsReachable(); !ok || !reachable {
		t.Errorf("IsReachable = %v, %v", reachable, ok)
	}
}

func TestAccountStatusReplacesSnapshot(t *testing.T) {
	client, _ := newAccountServerClient(t)
	account := NewAccount(client)

	first, err := account.UpdateTopology(context.Background())
	if err != nil {
		t.Fatalf("UpdateTopology failed: %v", err)
	}

	second, err := account.UpdateStatus(context.Background(), "h1")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if first == second {
		t.Fatal("UpdateStatus must produce a new snapshot")
	}

	// The earlier snapshot stays frozen at topology state.
	if _, ok := first.FindModuleByID("plug1").SwitchedOn(); ok {
		t.Error("Topology-only snapshot should not know the switch state")
	}
	if on, ok := second.FindModuleByID("plug1").SwitchedOn(); !ok || !on {
		t.Errorf("Status snapshot SwitchedOn = %v, %v", on, ok)
	}
}

func TestAccountUpdateStatusWithoutTopology(t *testing.T) {
	client, _ := newAccountServerClient(t)
	account := NewAccount(client)
	if _, err := account.UpdateStatus(context.Background(), "h1"); !IsMalformedCatalog(err) {
		t.Errorf("Expected a no-topology error, got %v", err)
	}
}

func TestAccountSwitchSchedule(t *testing.T) {
	var scheduleCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/homesdata":
			w.Write([]byte(accountHomesBody))
		case "/api/switchhomeschedule":
			scheduleCalls.Add(1)
			w.Write([]byte(`{"status":"ok"}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	})
	account := NewAccount(client)

	if _, err := account.UpdateTopology(context.Background()); err != nil {
		t.Fatalf("UpdateTopology failed: %v", err)
	}

	if err := account.SwitchSchedule(context.Background(), "h1", "sch1"); err != nil {
		t.Fatalf("SwitchSchedule failed: %v", err)
	}
	if n := scheduleCalls.Load(); n != 1 {
		t.Errorf("switchhomeschedule called %d times, want 1", n)
	}

	// Unknown ids are caught against the snapshot before any request.
	if err := account.SwitchSchedule(context.Background(), "h1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown schedule, got %v", err)
	}
	if err := account.SwitchSchedule(context.Background(), "h99", "sch1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown home, got %v", err)
	}
	if n := scheduleCalls.Load(); n != 1 {
		t.Errorf("switchhomeschedule called %d times after rejections, want still 1", n)
	}
}

func TestAccountSetAttribute(t *testing.T) {
	client, setStateCalls := newAccountServerClient(t)
	account := NewAccount(client)

	if _, err := account.UpdateTopology(context.Background()); err != nil {
		t.Fatalf("UpdateTopology failed: %v", err)
	}

	if err := account.SetAttribute(context.Background(), "plug1", "on", true); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if n := setStateCalls.Load(); n != 1 {
		t.Errorf("setstate called %d times, want 1", n)
	}

	// The capability gate fires before the network: no request is sent.
	err := account.SetAttribute(context.Background(), "gw1", "brightness", 50)
	if err == nil {
		t.Fatal("Expected a capability rejection")
	}
	if n := setStateCalls.Load(); n != 1 {
		t.Errorf("setstate called %d times after rejection, want still 1", n)
	}
}
