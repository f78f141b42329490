package powerswitch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	testUsername = "admin"
	testPassword = "hunter2"
)

// fakeDevice is an in-memory Power Switch Pro behind httptest, with real
// digest authentication so the transport gets exercised end to end.
type fakeDevice struct {
	t *testing.T

	mu       sync.Mutex
	outlets  []Outlet
	entries  []*AutoPingEntry
	nextID   int
	metrics  Metrics
	info     map[string]any
	requests []string // "METHOD path" in arrival order, authenticated only

	srv *httptest.Server
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()

	d := &fakeDevice{
		t: t,
		outlets: []Outlet{
			{Name: "Outlet 1"}, {Name: "Outlet 2"}, {Name: "Outlet 3"},
			{Name: "Outlet 4"}, {Name: "Outlet 5"}, {Name: "Outlet 6"},
			{Name: "Outlet 7"}, {Name: "Outlet 8", Locked: true},
		},
		metrics: Metrics{Voltage: 119.6, Current: 1.2, Power: 140.5, Energy: 42.7},
		info: map[string]any{
			"serial":  "PSP-00042",
			"version": "1.12.4",
		},
	}

	d.srv = httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(d.srv.Close)

	return d
}

// client returns a Client pointed at the fake.
func (d *fakeDevice) client() *Client {
	d.t.Helper()

	u, err := url.Parse(d.srv.URL)
	if err != nil {
		d.t.Fatalf("parse fake URL: %v", err)
	}

	c, err := New(Config{
		Host:       u.Host,
		Username:   testUsername,
		Password:   testPassword,
		HTTPClient: d.srv.Client(),
	})
	if err != nil {
		d.t.Fatalf("new client: %v", err)
	}

	return c
}

// requestLog returns the authenticated requests seen so far.
func (d *fakeDevice) requestLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

func (d *fakeDevice) handle(w http.ResponseWriter, r *http.Request) {
	if !d.checkDigest(w, r) {
		return
	}

	if r.Method != http.MethodGet && r.Header.Get("X-CSRF") == "" {
		http.Error(w, `{"error":"missing X-CSRF header"}`, http.StatusBadRequest)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/restapi/")

	d.mu.Lock()
	d.requests = append(d.requests, r.Method+" "+path)
	d.mu.Unlock()

	switch {
	case strings.HasPrefix(path, "relay/outlets/"):
		d.handleOutlets(w, r, strings.TrimPrefix(path, "relay/outlets/"))
	case strings.HasPrefix(path, "autoping/items/"):
		d.handleAutoPing(w, r, strings.TrimPrefix(path, "autoping/items/"))
	case path == "meter/values/" && r.Method == http.MethodGet:
		d.mu.Lock()
		m := d.metrics
		d.mu.Unlock()
		writeJSON(w, m)
	case path == "config/" && r.Method == http.MethodGet:
		writeJSON(w, d.info)
	default:
		http.Error(w, `{"error":"no such endpoint"}`, http.StatusNotFound)
	}
}

func (d *fakeDevice) handleOutlets(w http.ResponseWriter, r *http.Request, rest string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSON(w, d.outlets)

	case rest == "all;/state/" && r.Method == http.MethodGet:
		states := make([]bool, len(d.outlets))
		for i, o := range d.outlets {
			states[i] = o.State
		}
		writeJSON(w, states)

	case rest == "all;locked=false/state/" && r.Method == http.MethodPut:
		var state bool
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			http.Error(w, `{"error":"bad state value"}`, http.StatusBadRequest)
			return
		}
		for i := range d.outlets {
			if !d.outlets[i].Locked {
				d.outlets[i].State = state
				d.outlets[i].PhysicalState = state
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case rest == "all;locked=false/cycle/" && r.Method == http.MethodPost:
		for i := range d.outlets {
			if !d.outlets[i].Locked {
				d.outlets[i].State = true
				d.outlets[i].PhysicalState = true
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		idStr, sub, _ := strings.Cut(rest, "/")
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 0 || id >= len(d.outlets) {
			http.Error(w, `{"error":"outlet index out of range"}`, http.StatusNotFound)
			return
		}
		d.handleOutlet(w, r, id, sub)
	}
}

func (d *fakeDevice) handleOutlet(w http.ResponseWriter, r *http.Request, id int, sub string) {
	o := &d.outlets[id]

	switch {
	case sub == "" && r.Method == http.MethodGet:
		writeJSON(w, *o)

	case sub == "state/" && r.Method == http.MethodGet:
		writeJSON(w, o.State)

	case sub == "state/" && r.Method == http.MethodPut:
		var state bool
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			http.Error(w, `{"error":"bad state value"}`, http.StatusBadRequest)
			return
		}
		o.State = state
		o.PhysicalState = state
		w.WriteHeader(http.StatusNoContent)

	case sub == "cycle/" && r.Method == http.MethodPost:
		o.State = true
		o.PhysicalState = true
		w.WriteHeader(http.StatusNoContent)

	case sub == "name/" && r.Method == http.MethodPut:
		var name string
		if err := json.NewDecoder(r.Body).Decode(&name); err != nil {
			http.Error(w, `{"error":"bad name value"}`, http.StatusBadRequest)
			return
		}
		if len(name) > 16 {
			http.Error(w, `{"error":"name too long"}`, http.StatusBadRequest)
			return
		}
		o.Name = name
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, `{"error":"no such endpoint"}`, http.StatusNotFound)
	}
}

func (d *fakeDevice) handleAutoPing(w http.ResponseWriter, r *http.Request, rest string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			entries := make([]AutoPingEntry, len(d.entries))
			for i, e := range d.entries {
				entries[i] = *e
			}
			writeJSON(w, entries)
		case http.MethodPost:
			var e AutoPingEntry
			if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
				http.Error(w, `{"error":"bad entry"}`, http.StatusBadRequest)
				return
			}
			e.ID = d.nextID
			d.nextID++
			e.Status = &AutoPingStatus{Hosts: []AutoPingHostStatus{{State: true}}}
			d.entries = append(d.entries, &e)
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, e)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	idStr, sub, _ := strings.Cut(rest, "/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, `{"error":"bad entry id"}`, http.StatusNotFound)
		return
	}
	idx := -1
	for i, e := range d.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, `{"error":"no such autoping entry"}`, http.StatusNotFound)
		return
	}
	e := d.entries[idx]

	switch {
	case sub == "" && r.Method == http.MethodGet:
		writeJSON(w, *e)

	case sub == "" && r.Method == http.MethodPatch:
		var fields map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			http.Error(w, `{"error":"bad patch"}`, http.StatusBadRequest)
			return
		}
		for k, v := range fields {
			switch k {
			case "addresses":
				_ = json.Unmarshal(v, &e.Addresses)
			case "outlets":
				_ = json.Unmarshal(v, &e.Outlets)
			case "enabled":
				_ = json.Unmarshal(v, &e.Enabled)
			case "interval":
				_ = json.Unmarshal(v, &e.Interval)
			case "retries":
				_ = json.Unmarshal(v, &e.Retries)
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case sub == "" && r.Method == http.MethodDelete:
		d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)

	case sub == "enabled/" && r.Method == http.MethodPut:
		var enabled bool
		if err := json.NewDecoder(r.Body).Decode(&enabled); err != nil {
			http.Error(w, `{"error":"bad enabled value"}`, http.StatusBadRequest)
			return
		}
		e.Enabled = enabled
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, `{"error":"no such endpoint"}`, http.StatusNotFound)
	}
}

const fakeNonce = "f00fd00d"

// checkDigest enforces digest auth the way the hardware does. Returns false
// after writing the 401 challenge or rejection.
func (d *fakeDevice) checkDigest(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Digest ") {
		w.Header().Set("WWW-Authenticate",
			fmt.Sprintf(`Digest realm="Power Switch Pro", nonce=%q, qop="auth"`, fakeNonce))
		http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
		return false
	}

	params := parseAuthParams(strings.TrimPrefix(auth, "Digest "))
	ha1 := md5hex(testUsername + ":Power Switch Pro:" + testPassword)
	ha2 := md5hex(r.Method + ":" + params["uri"])
	want := md5hex(strings.Join([]string{
		ha1, params["nonce"], params["nc"], params["cnonce"], params["qop"], ha2,
	}, ":"))

	if params["username"] != testUsername || params["response"] != want {
		http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
