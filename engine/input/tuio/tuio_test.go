package tuio

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
	"github.com/hypebeast/go-osc/osc"
)

type event struct {
	kind touch.Kind
	t    *touch.Touch
}

func drain(p *Provider) []event {
	var out []event
	p.Update(func(kind touch.Kind, t *touch.Touch) { out = append(out, event{kind, t}) })
	return out
}

func kinds(evs []event) string {
	var s []string
	for _, e := range evs {
		s = append(s, e.kind.String())
	}
	return strings.Join(s, ",")
}

func frame(profile string, alive []int32, sets ...[]interface{}) *osc.Bundle {
	b := osc.NewBundle(time.Now())
	args := []interface{}{"alive"}
	for _, id := range alive {
		args = append(args, id)
	}
	b.Append(osc.NewMessage(profile, args...))
	for _, s := range sets {
		b.Append(osc.NewMessage(profile, append([]interface{}{"set"}, s...)...))
	}
	b.Append(osc.NewMessage(profile, "fseq", int32(1)))
	return b
}

func TestCursorLifecycle(t *testing.T) {
	p := New("tuio", "", nil)
	p.handle(frame(profileCursor, []int32{4}, []interface{}{int32(4), float32(0.25), float32(0.5), float32(0), float32(0), float32(0)}))
	evs := drain(p)
	if kinds(evs) != "down" {
		t.Fatalf("expected down, got %s", kinds(evs))
	}
	if evs[0].t.SX != 0.25 || evs[0].t.SY != 0.5 || evs[0].t.ID != 4 {
		t.Errorf("unexpected touch %v", evs[0].t)
	}

	p.handle(frame(profileCursor, []int32{4}, []interface{}{int32(4), float32(0.3), float32(0.5), float32(0), float32(0), float32(0)}))
	if got := kinds(drain(p)); got != "move" {
		t.Fatalf("expected move, got %s", got)
	}

	p.handle(frame(profileCursor, nil))
	evs = drain(p)
	if kinds(evs) != "up" || evs[0].t.SX != float64(float32(0.3)) {
		t.Fatalf("expected up at the last position, got %s", kinds(evs))
	}
}

func TestObjectProfile(t *testing.T) {
	p := New("tuio", "", nil)
	p.handle(frame(profileObject, []int32{9}, []interface{}{int32(9), int32(42), float32(0.1), float32(0.2), float32(1.5)}))
	evs := drain(p)
	if len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	tc := evs[0].t
	if tc.FiducialID != 42 || !tc.HasAngle || tc.Angle != 1.5 {
		t.Errorf("expected fiducial 42 with angle 1.5, got %d %v %v", tc.FiducialID, tc.HasAngle, tc.Angle)
	}
}

func TestMalformedSetIgnored(t *testing.T) {
	p := New("tuio", "", nil)
	p.handle(osc.NewMessage(profileCursor, "set", int32(1), "x"))
	p.handle(osc.NewMessage("/tuio/3Dcur", "set", int32(1), float32(0), float32(0)))
	if evs := drain(p); len(evs) != 0 {
		t.Fatalf("expected nothing, got %s", kinds(evs))
	}
}

func TestUDPRoundTrip(t *testing.T) {
	p := New("tuio", "127.0.0.1:0", nil)
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	conn, err := net.Dial("udp", p.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	data, err := frame(profileCursor, []int32{1}, []interface{}{int32(1), float32(0.5), float32(0.5), float32(0), float32(0), float32(0)}).MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Queue().Len() > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := kinds(drain(p)); got != "down" {
		t.Fatalf("expected down over udp, got %q", got)
	}

	if err := p.Stop(); err != nil {
		t.Errorf("unexpected stop error: %v", err)
	}
	if p.Addr() != nil {
		t.Errorf("expected no address after stop")
	}
}
