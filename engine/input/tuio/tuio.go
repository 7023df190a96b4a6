// Package tuio receives touches from TUIO 1.1 trackers over OSC/UDP. The
// 2Dcur (cursor) and 2Dobj (tagged object) profiles are supported.
package tuio

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/hubastard/grovetouch/engine/input"
	"github.com/hubastard/grovetouch/engine/touch"
	"github.com/hypebeast/go-osc/osc"
)

const (
	DefaultAddr = "0.0.0.0:3333"

	profileCursor = "/tuio/2Dcur"
	profileObject = "/tuio/2Dobj"
)

type Provider struct {
	input.Buffered
	addr   string
	logger *slog.Logger

	mu       sync.Mutex
	conn     net.PacketConn
	done     chan struct{}
	profiles map[string]map[int32][2]float64 // session id -> last position
}

func New(name, addr string, logger *slog.Logger) *Provider {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		Buffered: input.NewBuffered(name, 1024),
		addr:     addr,
		logger:   logger,
		profiles: map[string]map[int32][2]float64{
			profileCursor: {},
			profileObject: {},
		},
	}
}

// Constructor builds a provider from "host:port" args.
func Constructor(key, args string, logger *slog.Logger) (input.Provider, error) {
	return New(key, strings.TrimSpace(args), logger), nil
}

// Addr returns the bound address once started.
func (p *Provider) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	return p.conn.LocalAddr()
}

func (p *Provider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return nil
	}
	conn, err := net.ListenPacket("udp", p.addr)
	if err != nil {
		return fmt.Errorf("tuio listen %s: %w", p.addr, err)
	}
	p.conn = conn
	p.done = make(chan struct{})
	go p.serve(conn, p.done)
	p.logger.Info("tuio listening", "addr", conn.LocalAddr().String())
	return nil
}

func (p *Provider) Stop() error {
	p.mu.Lock()
	conn, done := p.conn, p.done
	p.conn, p.done = nil, nil
	p.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	return err
}

func (p *Provider) serve(conn net.PacketConn, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 65535)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				p.logger.Error("tuio read failed", "err", err)
			}
			return
		}
		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			p.logger.Debug("tuio bad packet", "err", err)
			continue
		}
		p.handle(packet)
	}
}

func (p *Provider) handle(packet osc.Packet) {
	switch pk := packet.(type) {
	case *osc.Message:
		p.handleMessage(pk)
	case *osc.Bundle:
		for _, m := range pk.Messages {
			p.handleMessage(m)
		}
		for _, b := range pk.Bundles {
			p.handle(b)
		}
	}
}

func (p *Provider) handleMessage(msg *osc.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	known, ok := p.profiles[msg.Address]
	if !ok || len(msg.Arguments) == 0 {
		return
	}
	cmd, _ := msg.Arguments[0].(string)
	args := msg.Arguments[1:]
	switch cmd {
	case "alive":
		alive := map[int32]bool{}
		for _, a := range args {
			if id, ok := a.(int32); ok {
				alive[id] = true
			}
		}
		for id, pos := range known {
			if !alive[id] {
				delete(known, id)
				p.Push(input.Raw{Kind: touch.Up, ID: int(id), X: pos[0], Y: pos[1]})
			}
		}
	case "set":
		raw, ok := parseSet(msg.Address, args)
		if !ok {
			p.logger.Debug("tuio malformed set", "profile", msg.Address, "args", len(args))
			return
		}
		known[int32(raw.ID)] = [2]float64{raw.X, raw.Y}
		p.Push(raw)
	}
}

// parseSet reads "set s x y ..." for cursors and "set s i x y a ..." for
// objects. A move for an unknown session starts a new touch downstream.
func parseSet(profile string, args []interface{}) (input.Raw, bool) {
	var (
		sid  int32
		vals []float32
		fid  int32
		ok   bool
	)
	if len(args) < 3 {
		return input.Raw{}, false
	}
	if sid, ok = args[0].(int32); !ok {
		return input.Raw{}, false
	}
	rest := args[1:]
	if profile == profileObject {
		if len(args) < 5 {
			return input.Raw{}, false
		}
		if fid, ok = args[1].(int32); !ok {
			return input.Raw{}, false
		}
		rest = args[2:5]
	} else {
		rest = rest[:2]
	}
	for _, a := range rest {
		f, ok := a.(float32)
		if !ok {
			return input.Raw{}, false
		}
		vals = append(vals, f)
	}
	raw := input.Raw{Kind: touch.Move, ID: int(sid), X: float64(vals[0]), Y: float64(vals[1])}
	if profile == profileObject {
		raw.FiducialID = int(fid)
		raw.Angle = float64(vals[2])
		raw.HasAngle = true
	}
	return raw, true
}
