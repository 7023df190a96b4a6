//go:build linux

package evdev

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"unsafe"

	"github.com/hubastard/grovetouch/engine/input"
	"golang.org/x/sys/unix"
)

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// ioctl request encoding (_IOC)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

func eviocgabs(abs int) uintptr {
	return ioc(iocRead, 'E', uint32(0x40+abs), uint32(unsafe.Sizeof(absInfo{})))
}

func eviocgname(n int) uintptr { return ioc(iocRead, 'E', 0x06, uint32(n)) }
func eviocgrab() uintptr       { return ioc(iocWrite, 'E', 0x90, uint32(unsafe.Sizeof(int32(0)))) }

func ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

type Provider struct {
	input.Buffered
	opts   Options
	logger *slog.Logger

	mu   sync.Mutex
	f    *os.File
	done chan struct{}
	dev  string
}

func New(name string, opts Options, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{Buffered: input.NewBuffered(name, 1024), opts: opts, logger: logger}
}

func Constructor(key, args string, logger *slog.Logger) (input.Provider, error) {
	opts, err := ParseOptions(args)
	if err != nil {
		return nil, err
	}
	return New(key, opts, logger), nil
}

// Device returns the name the kernel reports for the opened device.
func (p *Provider) Device() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev
}

func (p *Provider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f != nil {
		return nil
	}
	f, err := os.OpenFile(p.opts.Path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("evdev open: %w", err)
	}
	dec, name, err := p.probe(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("evdev probe %s: %w", p.opts.Path, err)
	}
	p.f, p.dev = f, name
	p.done = make(chan struct{})
	go p.read(f, dec, p.done)
	p.logger.Info("evdev device opened", "path", p.opts.Path, "device", name)
	return nil
}

func (p *Provider) probe(f *os.File) (*Decoder, string, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return nil, "", err
	}
	var (
		x, y  absInfo
		name  [256]byte
		ioErr error
	)
	err = rc.Control(func(fd uintptr) {
		if ioErr = ioctl(fd, eviocgabs(ABS_MT_POSITION_X), unsafe.Pointer(&x)); ioErr != nil {
			ioErr = ioctl(fd, eviocgabs(ABS_X), unsafe.Pointer(&x))
		}
		if ioErr != nil {
			return
		}
		if ioErr = ioctl(fd, eviocgabs(ABS_MT_POSITION_Y), unsafe.Pointer(&y)); ioErr != nil {
			ioErr = ioctl(fd, eviocgabs(ABS_Y), unsafe.Pointer(&y))
		}
		if ioErr != nil {
			return
		}
		_ = ioctl(fd, eviocgname(len(name)), unsafe.Pointer(&name[0]))
		if p.opts.Grab {
			one := int32(1)
			if err := ioctl(fd, eviocgrab(), unsafe.Pointer(&one)); err != nil {
				p.logger.Warn("evdev grab failed", "err", err)
			}
		}
	})
	if err == nil {
		err = ioErr
	}
	if err != nil {
		return nil, "", err
	}
	dec := NewDecoder(Range{x.Min, x.Max}, Range{y.Min, y.Max})
	dec.InvertX, dec.InvertY = p.opts.InvertX, p.opts.InvertY
	return dec, string(bytes.TrimRight(name[:], "\x00")), nil
}

func (p *Provider) read(f *os.File, dec *Decoder, done chan struct{}) {
	defer close(done)
	buf := make([]byte, EventSize*64)
	fill := 0
	for {
		n, err := f.Read(buf[fill:])
		if err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
				p.logger.Error("evdev read failed", "err", err)
			}
			return
		}
		fill += n
		used := Parse(buf[:fill], func(typ, code uint16, value int32) {
			dec.Feed(typ, code, value, func(r input.Raw) { p.Push(r) })
		})
		fill = copy(buf, buf[used:fill])
	}
}

func (p *Provider) Stop() error {
	p.mu.Lock()
	f, done := p.f, p.done
	p.f, p.done = nil, nil
	p.mu.Unlock()
	if f == nil {
		return nil
	}
	err := f.Close()
	<-done
	return err
}
