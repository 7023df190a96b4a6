package evdev

import (
	"fmt"
	"strings"
)

// Options are parsed from "path,invert_x=1,invert_y=0,grab=1".
type Options struct {
	Path    string
	InvertX bool
	InvertY bool
	Grab    bool
}

func ParseOptions(args string) (Options, error) {
	var o Options
	parts := strings.Split(args, ",")
	o.Path = strings.TrimSpace(parts[0])
	if o.Path == "" {
		return o, fmt.Errorf("evdev: missing device path")
	}
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		k, v, _ := strings.Cut(opt, "=")
		on := v == "" || v == "1" || v == "true"
		switch k {
		case "invert_x":
			o.InvertX = on
		case "invert_y":
			o.InvertY = on
		case "grab":
			o.Grab = on
		default:
			return o, fmt.Errorf("evdev: unknown option %q", k)
		}
	}
	return o, nil
}
