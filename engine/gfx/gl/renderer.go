// Package glbackend draws the live-touch overlay with OpenGL 3.3 core.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/grovetouch/engine/colors"
	"github.com/hubastard/grovetouch/engine/touch"
)

const floatsPerVertex = 7 // x, y, size, r, g, b, a

// Overlay renders one point sprite per live touch. Requires a current GL
// context on the calling thread.
type Overlay struct {
	program uint32
	vao     uint32
	vbo     uint32
	verts   []float32

	// PointSize is the diameter in pixels of a free touch; grabbed touches
	// are drawn larger.
	PointSize float32
}

func NewOverlay() (*Overlay, error) {
	o := &Overlay{PointSize: 24}
	if err := o.init(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Overlay) init() error {
	var err error
	o.program, err = makeProgram(vertexSource, fragmentSource)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	const stride = floatsPerVertex * 4
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(0)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return nil
}

func (o *Overlay) Shutdown() {
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.program != 0 {
		gl.DeleteProgram(o.program)
	}
}

func (o *Overlay) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (o *Overlay) Clear(c colors.Color) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw plots touches at their normalized surface position (SX, SY), which
// has its origin at the top-left corner.
func (o *Overlay) Draw(touches []*touch.Touch) {
	if len(touches) == 0 {
		return
	}
	o.verts = o.verts[:0]
	for _, t := range touches {
		size := o.PointSize
		if len(t.GrabList) > 0 {
			size *= 1.5
		}
		c := colors.ForTouch(t)
		o.verts = append(o.verts,
			float32(t.SX*2-1), float32(1-t.SY*2), size,
			c[0], c[1], c[2], c[3])
	}

	gl.UseProgram(o.program)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(o.verts)*4, gl.Ptr(o.verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(len(touches)))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// --- Shader utilities ---

const vertexSource = `
#version 330 core
layout(location=0) in vec2 aPos;
layout(location=1) in float aSize;
layout(location=2) in vec4 aColor;
out vec4 vColor;
void main() {
    vColor = aColor;
    gl_PointSize = aSize;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

// ring: discard outside the disc and keep a hollow center
const fragmentSource = `
#version 330 core
in vec4 vColor;
out vec4 FragColor;
void main() {
    float d = length(gl_PointCoord - vec2(0.5));
    if (d > 0.5 || d < 0.3) {
        discard;
    }
    FragColor = vColor;
}
` + "\x00"

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
