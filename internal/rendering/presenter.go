// Package rendering shows frames in an OpenGL window.
package rendering

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const presentProgram = "present"

// position.xy, uv.st; v is flipped so frame row 0 is at the top.
var quad = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	1, 1, 1, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	-1, 1, 0, 0,
}

// Presenter owns a window and the GL objects used to draw one frame
// texture over it. All methods must be called from the main thread.
type Presenter struct {
	window   *glfw.Window
	programs *Programs

	vao, vbo, texture uint32
	frame             image.Rectangle
	pixels            []byte
}

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

func NewPresenter(title string, width, height, scale int) (*Presenter, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("rendering: glfw: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(width*scale, height*scale, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("rendering: window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("rendering: gl: %w", err)
	}

	programs, err := LoadPrograms(__shaders__, shadersRoot)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	presenter := &Presenter{window: window, programs: programs}
	presenter.setup()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press && (key == glfw.KeyEscape || key == glfw.KeyQ) {
			w.SetShouldClose(true)
		}
	})
	return presenter, nil
}

func (presenter *Presenter) setup() {
	gl.GenVertexArrays(1, &presenter.vao)
	gl.BindVertexArray(presenter.vao)

	gl.GenBuffers(1, &presenter.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, presenter.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.GenTextures(1, &presenter.texture)
	gl.BindTexture(gl.TEXTURE_2D, presenter.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if program, ok := presenter.programs.Program(presentProgram); ok {
		gl.UseProgram(program)
		gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("frame\x00")), 0)
	}
}

// Upload copies frame into the texture.
func (presenter *Presenter) Upload(frame *image.NRGBA) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	presenter.frame = b
	presenter.pixels = packRows(presenter.pixels, frame)

	gl.BindTexture(gl.TEXTURE_2D, presenter.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(presenter.pixels))
}

// packRows returns the pixels of frame without row padding.
func packRows(buf []byte, frame *image.NRGBA) []byte {
	b := frame.Bounds()
	row := b.Dx() * 4
	buf = buf[:0]
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := frame.PixOffset(b.Min.X, y)
		buf = append(buf, frame.Pix[off:off+row]...)
	}
	return buf
}

func (presenter *Presenter) Draw() {
	fw, fh := presenter.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fw), int32(fh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	presenter.programs.Use(presentProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, presenter.texture)
	gl.BindVertexArray(presenter.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quad)/4))
	presenter.window.SwapBuffers()
}

// cursor maps the window cursor to a frame pixel.
func (presenter *Presenter) cursor() image.Point {
	x, y := presenter.window.GetCursorPos()
	ww, wh := presenter.window.GetSize()
	return windowToFrame(x, y, ww, wh, presenter.frame)
}

func windowToFrame(x, y float64, ww, wh int, frame image.Rectangle) image.Point {
	if ww <= 0 || wh <= 0 {
		return frame.Min
	}
	return image.Pt(
		frame.Min.X+int(x*float64(frame.Dx())/float64(ww)),
		frame.Min.Y+int(y*float64(frame.Dy())/float64(wh)),
	)
}

// Run shows frame until the window is closed. hover is called whenever the
// frame pixel under the cursor changes; a non-empty result becomes the
// window title.
func (presenter *Presenter) Run(frame *image.NRGBA, title string, hover func(image.Point) string) {
	presenter.Upload(frame)
	last := image.Pt(-1, -1)
	for !presenter.window.ShouldClose() {
		presenter.Draw()
		glfw.WaitEventsTimeout(0.1)

		pt := presenter.cursor()
		if hover == nil || pt == last {
			continue
		}
		last = pt
		if s := hover(pt); s != "" {
			presenter.window.SetTitle(title + " - " + s)
		} else {
			presenter.window.SetTitle(title)
		}
	}
}

func (presenter *Presenter) Close() {
	presenter.programs.Delete()
	gl.DeleteTextures(1, &presenter.texture)
	gl.DeleteBuffers(1, &presenter.vbo)
	gl.DeleteVertexArrays(1, &presenter.vao)
	presenter.window.Destroy()
	glfw.Terminate()
}
