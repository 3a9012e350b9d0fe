package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/corvidterm/corvid/assets"
)

func init() {
	// GLFW event handling must run on the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig returns the default window configuration.
func DefaultConfig() Config {
	return Config{
		Width:  900,
		Height: 600,
		Title:  "Corvid",
	}
}

// Window wraps a GLFW window with an OpenGL context.
type Window struct {
	glfw         *glfw.Window
	config       Config
	isFullscreen bool
	savedX       int
	savedY       int
	savedWidth   int
	savedHeight  int
}

// NewWindow creates a GLFW window and initializes the OpenGL context.
func NewWindow(config Config) (*Window, error) {
	if config.Width < 1 || config.Height < 1 {
		config = DefaultConfig()
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	glfw.WindowHintString(glfw.X11ClassName, "corvid")
	glfw.WindowHintString(glfw.X11InstanceName, "corvid")

	window, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// VSync
	glfw.SwapInterval(1)

	// Blending for glyph alpha
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	w := &Window{
		glfw:   window,
		config: config,
	}

	if icons := assets.RenderIconSizes(); len(icons) > 0 {
		window.SetIcon(icons)
	}

	return w, nil
}

// GLFW returns the underlying GLFW window for callback wiring.
func (w *Window) GLFW() *glfw.Window {
	return w.glfw
}

// GetFramebufferSize returns the framebuffer size in pixels.
func (w *Window) GetFramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

// SetTitle sets the window title. This is the OSC title sink.
func (w *Window) SetTitle(title string) {
	w.glfw.SetTitle(title)
}

// SetViewport sets the OpenGL viewport.
func (w *Window) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ShouldClose returns true if the window should close.
func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

// SetShouldClose sets the window close flag.
func (w *Window) SetShouldClose(close bool) {
	w.glfw.SetShouldClose(close)
}

// SwapBuffers swaps the front and back buffers.
func (w *Window) SwapBuffers() {
	w.glfw.SwapBuffers()
}

// ToggleFullscreen switches between fullscreen on the primary monitor
// and the previous windowed position.
func (w *Window) ToggleFullscreen() {
	if w.isFullscreen {
		w.glfw.SetMonitor(nil, w.savedX, w.savedY, w.savedWidth, w.savedHeight, 0)
		w.isFullscreen = false
	} else {
		w.savedX, w.savedY = w.glfw.GetPos()
		w.savedWidth, w.savedHeight = w.glfw.GetSize()

		monitor := glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		w.glfw.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		w.isFullscreen = true
	}
}

// IsFullscreen returns whether the window is fullscreen.
func (w *Window) IsFullscreen() bool {
	return w.isFullscreen
}

// Destroy tears down the window and GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}
