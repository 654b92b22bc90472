package display

import (
	"fmt"

	"icarus/internal/config"
	"icarus/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Surface is the window and OpenGL context the renderer draws into. It must be
// created and used on the main OS thread.
type Surface struct {
	window  *glfw.Window
	limiter *Limiter
	log     *zap.Logger

	width, height int

	// fallbackAspect stands in while the framebuffer is zero-sized.
	fallbackAspect float32
}

// Open initialises glfw, creates a window with an OpenGL 4.1 core context,
// makes it current and loads the GL bindings. The cursor starts captured.
func Open(cfg config.WindowSettings, log *zap.Logger) (*Surface, error) {
	log = logger.OrNop(log)
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("display: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("display: create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("display: gl init: %w", err)
	}

	// Disable V-Sync; the limiter paces frames
	glfw.SwapInterval(0)

	s := &Surface{
		window:  window,
		limiter: NewLimiter(cfg.FPSLimit),
		log:     log,

		fallbackAspect: cfg.AspectRatio(),
	}
	s.width, s.height = window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(s.width), int32(s.height))
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		s.width, s.height = w, h
		gl.Viewport(0, 0, int32(w), int32(h))
	})
	s.SetCursorCaptured(true)

	log.Info("display opened",
		zap.String("gl", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Int("fpsLimit", cfg.FPSLimit))
	return s, nil
}

// CloseRequested reports whether the user asked to close the window.
func (s *Surface) CloseRequested() bool {
	return s.window.ShouldClose()
}

// Update presents the frame, pumps window events and waits for the next frame slot.
func (s *Surface) Update() {
	s.window.SwapBuffers()
	glfw.PollEvents()
	s.limiter.Wait()
}

// KeyDown reports whether k is held.
func (s *Surface) KeyDown(k glfw.Key) bool {
	return s.window.GetKey(k) == glfw.Press
}

// CursorPos returns the cursor position in screen coordinates.
func (s *Surface) CursorPos() (x, y float64) {
	return s.window.GetCursorPos()
}

// SetCursorCaptured hides and locks the cursor, or shows and frees it.
func (s *Surface) SetCursorCaptured(capture bool) {
	mode := glfw.CursorNormal
	if capture {
		mode = glfw.CursorDisabled
	}
	s.window.SetInputMode(glfw.CursorMode, mode)
}

// AspectRatio is the framebuffer width over its height, or the configured
// window ratio while minimised.
func (s *Surface) AspectRatio() float32 {
	if s.height == 0 {
		return s.fallbackAspect
	}
	return float32(s.width) / float32(s.height)
}

// Close destroys the window and terminates glfw. GPU resources must be
// released before.
func (s *Surface) Close() {
	s.window.Destroy()
	glfw.Terminate()
	s.log.Info("display closed")
}
