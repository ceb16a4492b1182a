// Package renderer presents software-rendered frames through OpenGL: each
// frame's RGBA pixels are uploaded into a texture and drawn as a fullscreen
// quad.
package renderer

import (
	"fmt"
	"strings"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/hollowpoint-games/hollowpoint/internal/logger"
)

// Config holds presenter configuration. Width and Height are the internal
// framebuffer size, not the window size.
type Config struct {
	Width  int
	Height int
}

// Presenter owns the GL objects behind frame presentation.
type Presenter struct {
	config Config

	program uint32
	quadVAO uint32
	quadVBO uint32
	frame   uint32
}

// New creates the presenter. Must be called after the OpenGL context is
// created.
func New(cfg Config) (*Presenter, error) {
	p := &Presenter{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	var err error
	p.program, err = createShaderProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	p.createQuad()
	p.createFrameTexture()

	return p, nil
}

// Close cleans up presenter resources.
func (p *Presenter) Close() {
	logger.Info("closing presenter")
	if p.frame != 0 {
		gl.DeleteTextures(1, &p.frame)
	}
	if p.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &p.quadVAO)
	}
	if p.quadVBO != 0 {
		gl.DeleteBuffers(1, &p.quadVBO)
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
	}
}

// Present uploads the frame's pixels and draws them across the window.
// pix must hold Width*Height RGBA texels.
func (p *Presenter) Present(pix []uint8, windowWidth, windowHeight int) {
	gl.Viewport(0, 0, int32(windowWidth), int32(windowHeight))

	gl.BindTexture(gl.TEXTURE_2D, p.frame)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0,
		int32(p.config.Width), int32(p.config.Height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))

	gl.UseProgram(p.program)
	gl.BindVertexArray(p.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// createShaderProgram builds the textured fullscreen-quad program.
func createShaderProgram() (uint32, error) {
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec2 aPos;
		layout (location = 1) in vec2 aTexCoord;

		out vec2 texCoord;

		void main() {
			gl_Position = vec4(aPos, 0.0, 1.0);
			texCoord = aTexCoord;
		}
	` + "\x00"

	fragmentShaderSource := `
		#version 410 core

		in vec2 texCoord;
		out vec4 FragColor;

		uniform sampler2D frame;

		void main() {
			FragColor = texture(frame, texCoord);
		}
	` + "\x00"

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %s", log)
	}

	logger.Debug("shader program created", zap.Uint32("program", program))
	return program, nil
}

// compileShader compiles a shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}

// createQuad builds the fullscreen triangle strip.
func (p *Presenter) createQuad() {
	// Position (x, y) + texcoord (u, v); V flipped so the frame's top row
	// lands at the top of the window.
	vertices := []float32{
		-1, -1, 0, 1,
		1, -1, 1, 1,
		-1, 1, 0, 0,
		1, 1, 1, 0,
	}

	gl.GenVertexArrays(1, &p.quadVAO)
	gl.BindVertexArray(p.quadVAO)

	gl.GenBuffers(1, &p.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("fullscreen quad created",
		zap.Uint32("vao", p.quadVAO),
		zap.Uint32("vbo", p.quadVBO),
	)
}

// createFrameTexture allocates the streaming frame texture.
func (p *Presenter) createFrameTexture() {
	gl.GenTextures(1, &p.frame)
	gl.BindTexture(gl.TEXTURE_2D, p.frame)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(p.config.Width), int32(p.config.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Nearest filtering keeps the upscaled software frame crisp.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	logger.Debug("frame texture created",
		zap.Uint32("texture", p.frame),
		zap.Int("width", p.config.Width),
		zap.Int("height", p.config.Height),
	)
}
