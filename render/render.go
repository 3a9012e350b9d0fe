package render

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/corvidterm/corvid/fonts"
	"github.com/corvidterm/corvid/grid"
)

const defaultFontSize = 15.0

// Glyph is one character's slot in the font atlas.
type Glyph struct {
	X, Y          float32 // position in atlas (normalized 0-1)
	Width, Height float32 // size in atlas (normalized 0-1)
	PixelWidth    int
	PixelHeight   int
}

// Renderer draws the cell grid with OpenGL. It owns the cell pixel
// size; the grid dimensions for a given window derive from it.
type Renderer struct {
	defaultFg  [4]float32
	defaultBg  [4]float32
	cellWidth  float32
	cellHeight float32
	ascent     float32
	fontSize   float32

	glyphs    map[rune]Glyph
	fontAtlas uint32
	atlasSize int

	quadVAO     uint32
	quadVBO     uint32
	program     uint32
	fontProgram uint32
	fontVAO     uint32
	fontVBO     uint32

	colorLoc    int32
	projLoc     int32
	texColorLoc int32
	texProjLoc  int32
	texLoc      int32
}

// NewRenderer creates a renderer using the configured default colors.
// The GL context must be current.
func NewRenderer(fg, bg grid.Color, fontSize float64) (*Renderer, error) {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	r := &Renderer{
		defaultFg: colorVec(fg),
		defaultBg: colorVec(bg),
		fontSize:  float32(fontSize),
		glyphs:    make(map[rune]Glyph),
		atlasSize: 512,
	}

	if err := r.initGL(); err != nil {
		return nil, err
	}

	if err := r.loadFontData(fonts.DefaultFont()); err != nil {
		return nil, err
	}

	return r, nil
}

// loadFontData builds the glyph atlas from TTF bytes.
func (r *Renderer) loadFontData(fontData []byte) error {
	parsedFont, err := opentype.Parse(fontData)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    float64(r.fontSize),
		DPI:     96,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	r.cellHeight = float32((metrics.Ascent + metrics.Descent).Ceil())
	r.ascent = float32(metrics.Ascent.Ceil())

	advance, _ := face.GlyphAdvance('M')
	r.cellWidth = float32(advance.Ceil())

	atlas := image.NewRGBA(image.Rect(0, 0, r.atlasSize, r.atlasSize))
	draw.Draw(atlas, atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  atlas,
		Src:  image.White,
		Face: face,
	}

	// Printable ASCII plus Latin-1; bytes above 0x7f land in cells
	// verbatim, so the high range renders as Latin-1.
	charRanges := []struct{ start, end rune }{
		{32, 126},
		{160, 255},
	}

	x, y := 0, metrics.Ascent.Ceil()
	charHeight := int(r.cellHeight)
	charWidth := int(r.cellWidth)

	for _, cr := range charRanges {
		for c := cr.start; c <= cr.end; c++ {
			if x+charWidth > r.atlasSize {
				x = 0
				y += charHeight
			}
			if y+charHeight > r.atlasSize {
				break
			}

			if _, hasGlyph := face.GlyphAdvance(c); !hasGlyph {
				continue
			}

			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(string(c))

			r.glyphs[c] = Glyph{
				X:           float32(x) / float32(r.atlasSize),
				Y:           float32(y-metrics.Ascent.Ceil()) / float32(r.atlasSize),
				Width:       float32(charWidth) / float32(r.atlasSize),
				Height:      float32(charHeight) / float32(r.atlasSize),
				PixelWidth:  charWidth,
				PixelHeight: charHeight,
			}

			x += charWidth
		}
	}

	// Single-channel alpha texture for the text shader.
	alphaAtlas := make([]byte, r.atlasSize*r.atlasSize)
	for i := 0; i < r.atlasSize*r.atlasSize; i++ {
		alphaAtlas[i] = atlas.Pix[i*4+3]
	}

	gl.GenTextures(1, &r.fontAtlas)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(r.atlasSize), int32(r.atlasSize), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alphaAtlas))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	return nil
}

// initGL compiles the shaders and allocates the vertex buffers.
func (r *Renderer) initGL() error {
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(aPos, 0.0, 1.0);
		}
	` + "\x00"

	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() {
			FragColor = color;
		}
	` + "\x00"

	var err error
	r.program, err = createProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("failed to create quad shader: %w", err)
	}

	r.colorLoc = gl.GetUniformLocation(r.program, gl.Str("color\x00"))
	r.projLoc = gl.GetUniformLocation(r.program, gl.Str("projection\x00"))

	textVertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex; // <vec2 pos, vec2 tex>
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"

	textFragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	r.fontProgram, err = createProgram(textVertShader, textFragShader)
	if err != nil {
		return fmt.Errorf("failed to create text shader: %w", err)
	}

	r.texColorLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("textColor\x00"))
	r.texProjLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.fontVAO)
	gl.GenBuffers(1, &r.fontVBO)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// Draw renders one frame from a grid snapshot. cursorOn is the blink
// phase; the cursor bar is drawn only while the cursor is visible and
// the phase is on.
func (r *Renderer) Draw(view grid.GridView, cursor grid.Cursor, width, height int, cursorOn bool) {
	proj := orthoMatrix(0, float32(width), float32(height), 0, -1, 1)

	gl.ClearColor(r.defaultBg[0], r.defaultBg[1], r.defaultBg[2], r.defaultBg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	for row := 0; row < view.Height; row++ {
		for col := 0; col < view.Width; col++ {
			cell := view.Cells[row*view.Width+col]
			x := float32(col) * r.cellWidth
			y := float32(row) * r.cellHeight

			fgColor := colorVec(cell.Fg)
			bgColor := colorVec(cell.Bg)
			if cell.SGR&grid.SGRInvert != 0 {
				fgColor, bgColor = bgColor, fgColor
			}

			if bgColor != r.defaultBg && bgColor[3] > 0 {
				r.drawRect(x, y, r.cellWidth, r.cellHeight, bgColor, proj)
			}

			if cell.SGR&grid.SGRFaint != 0 {
				fgColor[3] *= 0.5
			}

			if cell.Char != 0 && cell.Char != ' ' && cell.SGR&grid.SGRConceal == 0 {
				r.drawChar(x, y+r.ascent, rune(cell.Char), fgColor, proj)
			}

			if cell.SGR&(grid.SGRUnderline|grid.SGRDblUnderline) != 0 {
				r.drawRect(x, y+r.ascent+2, r.cellWidth, 1, fgColor, proj)
				if cell.SGR&grid.SGRDblUnderline != 0 {
					r.drawRect(x, y+r.ascent+4, r.cellWidth, 1, fgColor, proj)
				}
			}
			if cell.SGR&grid.SGRStrike != 0 {
				r.drawRect(x, y+r.cellHeight*0.5, r.cellWidth, 1, fgColor, proj)
			}
		}
	}

	if cursor.Visible && cursorOn {
		x := float32(cursor.X) * r.cellWidth
		y := float32(cursor.Y) * r.cellHeight
		r.drawRect(x, y, 2, r.cellHeight, r.defaultFg, proj)
	}
}

// drawRect draws a colored rectangle.
func (r *Renderer) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])

	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// drawChar draws one glyph with its baseline at y.
func (r *Renderer) drawChar(x, y float32, char rune, clr [4]float32, proj [16]float32) {
	glyph, ok := r.glyphs[char]
	if !ok {
		// unrenderable code point: leave the cell blank
		return
	}

	w := float32(glyph.PixelWidth)
	h := float32(glyph.PixelHeight)

	tx := glyph.X
	ty := glyph.Y
	tw := glyph.Width
	th := glyph.Height

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}

	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)

	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// colorVec converts a grid color to a GL color vector.
func colorVec(c grid.Color) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// CellSize returns the cell pixel dimensions.
func (r *Renderer) CellSize() (float32, float32) {
	return r.cellWidth, r.cellHeight
}

// CalculateGridSize returns how many whole cells fit in the window.
func (r *Renderer) CalculateGridSize(width, height int) (cols, rows int) {
	cols = int(float32(width) / r.cellWidth)
	rows = int(float32(height) / r.cellHeight)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return
}

// Destroy frees the GL resources.
func (r *Renderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.fontVAO)
	gl.DeleteBuffers(1, &r.fontVBO)
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.fontProgram)
	gl.DeleteTextures(1, &r.fontAtlas)
}

// orthoMatrix creates an orthographic projection matrix.
func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

// createProgram links a shader program from vertex and fragment sources.
func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

// compileShader compiles a single shader stage.
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
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to compile shader: %v", infoLog)
	}

	return shader, nil
}
