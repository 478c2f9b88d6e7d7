package graphics

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const atlasWidth = 512

// FontCharacter describes a single glyph's placement and metrics within the atlas.
type FontCharacter struct {
	// Pixel coordinates of the glyph in the atlas (top-left origin)
	AtlasX float32
	AtlasY float32
	Width  float32
	Height float32
	// Offset from the pen position on the baseline
	BearingX float32
	BearingY float32
	Advance  int
}

// FontAtlas is a packed single-channel glyph image plus per-glyph metrics.
// TextureID is zero until Upload is called.
type FontAtlas struct {
	Image      *image.Alpha
	Characters map[rune]FontCharacter
	TextureID  uint32
}

// BuildFontAtlas rasterises printable ASCII from ttf (Go Mono when nil) at
// fontPixels and packs it row by row.
func BuildFontAtlas(ttf []byte, fontPixels int) (*FontAtlas, error) {
	if ttf == nil {
		ttf = gomono.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(fontPixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	const padding = 1
	type glyph struct {
		r       rune
		dr      image.Rectangle
		mask    image.Image
		maskp   image.Point
		advance fixed.Int26_6
	}
	var glyphs []glyph
	for r := rune(32); r <= 126; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		glyphs = append(glyphs, glyph{r, dr, mask, maskp, advance})
	}

	// First pass: place glyphs to find the atlas height.
	type slot struct{ x, y int }
	slots := make([]slot, len(glyphs))
	x, y, rowH := 0, 0, 0
	for i, g := range glyphs {
		w, h := g.dr.Dx(), g.dr.Dy()
		if w == 0 || h == 0 {
			slots[i] = slot{x, y}
			continue
		}
		if x+w > atlasWidth {
			x = 0
			y += rowH + padding
			rowH = 0
		}
		slots[i] = slot{x, y}
		x += w + padding
		rowH = max(rowH, h)
	}

	img := image.NewAlpha(image.Rect(0, 0, atlasWidth, max(1, y+rowH)))
	chars := make(map[rune]FontCharacter, len(glyphs))
	for i, g := range glyphs {
		w, h := g.dr.Dx(), g.dr.Dy()
		s := slots[i]
		if w > 0 && h > 0 && g.mask != nil {
			draw.Draw(img, image.Rect(s.x, s.y, s.x+w, s.y+h), g.mask, g.maskp, draw.Src)
		}
		chars[g.r] = FontCharacter{
			AtlasX:   float32(s.x),
			AtlasY:   float32(s.y),
			Width:    float32(w),
			Height:   float32(h),
			BearingX: float32(g.dr.Min.X),
			BearingY: float32(-g.dr.Min.Y),
			Advance:  int(math.Round(float64(g.advance) / 64.0)),
		}
	}
	return &FontAtlas{Image: img, Characters: chars}, nil
}

// Upload copies the atlas into a GL_RED texture.
func (a *FontAtlas) Upload() {
	b := a.Image.Bounds()
	gl.GenTextures(1, &a.TextureID)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, a.TextureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(b.Dx()), int32(b.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(a.Image.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
}

// Measure returns the width and tallest glyph height of text in pixels.
func (a *FontAtlas) Measure(text string, scale float32) (float32, float32) {
	var width, maxH float32
	for _, r := range text {
		fc, ok := a.Characters[r]
		if !ok {
			fc = a.Characters[' ']
		}
		width += float32(fc.Advance) * scale
		maxH = max(maxH, fc.Height*scale)
	}
	return width, maxH
}

// Layout appends two textured triangles per glyph (x, y, u, v per vertex)
// with the pen starting on the baseline at (x, y).
func (a *FontAtlas) Layout(dst []float32, text string, x, y, scale float32) []float32 {
	b := a.Image.Bounds()
	aw, ah := float32(b.Dx()), float32(b.Dy())
	for _, r := range text {
		fc, ok := a.Characters[r]
		if !ok {
			x += float32(a.Characters[' '].Advance) * scale
			continue
		}
		if fc.Width > 0 && fc.Height > 0 {
			x0 := x + fc.BearingX*scale
			y0 := y - fc.BearingY*scale
			w, h := fc.Width*scale, fc.Height*scale
			u0, v0 := fc.AtlasX/aw, fc.AtlasY/ah
			u1, v1 := (fc.AtlasX+fc.Width)/aw, (fc.AtlasY+fc.Height)/ah
			dst = append(dst,
				x0, y0+h, u0, v1,
				x0, y0, u0, v0,
				x0+w, y0, u1, v0,
				x0, y0+h, u0, v1,
				x0+w, y0, u1, v0,
				x0+w, y0+h, u1, v1,
			)
		}
		x += float32(fc.Advance) * scale
	}
	return dst
}

const textVertexShader = `#version 410 core
layout (location = 0) in vec4 vertex;
uniform mat4 projection;
out vec2 TexCoords;
void main() {
    gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
    TexCoords = vertex.zw;
}
`

const textFragmentShader = `#version 410 core
in vec2 TexCoords;
uniform sampler2D text;
uniform vec3 textColor;
out vec4 FragColor;
void main() {
    FragColor = vec4(textColor, texture(text, TexCoords).r);
}
`

// FontRenderer draws screen-space text from an uploaded atlas.
type FontRenderer struct {
	atlas      *FontAtlas
	shader     *Shader
	projection mgl32.Mat4
	vao        uint32
	vbo        uint32
	scratch    []float32
}

func NewFontRenderer(atlas *FontAtlas, width, height int) (*FontRenderer, error) {
	if atlas == nil || len(atlas.Characters) == 0 {
		return nil, fmt.Errorf("invalid font atlas")
	}
	shader, err := NewShaderFromSource(textVertexShader, textFragmentShader)
	if err != nil {
		return nil, err
	}
	if atlas.TextureID == 0 {
		atlas.Upload()
	}
	fr := &FontRenderer{atlas: atlas, shader: shader}
	fr.SetViewport(width, height)

	gl.GenVertexArrays(1, &fr.vao)
	gl.GenBuffers(1, &fr.vbo)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return fr, nil
}

// SetViewport resets the pixel-space projection (origin top-left).
func (fr *FontRenderer) SetViewport(width, height int) {
	fr.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// RenderLines draws lines top to bottom starting at baseline (x, yStart).
func (fr *FontRenderer) RenderLines(lines []string, x, yStart, lineStep, scale float32, color mgl32.Vec3) {
	fr.scratch = fr.scratch[:0]
	y := yStart
	for _, line := range lines {
		fr.scratch = fr.atlas.Layout(fr.scratch, line, x, y, scale)
		y += lineStep
	}
	if len(fr.scratch) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	fr.shader.Use()
	fr.shader.SetVec3("textColor", color)
	fr.shader.SetMat4("projection", fr.projection)
	fr.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.atlas.TextureID)

	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	size := len(fr.scratch) * 4
	// orphan then fill
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(fr.scratch))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(fr.scratch)/4))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (fr *FontRenderer) Delete() {
	gl.DeleteVertexArrays(1, &fr.vao)
	gl.DeleteBuffers(1, &fr.vbo)
	gl.DeleteTextures(1, &fr.atlas.TextureID)
	fr.shader.Delete()
}
