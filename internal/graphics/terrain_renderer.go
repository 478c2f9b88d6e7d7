package graphics

import (
	"path/filepath"

	"terrainstream/internal/profiling"
	"terrainstream/internal/streaming"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const terrainVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 vpMatrix;
uniform vec3 chunkOrigin;

out vec2 vUV;
out float vHeight;

void main() {
    vec3 world = chunkOrigin + aPos;
    vUV = aUV;
    vHeight = world.y;
    gl_Position = vpMatrix * vec4(world, 1.0);
}
`

const terrainFragmentShader = `#version 410 core
in vec2 vUV;
in float vHeight;

uniform sampler2D terrainTexture;
uniform int useTexture;
uniform float maxHeight;

out vec4 FragColor;

void main() {
    if (useTexture == 1) {
        FragColor = texture(terrainTexture, vUV * 8.0);
        return;
    }
    float t = clamp(vHeight / maxHeight, 0.0, 1.0);
    vec3 low = vec3(0.18, 0.42, 0.16);
    vec3 high = vec3(0.85, 0.85, 0.80);
    FragColor = vec4(mix(low, high, t), 1.0);
}
`

// TerrainRenderer draws the chunks the streaming engine selected for a frame.
type TerrainRenderer struct {
	shader    *Shader
	texture   uint32
	maxHeight float32
	wireframe bool
}

// NewTerrainRenderer compiles the terrain program. texture may be 0, in which
// case terrain is shaded by height. A non-empty shaderDir loads terrain.vert
// and terrain.frag from disk instead of the built-in program; they must keep
// the same attribute and uniform names.
func NewTerrainRenderer(texture uint32, maxHeight float32, shaderDir string) (*TerrainRenderer, error) {
	var (
		shader *Shader
		err    error
	)
	if shaderDir != "" {
		shader, err = NewShader(filepath.Join(shaderDir, "terrain.vert"), filepath.Join(shaderDir, "terrain.frag"))
	} else {
		shader, err = NewShaderFromSource(terrainVertexShader, terrainFragmentShader)
	}
	if err != nil {
		return nil, err
	}
	return &TerrainRenderer{shader: shader, texture: texture, maxHeight: maxHeight}, nil
}

// ToggleWireframe switches polygon mode, handy for checking LOD seams.
func (r *TerrainRenderer) ToggleWireframe() {
	r.wireframe = !r.wireframe
}

// Render clears the frame and draws every item with its chosen tier.
func (r *TerrainRenderer) Render(items []streaming.DrawItem, view, projection mgl32.Mat4) {
	defer profiling.Track("renderer.Render")()

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.53, 0.71, 0.92, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.shader.Use()
	r.shader.SetMat4("vpMatrix", projection.Mul4(view))
	r.shader.SetFloat("maxHeight", r.maxHeight)
	if r.texture != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.texture)
		r.shader.SetInt("terrainTexture", 0)
		r.shader.SetInt("useTexture", 1)
	} else {
		r.shader.SetInt("useTexture", 0)
	}

	for _, it := range items {
		r.shader.SetVec3("chunkOrigin", it.Origin)
		gl.BindVertexArray(it.Buffers.VAO)
		gl.DrawElementsWithOffset(gl.TRIANGLES, it.IndexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

// Delete frees the program and texture.
func (r *TerrainRenderer) Delete() {
	r.shader.Delete()
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
	}
}
