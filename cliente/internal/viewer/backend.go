package viewer

/*
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"image"
	"log"
	"sync"
	"unsafe"

	"DisplayForge/cliente/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Índices de shader.locs (enum ShaderLocationIndex do raylib)
const (
	locMatrixMVP    = 6
	locMatrixModel  = 9
	locColorDiffuse = 12
	locMapDiffuse   = 15
)

type meshPart struct {
	mesh     rl.Mesh
	material render.MaterialHandle
}

// RaylibBackend implementa Backend sobre raylib. Todas as chamadas de GPU ficam
// numa fila e só executam em Sync, chamado pela goroutine da janela.
type RaylibBackend struct {
	mu      sync.Mutex
	next    uint32
	pending []func()

	textures  map[render.TextureHandle]rl.Texture2D
	materials map[render.MaterialHandle]rl.Material
	meshes    map[render.MeshHandle][]meshPart

	shaders     [2]rl.Shader // [0] sem tone mapping, [1] com
	alphaCutoff float32
}

// NewRaylibBackend compila os shaders. Exige janela aberta.
func NewRaylibBackend(alphaCutoff float32) (*RaylibBackend, error) {
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("janela raylib não inicializada")
	}

	b := &RaylibBackend{
		textures:    make(map[render.TextureHandle]rl.Texture2D),
		materials:   make(map[render.MaterialHandle]rl.Material),
		meshes:      make(map[render.MeshHandle][]meshPart),
		alphaCutoff: alphaCutoff,
	}

	for i := range b.shaders {
		sh := rl.LoadShaderFromMemory(cutoutInstancedVertexShader, cutoutFragment(i == 1))
		if sh.ID == 0 {
			return nil, fmt.Errorf("falha ao compilar shader de recorte")
		}
		locs := unsafe.Slice(sh.Locs, 32)
		locs[locMatrixMVP] = rl.GetShaderLocation(sh, "mvp")
		locs[locMatrixModel] = rl.GetShaderLocationAttrib(sh, "instanceTransform")
		locs[locColorDiffuse] = rl.GetShaderLocation(sh, "colDiffuse")
		locs[locMapDiffuse] = rl.GetShaderLocation(sh, "texture0")
		rl.SetShaderValue(sh, rl.GetShaderLocation(sh, "alphaCutoff"), []float32{alphaCutoff}, rl.ShaderUniformFloat)
		b.shaders[i] = sh
	}

	log.Printf("[Renderer] Backend raylib pronto (corte alfa %.2f)", alphaCutoff)
	return b, nil
}

func (b *RaylibBackend) enqueue(fn func()) {
	b.pending = append(b.pending, fn)
}

// Sync executa os uploads pendentes. Deve rodar na goroutine da janela.
func (b *RaylibBackend) Sync() int {
	b.mu.Lock()
	jobs := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, job := range jobs {
		job()
	}
	return len(jobs)
}

func (b *RaylibBackend) UploadTexture(img *image.NRGBA, opts render.TextureOptions) (render.TextureHandle, error) {
	if img == nil {
		return 0, fmt.Errorf("textura vazia")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := render.TextureHandle(b.next)

	b.enqueue(func() {
		rlImg := rl.NewImageFromImage(img)
		tex := rl.LoadTextureFromImage(rlImg)
		rl.UnloadImage(rlImg)
		if tex.ID == 0 {
			log.Printf("[Renderer] FALHA ao enviar textura %d", h)
			return
		}
		// Pixel art: sem mipmaps e sem interpolação
		if opts.Nearest {
			rl.SetTextureFilter(tex, rl.FilterPoint)
		} else {
			rl.SetTextureFilter(tex, rl.FilterBilinear)
		}
		rl.SetTextureWrap(tex, rl.WrapClamp)

		b.mu.Lock()
		b.textures[h] = tex
		b.mu.Unlock()
	})
	return h, nil
}

func (b *RaylibBackend) CreateMaterial(opts render.MaterialOptions) (render.MaterialHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := render.MaterialHandle(b.next)

	b.enqueue(func() {
		mat := rl.LoadMaterialDefault()
		if opts.ToneMapped {
			mat.Shader = b.shaders[1]
		} else {
			mat.Shader = b.shaders[0]
		}

		b.mu.Lock()
		tex, ok := b.textures[opts.Texture]
		b.mu.Unlock()
		if ok {
			rl.SetMaterialTexture(&mat, rl.MapDiffuse, tex)
		}

		maps := unsafe.Slice(mat.Maps, 12)
		maps[rl.MapDiffuse].Color = rl.NewColor(uint8(opts.Tint>>16), uint8(opts.Tint>>8), uint8(opts.Tint), 255)

		b.mu.Lock()
		b.materials[h] = mat
		b.mu.Unlock()
	})
	return h, nil
}

// UploadMesh junta os grupos que usam o mesmo material numa única malha raylib,
// já que o raylib desenha uma malha com um único material e índices de 16 bits.
// Cada material vira uma chamada instanciada por lote.
func (b *RaylibBackend) UploadMesh(geom *render.Geometry, materials []render.MaterialHandle) (render.MeshHandle, error) {
	merged, err := mergeGroups(geom, materials)
	if err != nil {
		return 0, err
	}

	parts := make([]meshPart, 0, len(merged))
	for _, m := range merged {
		for _, local := range splitLocal(geom, m.indices) {
			parts = append(parts, meshPart{mesh: local.toMesh(), material: m.material})
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := render.MeshHandle(b.next)

	b.enqueue(func() {
		for i := range parts {
			rl.UploadMesh(&parts[i].mesh, false)
		}
		b.mu.Lock()
		b.meshes[h] = parts
		b.mu.Unlock()
	})
	return h, nil
}

// materialIndices reúne os índices de todos os grupos de um material.
type materialIndices struct {
	material render.MaterialHandle
	indices  []uint32
}

// mergeGroups agrupa os índices por handle de material, na ordem da primeira aparição.
// Índices de material diferentes que apontam para o mesmo handle também se juntam.
func mergeGroups(geom *render.Geometry, materials []render.MaterialHandle) ([]materialIndices, error) {
	var out []materialIndices
	pos := make(map[render.MaterialHandle]int)

	for _, grp := range geom.Groups {
		if grp.MaterialIndex < 0 || grp.MaterialIndex >= len(materials) {
			return nil, fmt.Errorf("grupo com material %d fora da lista (%d)", grp.MaterialIndex, len(materials))
		}
		if grp.Start < 0 || grp.Start+grp.Count > len(geom.Indices) {
			return nil, fmt.Errorf("grupo [%d, %d) fora dos índices (%d)", grp.Start, grp.Start+grp.Count, len(geom.Indices))
		}
		h := materials[grp.MaterialIndex]
		i, ok := pos[h]
		if !ok {
			i = len(out)
			pos[h] = i
			out = append(out, materialIndices{material: h})
		}
		out[i].indices = append(out[i].indices, geom.Indices[grp.Start:grp.Start+grp.Count]...)
	}
	return out, nil
}

// localMesh é uma malha com vértices reindexados para 16 bits.
type localMesh struct {
	positions, normals, uvs []float32
	indices                 []uint16
}

const maxLocalVertices = 1 << 16

// splitLocal reindexa os triângulos para vértices locais, abrindo uma nova
// malha sempre que a atual chegaria ao limite de índices de 16 bits.
func splitLocal(geom *render.Geometry, indices []uint32) []localMesh {
	var out []localMesh
	var cur localMesh
	remap := make(map[uint32]uint16)

	flush := func() {
		if len(cur.indices) > 0 {
			out = append(out, cur)
		}
		cur = localMesh{}
		remap = make(map[uint32]uint16)
	}

	for t := 0; t+2 < len(indices); t += 3 {
		tri := indices[t : t+3]
		missing := 0
		for _, idx := range tri {
			if _, ok := remap[idx]; !ok {
				missing++
			}
		}
		if len(remap)+missing > maxLocalVertices {
			flush()
		}

		for _, idx := range tri {
			local, ok := remap[idx]
			if !ok {
				local = uint16(len(remap))
				remap[idx] = local
				i := int(idx)
				cur.positions = append(cur.positions, geom.Positions[i*3:i*3+3]...)
				cur.normals = append(cur.normals, geom.Normals[i*3:i*3+3]...)
				cur.uvs = append(cur.uvs, geom.UVs[i*2:i*2+2]...)
			}
			cur.indices = append(cur.indices, local)
		}
	}
	flush()
	return out
}

// toMesh copia os dados para memória C no formato do raylib.
func (l localMesh) toMesh() rl.Mesh {
	var mesh rl.Mesh
	mesh.VertexCount = int32(len(l.positions) / 3)
	mesh.TriangleCount = int32(len(l.indices) / 3)
	if len(l.positions) > 0 {
		mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&l.positions[0]), len(l.positions)*4))
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&l.normals[0]), len(l.normals)*4))
		mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&l.uvs[0]), len(l.uvs)*4))
		mesh.Indices = (*uint16)(copyToC(unsafe.Pointer(&l.indices[0]), len(l.indices)*2))
	}
	return mesh
}

// copyToC copia dados Go para memória C; o raylib libera esses buffers em UnloadMesh.
func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(ptr), size), unsafe.Slice((*byte)(data), size))
	return ptr
}

func (b *RaylibBackend) NewInstanceBuffer(capacity int) render.InstanceBuffer {
	return &raylibInstances{transforms: make([]rl.Matrix, capacity)}
}

// DrawBatch desenha um lote com uma chamada instanciada por grupo de material.
func (b *RaylibBackend) DrawBatch(view render.BatchView) {
	inst, ok := view.Buffer.(*raylibInstances)
	if !ok || view.Count == 0 {
		return
	}

	b.mu.Lock()
	parts, ok := b.meshes[view.Mesh]
	b.mu.Unlock()
	if !ok {
		return // Upload ainda pendente
	}

	for _, p := range parts {
		b.mu.Lock()
		mat, ok := b.materials[p.material]
		b.mu.Unlock()
		if !ok {
			continue
		}
		rl.DrawMeshInstanced(p.mesh, mat, inst.transforms[:view.Count], view.Count)
	}
}

// Unload libera todos os recursos de GPU.
func (b *RaylibBackend) Unload() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, parts := range b.meshes {
		for _, p := range parts {
			rl.UnloadMesh(&p.mesh)
		}
	}
	for _, tex := range b.textures {
		rl.UnloadTexture(tex)
	}
	for _, sh := range b.shaders {
		rl.UnloadShader(sh)
	}
	b.meshes = make(map[render.MeshHandle][]meshPart)
	b.textures = make(map[render.TextureHandle]rl.Texture2D)
	b.materials = make(map[render.MaterialHandle]rl.Material)
	b.pending = nil
}

// raylibInstances guarda os transforms em RAM; o raylib os envia a cada desenho.
type raylibInstances struct {
	transforms []rl.Matrix
}

func (r *raylibInstances) Len() int { return len(r.transforms) }

func (r *raylibInstances) Set(slot int, m mgl32.Mat4) {
	r.transforms[slot] = toRaylib(m)
}

func (r *raylibInstances) At(slot int) mgl32.Mat4 {
	return fromRaylib(r.transforms[slot])
}

func (r *raylibInstances) Dispose() {
	r.transforms = nil
}

// toRaylib converte mgl32 (coluna principal) para rl.Matrix (mN = coluna*4 + linha).
func toRaylib(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func fromRaylib(m rl.Matrix) mgl32.Mat4 {
	return mgl32.Mat4{
		m.M0, m.M1, m.M2, m.M3,
		m.M4, m.M5, m.M6, m.M7,
		m.M8, m.M9, m.M10, m.M11,
		m.M12, m.M13, m.M14, m.M15,
	}
}
