package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"DisplayForge/cliente/internal/assets"
	"DisplayForge/cliente/internal/blockstates"
	"DisplayForge/cliente/internal/meshing"
	"DisplayForge/cliente/internal/models"
	"DisplayForge/cliente/internal/render"
	"DisplayForge/shared/config"
	"DisplayForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

type instanceRef struct {
	resourceID string
	owner      string
}

type pendingTransform struct {
	resourceID string
	transform  mgl32.Mat4
}

// Session é dona de todos os resolvers e caches de uma versão do jogo.
type Session struct {
	Config    *config.Config
	Assets    *assets.Manager
	Pipeline  *Pipeline
	Materials *render.MaterialCache
	Allocator *render.Allocator

	mu     sync.Mutex
	placed map[string][]instanceRef

	// Transforms de slots na faixa de crescimento, aplicados em Commit
	pending *util.UniqueQueue[string, pendingTransform]
}

// NewSession monta o pipeline completo sobre uma origem de assets e um backend.
func NewSession(cfg *config.Config, source assets.Source, backend render.Backend) (*Session, error) {
	manager, err := assets.NewManager(source, cfg.GameVersion)
	if err != nil {
		return nil, fmt.Errorf("falha ao iniciar assets: %w", err)
	}

	modelResolver := models.NewResolver(manager, cfg.Namespace)
	modelResolver.MaxIndirection = cfg.MaxTextureIndirection
	modelResolver.Silhouettes.Size = cfg.TextureSize

	materials := render.NewMaterialCache(manager, backend, cfg.Namespace)
	materials.Size = cfg.TextureSize
	materials.AlphaCutoff = cfg.AlphaCutoff

	synth := meshing.NewSynthesizer(materials)
	synth.MaxIndirection = cfg.MaxTextureIndirection

	pipeline := &Pipeline{
		Models:      modelResolver,
		Blockstates: blockstates.NewResolver(manager, cfg.Namespace),
		Synthesizer: synth,
	}

	log.Printf("[App] Sessão iniciada (versão %s, namespace %s)", cfg.GameVersion, cfg.Namespace)

	return &Session{
		Config:    cfg,
		Assets:    manager,
		Pipeline:  pipeline,
		Materials: materials,
		Allocator: render.NewAllocator(backend, pipeline, cfg.InitialBatchCapacity),
		placed:    make(map[string][]instanceRef),
		pending:   util.NewUniqueQueue[string, pendingTransform](),
	}, nil
}

// Place aloca as instâncias de uma entidade folha e posiciona cada uma.
// Uma entidade já colocada é substituída. Retorna quantas instâncias foram criadas.
func (s *Session) Place(pl Placement) (int, error) {
	id := pl.Entity.EntityID()

	instances, err := s.Pipeline.Instances(pl)
	if err != nil {
		if errors.Is(err, meshing.ErrNothingToRender) {
			log.Printf("[App] AVISO: %s não será exibido: %v", id, err)
		}
		return 0, err
	}
	if len(instances) == 0 {
		return 0, nil
	}

	if err := s.Remove(id); err != nil && !errors.Is(err, render.ErrUnknownInstance) {
		return 0, err
	}

	refs := make([]instanceRef, 0, len(instances))
	for i, inst := range instances {
		owner := fmt.Sprintf("%s#%d", id, i)
		if _, err := s.Allocator.Allocate(inst.ResourceID, owner); err != nil {
			s.release(refs)
			return 0, fmt.Errorf("%s: %w", inst.ResourceID, err)
		}
		refs = append(refs, instanceRef{resourceID: inst.ResourceID, owner: owner})

		err := s.Allocator.SetTransform(inst.ResourceID, owner, inst.Transform)
		if errors.Is(err, render.ErrSlotPending) {
			s.pending.Enqueue(owner, pendingTransform{resourceID: inst.ResourceID, transform: inst.Transform})
		} else if err != nil {
			s.release(refs)
			return 0, err
		}
	}

	s.mu.Lock()
	s.placed[id] = refs
	s.mu.Unlock()
	return len(refs), nil
}

// Remove libera todas as instâncias de uma entidade.
func (s *Session) Remove(entityID string) error {
	s.mu.Lock()
	refs, ok := s.placed[entityID]
	delete(s.placed, entityID)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: entidade %s", render.ErrUnknownInstance, entityID)
	}
	return s.release(refs)
}

func (s *Session) release(refs []instanceRef) error {
	var errs []error
	for _, r := range refs {
		if err := s.Allocator.Free(r.resourceID, r.owner); err != nil {
			errs = append(errs, err)
		}
		// Descarta transform pendente do slot liberado
		if s.pending.Contains(r.owner) {
			s.pending.Enqueue(r.owner, pendingTransform{})
		}
	}
	return errors.Join(errs...)
}

// Commit aplica o crescimento pendente dos lotes e depois os transforms que
// aguardavam slot. Chamado uma vez por frame, antes do desenho.
func (s *Session) Commit() int {
	grown := s.Allocator.ApplyPendingGrowth()

	for {
		owner, p, ok := s.pending.Dequeue()
		if !ok {
			break
		}
		if p.resourceID == "" {
			continue
		}
		if err := s.Allocator.SetTransform(p.resourceID, owner, p.transform); err != nil {
			log.Printf("[App] ERRO ao aplicar transform pendente de %s: %v", owner, err)
		}
	}
	return grown
}

// Placed retorna quantas entidades estão na cena.
func (s *Session) Placed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.placed)
}
