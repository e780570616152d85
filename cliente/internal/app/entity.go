package app

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifica a variante de uma entidade.
type Kind int

const (
	KindBlock Kind = iota
	KindItem
	KindText
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindItem:
		return "item"
	case KindText:
		return "text"
	case KindGroup:
		return "group"
	}
	return "unknown"
}

// Entity é uma entidade da cena. Só as variantes deste pacote a implementam.
type Entity interface {
	EntityID() string
	Kind() Kind
	Local() mgl32.Mat4
	isEntity()
}

// BlockEntity exibe um bloco, ex: "minecraft:oak_stairs[facing=east]".
type BlockEntity struct {
	ID         string
	BlockState string
	Transform  mgl32.Mat4
}

// ItemEntity exibe o modelo de item, ex: "minecraft:diamond_sword".
type ItemEntity struct {
	ID        string
	Item      string
	Transform mgl32.Mat4
}

// TextEntity é desenhada pela interface, não pelo pipeline de malhas.
type TextEntity struct {
	ID        string
	Text      string
	Transform mgl32.Mat4
}

// GroupEntity compõe seu transform sobre o dos filhos.
type GroupEntity struct {
	ID        string
	Children  []Entity
	Transform mgl32.Mat4
}

func (e *BlockEntity) EntityID() string  { return e.ID }
func (e *BlockEntity) Kind() Kind        { return KindBlock }
func (e *BlockEntity) Local() mgl32.Mat4 { return orIdentity(e.Transform) }
func (e *BlockEntity) isEntity()         {}

func (e *ItemEntity) EntityID() string  { return e.ID }
func (e *ItemEntity) Kind() Kind        { return KindItem }
func (e *ItemEntity) Local() mgl32.Mat4 { return orIdentity(e.Transform) }
func (e *ItemEntity) isEntity()         {}

func (e *TextEntity) EntityID() string  { return e.ID }
func (e *TextEntity) Kind() Kind        { return KindText }
func (e *TextEntity) Local() mgl32.Mat4 { return orIdentity(e.Transform) }
func (e *TextEntity) isEntity()         {}

func (e *GroupEntity) EntityID() string  { return e.ID }
func (e *GroupEntity) Kind() Kind        { return KindGroup }
func (e *GroupEntity) Local() mgl32.Mat4 { return orIdentity(e.Transform) }
func (e *GroupEntity) isEntity()         {}

// orIdentity trata a matriz zero (campo não preenchido) como identidade.
func orIdentity(m mgl32.Mat4) mgl32.Mat4 {
	if m == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return m
}

// Placement é uma entidade folha com o transform de mundo já composto.
type Placement struct {
	Entity Entity
	World  mgl32.Mat4
}

// Flatten percorre os grupos e devolve as folhas em ordem de profundidade.
func Flatten(entities []Entity) []Placement {
	var out []Placement
	var walk func(list []Entity, parent mgl32.Mat4)
	walk = func(list []Entity, parent mgl32.Mat4) {
		for _, e := range list {
			world := parent.Mul4(e.Local())
			if g, ok := e.(*GroupEntity); ok {
				walk(g.Children, world)
				continue
			}
			out = append(out, Placement{Entity: e, World: world})
		}
	}
	walk(entities, mgl32.Ident4())
	return out
}
