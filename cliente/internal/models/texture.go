package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedTexture indica uma referência "#chave" sem valor no mapa de texturas.
	ErrUnresolvedTexture = errors.New("textura não resolvida")
	// ErrIndirectionTooDeep indica cadeia "#a" -> "#b" -> ... longa demais (provável ciclo).
	ErrIndirectionTooDeep = errors.New("indireção de textura profunda demais")
)

// DefaultMaxIndirection é o limite de saltos "#chave" usado quando nenhum é configurado.
const DefaultMaxIndirection = 32

// ResolveTexture segue referências "#chave" no mapa até um caminho de textura.
// Referências sem "#" já são finais.
func ResolveTexture(textures map[string]string, ref string, maxDepth int) (string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIndirection
	}
	start := ref

	for hops := 0; ; hops++ {
		if !strings.HasPrefix(ref, "#") {
			if ref == "" {
				return "", fmt.Errorf("%w: %q", ErrUnresolvedTexture, start)
			}
			return ref, nil
		}
		if hops >= maxDepth {
			return "", fmt.Errorf("%w: %q após %d saltos", ErrIndirectionTooDeep, start, hops)
		}

		next, ok := textures[ref[1:]]
		if !ok {
			return "", fmt.Errorf("%w: %q (chave %q ausente)", ErrUnresolvedTexture, start, ref)
		}
		ref = next
	}
}
