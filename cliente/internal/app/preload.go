package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"DisplayForge/shared/util"

	"golang.org/x/sync/errgroup"
)

// PreloadReport resume um preload: cada entidade termina em exatamente um contador.
type PreloadReport struct {
	Loaded  int
	Failed  int
	Skipped int
	Errors  map[string]error
}

// Preload coloca todas as entidades em paralelo, limitado por PreloadWorkers.
// Uma entidade com falha nunca interrompe as demais: todas terminam e as
// falhas são contadas no relatório.
func (s *Session) Preload(ctx context.Context, entities []Entity) PreloadReport {
	start := time.Now()
	report := PreloadReport{Errors: make(map[string]error)}

	// Ids repetidos são coalescidos; vale o último placement
	queue := util.NewUniqueQueue[string, Placement]()
	for _, pl := range Flatten(entities) {
		if pl.Entity.Kind() == KindText {
			report.Skipped++
			continue
		}
		queue.Enqueue(pl.Entity.EntityID(), pl)
	}

	total := queue.Len()
	log.Printf("[Preload] Iniciando %d entidades com %d workers", total, s.Config.PreloadWorkers)

	var mu sync.Mutex
	record := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed++
			report.Errors[id] = err
			return
		}
		report.Loaded++
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Config.PreloadWorkers)

	for {
		id, pl, ok := queue.Dequeue()
		if !ok {
			break
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] Erro no worker de preload (%s): %v", id, r)
					record(id, fmt.Errorf("panic: %v", r))
				}
			}()

			if err := gctx.Err(); err != nil {
				record(id, err)
				return nil
			}
			_, perr := s.Place(pl)
			record(id, perr)
			return nil
		})
	}
	_ = g.Wait()

	s.Commit()

	log.Printf("[Preload] Concluído em %v: %d carregadas, %d falhas, %d ignoradas",
		time.Since(start).Round(time.Millisecond), report.Loaded, report.Failed, report.Skipped)
	return report
}
